package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"matricula/internal/enrollment/models"
	"matricula/pkg/requestcontext"
)

// PostgresStore persists records in the enrollments table. The seq column
// fixes insertion order independently of the timestamp.
type PostgresStore struct {
	db    *sql.DB
	newID IDGenerator
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, newID: models.NewRecordID}
}

const insertEnrollment = `
	INSERT INTO enrollments (id, created_at, nombres, apellidos, documento, email, telefono, programa, modalidad, inicio)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (s *PostgresStore) Append(ctx context.Context, fields models.Fields) (*models.Record, error) {
	now := requestcontext.Now(ctx)

	for range maxIDAttempts {
		record := models.NewRecord(s.newID(), fields, now)
		_, err := s.db.ExecContext(ctx, insertEnrollment,
			string(record.ID),
			record.CreatedAt,
			record.FirstName,
			record.LastName,
			record.DocumentID,
			record.Email,
			record.Phone,
			record.Program,
			record.Modality,
			record.StartDate,
		)
		if err == nil {
			return record, nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("insert enrollment: %w", err)
		}
	}
	return nil, fmt.Errorf("insert enrollment: %w", errIDCollision)
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Record, error) {
	query := `
		SELECT id, created_at, nombres, apellidos, documento, email, telefono, programa, modalidad, inicio
		FROM enrollments
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var (
			r       models.Record
			id      string
			created time.Time
		)
		if err := rows.Scan(&id, &created,
			&r.FirstName, &r.LastName, &r.DocumentID, &r.Email,
			&r.Phone, &r.Program, &r.Modality, &r.StartDate,
		); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		r.ID = models.RecordID(id)
		r.CreatedAt = created.UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
