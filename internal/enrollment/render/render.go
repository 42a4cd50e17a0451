// Package render produces the HTML pages of the enrollment flow.
// Every field value goes through html/template escaping.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"matricula/internal/enrollment/models"
)

// TimestampLayout formats the creation time on the receipt.
const TimestampLayout = "02/01/2006 15:04:05"

// DefaultSubmitPath is where the form posts.
const DefaultSubmitPath = "/matricular"

var (
	defaultPrograms   = []string{"Ingeniería de Sistemas", "Administración de Empresas", "Contaduría Pública", "Psicología", "Derecho"}
	defaultModalities = []string{"Presencial", "Virtual", "Híbrida"}
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer writes complete HTML documents. Pages are rendered into a buffer
// first so a template failure never leaves a half-written 200 response.
type Renderer struct {
	tmpl       *template.Template
	submitPath string
	programs   []string
	modalities []string
	location   *time.Location
}

type Option func(*Renderer)

// WithSubmitPath changes the form action.
func WithSubmitPath(path string) Option {
	return func(r *Renderer) {
		if path != "" {
			r.submitPath = path
		}
	}
}

// WithPrograms replaces the program choices offered by the form.
func WithPrograms(programs ...string) Option {
	return func(r *Renderer) {
		if len(programs) > 0 {
			r.programs = programs
		}
	}
}

// WithLocation sets the zone receipts are shown in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.location = loc
		}
	}
}

// New parses the embedded templates.
func New(opts ...Option) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r := &Renderer{
		tmpl:       tmpl,
		submitPath: DefaultSubmitPath,
		programs:   defaultPrograms,
		modalities: defaultModalities,
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// MustNew is New for package-level wiring and tests.
func MustNew(opts ...Option) *Renderer {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

type formView struct {
	Action     string
	Programs   []string
	Modalities []string
}

type errorView struct {
	Messages []string
}

type successView struct {
	ID     string
	Date   string
	Phone  string
	Record *models.Record
}

// Form writes the submission form with status 200.
func (r *Renderer) Form(w http.ResponseWriter) error {
	return r.write(w, http.StatusOK, "form", formView{
		Action:     r.submitPath,
		Programs:   r.programs,
		Modalities: r.modalities,
	})
}

// Error lists each validation message and links back to the form, status 400.
func (r *Renderer) Error(w http.ResponseWriter, messages []string) error {
	return r.write(w, http.StatusBadRequest, "error", errorView{Messages: messages})
}

// Success shows the stored record with its id and creation time, status 200.
func (r *Renderer) Success(w http.ResponseWriter, record *models.Record) error {
	phone := record.Phone
	if phone == "" {
		phone = "-"
	}
	return r.write(w, http.StatusOK, "success", successView{
		ID:     record.ID.String(),
		Date:   record.CreatedAt.In(r.location).Format(TimestampLayout),
		Phone:  phone,
		Record: record,
	})
}

func (r *Renderer) write(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
