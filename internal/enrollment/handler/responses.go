package handler

import (
	"github.com/samber/lo"

	"matricula/internal/enrollment/models"
)

// isoMillis matches the ISO-8601 form browsers produce (2025-01-15T09:05:03.000Z).
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type recordResponse struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"`
	Nombres   string `json:"nombres"`
	Apellidos string `json:"apellidos"`
	Documento string `json:"documento"`
	Email     string `json:"email"`
	Telefono  string `json:"telefono"`
	Programa  string `json:"programa"`
	Modalidad string `json:"modalidad"`
	Inicio    string `json:"inicio"`
}

type listingResponse struct {
	Total int              `json:"total"`
	Items []recordResponse `json:"items"`
}

func toRecordResponse(r models.Record, _ int) recordResponse {
	return recordResponse{
		ID:        r.ID.String(),
		Timestamp: r.CreatedAt.UTC().Format(isoMillis),
		Nombres:   r.FirstName,
		Apellidos: r.LastName,
		Documento: r.DocumentID,
		Email:     r.Email,
		Telefono:  r.Phone,
		Programa:  r.Program,
		Modalidad: r.Modality,
		Inicio:    r.StartDate,
	}
}

func toListingResponse(l *models.Listing) listingResponse {
	return listingResponse{
		Total: l.Total,
		Items: lo.Map(l.Items, toRecordResponse),
	}
}
