package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/url"
	"strconv"

	"matricula/internal/enrollment/models"
)

// formValue accepts any JSON scalar. Forms post strings, but JSON clients
// send numbers for documento or telefono; null and absent both become "".
// Numbers are stored in their shortest decimal form, so 1e3 and 1000.0 both
// become "1000".
type formValue string

func (v *formValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = formValue(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return errors.New("expected a scalar value")
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*v = formValue(data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return err
		}
		*v = formValue(formatNumber(f))
	}
	return nil
}

func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// SubmitRequest is the JSON body of a submission.
type SubmitRequest struct {
	Nombres   formValue `json:"nombres"`
	Apellidos formValue `json:"apellidos"`
	Documento formValue `json:"documento"`
	Email     formValue `json:"email"`
	Telefono  formValue `json:"telefono"`
	Programa  formValue `json:"programa"`
	Modalidad formValue `json:"modalidad"`
	Inicio    formValue `json:"inicio"`
}

func (r *SubmitRequest) fields() models.Fields {
	return models.Fields{
		FirstName:  string(r.Nombres),
		LastName:   string(r.Apellidos),
		DocumentID: string(r.Documento),
		Email:      string(r.Email),
		Phone:      string(r.Telefono),
		Program:    string(r.Programa),
		Modality:   string(r.Modalidad),
		StartDate:  string(r.Inicio),
	}
}

func fieldsFromForm(form url.Values) models.Fields {
	return models.Fields{
		FirstName:  form.Get("nombres"),
		LastName:   form.Get("apellidos"),
		DocumentID: form.Get("documento"),
		Email:      form.Get("email"),
		Phone:      form.Get("telefono"),
		Program:    form.Get("programa"),
		Modality:   form.Get("modalidad"),
		StartDate:  form.Get("inicio"),
	}
}
