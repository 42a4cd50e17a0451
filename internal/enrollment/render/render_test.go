package render

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matricula/internal/enrollment/models"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(WithLocation(time.UTC))
	require.NoError(t, err)
	return r
}

func TestForm(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, newRenderer(t).Form(w))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, `action="/matricular"`)
	for _, field := range []string{"nombres", "apellidos", "documento", "email", "telefono", "programa", "modalidad", "inicio"} {
		assert.Contains(t, body, `name="`+field+`"`)
	}
}

func TestFormSubmitPathOverride(t *testing.T) {
	r, err := New(WithSubmitPath("/submit"), WithPrograms("Música"))
	require.NoError(t, err)
	w := httptest.NewRecorder()

	require.NoError(t, r.Form(w))

	assert.Contains(t, w.Body.String(), `action="/submit"`)
	assert.Contains(t, w.Body.String(), "<option>Música</option>")
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	err := newRenderer(t).Error(w, []string{models.MsgFirstNameRequired, models.MsgEmailInvalid})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>Errores en matrícula</title>")
	assert.Contains(t, body, "<li>Nombres es obligatorio</li><li>Email no válido</li>")
	assert.Contains(t, body, `<a href="/"`)
	assert.Contains(t, body, "Volver al formulario")
}

func successRecord() *models.Record {
	return models.NewRecord("f00dbabe", models.Fields{
		FirstName:  "Ana",
		LastName:   "Lopez",
		DocumentID: "123",
		Email:      "a@b.co",
		Program:    "X",
		Modality:   "Virtual",
		StartDate:  "2025-02-01",
	}, time.Date(2025, 1, 15, 9, 5, 3, 0, time.UTC))
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, newRenderer(t).Success(w, successRecord()))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "¡Matrícula registrada!")
	assert.Contains(t, body, "Código: <strong>f00dbabe</strong>")
	assert.Contains(t, body, "Fecha: 15/01/2025 09:05:03")
	assert.Contains(t, body, `<dd class="col-sm-9">Ana Lopez</dd>`)
	assert.Contains(t, body, `<dd class="col-sm-9">Virtual</dd>`)
	assert.Contains(t, body, `<dd class="col-sm-9">-</dd>`, "empty phone shows a dash")
}

func TestSuccessEscapesFieldValues(t *testing.T) {
	record := successRecord()
	record.FirstName = `<script>alert("x")</script>`
	w := httptest.NewRecorder()

	require.NoError(t, newRenderer(t).Success(w, record))

	body := w.Body.String()
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestSuccessShowsPhone(t *testing.T) {
	record := successRecord()
	record.Phone = "555-1234"
	w := httptest.NewRecorder()

	require.NoError(t, newRenderer(t).Success(w, record))

	assert.Contains(t, w.Body.String(), `<dd class="col-sm-9">555-1234</dd>`)
}
