package httputil

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	dErrors "matricula/pkg/domain-errors"
)

// maxMultipartMemory bounds the in-memory part of multipart form parsing.
const maxMultipartMemory = 1 << 20

// MediaType returns the bare media type of the request ("" when absent).
func MediaType(r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return "", nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", dErrors.New(dErrors.CodeUnsupportedMediaType, "malformed Content-Type")
	}
	return mediaType, nil
}

// DecodeJSON decodes a JSON request body into the target type.
// Decode failures are returned as bad_request domain errors.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return &req, nil
}

// ParseForm parses url-encoded or multipart bodies into r.PostForm.
func ParseForm(r *http.Request, mediaType string) error {
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxMultipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("invalid %s body", mediaTypeLabel(mediaType)))
	}
	return nil
}

func mediaTypeLabel(mediaType string) string {
	if mediaType == "" {
		return "form"
	}
	return mediaType
}
