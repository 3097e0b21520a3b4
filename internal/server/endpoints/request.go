package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/pagesmith/internal/editor"
	"github.com/jackzampolin/pagesmith/internal/svcctx"
)

// multipartMemory is how much of an upload ParseMultipartForm keeps in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

// Request body schemas. Bodies that fail validation are rejected with 400
// before they reach the session.
var (
	cardSchema = jsonschema.MustCompileString("card.json", `{
		"type": "object",
		"properties": {"card_id": {"type": "string", "minLength": 1}},
		"required": ["card_id"]
	}`)

	toggleSchema = jsonschema.MustCompileString("toggle.json", `{
		"type": "object",
		"properties": {
			"card_id": {"type": "string", "minLength": 1},
			"index": {"type": "integer", "minimum": 0}
		},
		"oneOf": [
			{"required": ["card_id"]},
			{"required": ["index"]}
		]
	}`)

	reorderSchema = jsonschema.MustCompileString("reorder.json", `{
		"type": "object",
		"properties": {
			"order": {
				"type": "array",
				"items": {"type": "string", "minLength": 1},
				"uniqueItems": true
			}
		},
		"required": ["order"]
	}`)
)

// decodeBody validates the JSON body against schema and decodes it into v.
func decodeBody(r *http.Request, schema *jsonschema.Schema, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// sessionFrom resolves the {id} path value to a live session and marks it
// active. It writes the error response itself and returns false on failure.
func sessionFrom(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	mgr := svcctx.SessionsFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "session manager not initialized")
		return nil, false
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return nil, false
	}

	s, err := mgr.Get(id)
	if err != nil {
		writeEditorError(w, err)
		return nil, false
	}
	s.Touch()
	return s, true
}

// readUpload reads the multipart field "file", capped at maxBytes.
// It writes the error response itself and returns false on failure.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, string, bool) {
	if maxBytes > 0 {
		if r.ContentLength > maxBytes {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", maxBytes))
			return nil, "", false
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit))
			return nil, "", false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return nil, "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read upload: %v", err))
		return nil, "", false
	}
	return data, header.Filename, true
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// writeFile sends a generated PDF as an attachment.
func writeFile(w http.ResponseWriter, f editor.File) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.Header().Set("X-Page-Count", fmt.Sprint(f.Pages))
	w.WriteHeader(http.StatusOK)
	w.Write(f.Data)
}
