// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"billtracker/internal/core"
)

// maxJSONBodyBytes bounds every JSON request body.
const maxJSONBodyBytes = 1 << 20

// ParseBillID reads the {id} path value as a positive integer.
func ParseBillID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("id", fmt.Sprintf("invalid bill id %q", raw))
	}
	return id, nil
}

// DecodeJSON decodes one JSON value from the request body into dst.
// Unknown fields such as id or created_at are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.NewValidationError("body", "request body is empty")
		case errors.As(err, &maxErr):
			return core.NewValidationError("body", fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		default:
			return core.NewValidationError("body", "invalid JSON: "+err.Error())
		}
	}
	if dec.More() {
		return core.NewValidationError("body", "request body must contain a single JSON object")
	}
	return nil
}

// hasHeaderAndData reports whether text has at least a header line and one
// more non-blank line.
func hasHeaderAndData(text string) bool {
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
			if lines >= 2 {
				return true
			}
		}
	}
	return false
}
