package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parlaylab/sports-mcp/internal/models"
)

// decodeArgs parses the JSON arguments object into a tool's typed argument
// struct. A missing arguments object decodes as empty so optional-only tools
// accept bare calls.
func decodeArgs(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &models.ValidationError{
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("expected %s", typeErr.Type),
			}
		}
		return &models.ValidationError{Field: "arguments", Reason: "not a valid JSON object"}
	}
	return nil
}
