package model

import (
	"sort"
	"strings"
)

// MissingFieldsError reports required fields absent from a request payload.
// Fields is always sorted so the message is deterministic.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing parameter(s): " + strings.Join(e.Fields, ", ")
}

// ValidateRequired checks that every required key is present in payload.
// A nil payload is treated as empty. Only key presence is checked — a key
// mapped to null passes; type and range checks happen at decode time.
// Returns a *MissingFieldsError listing the missing keys in sorted order,
// or nil when all keys are present.
func ValidateRequired(required []string, payload map[string]any) error {
	var missing []string
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingFieldsError{Fields: missing}
}
