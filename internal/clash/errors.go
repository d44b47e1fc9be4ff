package clash

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField is wrapped by every *MissingFieldsError.
	ErrMissingField = errors.New("missing required field")
	// ErrTypeMismatch is returned when a record is decoded as a kind its "type" does not name.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnknownType is returned by Decode for records of an unsupported kind.
	ErrUnknownType = errors.New("unknown proxy type")
)

// MissingFieldsError lists the required fields that were absent, null or falsy.
type MissingFieldsError struct {
	Kind   Kind
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: missing required fields: %s", e.Kind, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingField }

// WarnUnsupportedNetwork marks a VLESS link built without transport parameters.
const WarnUnsupportedNetwork = "unsupported_network"

// Warning is a non-fatal diagnostic attached to a Link.
type Warning struct {
	Code    string
	Message string
}

func (w Warning) String() string {
	return w.Code + ": " + w.Message
}

// checkRequired fails when any of fields is falsy in r.
func checkRequired(kind Kind, r Record, fields ...string) error {
	var missing []string
	for _, f := range fields {
		if !r.Truthy(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Kind: kind, Fields: missing}
	}
	return nil
}
