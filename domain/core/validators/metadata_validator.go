// Package validators holds the domain rules for user edits of graph nodes.
package validators

import (
	"fmt"
	"strings"

	"versegraph/pkg/errors"
)

// Metadata edit limits
const (
	MaxMetadataKeys   = 50
	MaxKeyLength      = 100
	MaxValueLength    = 1000
	MaxArrayLength    = 100
	MaxObjectProperty = 50
)

// Codes of rejected metadata edits
const (
	CodeTooManyMetadataKeys  = "TOO_MANY_METADATA_KEYS"
	CodeMetadataKeyInvalid   = "METADATA_KEY_INVALID"
	CodeMetadataKeyReserved  = "METADATA_KEY_RESERVED"
	CodeMetadataValueTooLong = "METADATA_VALUE_TOO_LONG"
)

// keys the graph view writes over the metadata bag
var reservedKeys = map[string]struct{}{
	"label":        {},
	"description":  {},
	"reference_id": {},
}

// ValidateMetadataEdit checks a metadata merge before it reaches a node. A
// nil value is a key deletion and is always allowed.
func ValidateMetadataEdit(metadata map[string]interface{}) error {
	if len(metadata) > MaxMetadataKeys {
		return errors.NewValidationError(
			fmt.Sprintf("Cannot have more than %d metadata keys", MaxMetadataKeys),
		).WithCode(CodeTooManyMetadataKeys).WithDetails(map[string]interface{}{"count": len(metadata)})
	}

	for key, value := range metadata {
		if strings.TrimSpace(key) == "" || len(key) > MaxKeyLength {
			return errors.NewValidationError(
				fmt.Sprintf("Metadata keys must be 1-%d characters", MaxKeyLength),
			).WithCode(CodeMetadataKeyInvalid).WithDetails(map[string]interface{}{"key": key})
		}
		if _, reserved := reservedKeys[key]; reserved {
			return errors.NewValidationError(
				fmt.Sprintf("Metadata key '%s' is reserved", key),
			).WithCode(CodeMetadataKeyReserved).WithDetails(map[string]interface{}{"key": key})
		}

		var tooLong bool
		switch v := value.(type) {
		case string:
			tooLong = len(v) > MaxValueLength
		case []interface{}:
			tooLong = len(v) > MaxArrayLength
		case map[string]interface{}:
			tooLong = len(v) > MaxObjectProperty
		}
		if tooLong {
			return errors.NewValidationError(
				fmt.Sprintf("Metadata value for '%s' is too large", key),
			).WithCode(CodeMetadataValueTooLong).WithDetails(map[string]interface{}{"key": key})
		}
	}

	return nil
}
