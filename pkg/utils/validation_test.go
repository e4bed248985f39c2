package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nodeEdit struct {
	NodeID string  `json:"node_id" validate:"required,uuid"`
	Label  *string `json:"label,omitempty" validate:"omitempty,min=1,max=5"`
	Body   string  `validate:"omitempty,max=3"`
	Kind   string  `json:"kind" validate:"omitempty,oneof=note passage"`
}

func strPtr(s string) *string { return &s }

func TestValidateStruct(t *testing.T) {
	const validID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	tests := []struct {
		name    string
		input   nodeEdit
		wantErr string
	}{
		{
			name:  "valid",
			input: nodeEdit{NodeID: validID, Label: strPtr("Love")},
		},
		{
			name:    "missing id uses json name",
			input:   nodeEdit{},
			wantErr: "node_id is required",
		},
		{
			name:    "bad uuid",
			input:   nodeEdit{NodeID: "note-42"},
			wantErr: "node_id must be a UUID",
		},
		{
			name:    "empty label",
			input:   nodeEdit{NodeID: validID, Label: strPtr("")},
			wantErr: "label must be at least 1 characters",
		},
		{
			name:    "untagged field falls back to lower-case name",
			input:   nodeEdit{NodeID: validID, Body: "abcd"},
			wantErr: "body must be at most 3 characters",
		},
		{
			name:    "unmapped tag",
			input:   nodeEdit{NodeID: validID, Kind: "book"},
			wantErr: `kind failed the "oneof" check`,
		},
		{
			name:    "multiple failures are joined",
			input:   nodeEdit{NodeID: "x", Label: strPtr("too long")},
			wantErr: "node_id must be a UUID; label must be at most 5 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidateStruct_PercentInParamIsLiteral(t *testing.T) {
	type percentField struct {
		Ratio string `json:"ratio%d" validate:"required"`
	}

	err := ValidateStruct(percentField{})
	require.Error(t, err)
	assert.Equal(t, "ratio%d is required", err.Error())
}

func TestValidateStruct_NonStruct(t *testing.T) {
	assert.Error(t, ValidateStruct("John 3:16"))
}
