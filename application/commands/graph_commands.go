// Package commands holds the write-side requests of the graph API.
package commands

import (
	"versegraph/domain/core/entities"
	"versegraph/domain/core/validators"
	pkgerrors "versegraph/pkg/errors"
	"versegraph/pkg/utils"
)

func validate(cmd interface{}) error {
	if err := utils.ValidateStruct(cmd); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// GenerateNoteGraphCommand derives graph nodes and edges from one note
type GenerateNoteGraphCommand struct {
	UserID string `json:"user_id" validate:"required"`
	NoteID string `json:"note_id" validate:"required,max=128"`
}

// Validate validates the command
func (c GenerateNoteGraphCommand) Validate() error {
	return validate(c)
}

// UpdateGraphNodeCommand is the explicit edit flow for a node. Nil fields
// are left untouched; a nil metadata value removes the key.
type UpdateGraphNodeCommand struct {
	UserID      string            `json:"user_id" validate:"required"`
	NodeID      string            `json:"node_id" validate:"required,uuid"`
	Label       *string           `json:"label,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string           `json:"description,omitempty" validate:"omitempty,max=2000"`
	Metadata    entities.Metadata `json:"metadata,omitempty"`
}

// Validate validates the command
func (c UpdateGraphNodeCommand) Validate() error {
	if err := validate(c); err != nil {
		return err
	}
	if c.Label == nil && c.Description == nil && len(c.Metadata) == 0 {
		return pkgerrors.NewValidationError("nothing to update")
	}
	return validators.ValidateMetadataEdit(c.Metadata)
}

// DeleteGraphNodeCommand removes a node and every edge touching it
type DeleteGraphNodeCommand struct {
	UserID string `json:"user_id" validate:"required"`
	NodeID string `json:"node_id" validate:"required,uuid"`
}

// Validate validates the command
func (c DeleteGraphNodeCommand) Validate() error {
	return validate(c)
}
