package queries

import (
	"versegraph/application/services"
	pkgerrors "versegraph/pkg/errors"
	"versegraph/pkg/utils"
)

func validate(q interface{}) error {
	if err := utils.ValidateStruct(q); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// GetGraphViewQuery asks for the stored graph of a user, laid out
type GetGraphViewQuery struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the query
func (q GetGraphViewQuery) Validate() error {
	return validate(q)
}

// GenerateGraphQuery runs generation over every active note of the user and
// returns what it touched. Unlike the other queries it writes to storage.
type GenerateGraphQuery struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the query
func (q GenerateGraphQuery) Validate() error {
	return validate(q)
}

// GeneratedGraphView is the result of GenerateGraphQuery
type GeneratedGraphView struct {
	GraphView
	Summary  services.Summary `json:"summary"`
	Failures int              `json:"failures"`
}

// HasNotesQuery asks whether the user has written any note
type HasNotesQuery struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the query
func (q HasNotesQuery) Validate() error {
	return validate(q)
}

// HasNotesResult is the result of HasNotesQuery
type HasNotesResult struct {
	HasNotes bool `json:"has_notes"`
}
