package handlers

import (
	"net/http"

	"versegraph/domain/gazetteer"
	"versegraph/domain/scripture"
	pkgerrors "versegraph/pkg/errors"
	"versegraph/pkg/utils"
)

// ScriptureHandler exposes the reference parser and entity detector
type ScriptureHandler struct {
	errors *pkgerrors.ErrorHandler
}

// NewScriptureHandler creates a new scripture handler
func NewScriptureHandler(errorHandler *pkgerrors.ErrorHandler) *ScriptureHandler {
	return &ScriptureHandler{errors: errorHandler}
}

// ParsedReference is the response of GET /scripture/parse
type ParsedReference struct {
	scripture.Reference
	Formatted string `json:"formatted"`
}

// ParseReference handles GET /scripture/parse?ref=
func (h *ScriptureHandler) ParseReference(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ref")
	if raw == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("ref is required"))
		return
	}

	ref, ok := scripture.Parse(raw)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewUnprocessableError("not a recognizable Bible reference: "+raw).
			WithCode(pkgerrors.CodeReferenceUnparseable))
		return
	}

	respondJSON(w, http.StatusOK, ParsedReference{Reference: ref, Formatted: scripture.Format(ref)})
}

// DetectEntitiesRequest is the body of POST /scripture/entities
type DetectEntitiesRequest struct {
	Text string `json:"text" validate:"required,max=100000"`
}

// DetectedEntities lists the people and places found in a text
type DetectedEntities struct {
	People []gazetteer.Person `json:"people"`
	Places []gazetteer.Place  `json:"places"`
}

// DetectEntities handles POST /scripture/entities
func (h *ScriptureHandler) DetectEntities(w http.ResponseWriter, r *http.Request) {
	var req DetectEntitiesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	out := DetectedEntities{
		People: gazetteer.FindPeopleInText(req.Text),
		Places: gazetteer.FindPlacesInText(req.Text),
	}
	if out.People == nil {
		out.People = []gazetteer.Person{}
	}
	if out.Places == nil {
		out.Places = []gazetteer.Place{}
	}
	respondJSON(w, http.StatusOK, out)
}
