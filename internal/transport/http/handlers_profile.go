package httptransport

import (
	"encoding/json"
	"net/http"

	"vitrin/internal/profile/editor"
	"vitrin/internal/registration"
	"vitrin/internal/shell"
	"vitrin/pkg/httperr"
)

// handleRegisterSubmit drives the one-shot registration flow. The guard
// precondition is enforced here: the flow is only reachable from the
// incomplete state, which also guarantees a non-nil identity for Submit.
func (h *Handler) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	snap := h.machine.Snapshot()
	if !snap.Ready {
		writeError(w, httperr.New(httperr.CodeUnavailable, "authentication check in progress"))
		return
	}
	if snap.State != shell.StateIncomplete {
		writeError(w, httperr.New(httperr.CodeForbidden, "registration is not available in this state"))
		return
	}
	if err := requireSession(r, snap.Identity); err != nil {
		writeError(w, err)
		return
	}

	var form registration.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, httperr.New(httperr.CodeBadRequest, "invalid request body"))
		return
	}
	if form.Gender == "" {
		// The form pre-selects this value; an absent field means the
		// client never rendered the selector.
		form.Gender = "male"
	}

	created, err := h.registration.Submit(r.Context(), snap.Identity, form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type profileUpdateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// handleProfileUpdate runs the edit flow end to end for one request:
// load, enter edit mode, apply the submitted fields, save.
func (h *Handler) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	snap := h.machine.Snapshot()
	if !snap.Ready {
		writeError(w, httperr.New(httperr.CodeUnavailable, "authentication check in progress"))
		return
	}
	if snap.State != shell.StateComplete || snap.Identity == nil {
		writeError(w, httperr.New(httperr.CodeForbidden, "profile editing requires a completed profile"))
		return
	}
	if err := requireSession(r, snap.Identity); err != nil {
		writeError(w, err)
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httperr.New(httperr.CodeBadRequest, "invalid request body"))
		return
	}

	ed := editor.New(h.profiles, h.logger, h.metrics, h.audit)
	if err := ed.Load(r.Context(), snap.Identity.ID); err != nil {
		writeError(w, httperr.New(httperr.CodeUnavailable, "profile temporarily unavailable"))
		return
	}

	ed.Edit()
	ed.SetName(req.FirstName, req.LastName)
	ed.SetPhone(req.Phone)
	ed.SetAddress(req.Address)

	if err := ed.Save(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ed.Profile())
}
