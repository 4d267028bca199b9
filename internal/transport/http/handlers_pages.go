package httptransport

import (
	"errors"
	"net/http"

	"vitrin/internal/profile"
	"vitrin/internal/shell"
	"vitrin/pkg/httperr"
	"vitrin/pkg/platform/sentinel"
)

// pageResponse is the minimal page descriptor the shell renders. Visual
// layout belongs to the client; the server decides only which variant is
// current.
type pageResponse struct {
	Page    shell.Page       `json:"page"`
	State   shell.State      `json:"state"`
	Profile *profile.Profile `json:"profile,omitempty"`
}

// handlePage evaluates the route guard for any GET path. Until the first
// authentication check completes nothing is rendered, which is what prevents
// a flash of the wrong page variant.
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	snap := h.machine.Snapshot()
	if !snap.Ready {
		writeError(w, httperr.New(httperr.CodeUnavailable, "authentication check in progress"))
		return
	}

	decision := shell.Evaluate(snap.State, r.URL.Path)
	if decision.Redirect != "" {
		if h.metrics != nil {
			h.metrics.GuardRedirects.WithLabelValues(decision.Redirect).Inc()
		}
		http.Redirect(w, r, decision.Redirect, http.StatusFound)
		return
	}

	resp := pageResponse{Page: decision.Page, State: snap.State}

	// The profile page displays the persisted record.
	if decision.Page == shell.PageMyProfile && snap.Identity != nil {
		p, err := h.profiles.Get(r.Context(), snap.Identity.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			writeError(w, httperr.New(httperr.CodeUnavailable, "profile temporarily unavailable"))
			return
		}
		resp.Profile = p
	}

	status := http.StatusOK
	if decision.Page == shell.PageNotFound {
		status = http.StatusNotFound
	}
	writeJSON(w, status, resp)
}
