package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"

	"vitrin/internal/audit"
	"vitrin/internal/identity"
	"vitrin/internal/platform/middleware"
	"vitrin/pkg/httperr"
)

const sessionCookie = "vitrin_session"

// requireSession asserts that a request mutating an authenticated session
// actually belongs to it: the restored cookie UID must match the machine's
// current identity. Anonymous states carry no session, so there is nothing
// to assert.
func requireSession(r *http.Request, ident *identity.Identity) error {
	if ident == nil {
		return nil
	}
	if middleware.GetSessionUID(r.Context()) != ident.ID {
		return httperr.New(httperr.CodeUnauthorized, "missing or mismatched session cookie")
	}
	return nil
}

type signInRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	IDToken  string `json:"idToken,omitempty"`
}

type identityResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httperr.New(httperr.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Email != "" && !govalidator.IsEmail(req.Email) {
		writeError(w, httperr.New(httperr.CodeBadRequest, "invalid email"))
		return
	}

	ident, err := h.provider.SignIn(r.Context(), identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
		IDToken:  req.IDToken,
	})
	if err != nil {
		// The user backed out of the provider's flow: silent no-op.
		if errors.Is(err, identity.ErrCancelled) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.logger.WarnContext(r.Context(), "sign-in rejected", "error", err.Error())
		writeError(w, err)
		return
	}

	token, err := h.sessions.Issue(ident.ID)
	if err != nil {
		writeError(w, httperr.New(httperr.CodeInternal, "failed to issue session"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if h.metrics != nil {
		h.metrics.SignIns.Inc()
	}
	h.audit.Emit(r.Context(), audit.Event{UserID: ident.ID, Action: audit.ActionSignIn})

	writeJSON(w, http.StatusOK, identityResponse{
		ID:          ident.ID,
		DisplayName: ident.DisplayName,
		Email:       ident.Email,
		PhotoURL:    ident.PhotoURL,
	})
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	snap := h.machine.Snapshot()
	if err := requireSession(r, snap.Identity); err != nil {
		writeError(w, err)
		return
	}

	if err := h.provider.SignOut(r.Context()); err != nil {
		writeError(w, httperr.New(httperr.CodeInternal, "sign-out failed"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})

	if h.metrics != nil {
		h.metrics.SignOuts.Inc()
	}
	if snap.Identity != nil {
		h.audit.Emit(r.Context(), audit.Event{UserID: snap.Identity.ID, Action: audit.ActionSignOut})
	}
	w.WriteHeader(http.StatusNoContent)
}
