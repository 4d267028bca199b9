// Package editor implements the display/edit mode toggle over an existing
// profile: a scratch buffer while editing, cancel without a write, save as a
// validated partial update.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vitrin/internal/audit"
	"vitrin/internal/platform/metrics"
	"vitrin/internal/profile"
	"vitrin/pkg/httperr"
	"vitrin/pkg/phone"
)

// Mode is the editor's current rendering mode.
type Mode string

const (
	ModeDisplay Mode = "display"
	ModeEdit    Mode = "edit"
)

// Editor owns one user's profile view. The persisted snapshot and the scratch
// buffer are replaced wholesale, never mutated mid-operation; save is
// single-flight per instance.
type Editor struct {
	store   profile.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   audit.Publisher

	mode    Mode
	current *profile.Profile
	scratch *profile.Profile
	saving  bool
}

func New(store profile.Store, logger *slog.Logger, m *metrics.Metrics, auditor audit.Publisher) *Editor {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Editor{
		store:   store,
		logger:  logger,
		metrics: m,
		audit:   auditor,
		mode:    ModeDisplay,
	}
}

// Load fetches the persisted profile for display.
func (e *Editor) Load(ctx context.Context, uid string) error {
	p, err := e.store.Get(ctx, uid)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	e.current = p
	e.scratch = nil
	e.mode = ModeDisplay
	return nil
}

func (e *Editor) Mode() Mode { return e.mode }

// Profile returns the displayed profile (the last persisted snapshot).
func (e *Editor) Profile() *profile.Profile { return e.current }

// Scratch returns the working copy; nil outside edit mode.
func (e *Editor) Scratch() *profile.Profile { return e.scratch }

// Edit snapshots the current profile into the scratch buffer.
func (e *Editor) Edit() {
	if e.current == nil {
		panic("editor: Edit before Load")
	}
	clone := *e.current
	e.scratch = &clone
	e.mode = ModeEdit
}

// Cancel discards the scratch buffer and reverts to the persisted profile.
// No write happens.
func (e *Editor) Cancel() {
	e.scratch = nil
	e.mode = ModeDisplay
}

// SetName, SetAddress, and SetPhone mutate the scratch buffer. SetPhone runs
// the raw input through the shared normalizer on every keystroke.
func (e *Editor) SetName(first, last string) {
	e.scratch.FirstName = first
	e.scratch.LastName = last
}

func (e *Editor) SetAddress(address string) {
	e.scratch.Address = address
}

func (e *Editor) SetPhone(raw string) {
	if strings.TrimSpace(raw) == "" {
		// An untouched input stays empty so required-field validation
		// can catch it; the normalizer would otherwise mint the bare
		// country prefix.
		e.scratch.Phone = ""
		return
	}
	e.scratch.Phone = phone.Format(raw)
}

// validate covers the four editable fields. Birth date and gender are not
// re-validated on edit; the registration flow already constrained them and
// the edit form does not expose them.
func validate(p *profile.Profile) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(p.FirstName) == "" {
		errs["firstName"] = "first name is required"
	}
	if strings.TrimSpace(p.LastName) == "" {
		errs["lastName"] = "last name is required"
	}
	if strings.TrimSpace(p.Phone) == "" {
		errs["phone"] = "phone is required"
	}
	if strings.TrimSpace(p.Address) == "" {
		errs["address"] = "address is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Save validates the scratch buffer and persists a partial update. On
// success the displayed profile becomes the saved record and the editor
// returns to display mode. On failure the scratch buffer is preserved so the
// user can retry without re-entering data.
func (e *Editor) Save(ctx context.Context) error {
	if e.mode != ModeEdit || e.scratch == nil {
		panic("editor: Save outside edit mode")
	}
	if e.saving {
		return httperr.New(httperr.CodeBadRequest, "save already in progress")
	}

	if errs := validate(e.scratch); errs != nil {
		return httperr.NewValidation(errs)
	}

	e.saving = true
	defer func() { e.saving = false }()

	updated, err := e.store.Update(ctx, e.current.UID, profile.Update{
		FirstName: strings.TrimSpace(e.scratch.FirstName),
		LastName:  strings.TrimSpace(e.scratch.LastName),
		Phone:     strings.TrimSpace(e.scratch.Phone),
		Address:   strings.TrimSpace(e.scratch.Address),
	})
	if err != nil {
		// Stay in edit mode with the buffer intact for a retry.
		e.logger.ErrorContext(ctx, "profile update failed",
			"uid", e.current.UID,
			"error", err.Error(),
		)
		return fmt.Errorf("update profile: %w", err)
	}

	e.current = updated
	e.scratch = nil
	e.mode = ModeDisplay

	if e.metrics != nil {
		e.metrics.ProfilesUpdated.Inc()
	}
	e.audit.Emit(ctx, audit.Event{UserID: updated.UID, Action: audit.ActionProfileUpdated})
	return nil
}
