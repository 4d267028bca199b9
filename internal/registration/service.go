// Package registration implements the one-shot profile registration flow
// that moves a signed-in user from the incomplete to the complete state.
package registration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"

	"vitrin/internal/audit"
	"vitrin/internal/identity"
	"vitrin/internal/platform/metrics"
	"vitrin/internal/profile"
	"vitrin/internal/shell"
	"vitrin/pkg/httperr"
	"vitrin/pkg/phone"
)

const birthDateLayout = "2006-01-02"

// Form carries the six user-entered fields. Email, photo, and display name
// are never taken from the form; they come from the identity.
type Form struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	BirthDate string `json:"birthDate"`
	Gender    string `json:"gender"`
}

// Service validates registration forms and performs the single
// create-or-overwrite profile write.
type Service struct {
	profiles profile.Store
	machine  *shell.Machine
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    audit.Publisher

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(profiles profile.Store, machine *shell.Machine, logger *slog.Logger, m *metrics.Metrics, auditor audit.Publisher) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		profiles: profiles,
		machine:  machine,
		logger:   logger,
		metrics:  m,
		audit:    auditor,
		inFlight: make(map[string]struct{}),
	}
}

// Validate checks the six required fields. It runs synchronously and returns
// per-field messages; any failure aborts the submit before a write happens.
func Validate(form Form) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(form.FirstName) == "" {
		errs["firstName"] = "first name is required"
	}
	if strings.TrimSpace(form.LastName) == "" {
		errs["lastName"] = "last name is required"
	}
	if strings.TrimSpace(form.Phone) == "" {
		errs["phone"] = "phone is required"
	}
	if strings.TrimSpace(form.Address) == "" {
		errs["address"] = "address is required"
	}
	switch {
	case strings.TrimSpace(form.BirthDate) == "":
		errs["birthDate"] = "birth date is required"
	case !govalidator.IsTime(form.BirthDate, birthDateLayout):
		errs["birthDate"] = "birth date must be YYYY-MM-DD"
	}
	if !profile.Gender(form.Gender).Valid() {
		errs["gender"] = "gender must be male or female"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit creates the profile record for the signed-in identity. The flow is
// only reachable from the incomplete state, so a nil identity is a contract
// violation, not a user error.
func (s *Service) Submit(ctx context.Context, ident *identity.Identity, form Form) (*profile.Profile, error) {
	if ident == nil {
		panic("registration: Submit called without an identity")
	}

	if errs := Validate(form); errs != nil {
		return nil, httperr.NewValidation(errs)
	}

	if !s.begin(ident.ID) {
		return nil, httperr.New(httperr.CodeBadRequest, "registration already in progress")
	}
	defer s.end(ident.ID)

	now := time.Now()
	first := strings.TrimSpace(form.FirstName)
	last := strings.TrimSpace(form.LastName)
	record := &profile.Profile{
		UID:         ident.ID,
		FirstName:   first,
		LastName:    last,
		FullName:    profile.DeriveFullName(first, last),
		DisplayName: displayName(ident, first, last),
		Email:       ident.Email,
		PhotoURL:    ident.PhotoURL,
		Phone:       phone.Format(form.Phone),
		Address:     strings.TrimSpace(form.Address),
		BirthDate:   strings.TrimSpace(form.BirthDate),
		Gender:      profile.Gender(form.Gender),
		Role:        profile.RoleCustomer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.profiles.Create(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "profile create failed",
			"uid", ident.ID,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("create profile: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ProfilesRegistered.Inc()
	}
	s.audit.Emit(ctx, audit.Event{UserID: ident.ID, Action: audit.ActionProfileRegistered})
	s.logger.InfoContext(ctx, "profile registered", "uid", ident.ID)

	// The guard must see the new record on the next navigation.
	s.machine.Recheck(ctx)
	return record, nil
}

func displayName(ident *identity.Identity, first, last string) string {
	if ident.DisplayName != "" {
		return ident.DisplayName
	}
	return profile.DeriveFullName(first, last)
}

func (s *Service) begin(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[uid]; busy {
		return false
	}
	s.inFlight[uid] = struct{}{}
	return true
}

func (s *Service) end(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, uid)
}
