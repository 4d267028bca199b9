package registration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vitrin/internal/identity"
	"vitrin/internal/profile"
	"vitrin/internal/profile/mocks"
	"vitrin/internal/shell"
	"vitrin/pkg/httperr"
	"vitrin/pkg/platform/sentinel"
)

type RegistrationSuite struct {
	suite.Suite
	ctx     context.Context
	store   *profile.InMemory
	machine *shell.Machine
	svc     *Service
	ident   *identity.Identity
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

func (s *RegistrationSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = profile.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.machine = shell.NewMachine(s.store, logger, nil, nil)
	s.svc = NewService(s.store, s.machine, logger, nil, nil)
	s.ident = &identity.Identity{
		ID:          "u1",
		DisplayName: "Aziz Karimov",
		Email:       "aziz@example.com",
		PhotoURL:    "https://example.com/a.png",
	}
}

func validForm() Form {
	return Form{
		FirstName: "Aziz",
		LastName:  "Karimov",
		Phone:     "901234567",
		Address:   "Tashkent, Chilonzor 5",
		BirthDate: "1995-04-12",
		Gender:    "male",
	}
}

func (s *RegistrationSuite) TestValidate() {
	s.Run("accepts a complete form", func() {
		s.Nil(Validate(validForm()))
	})

	s.Run("flags every blank required field", func() {
		errs := Validate(Form{})
		for _, field := range []string{"firstName", "lastName", "phone", "address", "birthDate", "gender"} {
			s.Contains(errs, field)
		}
	})

	s.Run("whitespace-only values do not pass", func() {
		form := validForm()
		form.Address = "   "
		errs := Validate(form)
		s.Contains(errs, "address")
	})

	s.Run("rejects unknown gender", func() {
		form := validForm()
		form.Gender = "other"
		s.Contains(Validate(form), "gender")
	})

	s.Run("rejects malformed birth date", func() {
		form := validForm()
		form.BirthDate = "12.04.1995"
		s.Contains(Validate(form), "birthDate")
	})
}

func (s *RegistrationSuite) TestSubmitCreatesProfile() {
	created, err := s.svc.Submit(s.ctx, s.ident, validForm())
	s.Require().NoError(err)

	s.Equal("u1", created.UID)
	s.Equal("Aziz Karimov", created.FullName)
	s.Equal("+998 90 123 45 67", created.Phone, "phone stored normalized")
	s.Equal(profile.RoleCustomer, created.Role)
	s.Equal("aziz@example.com", created.Email, "email copied from identity")
	s.Equal(created.CreatedAt, created.UpdatedAt)

	stored, err := s.store.Get(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(created.FullName, stored.FullName)
}

// An invalid form must abort before the store sees any call.
func (s *RegistrationSuite) TestInvalidFormMakesZeroWrites() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	// No EXPECT calls: any store interaction fails the test.

	svc := NewService(store, s.machine, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil)

	form := validForm()
	form.Phone = ""
	_, err := svc.Submit(s.ctx, s.ident, form)

	s.Require().Error(err)
	s.True(httperr.Is(err, httperr.CodeValidation))
	var herr *httperr.Error
	s.Require().ErrorAs(err, &herr)
	s.Contains(herr.Fields, "phone")
}

func (s *RegistrationSuite) TestSubmitWithoutIdentityPanics() {
	s.Panics(func() {
		_, _ = s.svc.Submit(s.ctx, nil, validForm())
	})
}

func (s *RegistrationSuite) TestWriteFailureLeavesNoPartialRecord() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("write failed"))

	svc := NewService(store, s.machine, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil)

	_, err := svc.Submit(s.ctx, s.ident, validForm())
	s.Require().Error(err)

	// Nothing landed in the real store either.
	_, err = s.store.Get(s.ctx, "u1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// The full gate scenario: signed in without a profile, the guard redirects
// home to registration; after a valid submit the machine re-derives and the
// registration page itself redirects away.
func (s *RegistrationSuite) TestSubmitFlipsNavigationState() {
	provider := identity.NewLocal()
	s.Require().NoError(provider.Register("aziz@example.com", "correct-horse", *s.ident))
	s.machine.Start(s.ctx, provider)

	_, err := provider.SignIn(s.ctx, identity.Credentials{Email: "aziz@example.com", Password: "correct-horse"})
	s.Require().NoError(err)

	s.Equal(shell.StateIncomplete, s.machine.Snapshot().State)
	s.Equal(shell.Decision{Redirect: shell.PathRegister}, shell.Evaluate(s.machine.Snapshot().State, shell.PathHome))

	_, err = s.svc.Submit(s.ctx, s.ident, validForm())
	s.Require().NoError(err)

	snap := s.machine.Snapshot()
	s.Equal(shell.StateComplete, snap.State)
	s.Equal(shell.Decision{Redirect: shell.PathHome}, shell.Evaluate(snap.State, shell.PathRegister))
}
