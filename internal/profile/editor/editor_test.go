package editor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vitrin/internal/profile"
	"vitrin/internal/profile/mocks"
	"vitrin/pkg/httperr"
)

type EditorSuite struct {
	suite.Suite
	ctx    context.Context
	store  *profile.InMemory
	editor *Editor
}

func TestEditorSuite(t *testing.T) {
	suite.Run(t, new(EditorSuite))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *EditorSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = profile.NewInMemory()
	s.editor = New(s.store, discardLogger(), nil, nil)

	now := time.Now()
	s.Require().NoError(s.store.Create(s.ctx, &profile.Profile{
		UID:       "u1",
		FirstName: "Aziz",
		LastName:  "Karimov",
		FullName:  "Aziz Karimov",
		Email:     "aziz@example.com",
		Phone:     "+998 90 123 45 67",
		Address:   "Tashkent",
		BirthDate: "1995-04-12",
		Gender:    profile.GenderMale,
		Role:      profile.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	s.Require().NoError(s.editor.Load(s.ctx, "u1"))
}

func (s *EditorSuite) TestStartsInDisplayMode() {
	s.Equal(ModeDisplay, s.editor.Mode())
	s.Nil(s.editor.Scratch())
	s.Equal("Aziz Karimov", s.editor.Profile().FullName)
}

func (s *EditorSuite) TestEditSnapshotsIntoScratch() {
	s.editor.Edit()

	s.Equal(ModeEdit, s.editor.Mode())
	s.Require().NotNil(s.editor.Scratch())

	// Mutating the scratch buffer leaves the displayed profile alone.
	s.editor.SetName("Akmal", "Karimov")
	s.Equal("Aziz", s.editor.Profile().FirstName)
}

// Cancel discards the buffer: the persisted profile is unchanged and the
// store receives zero write calls.
func (s *EditorSuite) TestCancelMakesZeroWrites() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "u1").Return(s.editor.Profile(), nil)

	ed := New(store, discardLogger(), nil, nil)
	s.Require().NoError(ed.Load(s.ctx, "u1"))

	ed.Edit()
	ed.SetName("Changed", "Entirely")
	ed.SetPhone("911111111")
	ed.Cancel()

	s.Equal(ModeDisplay, ed.Mode())
	s.Nil(ed.Scratch())
	s.Equal("Aziz", ed.Profile().FirstName)
	// No Update/Create expectations were set; gomock fails the test on any.
}

func (s *EditorSuite) TestSavePersistsAndReturnsToDisplay() {
	s.editor.Edit()
	s.editor.SetName("Dilnoza", "Karimova")
	s.editor.SetPhone("917654321")
	s.editor.SetAddress("Samarkand")

	s.Require().NoError(s.editor.Save(s.ctx))

	s.Equal(ModeDisplay, s.editor.Mode())
	s.Equal("Dilnoza Karimova", s.editor.Profile().FullName)
	s.Equal("+998 91 765 43 21", s.editor.Profile().Phone)

	stored, err := s.store.Get(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("Samarkand", stored.Address)
	// Fields outside the edit form survive.
	s.Equal("1995-04-12", stored.BirthDate)
	s.Equal(profile.GenderMale, stored.Gender)
}

func (s *EditorSuite) TestSaveValidationKeepsBuffer() {
	s.editor.Edit()
	s.editor.SetName("", "Karimov")

	err := s.editor.Save(s.ctx)
	s.Require().Error(err)
	s.True(httperr.Is(err, httperr.CodeValidation))

	s.Equal(ModeEdit, s.editor.Mode())
	s.Require().NotNil(s.editor.Scratch(), "scratch preserved for retry")
	s.Equal("Karimov", s.editor.Scratch().LastName)
}

func (s *EditorSuite) TestSaveFailureKeepsBufferAndMode() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "u1").Return(s.editor.Profile(), nil)
	store.EXPECT().Update(gomock.Any(), "u1", gomock.Any()).Return(nil, context.DeadlineExceeded)

	ed := New(store, discardLogger(), nil, nil)
	s.Require().NoError(ed.Load(s.ctx, "u1"))

	ed.Edit()
	ed.SetAddress("Bukhara")
	err := ed.Save(s.ctx)
	s.Require().Error(err)

	s.Equal(ModeEdit, ed.Mode())
	s.Require().NotNil(ed.Scratch())
	s.Equal("Bukhara", ed.Scratch().Address)
}

func (s *EditorSuite) TestSaveOutsideEditModePanics() {
	s.Panics(func() { _ = s.editor.Save(s.ctx) })
}
