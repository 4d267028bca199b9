package profile

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"vitrin/pkg/platform/sentinel"
)

// usersCollection matches the document layout the storefront has always
// used: one flat document per user under users/{uid}.
const usersCollection = "users"

// Firestore persists profiles in the Firestore document store.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) doc(uid string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(uid)
}

func (s *Firestore) Get(ctx context.Context, uid string) (*Profile, error) {
	snap, err := s.doc(uid).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get profile: %w", err)
	}

	var p Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode profile document: %w", err)
	}
	return &p, nil
}

// Create writes the full document, overwriting any existing record, which is
// exactly the registration flow's create-or-overwrite contract.
func (s *Firestore) Create(ctx context.Context, p *Profile) error {
	if _, err := s.doc(p.UID).Set(ctx, p); err != nil {
		return fmt.Errorf("firestore set profile: %w", err)
	}
	return nil
}

func (s *Firestore) Update(ctx context.Context, uid string, u Update) (*Profile, error) {
	if _, err := s.Get(ctx, uid); err != nil {
		return nil, err
	}

	now := time.Now()
	_, err := s.doc(uid).Update(ctx, []firestore.Update{
		{Path: "firstName", Value: u.FirstName},
		{Path: "lastName", Value: u.LastName},
		{Path: "fullName", Value: DeriveFullName(u.FirstName, u.LastName)},
		{Path: "phone", Value: u.Phone},
		{Path: "address", Value: u.Address},
		{Path: "updatedAt", Value: now},
	})
	if err != nil {
		return nil, fmt.Errorf("firestore update profile: %w", err)
	}
	return s.Get(ctx, uid)
}
