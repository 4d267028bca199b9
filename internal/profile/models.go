package profile

import "time"

// Gender is constrained to the two values the registration form offers.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the enumerated values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// RoleCustomer is the fixed role for every profile created through the
// registration flow.
const RoleCustomer = "customer"

// Profile is the persisted onboarding record, keyed 1:1 by the identity ID.
// Its existence is the sole authorization signal for gated pages. FullName is
// always derived from the two name fields on write, never edited directly.
type Profile struct {
	UID         string    `json:"uid" firestore:"uid"`
	FirstName   string    `json:"firstName" firestore:"firstName"`
	LastName    string    `json:"lastName" firestore:"lastName"`
	FullName    string    `json:"fullName" firestore:"fullName"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	Email       string    `json:"email" firestore:"email"`
	PhotoURL    string    `json:"photoURL" firestore:"photoURL"`
	Phone       string    `json:"phone" firestore:"phone"`
	Address     string    `json:"address" firestore:"address"`
	BirthDate   string    `json:"birthDate" firestore:"birthDate"`
	Gender      Gender    `json:"gender" firestore:"gender"`
	Role        string    `json:"role" firestore:"role"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// DeriveFullName recomputes the concatenation invariant.
func DeriveFullName(first, last string) string {
	return first + " " + last
}

// Update carries the fields the edit flow may change. Everything else on the
// record is untouched by a partial update.
type Update struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// Apply merges an update into the profile, recomputing the derived full name
// and the update timestamp. Shared by every store implementation so the
// invariant cannot drift between backends.
func (p *Profile) Apply(u Update, now time.Time) {
	p.FirstName = u.FirstName
	p.LastName = u.LastName
	p.Phone = u.Phone
	p.Address = u.Address
	p.FullName = DeriveFullName(u.FirstName, u.LastName)
	p.UpdatedAt = now
}
