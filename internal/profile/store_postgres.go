package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Registers the postgres driver.
	_ "github.com/lib/pq"

	"vitrin/pkg/platform/sentinel"
)

// PostgresStore persists profiles as flat rows. Pure I/O; the full-name
// invariant is applied through Profile.Apply like every other backend.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is the table this store expects; applied by deploy tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
	uid          TEXT PRIMARY KEY,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	full_name    TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	photo_url    TEXT NOT NULL DEFAULT '',
	phone        TEXT NOT NULL,
	address      TEXT NOT NULL,
	birth_date   TEXT NOT NULL,
	gender       TEXT NOT NULL,
	role         TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`

const profileColumns = `uid, first_name, last_name, full_name, display_name, email, photo_url,
	phone, address, birth_date, gender, role, created_at, updated_at`

func (s *PostgresStore) Get(ctx context.Context, uid string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE uid = $1`
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (uid) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			full_name = EXCLUDED.full_name,
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			photo_url = EXCLUDED.photo_url,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			birth_date = EXCLUDED.birth_date,
			gender = EXCLUDED.gender,
			role = EXCLUDED.role,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		p.UID, p.FirstName, p.LastName, p.FullName, p.DisplayName, p.Email, p.PhotoURL,
		p.Phone, p.Address, p.BirthDate, string(p.Gender), p.Role, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, uid string, u Update) (*Profile, error) {
	now := time.Now()
	query := `
		UPDATE profiles SET
			first_name = $2,
			last_name = $3,
			full_name = $4,
			phone = $5,
			address = $6,
			updated_at = $7
		WHERE uid = $1
		RETURNING ` + profileColumns
	p, err := scanProfile(s.db.QueryRowContext(ctx, query,
		uid, u.FirstName, u.LastName, DeriveFullName(u.FirstName, u.LastName), u.Phone, u.Address, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

func scanProfile(row *sql.Row) (*Profile, error) {
	var p Profile
	var gender string
	err := row.Scan(&p.UID, &p.FirstName, &p.LastName, &p.FullName, &p.DisplayName, &p.Email,
		&p.PhotoURL, &p.Phone, &p.Address, &p.BirthDate, &gender, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Gender = Gender(gender)
	return &p, nil
}
