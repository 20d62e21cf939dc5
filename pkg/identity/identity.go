// Package identity abstracts the authentication service that owns user
// identities (credentials and profile). Store membership lives elsewhere;
// the user service joins the two.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("identity: not found")
	ErrEmailTaken         = errors.New("identity: email already registered")
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
)

// Identity is an authentication-service user with its profile metadata.
type Identity struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NewIdentity is the input to Create. Emails are confirmed on creation.
type NewIdentity struct {
	Email     string
	Password  string
	Phone     string
	FirstName string
	LastName  string
	// Role is recorded in the profile metadata for reference only; the
	// membership row is authoritative.
	Role string
}

// Changes is a partial profile update. Nil fields are left alone.
type Changes struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Password  *string
}

// Empty reports whether c changes nothing.
func (c Changes) Empty() bool {
	return c.FirstName == nil && c.LastName == nil && c.Phone == nil && c.Password == nil
}

// Provider is an authentication service.
type Provider interface {
	// Name identifies the provider in metrics and logs.
	Name() string
	Create(ctx context.Context, in NewIdentity) (Identity, error)
	Get(ctx context.Context, id string) (Identity, error)
	// Lookup resolves ids in one call. Unknown ids are absent from the map.
	Lookup(ctx context.Context, ids []string) (map[string]Identity, error)
	// List returns every identity.
	List(ctx context.Context) ([]Identity, error)
	Update(ctx context.Context, id string, c Changes) (Identity, error)
	Delete(ctx context.Context, id string) error
	// Authenticate checks a password and returns the identity it belongs to.
	Authenticate(ctx context.Context, email, password string) (Identity, error)
}
