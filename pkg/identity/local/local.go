// Package local is an identity.Provider backed by a table in the service's
// own SQL database. It is used in development and when no hosted auth
// service is configured.
package local

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sincro/backoffice/pkg/auth"
	"github.com/sincro/backoffice/pkg/identity"
	"github.com/sincro/backoffice/pkg/metrics"
)

const providerName = "local"

// Record is the auth_identities row.
type Record struct {
	ID           string     `gorm:"primaryKey;size:36"`
	Email        string     `gorm:"size:255;not null;unique"`
	PasswordHash string     `gorm:"size:255;not null"`
	Phone        string     `gorm:"size:50"`
	FirstName    string     `gorm:"size:120"`
	LastName     string     `gorm:"size:120"`
	Role         string     `gorm:"size:20"`
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func (Record) TableName() string { return "auth_identities" }

func (r Record) identity() identity.Identity {
	return identity.Identity{
		ID:        r.ID,
		Email:     r.Email,
		Phone:     r.Phone,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Provider stores identities through gorm.
type Provider struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Provider {
	return &Provider{db: db}
}

func (p *Provider) Name() string { return providerName }

func (p *Provider) Create(ctx context.Context, in identity.NewIdentity) (_ identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "create", err) }()

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return identity.Identity{}, err
	}
	now := time.Now().UTC()
	rec := Record{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Phone:        in.Phone,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		ConfirmedAt:  &now,
	}
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return identity.Identity{}, identity.ErrEmailTaken
		}
		return identity.Identity{}, err
	}
	return rec.identity(), nil
}

func (p *Provider) Get(ctx context.Context, id string) (_ identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "get", err) }()

	var rec Record
	if err := p.db.WithContext(ctx).Take(&rec, clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Error; err != nil {
		return identity.Identity{}, translate(err)
	}
	return rec.identity(), nil
}

func (p *Provider) Lookup(ctx context.Context, ids []string) (_ map[string]identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "lookup", err) }()

	out := make(map[string]identity.Identity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	var recs []Record
	err = p.db.WithContext(ctx).
		Where(clause.IN{Column: clause.Column{Name: "id"}, Values: values}).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		out[r.ID] = r.identity()
	}
	return out, nil
}

func (p *Provider) List(ctx context.Context) (_ []identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "list", err) }()

	var recs []Record
	if err := p.db.WithContext(ctx).Order("created_at").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]identity.Identity, len(recs))
	for i, r := range recs {
		out[i] = r.identity()
	}
	return out, nil
}

func (p *Provider) Update(ctx context.Context, id string, c identity.Changes) (_ identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "update", err) }()

	fields := map[string]any{}
	if c.FirstName != nil {
		fields["first_name"] = *c.FirstName
	}
	if c.LastName != nil {
		fields["last_name"] = *c.LastName
	}
	if c.Phone != nil {
		fields["phone"] = *c.Phone
	}
	if c.Password != nil {
		hash, err := auth.HashPassword(*c.Password)
		if err != nil {
			return identity.Identity{}, err
		}
		fields["password_hash"] = hash
	}
	if len(fields) > 0 {
		res := p.db.WithContext(ctx).Model(&Record{}).
			Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
			Updates(fields)
		if res.Error != nil {
			return identity.Identity{}, res.Error
		}
		if res.RowsAffected == 0 {
			return identity.Identity{}, identity.ErrNotFound
		}
	}
	return p.Get(ctx, id)
}

func (p *Provider) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.IdentityCall(providerName, "delete", err) }()

	res := p.db.WithContext(ctx).Delete(&Record{}, clause.Eq{Column: clause.Column{Name: "id"}, Value: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return identity.ErrNotFound
	}
	return nil
}

func (p *Provider) Authenticate(ctx context.Context, email, password string) (_ identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "authenticate", err) }()

	var rec Record
	err = p.db.WithContext(ctx).
		Take(&rec, clause.Eq{Column: clause.Column{Name: "email"}, Value: normalizeEmail(email)}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return identity.Identity{}, identity.ErrInvalidCredentials
	}
	if err != nil {
		return identity.Identity{}, err
	}
	if !auth.CheckPassword(rec.PasswordHash, password) {
		return identity.Identity{}, identity.ErrInvalidCredentials
	}
	return rec.identity(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return identity.ErrNotFound
	}
	return err
}

var _ identity.Provider = (*Provider)(nil)
