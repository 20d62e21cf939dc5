// Package repositories holds the data access that more than one service
// needs, built on the injected datastore.
package repositories

import (
	"context"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
)

// MembershipRepository reads and writes store_users rows.
type MembershipRepository struct {
	store datastore.Store
}

func NewMembershipRepository(store datastore.Store) *MembershipRepository {
	return &MembershipRepository{store: store}
}

// Source exposes the store for list queries built by Query.
func (r *MembershipRepository) Source() listing.Source { return r.store }

// Query selects memberships, optionally of one role.
func (r *MembershipRepository) Query(role string) listing.Query {
	q := listing.From("store_users", "id", "user_id", "store_id", "role", "created_at")
	if role != "" {
		q = q.Eq("role", role)
	}
	return q
}

// FindByUser returns datastore.ErrNotFound when the identity has no
// membership.
func (r *MembershipRepository) FindByUser(ctx context.Context, userID string) (*models.StoreMembership, error) {
	var m models.StoreMembership
	if err := r.store.FindBy(ctx, &m, "user_id", userID); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) Create(ctx context.Context, m *models.StoreMembership) error {
	return r.store.Create(ctx, m)
}

// Update changes role and/or store of the membership with primary key id.
func (r *MembershipRepository) Update(ctx context.Context, id int64, fields map[string]any) (*models.StoreMembership, error) {
	var m models.StoreMembership
	if err := r.store.Update(ctx, &m, id, fields); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteByUser removes the identity's membership. A missing membership is
// not an error.
func (r *MembershipRepository) DeleteByUser(ctx context.Context, userID string) error {
	m, err := r.FindByUser(ctx, userID)
	if datastore.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	err = r.store.Delete(ctx, &models.StoreMembership{}, m.ID)
	if datastore.IsNotFound(err) {
		return nil
	}
	return err
}

// UserIDs lists the identity id of every membership.
func (r *MembershipRepository) UserIDs(ctx context.Context) ([]string, error) {
	var rows []models.StoreMembership
	if err := r.store.All(ctx, &rows, "id", "user_id"); err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, m := range rows {
		ids[i] = m.UserID
	}
	return ids, nil
}
