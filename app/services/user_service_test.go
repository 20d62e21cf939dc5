package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/auth"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/identity"
	"github.com/sincro/backoffice/pkg/identity/local"
	"github.com/sincro/backoffice/pkg/listing"
	"github.com/sincro/backoffice/pkg/metrics"
)

// flakyProvider fails Delete on demand and records the ids it deleted.
type flakyProvider struct {
	identity.Provider
	deleteErr error

	mu      sync.Mutex
	deleted []string
}

func (p *flakyProvider) Delete(ctx context.Context, id string) error {
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.mu.Lock()
	p.deleted = append(p.deleted, id)
	p.mu.Unlock()
	return p.Provider.Delete(ctx, id)
}

// brokenMemberships fails every store_users insert.
type brokenMemberships struct {
	datastore.Store
}

func (s brokenMemberships) Create(ctx context.Context, row datastore.Tabler) error {
	if row.TableName() == "store_users" {
		return errors.New("connection reset by peer")
	}
	return s.Store.Create(ctx, row)
}

type userFixture struct {
	svc    *UserService
	ids    *flakyProvider
	store  datastore.Store
	issuer *auth.Issuer
}

func newUsers(t *testing.T) userFixture {
	t.Helper()
	store, db := newStore(t)
	ids := &flakyProvider{Provider: local.New(db)}
	issuer := auth.NewIssuer("test-secret", time.Hour)
	return userFixture{svc: NewUserService(ids, store, issuer), ids: ids, store: store, issuer: issuer}
}

func ana() UserInput {
	return UserInput{
		FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com", Password: "secret1",
		Phone: "081234567890", Role: models.RoleManager, StoreID: ptr[int64](3),
	}
}

func TestUserCreateGetAndLogin(t *testing.T) {
	f := newUsers(t)
	ctx := context.Background()

	u, err := f.svc.Create(ctx, ana())
	require.NoError(t, err)
	assert.Equal(t, "manager", u.Role)
	assert.EqualValues(t, 3, *u.StoreID)

	got, err := f.svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "manager", got.Role)

	_, err = f.svc.Create(ctx, ana())
	assert.Equal(t, apperr.Conflict, kindOf(t, err))

	tok, err := f.svc.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	claims, err := f.issuer.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID())
	assert.Equal(t, "manager", claims.Role)

	_, err = f.svc.Login(ctx, "ana@example.com", "wrong")
	assert.Equal(t, apperr.Unauthorized, kindOf(t, err))
}

func TestUserWithoutMembershipReadsAsStaff(t *testing.T) {
	f := newUsers(t)
	ctx := context.Background()

	ident, err := f.ids.Create(ctx, identity.NewIdentity{Email: "lone@example.com", Password: "secret1"})
	require.NoError(t, err)

	u, err := f.svc.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, u.Role)
	assert.Nil(t, u.StoreID)

	_, err = f.svc.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, apperr.NotFound, kindOf(t, err))
}

func TestUserCreateCompensatesFailedMembership(t *testing.T) {
	f := newUsers(t)
	svc := NewUserService(f.ids, brokenMemberships{f.store}, f.issuer)
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.CompensationsTotal.WithLabelValues("ok"))

	_, err := svc.Create(ctx, ana())
	assert.Equal(t, apperr.Internal, kindOf(t, err))
	require.Len(t, f.ids.deleted, 1)

	all, err := f.ids.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CompensationsTotal.WithLabelValues("ok")))
}

func TestUserCreateReportsOrphanWhenCompensationFails(t *testing.T) {
	f := newUsers(t)
	f.ids.deleteErr = errors.New("auth service unavailable")
	svc := NewUserService(f.ids, brokenMemberships{f.store}, f.issuer)
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.CompensationsTotal.WithLabelValues("failed"))

	_, err := svc.Create(ctx, ana())
	require.Equal(t, apperr.Internal, kindOf(t, err))
	assert.ErrorContains(t, err, "connection reset by peer")
	assert.ErrorContains(t, err, "auth service unavailable")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CompensationsTotal.WithLabelValues("failed")))

	// The orphan is found and removed by a later reconcile.
	f.ids.deleteErr = nil
	orphans, err := f.svc.Reconcile(ctx, ReconcileOptions{DryRun: true})
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Empty(t, f.ids.deleted)

	orphans, err = f.svc.Reconcile(ctx, ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, orphans, f.ids.deleted)
}

func TestReconcileSkipsRecentIdentities(t *testing.T) {
	f := newUsers(t)
	ctx := context.Background()

	// An identity whose membership write has not happened yet.
	ident, err := f.ids.Create(ctx, identity.NewIdentity{
		Email: "fresh@example.com", Password: "secret123", FirstName: "Ana", LastName: "Putri",
	})
	require.NoError(t, err)

	orphans, err := f.svc.Reconcile(ctx, ReconcileOptions{MinAge: time.Hour})
	require.NoError(t, err)
	assert.Empty(t, orphans)
	assert.Empty(t, f.ids.deleted)

	orphans, err = f.svc.Reconcile(ctx, ReconcileOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{ident.ID}, orphans)
}

func TestUserListJoinsOnePage(t *testing.T) {
	f := newUsers(t)
	ctx := context.Background()
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"} {
		in := ana()
		in.Email = email
		if i%2 == 1 {
			in.Role = models.RoleStaff
		}
		_, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
	}

	res, err := f.svc.List(ctx, UserFilter{Role: models.RoleManager})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "a@example.com", res.Rows[0].Email)
	assert.Equal(t, "users", res.Entity)

	page, err := f.svc.List(ctx, UserFilter{Params: listing.Params{Page: 2, Limit: 3}})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "d@example.com", page.Rows[0].Email)

	_, err = f.svc.List(ctx, UserFilter{Role: "admin"})
	assert.Equal(t, apperr.Invalid, kindOf(t, err))
}

func TestUserUpdateAndDelete(t *testing.T) {
	f := newUsers(t)
	ctx := context.Background()
	u, err := f.svc.Create(ctx, ana())
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, u.ID, UserPatch{FirstName: ptr("Anita"), Role: ptr(models.RoleOwner)})
	require.NoError(t, err)
	assert.Equal(t, "Anita", updated.FirstName)
	assert.Equal(t, models.RoleOwner, updated.Role)
	assert.EqualValues(t, 3, *updated.StoreID)

	_, err = f.svc.Update(ctx, u.ID, UserPatch{Role: ptr("admin")})
	assert.Equal(t, apperr.Invalid, kindOf(t, err))

	require.NoError(t, f.svc.Delete(ctx, u.ID))
	_, err = f.svc.Get(ctx, u.ID)
	assert.Equal(t, apperr.NotFound, kindOf(t, err))
	assert.Equal(t, apperr.NotFound, kindOf(t, f.svc.Delete(ctx, u.ID)))

	var m models.StoreMembership
	assert.True(t, datastore.IsNotFound(f.store.FindBy(ctx, &m, "user_id", u.ID)))
}
