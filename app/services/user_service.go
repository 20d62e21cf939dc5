package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/app/repositories"
	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/auth"
	"github.com/sincro/backoffice/pkg/collection"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/identity"
	"github.com/sincro/backoffice/pkg/listing"
	"github.com/sincro/backoffice/pkg/logger"
	"github.com/sincro/backoffice/pkg/metrics"
	"github.com/sincro/backoffice/pkg/tracing"
	"github.com/sincro/backoffice/pkg/validate"
	"github.com/sincro/backoffice/pkg/workerpool"
)

// reconcileWorkers bounds concurrent identity deletes during Reconcile.
const reconcileWorkers = 4

type UserInput struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=120"`
	LastName  string `json:"last_name"  validate:"required,min=2,max=120"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=6,max=72"`
	Phone     string `json:"phone"      validate:"required,min=10,max=20"`
	Role      string `json:"role"       validate:"required,in=owner|manager|staff"`
	StoreID   *int64 `json:"store_id"   validate:"nullable,gt=0"`
}

type UserPatch struct {
	FirstName *string `json:"first_name" validate:"min=2,max=120"`
	LastName  *string `json:"last_name"  validate:"min=2,max=120"`
	Password  *string `json:"password"   validate:"min=6,max=72"`
	Phone     *string `json:"phone"      validate:"min=10,max=20"`
	Role      *string `json:"role"       validate:"in=owner|manager|staff"`
	StoreID   *int64  `json:"store_id"   validate:"gt=0"`
}

func (p UserPatch) changes() identity.Changes {
	return identity.Changes{FirstName: p.FirstName, LastName: p.LastName, Phone: p.Phone, Password: p.Password}
}

func (p UserPatch) fields() map[string]any {
	return columns{}.set("role", p.Role).set("store_id", p.StoreID)
}

// UserFilter selects users for List.
type UserFilter struct {
	listing.Params
	Role string `json:"role" validate:"nullable,in=owner|manager|staff"`
}

// Token is a successful login.
type Token struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        *models.User `json:"user"`
}

// UserService joins identities held by the identity provider with their
// store_users membership rows. The two live in different systems, so
// Create undoes the identity when the membership insert fails.
type UserService struct {
	identities identity.Provider
	members    *repositories.MembershipRepository
	issuer     *auth.Issuer
}

func NewUserService(identities identity.Provider, store datastore.Store, issuer *auth.Issuer) *UserService {
	return &UserService{
		identities: identities,
		members:    repositories.NewMembershipRepository(store),
		issuer:     issuer,
	}
}

// Create registers the identity, then its membership. If the membership
// cannot be written the identity is deleted again.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	ctx, span := tracing.Start(ctx, "users.create", attribute.String("user.role", in.Role))
	defer span.End()

	ident, err := s.identities.Create(ctx, identity.NewIdentity{
		Email:     in.Email,
		Password:  in.Password,
		Phone:     in.Phone,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
	})
	if err != nil {
		return nil, s.identityFail(ctx, err, "create")
	}

	span.SetAttributes(attribute.String("user.id", ident.ID))

	m := &models.StoreMembership{UserID: ident.ID, StoreID: in.StoreID, Role: in.Role}
	if err := s.members.Create(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "membership insert")
		return nil, s.compensate(ctx, ident.ID, err)
	}
	return merge(ident, m), nil
}

// compensate deletes an identity whose membership insert failed. It runs
// even when the request context is already cancelled.
func (s *UserService) compensate(ctx context.Context, id string, cause error) error {
	log := logger.WithCtx(ctx)
	delErr := s.identities.Delete(context.WithoutCancel(ctx), id)
	if delErr != nil && !errors.Is(delErr, identity.ErrNotFound) {
		metrics.CompensationsTotal.WithLabelValues("failed").Inc()
		log.Error("orphaned identity: membership insert and compensating delete both failed",
			"identity_id", id, "membership_error", cause.Error(), "delete_error", delErr.Error())
		return apperr.Wrap(
			errors.Join(cause, fmt.Errorf("delete identity %s: %w", id, delErr)),
			apperr.Internal,
			"Failed to create user: membership insert failed and the identity could not be removed",
		)
	}
	metrics.CompensationsTotal.WithLabelValues("ok").Inc()
	log.Warn("identity removed after failed membership insert", "identity_id", id, "error", cause.Error())
	return fail(ctx, cause, "create", "user")
}

// Get returns the identity with its membership. An identity without a
// membership reads as staff with no store.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if err := requireUserID(id); err != nil {
		return nil, err
	}
	ident, err := s.identities.Get(ctx, id)
	if err != nil {
		return nil, s.identityFail(ctx, err, "fetch")
	}
	m, err := s.membership(ctx, id)
	if err != nil {
		return nil, err
	}
	return merge(ident, m), nil
}

// List pages store_users and resolves the page's identities in one
// Lookup. Memberships whose identity is gone are left out of the page.
func (s *UserService) List(ctx context.Context, f UserFilter) (listing.Result[models.User], error) {
	if err := validate.Check(f); err != nil {
		return listing.Result[models.User]{}, err
	}
	env := listing.Envelope{Entity: "users", Message: "Fetched users successfully"}
	page, err := listing.Run[models.StoreMembership](ctx, s.members.Source(), s.members.Query(f.Role), f.Params, env)
	if err != nil {
		return listing.Result[models.User]{}, fail(ctx, err, "fetch", "users")
	}

	ids := collection.Unique(collection.Map(page.Rows, func(m models.StoreMembership) string { return m.UserID }))
	found := map[string]identity.Identity{}
	if len(ids) > 0 {
		found, err = s.identities.Lookup(ctx, ids)
		if err != nil {
			return listing.Result[models.User]{}, s.identityFail(ctx, err, "fetch")
		}
	}
	users := collection.FilterMap(page.Rows, func(m models.StoreMembership) (models.User, bool) {
		ident, ok := found[m.UserID]
		if !ok {
			return models.User{}, false
		}
		return *merge(ident, &m), true
	})
	return listing.Remap(page, env, users), nil
}

// Update changes profile fields on the identity and role or store on the
// membership, creating the membership if the identity had none.
func (s *UserService) Update(ctx context.Context, id string, p UserPatch) (*models.User, error) {
	if err := requireUserID(id); err != nil {
		return nil, err
	}
	if err := validate.Check(p); err != nil {
		return nil, err
	}

	var (
		ident identity.Identity
		err   error
	)
	if ch := p.changes(); ch.Empty() {
		ident, err = s.identities.Get(ctx, id)
	} else {
		ident, err = s.identities.Update(ctx, id, ch)
	}
	if err != nil {
		return nil, s.identityFail(ctx, err, "update")
	}

	m, err := s.members.FindByUser(ctx, id)
	switch {
	case datastore.IsNotFound(err):
		role := models.RoleStaff
		if p.Role != nil {
			role = *p.Role
		}
		m = &models.StoreMembership{UserID: id, Role: role, StoreID: p.StoreID}
		if fields := p.fields(); len(fields) > 0 {
			if err := s.members.Create(ctx, m); err != nil {
				return nil, fail(ctx, err, "update", "user")
			}
		}
	case err != nil:
		return nil, fail(ctx, err, "update", "user")
	default:
		if fields := p.fields(); len(fields) > 0 {
			if m, err = s.members.Update(ctx, m.ID, fields); err != nil {
				return nil, fail(ctx, err, "update", "user")
			}
		}
	}
	return merge(ident, m), nil
}

// Delete removes the membership, then the identity. An identity left
// behind by a failed second step is picked up by Reconcile.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := requireUserID(id); err != nil {
		return err
	}
	if _, err := s.identities.Get(ctx, id); err != nil {
		return s.identityFail(ctx, err, "delete")
	}
	if err := s.members.DeleteByUser(ctx, id); err != nil {
		return fail(ctx, err, "delete", "user")
	}
	if err := s.identities.Delete(ctx, id); err != nil {
		return s.identityFail(ctx, err, "delete")
	}
	return nil
}

// Login checks credentials and issues an access token carrying the
// membership role and store.
func (s *UserService) Login(ctx context.Context, email, password string) (*Token, error) {
	if err := validate.Check(struct {
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}{email, password}); err != nil {
		return nil, err
	}
	ident, err := s.identities.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) || errors.Is(err, identity.ErrNotFound) {
			return nil, apperr.New(apperr.Unauthorized, "Invalid email or password")
		}
		return nil, s.identityFail(ctx, err, "authenticate")
	}
	m, err := s.membership(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.issuer.Issue(ident.ID, ident.Email, m.Role, m.StoreID)
	if err != nil {
		return nil, fail(ctx, err, "issue", "token")
	}
	return &Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.issuer.TTL().Seconds()),
		User:        merge(ident, m),
	}, nil
}

// ReconcileOptions controls a Reconcile run.
type ReconcileOptions struct {
	// DryRun reports orphans without deleting them.
	DryRun bool
	// MinAge skips identities created less than MinAge ago. A Create still
	// between its identity and membership writes looks orphaned until then.
	MinAge time.Duration
}

// Reconcile finds identities without a membership, the leftovers of failed
// compensations and interrupted deletes, and deletes them unless
// opts.DryRun. It returns the orphaned ids.
func (s *UserService) Reconcile(ctx context.Context, opts ReconcileOptions) ([]string, error) {
	all, err := s.identities.List(ctx)
	if err != nil {
		return nil, s.identityFail(ctx, err, "list")
	}
	userIDs, err := s.members.UserIDs(ctx)
	if err != nil {
		return nil, fail(ctx, err, "fetch", "memberships")
	}
	linked := collection.KeyBy(userIDs, func(id string) string { return id })
	cutoff := time.Now().Add(-opts.MinAge)
	orphans := collection.FilterMap(all, func(i identity.Identity) (string, bool) {
		_, ok := linked[i.ID]
		return i.ID, !ok && !i.CreatedAt.After(cutoff)
	})

	log := logger.WithCtx(ctx)
	if opts.DryRun {
		log.Info("reconcile dry run", "orphans", len(orphans))
		return orphans, nil
	}
	pool := workerpool.New(ctx, reconcileWorkers)
	for _, id := range orphans {
		err := pool.Submit(func(ctx context.Context) error {
			if err := s.identities.Delete(ctx, id); err != nil && !errors.Is(err, identity.ErrNotFound) {
				return fmt.Errorf("delete identity %s: %w", id, err)
			}
			log.Info("orphaned identity deleted", "identity_id", id)
			return nil
		})
		if err != nil {
			break
		}
	}
	if err := errors.Join(pool.Wait(), ctx.Err()); err != nil {
		return orphans, fail(ctx, err, "reconcile", "users")
	}
	return orphans, nil
}

// membership returns the user's membership, or the staff default when
// there is none.
func (s *UserService) membership(ctx context.Context, userID string) (*models.StoreMembership, error) {
	m, err := s.members.FindByUser(ctx, userID)
	if datastore.IsNotFound(err) {
		return &models.StoreMembership{UserID: userID, Role: models.RoleStaff}, nil
	}
	if err != nil {
		return nil, fail(ctx, err, "fetch", "user")
	}
	return m, nil
}

func (s *UserService) identityFail(ctx context.Context, err error, verb string) error {
	switch {
	case errors.Is(err, identity.ErrNotFound):
		return apperr.Wrap(err, apperr.NotFound, "User not found")
	case errors.Is(err, identity.ErrEmailTaken):
		return apperr.Wrap(err, apperr.Conflict, "A user with this email already exists")
	}
	return fail(ctx, err, verb, "user")
}

func merge(i identity.Identity, m *models.StoreMembership) *models.User {
	return &models.User{
		ID:        i.ID,
		FirstName: i.FirstName,
		LastName:  i.LastName,
		Email:     i.Email,
		Phone:     i.Phone,
		Role:      m.Role,
		StoreID:   m.StoreID,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func requireUserID(id string) error {
	if id == "" || len(id) > 64 {
		return apperr.Field("id", "The id must be a user identifier.")
	}
	return nil
}
