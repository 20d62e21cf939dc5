// Package gotrue is an identity.Provider for a GoTrue auth server (the
// Supabase auth API). User management goes through the admin endpoints with
// the service-role key; password checks use the public token endpoint.
package gotrue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sincro/backoffice/pkg/http"
	"github.com/sincro/backoffice/pkg/identity"
	"github.com/sincro/backoffice/pkg/metrics"
)

const (
	providerName = "supabase"
	adminUsers   = "/auth/v1/admin/users"
	tokenPath    = "/auth/v1/token"
	listPageSize = 1000
)

// Provider talks to GoTrue over HTTP.
type Provider struct {
	admin  *http.Client
	public *http.Client
}

// New builds a provider for the project at baseURL. serviceKey authorises
// admin calls; anonKey is sent with password logins.
func New(baseURL, serviceKey, anonKey string, opts ...http.Option) *Provider {
	admin := append([]http.Option{
		http.WithHeader("apikey", serviceKey),
		http.WithHeader("Authorization", "Bearer "+serviceKey),
	}, opts...)
	public := append([]http.Option{http.WithHeader("apikey", anonKey)}, opts...)
	return &Provider{
		admin:  http.NewClient(baseURL, admin...),
		public: http.NewClient(baseURL, public...),
	}
}

func (p *Provider) Name() string { return providerName }

// user is the GoTrue user object.
type user struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    *time.Time     `json:"updated_at"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u user) identity() identity.Identity {
	phone := meta(u.UserMetadata, "phone")
	if phone == "" {
		phone = u.Phone
	}
	return identity.Identity{
		ID:        u.ID,
		Email:     u.Email,
		Phone:     phone,
		FirstName: meta(u.UserMetadata, "first_name"),
		LastName:  meta(u.UserMetadata, "last_name"),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func meta(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// apiError covers the error shapes GoTrue has used across versions.
type apiError struct {
	ErrorCode string `json:"error_code"`
	Msg       string `json:"msg"`
	Message   string `json:"message"`
	Error     string `json:"error"`
	ErrorDesc string `json:"error_description"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDesc, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func check(resp *http.Response) error {
	if resp.OK() {
		return nil
	}
	var body apiError
	_ = json.Unmarshal(resp.Raw, &body)
	text := body.text()

	switch {
	case resp.StatusCode == 404 || body.ErrorCode == "user_not_found":
		return identity.ErrNotFound
	case body.ErrorCode == "email_exists" || strings.Contains(text, "already been registered"):
		return identity.ErrEmailTaken
	case resp.StatusCode == 400 && (body.ErrorCode == "invalid_credentials" || body.Error == "invalid_grant"):
		return identity.ErrInvalidCredentials
	}
	if text == "" {
		return resp.Throw()
	}
	return fmt.Errorf("gotrue: status %d: %s", resp.StatusCode, text)
}

func (p *Provider) Create(ctx context.Context, in identity.NewIdentity) (_ identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "create", err) }()

	body := map[string]any{
		"email":         in.Email,
		"password":      in.Password,
		"email_confirm": true,
		"user_metadata": map[string]any{
			"first_name": in.FirstName,
			"last_name":  in.LastName,
			"phone":      in.Phone,
			"role":       in.Role,
		},
	}
	resp, err := p.admin.Post(adminUsers).Body(body).Send(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	if err := check(resp); err != nil {
		return identity.Identity{}, err
	}
	var u user
	if err := resp.JSON(&u); err != nil {
		return identity.Identity{}, err
	}
	if u.ID == "" {
		return identity.Identity{}, fmt.Errorf("gotrue: create returned no user id")
	}
	return u.identity(), nil
}

func (p *Provider) Get(ctx context.Context, id string) (_ identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "get", err) }()
	return p.get(ctx, id)
}

func (p *Provider) get(ctx context.Context, id string) (identity.Identity, error) {
	resp, err := p.admin.Get(adminUsers+"/"+url.PathEscape(id)).Send(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	if err := check(resp); err != nil {
		return identity.Identity{}, err
	}
	var u user
	if err := resp.JSON(&u); err != nil {
		return identity.Identity{}, err
	}
	return u.identity(), nil
}

// Lookup fetches the ids one by one; the admin API has no batch read by
// id. Ids that no longer exist are left out of the result.
func (p *Provider) Lookup(ctx context.Context, ids []string) (_ map[string]identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "lookup", err) }()

	out := make(map[string]identity.Identity, len(ids))
	for _, id := range ids {
		ident, err := p.get(ctx, id)
		if errors.Is(err, identity.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = ident
	}
	return out, nil
}

func (p *Provider) List(ctx context.Context) (_ []identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "list", err) }()

	var out []identity.Identity
	for page := 1; ; page++ {
		resp, err := p.admin.Get(adminUsers).
			Query("page", strconv.Itoa(page)).
			Query("per_page", strconv.Itoa(listPageSize)).
			Send(ctx)
		if err != nil {
			return nil, err
		}
		if err := check(resp); err != nil {
			return nil, err
		}
		var body struct {
			Users []user `json:"users"`
		}
		if err := resp.JSON(&body); err != nil {
			return nil, err
		}
		for _, u := range body.Users {
			out = append(out, u.identity())
		}
		if len(body.Users) < listPageSize {
			return out, nil
		}
	}
}

func (p *Provider) Update(ctx context.Context, id string, c identity.Changes) (_ identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "update", err) }()

	if c.Empty() {
		return p.get(ctx, id)
	}
	body := map[string]any{}
	md := map[string]any{}
	if c.FirstName != nil {
		md["first_name"] = *c.FirstName
	}
	if c.LastName != nil {
		md["last_name"] = *c.LastName
	}
	if c.Phone != nil {
		md["phone"] = *c.Phone
	}
	if len(md) > 0 {
		body["user_metadata"] = md
	}
	if c.Password != nil {
		body["password"] = *c.Password
	}

	resp, err := p.admin.Put(adminUsers + "/" + url.PathEscape(id)).Body(body).Send(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	if err := check(resp); err != nil {
		return identity.Identity{}, err
	}
	var u user
	if err := resp.JSON(&u); err != nil {
		return identity.Identity{}, err
	}
	return u.identity(), nil
}

func (p *Provider) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.IdentityCall(providerName, "delete", err) }()

	resp, err := p.admin.Delete(adminUsers + "/" + url.PathEscape(id)).Send(ctx)
	if err != nil {
		return err
	}
	return check(resp)
}

func (p *Provider) Authenticate(ctx context.Context, email, password string) (_ identity.Identity, err error) {
	defer func() { metrics.IdentityCall(providerName, "authenticate", err) }()

	resp, err := p.public.Post(tokenPath).
		Query("grant_type", "password").
		Body(map[string]string{"email": email, "password": password}).
		Send(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	if resp.StatusCode == 400 || resp.StatusCode == 401 {
		return identity.Identity{}, identity.ErrInvalidCredentials
	}
	if err := check(resp); err != nil {
		return identity.Identity{}, err
	}
	var body struct {
		User user `json:"user"`
	}
	if err := resp.JSON(&body); err != nil {
		return identity.Identity{}, err
	}
	return body.User.identity(), nil
}

var _ identity.Provider = (*Provider)(nil)
