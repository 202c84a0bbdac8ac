package session

import (
	"context"
	"encoding/json"
	"errors"

	"mokolo/internal/api"
	"mokolo/internal/domain"
)

var ErrTokenExpired = errors.New("session: token expired")

// Admins is the platform-admin session store.
type Admins struct {
	api   *api.Admin
	store Storage
	track *tracker
}

func NewAdmins(a *api.Admin, store Storage) *Admins {
	return &Admins{api: a, store: store, track: newTracker()}
}

func (s *Admins) key(sid string) string { return "admin:" + sid }

func (s *Admins) IsLoading(sid string) bool { return s.track.loading(sid) }

// Login authenticates against the backend and persists the session. The
// caller sets the admin_token cookie from the returned token.
func (s *Admins) Login(ctx context.Context, sid, email, password string) (*domain.Admin, string, error) {
	defer s.track.begin(sid)()

	auth, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	identity, err := json.Marshal(auth.Admin)
	if err != nil {
		return nil, "", err
	}
	if err := s.store.Put(ctx, s.key(sid), &Record{Token: auth.Token, Identity: identity}); err != nil {
		return nil, "", err
	}
	return &auth.Admin, auth.Token, nil
}

// Logout clears client state only. The token stays valid server-side until
// natural expiry — an accepted tradeoff, the backend has no revocation.
func (s *Admins) Logout(ctx context.Context, sid string) error {
	return s.store.Delete(ctx, s.key(sid))
}

// LoadAuth reconciles the persisted cookie with store state after a reload.
// When the store is already authenticated it returns the cached identity
// without a network call.
func (s *Admins) LoadAuth(ctx context.Context, sid, cookieToken string) (*domain.Admin, error) {
	if rec, err := s.store.Get(ctx, s.key(sid)); err == nil {
		var a domain.Admin
		if json.Unmarshal(rec.Identity, &a) == nil && a.ID != "" {
			return &a, nil
		}
	}
	if cookieToken == "" {
		return nil, ErrNoSession
	}
	if tokenExpired(cookieToken) {
		_ = s.store.Delete(ctx, s.key(sid))
		return nil, ErrTokenExpired
	}

	defer s.track.begin(sid)()

	admin, err := s.api.WithToken(cookieToken).Me(ctx)
	if err != nil {
		// Expired or invalid token: reset to logged-out state.
		_ = s.store.Delete(ctx, s.key(sid))
		return nil, err
	}
	identity, _ := json.Marshal(admin)
	if err := s.store.Put(ctx, s.key(sid), &Record{Token: cookieToken, Identity: identity}); err != nil {
		return nil, err
	}
	return admin, nil
}

// Current returns the cached identity and token without any network call.
func (s *Admins) Current(ctx context.Context, sid string) (*domain.Admin, string, bool) {
	rec, err := s.store.Get(ctx, s.key(sid))
	if err != nil {
		return nil, "", false
	}
	var a domain.Admin
	if json.Unmarshal(rec.Identity, &a) != nil || a.ID == "" {
		return nil, "", false
	}
	return &a, rec.Token, true
}
