package session

import (
	"context"
	"encoding/json"
	"errors"

	"mokolo/internal/api"
	"mokolo/internal/domain"
	"mokolo/internal/permissions"
)

// ErrSupplierInactive rejects logins while the supplier is PENDING,
// SUSPENDED or INACTIVE. Valid credentials are not enough.
var ErrSupplierInactive = errors.New("session: supplier not active")

// SupplierIdentity is what a supplier session persists: the staff user plus
// the supplier they belong to.
type SupplierIdentity struct {
	User     domain.SupplierAdmin `json:"user"`
	Supplier domain.Supplier      `json:"supplier"`
}

// Capabilities resolves the effective capability set for the session user.
func (id *SupplierIdentity) Capabilities() permissions.Set {
	return id.User.Capabilities()
}

// Suppliers is the supplier back-office session store.
type Suppliers struct {
	api   *api.Supplier
	store Storage
	track *tracker
}

func NewSuppliers(a *api.Supplier, store Storage) *Suppliers {
	return &Suppliers{api: a, store: store, track: newTracker()}
}

func (s *Suppliers) key(sid string) string { return "supplier:" + sid }

func (s *Suppliers) IsLoading(sid string) bool { return s.track.loading(sid) }

func (s *Suppliers) persist(ctx context.Context, sid, token string, id *SupplierIdentity) error {
	identity, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, s.key(sid), &Record{Token: token, Identity: identity})
}

func (s *Suppliers) Login(ctx context.Context, sid, email, password string) (*SupplierIdentity, string, error) {
	defer s.track.begin(sid)()

	auth, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	if auth.Supplier.Status != domain.SupplierActive {
		return nil, "", ErrSupplierInactive
	}
	id := &SupplierIdentity{User: auth.User, Supplier: auth.Supplier}
	if err := s.persist(ctx, sid, auth.Token, id); err != nil {
		return nil, "", err
	}
	return id, auth.Token, nil
}

func (s *Suppliers) Logout(ctx context.Context, sid string) error {
	return s.store.Delete(ctx, s.key(sid))
}

func (s *Suppliers) LoadAuth(ctx context.Context, sid, cookieToken string) (*SupplierIdentity, error) {
	if rec, err := s.store.Get(ctx, s.key(sid)); err == nil {
		var id SupplierIdentity
		if json.Unmarshal(rec.Identity, &id) == nil && id.User.ID != "" {
			return &id, nil
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

	auth, err := s.api.WithToken(cookieToken).Me(ctx)
	if err != nil {
		_ = s.store.Delete(ctx, s.key(sid))
		return nil, err
	}
	id := &SupplierIdentity{User: auth.User, Supplier: auth.Supplier}
	if err := s.persist(ctx, sid, cookieToken, id); err != nil {
		return nil, err
	}
	return id, nil
}

func (s *Suppliers) Current(ctx context.Context, sid string) (*SupplierIdentity, string, bool) {
	rec, err := s.store.Get(ctx, s.key(sid))
	if err != nil {
		return nil, "", false
	}
	var id SupplierIdentity
	if json.Unmarshal(rec.Identity, &id) != nil || id.User.ID == "" {
		return nil, "", false
	}
	return &id, rec.Token, true
}
