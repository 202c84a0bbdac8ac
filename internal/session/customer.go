package session

import (
	"context"
	"encoding/json"

	"mokolo/internal/api"
	"mokolo/internal/domain"
)

// Customers is the shopper session store. Login and google auth forward the
// guest cart id so the backend merges the anonymous cart exactly once.
type Customers struct {
	api   *api.Customer
	store Storage
	track *tracker
}

func NewCustomers(c *api.Customer, store Storage) *Customers {
	return &Customers{api: c, store: store, track: newTracker()}
}

func (s *Customers) key(sid string) string { return "customer:" + sid }

func (s *Customers) IsLoading(sid string) bool { return s.track.loading(sid) }

func (s *Customers) persist(ctx context.Context, sid, token string, c *domain.Customer) error {
	identity, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, s.key(sid), &Record{Token: token, Identity: identity})
}

func (s *Customers) Register(ctx context.Context, sid string, in api.RegisterInput) (*domain.Customer, string, error) {
	defer s.track.begin(sid)()

	auth, err := s.api.Register(ctx, in)
	if err != nil {
		return nil, "", err
	}
	if err := s.persist(ctx, sid, auth.Token, &auth.Customer); err != nil {
		return nil, "", err
	}
	return &auth.Customer, auth.Token, nil
}

// Login authenticates and, when guestCartID is set, asks the backend to fold
// the guest cart into the customer cart. The merge is best effort and not
// retried.
func (s *Customers) Login(ctx context.Context, sid, email, password, guestCartID string) (*domain.Customer, string, error) {
	defer s.track.begin(sid)()

	auth, err := s.api.Login(ctx, email, password, guestCartID)
	if err != nil {
		return nil, "", err
	}
	if err := s.persist(ctx, sid, auth.Token, &auth.Customer); err != nil {
		return nil, "", err
	}
	return &auth.Customer, auth.Token, nil
}

func (s *Customers) GoogleAuth(ctx context.Context, sid, idToken, guestCartID string) (*domain.Customer, string, error) {
	defer s.track.begin(sid)()

	auth, err := s.api.GoogleAuth(ctx, idToken, guestCartID)
	if err != nil {
		return nil, "", err
	}
	if err := s.persist(ctx, sid, auth.Token, &auth.Customer); err != nil {
		return nil, "", err
	}
	return &auth.Customer, auth.Token, nil
}

func (s *Customers) Logout(ctx context.Context, sid string) error {
	return s.store.Delete(ctx, s.key(sid))
}

// LoadAuth hydrates from the customer_token cookie on a fresh tab. A store
// that is already authenticated answers from cache with no network call.
func (s *Customers) LoadAuth(ctx context.Context, sid, cookieToken string) (*domain.Customer, error) {
	if rec, err := s.store.Get(ctx, s.key(sid)); err == nil {
		var c domain.Customer
		if json.Unmarshal(rec.Identity, &c) == nil && c.ID != "" {
			return &c, nil
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

	customer, err := s.api.WithToken(cookieToken).Me(ctx)
	if err != nil {
		_ = s.store.Delete(ctx, s.key(sid))
		return nil, err
	}
	if err := s.persist(ctx, sid, cookieToken, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Customers) Current(ctx context.Context, sid string) (*domain.Customer, string, bool) {
	rec, err := s.store.Get(ctx, s.key(sid))
	if err != nil {
		return nil, "", false
	}
	var c domain.Customer
	if json.Unmarshal(rec.Identity, &c) != nil || c.ID == "" {
		return nil, "", false
	}
	return &c, rec.Token, true
}

// UpdateProfile pushes the change and mirrors the server response into the
// persisted identity.
func (s *Customers) UpdateProfile(ctx context.Context, sid string, in api.ProfileInput) (*domain.Customer, error) {
	_, token, ok := s.Current(ctx, sid)
	if !ok {
		return nil, ErrNoSession
	}

	defer s.track.begin(sid)()

	customer, err := s.api.WithToken(token).UpdateProfile(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, sid, token, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// SaveAddress creates or updates an address and mirrors the returned list.
// After any update that sets isDefault, exactly one address stays default.
func (s *Customers) SaveAddress(ctx context.Context, sid, addressID string, in api.AddressInput) (*domain.Customer, error) {
	cur, token, ok := s.Current(ctx, sid)
	if !ok {
		return nil, ErrNoSession
	}

	defer s.track.begin(sid)()

	var (
		addrs []domain.Address
		err   error
	)
	if addressID == "" {
		addrs, err = s.api.WithToken(token).CreateAddress(ctx, in)
	} else {
		addrs, err = s.api.WithToken(token).UpdateAddress(ctx, addressID, in)
	}
	if err != nil {
		return nil, err
	}
	cur.Addresses = normalizeDefault(addrs, addressID, in.IsDefault)
	if err := s.persist(ctx, sid, token, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func (s *Customers) DeleteAddress(ctx context.Context, sid, addressID string) (*domain.Customer, error) {
	cur, token, ok := s.Current(ctx, sid)
	if !ok {
		return nil, ErrNoSession
	}

	defer s.track.begin(sid)()

	addrs, err := s.api.WithToken(token).DeleteAddress(ctx, addressID)
	if err != nil {
		return nil, err
	}
	cur.Addresses = addrs
	if err := s.persist(ctx, sid, token, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

// normalizeDefault mirrors the server's single-default rule: when the saved
// address was marked default, every other entry is unset locally so cached
// state cannot drift from the backend.
func normalizeDefault(addrs []domain.Address, savedID string, savedDefault bool) []domain.Address {
	if !savedDefault || savedID == "" {
		return addrs
	}
	for i := range addrs {
		addrs[i].IsDefault = addrs[i].ID == savedID
	}
	return addrs
}
