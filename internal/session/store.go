package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tracker holds the per-sid IsLoading flag stores expose so callers can
// disable submit controls while a mutation is in flight. Last write wins;
// no two concurrent logins are expected from one session.
type tracker struct {
	mu       sync.Mutex
	inflight map[string]bool
}

func newTracker() *tracker {
	return &tracker{inflight: make(map[string]bool)}
}

// begin flips the flag on and returns the func that flips it off. Callers
// defer it so the flag clears on every exit path.
func (t *tracker) begin(sid string) func() {
	t.mu.Lock()
	t.inflight[sid] = true
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.inflight, sid)
		t.mu.Unlock()
	}
}

func (t *tracker) loading(sid string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight[sid]
}

// tokenExpired reports whether the bearer token carries an exp claim in the
// past. The signature is not verified — only the backend can do that — so a
// token that fails to parse is passed through for the backend to judge.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
