package auth

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/talenthub/internal/app/system/guard"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	// DefaultSessionName is used when no session name is configured.
	DefaultSessionName = "talenthub-session"

	userIDKey   = "user_id"
	signedInKey = "signed_in_at"
)

// SessionUser is the identity injected into r.Context() for each request.
// Only the user ID lives in the cookie; everything else is refreshed from
// the database by a UserFetcher.
type SessionUser struct {
	ID      string
	Name    string
	LoginID string
	Roles   []string
}

// HasRole reports whether the user holds role (case-insensitive).
func (u *SessionUser) HasRole(role string) bool {
	if u == nil {
		return false
	}
	role = strings.ToLower(strings.TrimSpace(role))
	for _, have := range u.Roles {
		if strings.ToLower(have) == role {
			return true
		}
	}
	return false
}

// Identity converts the session user to the guard's identity type.
func (u *SessionUser) Identity() *guard.Identity {
	if u == nil {
		return nil
	}
	return &guard.Identity{ID: u.ID, Name: u.Name, Roles: append([]string(nil), u.Roles...)}
}

// UserFetcher loads the current state of a user. It returns nil when the
// user does not exist, is disabled, or cannot be loaded.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager owns the cookie store and the guard options used by the
// role middleware. There is no package-level store.
type SessionManager struct {
	store     *sessions.CookieStore
	name      string
	log       *zap.Logger
	guardOpts guard.Options
}

// ErrNoSessionKey is returned when NewSessionManager gets an empty key.
var ErrNoSessionKey = errors.New("session key is empty; provide 32+ random chars")

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=None.
// In local dev over http://localhost use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionKey == "" {
		return nil, ErrNoSessionKey
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// DevSessionKey returns a random key for local development when none is
// configured. Sessions do not survive a restart with it.
func DevSessionKey() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", fmt.Errorf("generate session key: random source failed")
	}
	return fmt.Sprintf("%x", b), nil
}

// UsePaths overrides where the role middleware sends visitors and users
// lacking a role. Empty values keep the guard defaults.
func (sm *SessionManager) UsePaths(loginPath, unauthorizedPath string) {
	sm.guardOpts.LoginPath = loginPath
	sm.guardOpts.UnauthorizedPath = unauthorizedPath
}

// GuardOptions returns the options the middleware passes to the guard.
func (sm *SessionManager) GuardOptions() guard.Options {
	opts := sm.guardOpts
	opts.Log = sm.log
	return opts
}

// SignIn records userID in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil && sess == nil {
		return err
	}
	sess.Values[userIDKey] = userID
	sess.Values[signedInKey] = time.Now().UTC().Unix()
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil && sess == nil {
		return err
	}
	delete(sess.Values, userIDKey)
	delete(sess.Values, signedInKey)
	opts := *sess.Options
	opts.MaxAge = -1
	sess.Options = &opts
	return sess.Save(r, w)
}

// SessionUserID returns the user ID stored in the cookie, if any.
func (sm *SessionManager) SessionUserID(r *http.Request) (string, bool) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var cerr securecookie.Error
		if errors.As(err, &cerr) && cerr.IsDecode() {
			sm.log.Debug("ignoring undecodable session cookie", zap.Error(err))
		} else {
			sm.log.Warn("session read failed", zap.Error(err))
		}
		return "", false
	}
	id, ok := sess.Values[userIDKey].(string)
	return id, ok && id != ""
}

// LoadSessionUser injects the current user into the request context when
// the cookie names a user the fetcher still recognises. Disabled or deleted
// users become visitors.
func (sm *SessionManager) LoadSessionUser(fetcher UserFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := sm.SessionUserID(r)
			if ok && fetcher != nil {
				if u := fetcher.FetchUser(r.Context(), id); u != nil {
					r = withUser(r, u)
				} else {
					sm.log.Debug("session user no longer valid", zap.String("user_id", id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSignedIn lets any signed-in user through.
//   - HTMX: HX-Redirect to the login path with 401
//   - HTML: 303 redirect to the login path with ?return=
//   - API:  401 Unauthorized with a plain error body
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return guard.Require(Identity, sm.GuardOptions())(next)
}

// RequireRole lets through users holding at least one of allowed. Signed-in
// users without a matching role go to the unauthorized path (403 semantics).
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return guard.Require(Identity, sm.GuardOptions(), allowed...)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// Identity is the guard.RequestIdentity backed by the request context.
func Identity(r *http.Request) (*guard.Identity, error) {
	u, ok := CurrentUser(r)
	if !ok {
		return nil, nil
	}
	return u.Identity(), nil
}

// WithTestUser injects u as LoadSessionUser would. Intended for tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
