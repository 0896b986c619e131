// Package guard gates protected views behind a sign-in and role check.
//
// The decision (Decide) is a pure function of the identity source and the
// policy. The navigation effect lives in Guard, which remembers the last
// decided state so a redirect fires once per transition into a failing
// state, no matter how often the guard is re-evaluated.
package guard

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// State is the authorization state of a guarded view.
type State int

const (
	// Unresolved is the state before the first evaluation.
	Unresolved State = iota
	// Unauthenticated means there is no signed-in identity.
	Unauthenticated
	// Authorized means the identity satisfies the policy.
	Authorized
	// Unauthorized means the identity is signed in but holds none of the policy's roles.
	Unauthorized
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unresolved"
	}
}

// Default destinations used when Options leaves them blank.
const (
	DefaultLoginPath        = "/login"
	DefaultUnauthorizedPath = "/unauthorized"
)

// Identity is the signed-in user as seen by the guard.
type Identity struct {
	ID    string
	Name  string
	Roles []string
}

// IdentitySource supplies the current identity and role membership.
// Current returns a nil identity when nobody is signed in and an error when
// the source itself is unavailable; the guard treats both as signed out.
type IdentitySource interface {
	Current() (*Identity, error)
	HasRole(role string) bool
}

// Navigator performs the redirect. It is fire-and-forget.
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// NavigateTo calls f(path).
func (f NavigatorFunc) NavigateTo(path string) { f(path) }

// Policy is an immutable set of acceptable roles. The zero Policy accepts
// any signed-in identity.
type Policy struct {
	roles []string
}

// NewPolicy builds a policy from role tags. Tags are trimmed and lowercased;
// blanks and duplicates are dropped.
func NewPolicy(roles ...string) Policy {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return Policy{roles: out}
}

// Roles returns a copy of the policy's roles.
func (p Policy) Roles() []string {
	return append([]string(nil), p.roles...)
}

// Empty reports whether the policy admits any signed-in identity.
func (p Policy) Empty() bool { return len(p.roles) == 0 }

// Decide computes the authorization state without side effects.
// A nil source is treated as unavailable (fail closed).
func Decide(src IdentitySource, p Policy) State {
	if src == nil {
		return Unauthenticated
	}
	id, err := src.Current()
	if err != nil || id == nil {
		return Unauthenticated
	}
	if p.Empty() {
		return Authorized
	}
	for _, role := range p.roles {
		if src.HasRole(role) {
			return Authorized
		}
	}
	return Unauthorized
}

// Options configures a Guard.
type Options struct {
	LoginPath        string
	UnauthorizedPath string
	Log              *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.LoginPath == "" {
		o.LoginPath = DefaultLoginPath
	}
	if o.UnauthorizedPath == "" {
		o.UnauthorizedPath = DefaultUnauthorizedPath
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

// Guard wraps one protected view. It is safe for concurrent use.
type Guard struct {
	policy Policy
	src    IdentitySource
	nav    Navigator
	opts   Options

	mu    sync.Mutex
	state State
}

// New creates a guard in the Unresolved state.
func New(p Policy, src IdentitySource, nav Navigator, opts Options) *Guard {
	return &Guard{
		policy: p,
		src:    src,
		nav:    nav,
		opts:   opts.withDefaults(),
		state:  Unresolved,
	}
}

// State returns the state decided by the most recent evaluation.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Policy returns the guard's policy.
func (g *Guard) Policy() Policy { return g.policy }

// Evaluate re-decides the state and reports whether the protected view may
// render. The identity is read under the guard's lock so concurrent
// evaluations commit in order. Entering Unauthenticated or Unauthorized
// navigates exactly once; staying in the same state does not navigate again.
func (g *Guard) Evaluate() bool {
	g.mu.Lock()
	next := Decide(g.src, g.policy)
	prev := g.state
	g.state = next
	g.mu.Unlock()

	if next == prev {
		return next == Authorized
	}

	g.opts.Log.Debug("guard state changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.Strings("policy", g.policy.roles))

	switch next {
	case Unauthenticated:
		g.navigate(g.opts.LoginPath)
	case Unauthorized:
		g.navigate(g.opts.UnauthorizedPath)
	}
	return next == Authorized
}

// Render evaluates the guard and calls view only when authorized.
func (g *Guard) Render(view func()) bool {
	if !g.Evaluate() {
		return false
	}
	if view != nil {
		view()
	}
	return true
}

func (g *Guard) navigate(path string) {
	if g.nav == nil {
		g.opts.Log.Warn("guard has no navigator; redirect dropped", zap.String("path", path))
		return
	}
	g.nav.NavigateTo(path)
}
