// Package apitoken mints the short-lived bearer tokens the dashboard uses
// when it calls the recruitment backend on behalf of a signed-in user.
package apitoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Claims identify the user the backend call is made for.
type Claims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Minter signs HS256 tokens with a shared secret.
type Minter struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// ErrNoSecret is returned when a Minter is built without a secret.
var ErrNoSecret = errors.New("apitoken: signing secret is empty")

// NewMinter creates a Minter. ttl <= 0 defaults to five minutes.
func NewMinter(secret, issuer string, ttl time.Duration) (*Minter, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Minter{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Mint returns a signed token for userID and its expiry.
func (m *Minter) Mint(userID string, roles []string) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := Claims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies a token minted with the same secret.
func (m *Minter) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// TokenSource returns an oauth2.TokenSource that mints a fresh bearer token
// for the user whenever the previous one expires.
func (m *Minter) TokenSource(userID string, roles []string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, userSource{m: m, userID: userID, roles: roles})
}

type userSource struct {
	m      *Minter
	userID string
	roles  []string
}

func (s userSource) Token() (*oauth2.Token, error) {
	signed, exp, err := s.m.Mint(s.userID, s.roles)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: signed, TokenType: "Bearer", Expiry: exp}, nil
}
