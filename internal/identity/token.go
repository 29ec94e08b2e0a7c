package identity

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that fail signature, issuer, expiry or shape checks.
var ErrInvalidToken = errors.New("identity: invalid token")

// Claims is the signed claim set carried by access tokens. CenterID is a
// string-encoded integer and is omitted for users without a center.
type Claims struct {
	CenterID string   `json:"center_id,omitempty"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for p and returns it together with its expiry.
func (t *TokenIssuer) Issue(p Principal) (string, time.Time, error) {
	if p.UserID == "" {
		return "", time.Time{}, errors.New("identity: principal without user id")
	}
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		Roles: append([]string(nil), p.Roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	if p.CenterID != nil {
		claims.CenterID = strconv.FormatInt(*p.CenterID, 10)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("identity: sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks raw and rebuilds the principal it describes.
func (t *TokenIssuer) Verify(raw string) (Principal, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	p := Principal{UserID: claims.Subject, Roles: claims.Roles}
	if claims.CenterID != "" {
		id, err := strconv.ParseInt(claims.CenterID, 10, 64)
		if err != nil {
			return Principal{}, fmt.Errorf("%w: center_id %q", ErrInvalidToken, claims.CenterID)
		}
		p.CenterID = &id
	}
	return p, nil
}
