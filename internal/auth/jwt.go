package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/railmadad/portal/internal/util"
)

// Audience is the audience of every portal access token.
const Audience = "railmadad"

// Claims are the fields of an access token. Subject is the username.
type Claims struct {
	Role    string `json:"role"`
	Station string `json:"station,omitempty"`
	Name    string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity is what a token is issued for.
type Identity struct {
	Username string
	Role     string
	Station  string
	Name     string
}

// JWTManager signs and validates access tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTManager builds a manager with an HMAC secret and token lifetime.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL}
}

// TTL is the lifetime of issued tokens.
func (m *JWTManager) TTL() time.Duration {
	return m.accessTTL
}

// GenerateAccessToken issues an HS256 token and returns it with its jti.
func (m *JWTManager) GenerateAccessToken(id Identity) (string, string, error) {
	now := time.Now().UTC()
	jti := util.NewID()

	claims := Claims{
		Role:    id.Role,
		Station: id.Station,
		Name:    id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}

	return signed, jti, nil
}

// ParseAndValidate checks signature, audience and expiry.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("token missing subject or id")
	}

	return claims, nil
}

// Remaining is how long the token stays valid, never negative.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := c.ExpiresAt.Time.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
