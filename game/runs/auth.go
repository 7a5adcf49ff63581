package runs

import (
	"fmt"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// Token is a signed player credential.
type Token struct {
	Token     string    `json:"token"`
	PlayerID  string    `json:"player_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authority issues and verifies HS256 player tokens.
type Authority struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewAuthority creates an authority signing with secret.
func NewAuthority(secret, issuer string, ttl time.Duration) *Authority {
	return &Authority{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue signs a token for a new guest player.
func (a *Authority) Issue(username string) (*Token, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(a.secret) == 0 {
		return nil, fmt.Errorf("auth secret is not configured")
	}

	playerID := uuid.NewString()
	expiresAt := time.Now().Add(a.ttl)
	claims := jwt.MapClaims{
		"iss":  a.issuer,
		"sub":  playerID,
		"name": username,
		"iat":  time.Now().Unix(),
		"exp":  expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{
		Token:     signed,
		PlayerID:  playerID,
		Username:  username,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks a token and returns the player it names. Any failure is
// reported as ErrNotAuthenticated.
func (a *Authority) Verify(tokenString string) (Player, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return Player{}, ErrNotAuthenticated
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Player{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !claims.VerifyIssuer(a.issuer, true) {
		return Player{}, fmt.Errorf("%w: wrong issuer", ErrNotAuthenticated)
	}

	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		return Player{}, fmt.Errorf("%w: missing subject", ErrNotAuthenticated)
	}
	return Player{ID: sub, Username: name}, nil
}
