package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const TokenExpiration = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// ActiveTokenIssuer signs and verifies the bearer tokens of the running service.
var ActiveTokenIssuer *TokenIssuer

type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TokenIssuer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{Secret: []byte(secret), Issuer: issuer, TTL: TokenExpiration}
}

func (i *TokenIssuer) Issue(identity Identity, now time.Time) (string, error) {
	ttl := i.TTL
	if ttl <= 0 {
		ttl = TokenExpiration
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    i.Issuer,
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  identity.Name,
		Email: identity.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
}

func (i *TokenIssuer) Parse(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if i.Issuer != "" && !claims.VerifyIssuer(i.Issuer, true) {
		return nil, ErrInvalidToken
	}
	id, err := types.ParseID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &Identity{ID: id, Name: claims.Name, Email: claims.Email}, nil
}
