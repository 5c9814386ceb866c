package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// AccessExpiration defines the lifetime of access tokens issued by GenerateToken.
	AccessExpiration = 30 * time.Minute

	// RefreshExpiration defines the lifetime of refresh tokens issued by GenerateToken.
	RefreshExpiration = 7 * 24 * time.Hour

	// TokenIssuer identifies the issuer of tokens minted by this service.
	TokenIssuer = "socialhub"
)

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidSubject   = errors.New("token subject is not a user id")
)

// GenerateToken creates and signs a new JWT for the given user.
// The payload's Subject is overwritten with userID.
func GenerateToken(userID int64, payload *Payload, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	if payload.Type == "" {
		payload.Type = TypeAccess
	}

	payload.StandardClaims = jwt.StandardClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: now.Add(duration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken parses and validates the JWT string using secretKey and checks that
// it is of the wanted type.
func ParseToken(tokenString string, secretKey string, wantType string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != wantType {
		return nil, ErrInvalidTokenType
	}

	return claims, nil
}

// UserID returns the numeric user id carried in the subject claim.
func (p *Payload) UserID() (int64, error) {
	id, err := strconv.ParseInt(p.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidSubject
	}
	return id, nil
}
