package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"easyorders/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	audienceSession = "eom-session"
	audienceNonce   = "eom-nonce"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidNonce = errors.New("invalid nonce")
)

type SessionClaims struct {
	UserID int64         `json:"uid"`
	Login  string        `json:"login"`
	Name   string        `json:"name"`
	Roles  []entity.Role `json:"roles"`
	jwt.RegisteredClaims
}

// NonceClaims bind an anti-forgery token to one action of one user.
type NonceClaims struct {
	UserID int64  `json:"uid"`
	Action string `json:"action"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens and action nonces with one HMAC
// secret. The audience claim keeps the two kinds apart.
type Issuer struct {
	secret     []byte
	sessionTTL time.Duration
	nonceTTL   time.Duration
}

func NewIssuer(secret string, sessionTTL, nonceTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		nonceTTL:   nonceTTL,
	}
}

func (i *Issuer) IssueSession(user *entity.UserAuth) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(i.sessionTTL)
	claims := SessionClaims{
		UserID: user.ID,
		Login:  user.Login,
		Name:   user.Name,
		Roles:  user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			Audience:  jwt.ClaimStrings{audienceSession},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := i.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// ParseSession returns the actor carried by a valid session token.
func (i *Issuer) ParseSession(tokenStr string) (*entity.UserAuth, error) {
	claims := &SessionClaims{}
	if err := i.parse(tokenStr, claims, audienceSession); err != nil {
		return nil, err
	}
	if claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return &entity.UserAuth{
		ID:    claims.UserID,
		Login: claims.Login,
		Name:  claims.Name,
		Roles: claims.Roles,
	}, nil
}

func (i *Issuer) CreateNonce(action string, userID int64) (string, error) {
	now := time.Now()
	claims := NonceClaims{
		UserID: userID,
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{audienceNonce},
			ExpiresAt: jwt.NewNumericDate(now.Add(i.nonceTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return i.sign(claims)
}

// VerifyNonce checks that nonce was issued for action to userID and has not
// expired. Any mismatch yields ErrInvalidNonce.
func (i *Issuer) VerifyNonce(nonce, action string, userID int64) error {
	if nonce == "" {
		return ErrInvalidNonce
	}
	claims := &NonceClaims{}
	if err := i.parse(nonce, claims, audienceNonce); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNonce, err)
	}
	if claims.Action != action || claims.UserID != userID {
		return ErrInvalidNonce
	}
	return nil
}

func (i *Issuer) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *Issuer) parse(tokenStr string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithAudience(audience), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
