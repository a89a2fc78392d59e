package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

const (
	TokenTypeAccess = "access"
	TokenTypeStream = "stream"

	streamTokenTTL = 5 * time.Minute
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongType    = errors.New("token type not accepted")
)

// Service issues and reads the tokens that identify an Actor. Identity
// issuance belongs to the upstream identity provider; GenerateAccessToken
// exists for tooling and tests that share its secret.
type Service interface {
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	GenerateStreamToken(actor user.Actor) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (user.Actor, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()
	_, token, err = j.tokenAuth.Encode(actorClaims(actor, TokenTypeAccess, expiresAt))
	return token, expiresAt, err
}

// GenerateStreamToken issues a short-lived token for the notification
// stream, which browsers open without an Authorization header.
func (j *JWTService) GenerateStreamToken(actor user.Actor) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(streamTokenTTL).Unix()
	_, token, err = j.tokenAuth.Encode(actorClaims(actor, TokenTypeStream, expiresAt))
	if err != nil {
		return "", 0, err
	}
	return token, int(streamTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateStreamToken(tokenString string) (user.Actor, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return user.Actor{}, ErrInvalidToken
	}
	if err := jwt.Validate(token, jwt.WithClock(jwt.ClockFunc(j.now)), jwt.WithAcceptableSkew(30*time.Second)); err != nil {
		return user.Actor{}, ErrInvalidToken
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return user.Actor{}, ErrInvalidToken
	}
	return ActorFromClaims(claims, TokenTypeStream)
}

// ActorFromClaims builds an Actor from verified claims, requiring the given
// token type.
func ActorFromClaims(claims map[string]interface{}, tokenType string) (user.Actor, error) {
	if t, _ := claims["type"].(string); t != tokenType {
		return user.Actor{}, ErrWrongType
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return user.Actor{}, ErrInvalidToken
	}
	employeeID, _ := claims["employee_id"].(string)

	roleClaim, _ := claims["role"].(string)
	role, err := user.ParseRole(roleClaim)
	if err != nil {
		return user.Actor{}, err
	}

	return user.Actor{UserID: userID, EmployeeID: employeeID, Role: role}, nil
}

func actorClaims(actor user.Actor, tokenType string, expiresAt int64) map[string]interface{} {
	claims := map[string]interface{}{
		"user_id": actor.UserID,
		"role":    string(actor.Role),
		"type":    tokenType,
		"exp":     expiresAt,
	}
	if actor.EmployeeID != "" {
		claims["employee_id"] = actor.EmployeeID
	}
	return claims
}
