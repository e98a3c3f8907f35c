package managers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"server-identity/internal/config"
	"server-identity/internal/schemas"
	"server-identity/internal/utils"
)

// AccessClaims is the claim set of a short-lived access token.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the minimal claim set of a long-lived refresh token.
// The Refresh marker prevents an access token from being replayed against
// the refresh endpoint.
type RefreshClaims struct {
	Refresh bool `json:"refresh"`
	jwt.RegisteredClaims
}

// JWTMgr issues and verifies signed claim tokens. Access and refresh tokens
// are signed with independent secrets, so compromise of one class cannot
// forge the other. Verification enforces algorithm, issuer and expiry; it
// returns an error instead of panicking in every failure mode.
type JWTMgr interface {
	GenerateAccessToken(userID, username, email string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
	VerifyAccessToken(tokenString string) (*AccessClaims, error)
	VerifyRefreshToken(tokenString string) (*RefreshClaims, error)
	JWTMiddleware() gin.HandlerFunc
}

// JWTManager handles JWT generation, signing, and validation.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

var errNotRefreshToken = errors.New("token is not a refresh token")

// NewJWTManager creates a JWTManager from the process configuration. The
// secret material is read once here and is read-only afterwards.
func NewJWTManager(cfg *config.Config) JWTMgr {
	return &JWTManager{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		issuer:        cfg.JWTIssuer,
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

// GenerateAccessToken signs the user's identity claims with the access
// secret.
func (jm *JWTManager) GenerateAccessToken(userID, username, email string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    jm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jm.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jm.accessSecret)
}

// GenerateRefreshToken signs a minimal claim set with the refresh secret.
func (jm *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		Refresh: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    jm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jm.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jm.refreshSecret)
}

// VerifyAccessToken validates the token against the access secret and
// returns its claims.
func (jm *JWTManager) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := jm.verify(tokenString, claims, jm.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken validates the token against the refresh secret and
// returns its claims. A token without the refresh marker is rejected even
// when its signature checks out.
func (jm *JWTManager) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := jm.verify(tokenString, claims, jm.refreshSecret); err != nil {
		return nil, err
	}
	if !claims.Refresh {
		return nil, errNotRefreshToken
	}
	return claims, nil
}

func (jm *JWTManager) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jm.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrSignatureInvalid
	}
	return nil
}

// JWTMiddleware guards a route group: it requires a valid bearer access
// token and stores the decoded claims in the request context.
func (jm *JWTManager) JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
			return
		}

		claims, err := jm.VerifyAccessToken(strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
			return
		}

		c.Set(utils.ClaimsKey.String(), claims)
		c.Next()
	}
}
