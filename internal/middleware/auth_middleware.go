package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"bundleBoost/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Claims carried by merchant dashboard tokens.
type Claims struct {
	ShopID uint64 `json:"shop_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type responseError struct {
	Message string `json:"message"`
}

// AuthMiddleware validates an HS256 bearer token signed with secret and puts
// the claims on the context under "claims", "shop_id" and "role".
func AuthMiddleware(secret string) echo.MiddlewareFunc {
	key := []byte(secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, responseError{Message: "missing authorization header"})
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, responseError{Message: "invalid authorization format"})
			}

			claims, err := ParseToken(tokenParts[1], key)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return c.JSON(http.StatusForbidden, responseError{Message: "token expired"})
				}
				logger.Debug("rejected bearer token", "error", err)
				return c.JSON(http.StatusUnauthorized, responseError{Message: "invalid token"})
			}

			c.Set("claims", claims)
			c.Set("shop_id", claims.ShopID)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

func ParseToken(tokenString string, key []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// IssueToken signs a token for a shop, used by the CLI and tests.
func IssueToken(key []byte, shopID uint64, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ShopID: shopID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
