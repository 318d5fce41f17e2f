// SPDX-License-Identifier: MIT
package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/models"
)

// EnvJWTSecret overrides auth.jwt_secret.
const EnvJWTSecret = "MENUKITTY_JWT_SECRET"

// tokenIssuer is stamped into every session and required on the way back.
const tokenIssuer = "menukitty"

// ErrNoToken is returned for an empty session cookie.
var ErrNoToken = errors.New("no session token")

// Claims identifies an admin session for one restaurant. The audience is the
// restaurant slug.
type Claims struct {
	RestaurantID uint   `json:"restaurant_id"`
	Slug         string `json:"slug"`
	jwt.RegisteredClaims
}

func signingKey() []byte {
	if secret := os.Getenv(EnvJWTSecret); secret != "" {
		return []byte(secret)
	}
	return []byte(config.GetString("auth.jwt_secret"))
}

// SessionTTL is how long an admin session stays valid, auth.jwt_expiry_hours
// or eight hours when unset.
func SessionTTL() time.Duration {
	if h := config.GetInt("auth.jwt_expiry_hours"); h > 0 {
		return time.Duration(h) * time.Hour
	}
	return 8 * time.Hour
}

// GenerateToken signs a session for an admin of r.
func GenerateToken(r *models.Restaurant) (string, error) {
	issued := time.Now()
	session := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RestaurantID: r.ID,
		Slug:         r.Slug,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(r.ID), 10),
			Audience:  jwt.ClaimStrings{r.Slug},
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(SessionTTL())),
		},
	})
	signed, err := session.SignedString(signingKey())
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

var parser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuer(tokenIssuer),
	jwt.WithExpirationRequired(),
	jwt.WithIssuedAt(),
	jwt.WithLeeway(30*time.Second),
)

// ValidateToken checks the signature, issuer and lifetime of a session
// token and returns its claims.
func ValidateToken(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return signingKey(), nil
	}); err != nil {
		return nil, err
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != claims.Slug {
		return nil, fmt.Errorf("%w: audience does not match restaurant", jwt.ErrTokenInvalidAudience)
	}
	return claims, nil
}
