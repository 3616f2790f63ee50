// Package token signs and verifies the short-lived HS256 tokens that
// authorize access to a single email. A token carries the email id as a
// custom claim together with the standard iat/exp timestamps; the expiry
// doubles as the cache lifetime of the served response.
package token

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mailview/pkg/result"
)

// Claims is the verified payload of a mailview token.
type Claims struct {
	// EmailID identifies the email to fetch from the content provider.
	EmailID string
	// IssuedAt and ExpiresAt are Unix-second timestamps. ExpiresAt > IssuedAt
	// is guaranteed by the signer and not re-checked here; only validity
	// against the current time is enforced during verification.
	IssuedAt  int64
	ExpiresAt int64
}

type jwtClaims struct {
	EmailID string `json:"email_id"`
	jwt.RegisteredClaims
}

// Verify decodes and cryptographically verifies an HS256-signed token.
// A bad signature, malformed structure or past expiry all collapse into the
// same 401 failure so that callers cannot distinguish why verification
// failed. Payload problems on an otherwise valid token are reported as 400.
func Verify(raw, secret string) result.Result[Claims] {
	parsed, err := jwt.ParseWithClaims(
		strings.TrimSpace(raw),
		&jwtClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return result.Fail[Claims](http.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok {
		return result.Fail[Claims](http.StatusUnauthorized, "Invalid or expired token")
	}
	if strings.TrimSpace(claims.EmailID) == "" {
		return result.Fail[Claims](http.StatusBadRequest, "Token payload missing email_id")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return result.Fail[Claims](http.StatusBadRequest, "Token missing required timestamps")
	}

	return result.Ok(Claims{
		EmailID:   claims.EmailID,
		IssuedAt:  claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	})
}

// Sign issues a token for the given email id, valid for ttl from now.
// It is used by the companion CLI, not by the request path.
func Sign(emailID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		EmailID: emailID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
