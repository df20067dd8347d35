package mock

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// createJWT creates a signed JWT access token for clientID with the given type
func (s *AuthorizationService) createJWT(clientID, tokenType string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.Issuer,
		"sub": clientID,
		"aud": clientID,
		"exp": now.Add(time.Duration(s.ExpiresIn) * time.Second).Unix(),
		"iat": now.Unix(),
		"jti": uuid.New().String(),
		"typ": tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.PrivateKey)
}
