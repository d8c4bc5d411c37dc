package jwt

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"course-service/internal/model"
)

// GenerateToken mints an HS256 access token for an identity. The identity
// provider owns token issuance in production; this exists for local tooling
// and tests.
func GenerateToken(identity model.Identity) (string, error) {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))

	claims := jwt.MapClaims{
		"sub":  identity.UserID.String(),
		"role": identity.Role,
		"exp":  time.Now().Add(time.Minute * 15).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (jwt.MapClaims, error) {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
