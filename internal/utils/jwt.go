package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Staff is the operator identity carried by admin tokens.
type Staff struct {
	ID   uuid.UUID
	Name string
}

type staffClaims struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for the given staff member.
func GenerateToken(secret string, staff Staff, ttl time.Duration) (string, error) {
	claims := &staffClaims{
		StaffID: staff.ID.String(),
		Name:    staff.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the staff member it was issued to.
func ParseToken(secret, tokenString string) (Staff, error) {
	token, err := jwt.ParseWithClaims(tokenString, &staffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Staff{}, err
	}

	claims, ok := token.Claims.(*staffClaims)
	if !ok || !token.Valid {
		return Staff{}, jwt.ErrTokenInvalidClaims
	}

	id, err := uuid.Parse(claims.StaffID)
	if err != nil {
		return Staff{}, jwt.ErrTokenInvalidClaims
	}
	return Staff{ID: id, Name: claims.Name}, nil
}
