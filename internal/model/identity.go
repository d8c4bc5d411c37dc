package model

import "github.com/google/uuid"

const (
	RoleCoach   = "coach"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Identity is the resolved caller identity taken from a validated token.
// This service never authenticates; it only consumes the claims.
type Identity struct {
	UserID uuid.UUID
	Role   string
}
