package service

import (
	"github.com/google/uuid"

	"course-service/internal/model"
)

// DefaultLeadCoach resolves the lead coach a preview defaults to: a coach is
// their own default, managers and admins have none and must name one when
// publishing.
func DefaultLeadCoach(identity model.Identity) *uuid.UUID {
	if identity.Role == model.RoleCoach {
		id := identity.UserID
		return &id
	}
	return nil
}

// ResolveLeadCoach decides the lead coach a publish commits with. A coach
// always publishes themself, whatever was supplied; a manager or admin must
// supply one.
func ResolveLeadCoach(identity model.Identity, supplied *uuid.UUID) (*uuid.UUID, error) {
	if identity.Role == model.RoleCoach {
		id := identity.UserID
		return &id, nil
	}

	if supplied == nil {
		return nil, ErrLeadCoachRequired
	}

	return supplied, nil
}
