package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"course-service/internal/model"
	"course-service/internal/service"
)

func TestDefaultLeadCoach(t *testing.T) {
	coach := model.Identity{UserID: uuid.New(), Role: model.RoleCoach}
	require.Equal(t, coach.UserID, *service.DefaultLeadCoach(coach))

	manager := model.Identity{UserID: uuid.New(), Role: model.RoleManager}
	require.Nil(t, service.DefaultLeadCoach(manager))

	admin := model.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
	require.Nil(t, service.DefaultLeadCoach(admin))
}

func TestResolveLeadCoach_CoachAlwaysPublishesSelf(t *testing.T) {
	coach := model.Identity{UserID: uuid.New(), Role: model.RoleCoach}
	other := uuid.New()

	resolved, err := service.ResolveLeadCoach(coach, &other)
	require.NoError(t, err)
	require.Equal(t, coach.UserID, *resolved)

	resolved, err = service.ResolveLeadCoach(coach, nil)
	require.NoError(t, err)
	require.Equal(t, coach.UserID, *resolved)
}

func TestResolveLeadCoach_ManagerMustSupply(t *testing.T) {
	manager := model.Identity{UserID: uuid.New(), Role: model.RoleManager}

	_, err := service.ResolveLeadCoach(manager, nil)
	require.ErrorIs(t, err, service.ErrLeadCoachRequired)

	supplied := uuid.New()
	resolved, err := service.ResolveLeadCoach(manager, &supplied)
	require.NoError(t, err)
	require.Equal(t, supplied, *resolved)
}
