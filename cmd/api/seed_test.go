package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"userapp/internal/adapter/database/memory"
	"userapp/internal/adapter/database/sqlite/repository"
	"userapp/internal/core/domain"
	"userapp/internal/core/service"
	"userapp/internal/core/telemetry"
	. "userapp/pkg/test"
	"userapp/pkg/test/factory"
)

var fixtureID = uuid.MustParse("3ad17720-f8b3-49ab-ab18-a17c3b02c039")

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(InitTestDB(), telemetry.NewNoOpProbe())
	svc := newSeedService(repo, nil, 0, service.WithPasswordCost(bcrypt.MinCost))

	require.NoError(t, runSeed(ctx, svc, false))

	user, err := svc.FindByID(ctx, fixtureID)
	require.NoError(t, err)
	assert.Equal(t, "user1", user.UserName)
	assert.Equal(t, "user1@gmail.com", user.Email)
	assert.Equal(t, "+6282246924990", user.PhoneNumber)

	require.NoError(t, runSeed(ctx, svc, false))

	users, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestSeedCleanClearsSharedCache(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(InitTestDB(), telemetry.NewNoOpProbe())
	cache := memory.NewMemoryRepository(time.Minute, time.Minute)

	server := service.NewUserService(repo, service.WithCache(cache, time.Minute), service.WithPasswordCost(bcrypt.MinCost))
	seeder := newSeedService(repo, cache, time.Minute, service.WithPasswordCost(bcrypt.MinCost))

	require.NoError(t, runSeed(ctx, seeder, false))

	input := factory.NewUser[domain.User]()
	input.ID = uuid.Nil

	extra, err := server.Create(ctx, input)
	require.NoError(t, err)

	// Both reads populate the cache.
	_, err = server.FindByID(ctx, fixtureID)
	require.NoError(t, err)
	_, err = server.FindByID(ctx, extra.ID)
	require.NoError(t, err)

	cached, err := cache.Get(ctx, "user:"+extra.ID.String())
	require.NoError(t, err)
	require.NotNil(t, cached)

	require.NoError(t, runSeed(ctx, seeder, true))

	_, err = server.FindByID(ctx, extra.ID)
	assert.Error(t, err)

	cached, err = cache.Get(ctx, "user:"+fixtureID.String())
	require.NoError(t, err)
	assert.Nil(t, cached)

	users, err := server.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
