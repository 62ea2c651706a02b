package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	httpadapter "userapp/internal/adapter/http"
	"userapp/internal/adapter/http/validation"
	"userapp/internal/core/apperror"
	"userapp/internal/core/model/request"
	"userapp/internal/core/port"
	"userapp/internal/core/service"
	"userapp/pkg/tracing"
)

//go:embed seed/users.json
var seedUsers []byte

type seedUser struct {
	ID uuid.UUID `json:"id"`
	request.UserCreateRequest
}

var seedClean bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the fixture users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		return tracing.CommandSpanWrapper(cmd.Context(), "seed", func(ctx context.Context) error {
			repo, closeRepo, err := httpadapter.OpenUserRepository(ctx, a.cfg, a.probe)
			if err != nil {
				return err
			}
			defer closeRepo()

			// The server may share this cache, so clean mode must clear it too.
			cache := httpadapter.OpenCache(ctx, a.cfg)
			if cache != nil {
				defer cache.Close()
			}

			svc := newSeedService(repo, cache, a.cfg.CacheTTL, service.WithTelemetry(a.probe), service.WithMetrics(a.metrics))

			return runSeed(ctx, svc, seedClean)
		})
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedClean, "clean", false, "delete every user before seeding")
	rootCmd.AddCommand(seedCmd)
}

func newSeedService(repo port.UserRepository, cache port.CacheRepository, ttl time.Duration, opts ...service.Option) *service.UserService {
	if cache != nil {
		opts = append(opts, service.WithCache(cache, ttl))
	}

	return service.NewUserService(repo, opts...)
}

func runSeed(ctx context.Context, svc *service.UserService, clean bool) error {
	if clean {
		deleted, err := svc.DeleteAll(ctx)
		if err != nil {
			return err
		}

		slog.InfoContext(ctx, "Removed existing users", "count", deleted)
	}

	return seed(ctx, svc)
}

// seed skips fixtures that would collide with existing users.
func seed(ctx context.Context, svc *service.UserService) error {
	var users []seedUser
	if err := json.Unmarshal(seedUsers, &users); err != nil {
		return fmt.Errorf("failed to parse seed data: %w", err)
	}

	validator := validation.NewValidator(svc)

	created := 0
	for _, u := range users {
		if err := validator.ValidateStruct(ctx, u.UserCreateRequest); err != nil {
			var appErr *apperror.Error
			if errors.As(err, &appErr) && appErr.Kind == apperror.KindValidationFailed {
				slog.InfoContext(ctx, "Skipping seed user", "user_name", u.UserName, "fields", appErr.Fields)
				continue
			}

			return err
		}

		user := u.ToEntity()
		user.ID = u.ID

		if _, err := svc.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to seed %s: %w", u.UserName, err)
		}

		created++
	}

	slog.InfoContext(ctx, "Seed finished", "created", created, "total", len(users))

	return nil
}
