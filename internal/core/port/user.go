package port

import (
	"context"

	"github.com/google/uuid"

	"userapp/internal/core/domain"
	"userapp/internal/core/query"
)

type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	// FindOne matches every criteria key, which must be one of domain.LookupColumns.
	FindOne(ctx context.Context, criteria map[string]any) (domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	FetchAll(ctx context.Context, spec query.Spec) ([]domain.User, error)
	Count(ctx context.Context, spec query.Spec) (int, error)
	// Execute counts and fetches in one read-consistent transaction.
	Execute(ctx context.Context, spec query.Spec) ([]domain.User, int, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type UserService interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindAllWithQuery(ctx context.Context, q domain.PageQuery) (domain.PageResult, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	FindByUserName(ctx context.Context, userName string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}
