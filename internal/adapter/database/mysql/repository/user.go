package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	database "userapp/internal/adapter/database/mysql"
	"userapp/internal/core/apperror"
	"userapp/internal/core/domain"
	"userapp/internal/core/port"
	"userapp/internal/core/query"
	tel "userapp/internal/core/telemetry"
)

type UserRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *database.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{db: db, telemetry: telemetry}
}

func (ur *UserRepository) start(ctx context.Context, operation string, attrs map[string]interface{}) (context.Context, *tel.Operation) {
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	attrs["db.system"] = "mysql"
	attrs["db.table"] = database.User{}.TableName()

	return tel.StartOperation(ctx, ur.telemetry, operation, "user", attrs)
}

func (ur *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	ctx, op := ur.start(ctx, "FindAll", nil)

	var rows []database.User
	err := ur.db.WithContext(ctx).
		Order(strings.Join(query.NewSpec(nil).OrderClauses(), ", ")).
		Find(&rows).Error
	if err != nil {
		return nil, op.End(database.TranslateError(err, "find users"))
	}

	return toDomainList(rows), op.End(nil)
}

func (ur *UserRepository) FindOne(ctx context.Context, criteria map[string]any) (domain.User, error) {
	ctx, op := ur.start(ctx, "FindOne", nil)

	if len(criteria) == 0 {
		return domain.User{}, op.End(apperror.InvalidArgument("at least one criterion is required"))
	}

	where := make(map[string]any, len(criteria))
	for key, value := range criteria {
		if !slices.Contains(domain.LookupColumns, key) {
			return domain.User{}, op.End(apperror.InvalidArgument(fmt.Sprintf("%s cannot be used as a criterion", key)))
		}

		if id, ok := value.(uuid.UUID); ok {
			value = id.String()
		}

		where[key] = value
	}

	var row database.User
	if err := ur.db.WithContext(ctx).Where(where).Take(&row).Error; err != nil {
		return domain.User{}, op.End(database.TranslateError(err, "user not found"))
	}

	return toDomain(row), op.End(nil)
}

func (ur *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	ctx, op := ur.start(ctx, "FindByID", map[string]interface{}{"user.id": id.String()})

	user, err := findByID(ur.db.WithContext(ctx), id)

	return user, op.End(err)
}

func findByID(tx *gorm.DB, id uuid.UUID) (domain.User, error) {
	var row database.User
	if err := tx.Where("id = ?", id.String()).Take(&row).Error; err != nil {
		return domain.User{}, database.TranslateError(err, fmt.Sprintf("user %s not found", id))
	}

	return toDomain(row), nil
}

func (ur *UserRepository) FetchAll(ctx context.Context, spec query.Spec) ([]domain.User, error) {
	ctx, op := ur.start(ctx, "FetchAll", nil)

	users, err := fetch(ur.db.WithContext(ctx), spec)

	return users, op.End(err)
}

func (ur *UserRepository) Count(ctx context.Context, spec query.Spec) (int, error) {
	ctx, op := ur.start(ctx, "Count", nil)

	total, err := count(ur.db.WithContext(ctx), spec)

	return total, op.End(err)
}

// Execute reads the count and the page inside one REPEATABLE READ transaction.
func (ur *UserRepository) Execute(ctx context.Context, spec query.Spec) ([]domain.User, int, error) {
	ctx, op := ur.start(ctx, "Execute", map[string]interface{}{
		"pagination.limit": spec.Limit(),
		"pagination.page":  spec.PageNumber(),
	})

	var (
		users = []domain.User{}
		total int
	)

	err := ur.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		total, err = count(tx, spec)
		if err != nil {
			return err
		}

		if !domain.PageBounds(spec.Limit(), spec.PageNumber(), total) {
			return nil
		}

		users, err = fetch(tx, spec)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, op.End(database.TranslateError(err, "execute query"))
	}

	return users, total, op.End(nil)
}

func filtered(tx *gorm.DB, spec query.Spec) (*gorm.DB, error) {
	tx = tx.Model(&database.User{})

	filter := spec.Filter()
	if filter == nil {
		return tx, nil
	}

	stmt, args, err := filter.ToSql()
	if err != nil {
		return nil, err
	}

	return tx.Where(stmt, args...), nil
}

func fetch(tx *gorm.DB, spec query.Spec) ([]domain.User, error) {
	scoped, err := filtered(tx, spec)
	if err != nil {
		return nil, err
	}

	var rows []database.User
	err = scoped.
		Order(strings.Join(spec.OrderClauses(), ", ")).
		Limit(spec.Limit()).
		Offset(spec.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, database.TranslateError(err, "fetch users")
	}

	return toDomainList(rows), nil
}

func count(tx *gorm.DB, spec query.Spec) (int, error) {
	scoped, err := filtered(tx, spec)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return 0, database.TranslateError(err, "count users")
	}

	return int(total), nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := ur.start(ctx, "Create", map[string]interface{}{
		"db.operation": "INSERT",
		"user.id":      user.ID.String(),
	})

	row := fromDomain(user)
	if err := ur.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.User{}, op.End(database.TranslateError(err, "create user"))
	}

	return toDomain(row), op.End(nil)
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := ur.start(ctx, "Update", map[string]interface{}{
		"db.operation": "UPDATE",
		"user.id":      user.ID.String(),
	})

	var updated domain.User

	err := ur.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findByID(tx, user.ID); err != nil {
			return err
		}

		err := tx.Model(&database.User{}).
			Where("id = ?", user.ID.String()).
			Updates(user.ToMap()).Error
		if err != nil {
			return database.TranslateError(err, "update user")
		}

		updated, err = findByID(tx, user.ID)
		return err
	})
	if err != nil {
		return domain.User{}, op.End(database.TranslateError(err, "update user"))
	}

	return updated, op.End(nil)
}

func (ur *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, op := ur.start(ctx, "Delete", map[string]interface{}{
		"db.operation": "DELETE",
		"user.id":      id.String(),
	})

	result := ur.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&database.User{})
	if result.Error != nil {
		return op.End(database.TranslateError(result.Error, "delete user"))
	}

	if result.RowsAffected == 0 {
		return op.End(apperror.NotFound(fmt.Sprintf("user %s not found", id)))
	}

	return op.End(nil)
}

func (ur *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, op := ur.start(ctx, "DeleteAll", map[string]interface{}{"db.operation": "DELETE"})

	result := ur.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&database.User{})
	if result.Error != nil {
		return 0, op.End(database.TranslateError(result.Error, "delete users"))
	}

	return result.RowsAffected, op.End(nil)
}

func (ur *UserRepository) Ping(ctx context.Context) error {
	if err := ur.db.Ping(ctx); err != nil {
		return apperror.Wrap(apperror.KindConnectionFailure, "database unreachable", err)
	}

	return nil
}

func fromDomain(user domain.User) database.User {
	return database.User{
		ID:          user.ID.String(),
		UserName:    user.UserName,
		Email:       optional(user.Email),
		PhoneNumber: optional(user.PhoneNumber),
		Password:    user.Password,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toDomain(row database.User) domain.User {
	user := domain.User{
		ID:        uuid.MustParse(row.ID),
		UserName:  row.UserName,
		Password:  row.Password,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}

	if row.Email != nil {
		user.Email = *row.Email
	}

	if row.PhoneNumber != nil {
		user.PhoneNumber = *row.PhoneNumber
	}

	return user
}

func toDomainList(rows []database.User) []domain.User {
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toDomain(row))
	}

	return users
}

func optional(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}
