package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"userapp/internal/adapter/database/sqlite"
	"userapp/internal/core/apperror"
	"userapp/internal/core/domain"
	"userapp/internal/core/port"
	"userapp/internal/core/query"
	tel "userapp/internal/core/telemetry"
)

const usersTable = "users"

var userColumns = []string{
	domain.ColumnID,
	domain.ColumnUserName,
	domain.ColumnEmail,
	domain.ColumnPhoneNumber,
	domain.ColumnPassword,
	domain.ColumnCreatedAt,
	domain.ColumnUpdatedAt,
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type UserRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (ur *UserRepository) start(ctx context.Context, operation string, attrs map[string]interface{}) (context.Context, *tel.Operation) {
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	attrs["db.system"] = "sqlite"
	attrs["db.table"] = usersTable

	return tel.StartOperation(ctx, ur.telemetry, operation, "user", attrs)
}

func (ur *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	ctx, op := ur.start(ctx, "FindAll", nil)

	stmt, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From(usersTable).
		OrderBy(query.NewSpec(nil).OrderClauses()...).
		ToSql()
	if err != nil {
		return nil, op.End(err)
	}

	op.Query(stmt, args)

	users, err := ur.queryUsers(ctx, ur.db, stmt, args)
	if err != nil {
		return nil, op.End(sqlite.TranslateError(err, "find users"))
	}

	op.SetAttributes(map[string]interface{}{"db.rows_returned": len(users)})

	return users, op.End(nil)
}

func (ur *UserRepository) FindOne(ctx context.Context, criteria map[string]any) (domain.User, error) {
	ctx, op := ur.start(ctx, "FindOne", nil)

	where, err := lookup(criteria)
	if err != nil {
		return domain.User{}, op.End(err)
	}

	stmt, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.User{}, op.End(err)
	}

	op.Query(stmt, args)

	user, err := scanUser(ur.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return domain.User{}, op.End(sqlite.TranslateError(err, "user not found"))
	}

	return user, op.End(nil)
}

func (ur *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	ctx, op := ur.start(ctx, "FindByID", map[string]interface{}{"user.id": id.String()})

	user, err := ur.findByID(ctx, ur.db, id)

	return user, op.End(err)
}

func (ur *UserRepository) findByID(ctx context.Context, q querier, id uuid.UUID) (domain.User, error) {
	stmt, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{domain.ColumnID: id.String()}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	user, err := scanUser(q.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return domain.User{}, sqlite.TranslateError(err, fmt.Sprintf("user %s not found", id))
	}

	return user, nil
}

func (ur *UserRepository) FetchAll(ctx context.Context, spec query.Spec) ([]domain.User, error) {
	ctx, op := ur.start(ctx, "FetchAll", specAttributes(spec))

	users, err := ur.fetch(ctx, ur.db, spec)

	return users, op.End(err)
}

func (ur *UserRepository) Count(ctx context.Context, spec query.Spec) (int, error) {
	ctx, op := ur.start(ctx, "Count", specAttributes(spec))

	total, err := ur.count(ctx, ur.db, spec)

	return total, op.End(err)
}

// Execute counts and fetches inside one transaction so both reads see the
// same rows. Pages past the end are not fetched.
func (ur *UserRepository) Execute(ctx context.Context, spec query.Spec) ([]domain.User, int, error) {
	ctx, op := ur.start(ctx, "Execute", specAttributes(spec))

	tx, err := ur.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, op.End(sqlite.TranslateError(err, "begin transaction"))
	}
	defer tx.Rollback()

	total, err := ur.count(ctx, tx, spec)
	if err != nil {
		return nil, 0, op.End(err)
	}

	users := []domain.User{}
	if domain.PageBounds(spec.Limit(), spec.PageNumber(), total) {
		users, err = ur.fetch(ctx, tx, spec)
		if err != nil {
			return nil, 0, op.End(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, op.End(sqlite.TranslateError(err, "commit transaction"))
	}

	op.SetAttributes(map[string]interface{}{
		"db.rows_returned": len(users),
		"db.total_count":   total,
	})

	return users, total, op.End(nil)
}

func (ur *UserRepository) fetch(ctx context.Context, q querier, spec query.Spec) ([]domain.User, error) {
	stmt, args, err := spec.Apply(ur.db.QueryBuilder.Select(userColumns...).From(usersTable)).ToSql()
	if err != nil {
		return nil, err
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "FetchAll", "user", stmt, args)

	users, err := ur.queryUsers(ctx, q, stmt, args)
	if err != nil {
		return nil, sqlite.TranslateError(err, "fetch users")
	}

	return users, nil
}

func (ur *UserRepository) count(ctx context.Context, q querier, spec query.Spec) (int, error) {
	stmt, args, err := spec.ApplyFilter(ur.db.QueryBuilder.Select("COUNT(*)").From(usersTable)).ToSql()
	if err != nil {
		return 0, err
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "Count", "user", stmt, args)

	var total int
	if err := q.QueryRowContext(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, sqlite.TranslateError(err, "count users")
	}

	return total, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := ur.start(ctx, "Create", map[string]interface{}{
		"db.operation": "INSERT",
		"user.id":      user.ID.String(),
	})

	tx, err := ur.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, op.End(sqlite.TranslateError(err, "begin transaction"))
	}
	defer tx.Rollback()

	stmt, args, err := ur.db.QueryBuilder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			user.ID.String(),
			user.UserName,
			domain.NullIfEmpty(user.Email),
			domain.NullIfEmpty(user.PhoneNumber),
			user.Password,
			user.CreatedAt,
			user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return domain.User{}, op.End(err)
	}

	op.Query(stmt, args)

	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return domain.User{}, op.End(sqlite.TranslateError(err, "create user"))
	}

	saved, err := ur.findByID(ctx, tx, user.ID)
	if err != nil {
		return domain.User{}, op.End(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.User{}, op.End(sqlite.TranslateError(err, "commit transaction"))
	}

	return saved, op.End(nil)
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := ur.start(ctx, "Update", map[string]interface{}{
		"db.operation": "UPDATE",
		"user.id":      user.ID.String(),
	})

	tx, err := ur.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, op.End(sqlite.TranslateError(err, "begin transaction"))
	}
	defer tx.Rollback()

	stmt, args, err := ur.db.QueryBuilder.Update(usersTable).
		SetMap(user.ToMap()).
		Where(sq.Eq{domain.ColumnID: user.ID.String()}).
		ToSql()
	if err != nil {
		return domain.User{}, op.End(err)
	}

	op.Query(stmt, args)

	result, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return domain.User{}, op.End(sqlite.TranslateError(err, "update user"))
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.User{}, op.End(apperror.NotFound(fmt.Sprintf("user %s not found", user.ID)))
	}

	saved, err := ur.findByID(ctx, tx, user.ID)
	if err != nil {
		return domain.User{}, op.End(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.User{}, op.End(sqlite.TranslateError(err, "commit transaction"))
	}

	return saved, op.End(nil)
}

func (ur *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, op := ur.start(ctx, "Delete", map[string]interface{}{
		"db.operation": "DELETE",
		"user.id":      id.String(),
	})

	stmt, args, err := ur.db.QueryBuilder.Delete(usersTable).
		Where(sq.Eq{domain.ColumnID: id.String()}).
		ToSql()
	if err != nil {
		return op.End(err)
	}

	op.Query(stmt, args)

	result, err := ur.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return op.End(sqlite.TranslateError(err, "delete user"))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return op.End(sqlite.TranslateError(err, "delete user"))
	}

	if rowsAffected == 0 {
		return op.End(apperror.NotFound(fmt.Sprintf("user %s not found", id)))
	}

	return op.End(nil)
}

func (ur *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctx, op := ur.start(ctx, "DeleteAll", map[string]interface{}{"db.operation": "DELETE"})

	stmt, args, err := ur.db.QueryBuilder.Delete(usersTable).ToSql()
	if err != nil {
		return 0, op.End(err)
	}

	result, err := ur.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, op.End(sqlite.TranslateError(err, "delete users"))
	}

	deleted, _ := result.RowsAffected()

	return deleted, op.End(nil)
}

func (ur *UserRepository) Ping(ctx context.Context) error {
	if err := ur.db.PingContext(ctx); err != nil {
		return apperror.Wrap(apperror.KindConnectionFailure, "database unreachable", err)
	}

	return nil
}

func (ur *UserRepository) queryUsers(ctx context.Context, q querier, stmt string, args []interface{}) ([]domain.User, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user        domain.User
		id          string
		email       sql.NullString
		phoneNumber sql.NullString
	)

	err := row.Scan(&id, &user.UserName, &email, &phoneNumber, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("stored user id %q: %w", id, err)
	}

	user.Email = email.String
	user.PhoneNumber = phoneNumber.String

	return user, nil
}

// lookup validates FindOne criteria against the lookup allow-list.
func lookup(criteria map[string]any) (sq.Eq, error) {
	if len(criteria) == 0 {
		return nil, apperror.InvalidArgument("at least one criterion is required")
	}

	where := sq.Eq{}
	for key, value := range criteria {
		if !slices.Contains(domain.LookupColumns, key) {
			return nil, apperror.InvalidArgument(fmt.Sprintf("%s cannot be used as a criterion", key))
		}

		if id, ok := value.(uuid.UUID); ok {
			value = id.String()
		}

		where[key] = value
	}

	return where, nil
}

func specAttributes(spec query.Spec) map[string]interface{} {
	return map[string]interface{}{
		"pagination.limit":  spec.Limit(),
		"pagination.page":   spec.PageNumber(),
		"pagination.search": spec.Search() != "",
	}
}
