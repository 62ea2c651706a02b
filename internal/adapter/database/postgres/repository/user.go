package repository

import (
	"context"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	database "userapp/internal/adapter/database/postgres"
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

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

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
	attrs["db.system"] = "postgresql"
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

	users, err := queryUsers(ctx, ur.db, stmt, args)
	if err != nil {
		return nil, op.End(database.TranslateError(err, "find users"))
	}

	return users, op.End(nil)
}

func (ur *UserRepository) FindOne(ctx context.Context, criteria map[string]any) (domain.User, error) {
	ctx, op := ur.start(ctx, "FindOne", nil)

	if len(criteria) == 0 {
		return domain.User{}, op.End(apperror.InvalidArgument("at least one criterion is required"))
	}

	where := sq.Eq{}
	for key, value := range criteria {
		if !slices.Contains(domain.LookupColumns, key) {
			return domain.User{}, op.End(apperror.InvalidArgument(fmt.Sprintf("%s cannot be used as a criterion", key)))
		}

		where[key] = value
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

	user, err := scanUser(ur.db.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.User{}, op.End(database.TranslateError(err, "user not found"))
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
		Where(sq.Eq{domain.ColumnID: id}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	user, err := scanUser(q.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.User{}, database.TranslateError(err, fmt.Sprintf("user %s not found", id))
	}

	return user, nil
}

func (ur *UserRepository) FetchAll(ctx context.Context, spec query.Spec) ([]domain.User, error) {
	ctx, op := ur.start(ctx, "FetchAll", nil)

	users, err := ur.fetch(ctx, ur.db, spec)

	return users, op.End(err)
}

func (ur *UserRepository) Count(ctx context.Context, spec query.Spec) (int, error) {
	ctx, op := ur.start(ctx, "Count", nil)

	total, err := ur.count(ctx, ur.db, spec)

	return total, op.End(err)
}

// Execute reads the count and the page from one REPEATABLE READ snapshot.
func (ur *UserRepository) Execute(ctx context.Context, spec query.Spec) ([]domain.User, int, error) {
	ctx, op := ur.start(ctx, "Execute", map[string]interface{}{
		"pagination.limit": spec.Limit(),
		"pagination.page":  spec.PageNumber(),
	})

	tx, err := ur.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, 0, op.End(database.TranslateError(err, "begin transaction"))
	}
	defer tx.Rollback(ctx)

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

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, op.End(database.TranslateError(err, "commit transaction"))
	}

	return users, total, op.End(nil)
}

func (ur *UserRepository) fetch(ctx context.Context, q querier, spec query.Spec) ([]domain.User, error) {
	stmt, args, err := spec.Apply(ur.db.QueryBuilder.Select(userColumns...).From(usersTable)).ToSql()
	if err != nil {
		return nil, err
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "FetchAll", "user", stmt, args)

	users, err := queryUsers(ctx, q, stmt, args)
	if err != nil {
		return nil, database.TranslateError(err, "fetch users")
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
	if err := q.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, database.TranslateError(err, "count users")
	}

	return total, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := ur.start(ctx, "Create", map[string]interface{}{
		"db.operation": "INSERT",
		"user.id":      user.ID.String(),
	})

	stmt, args, err := ur.db.QueryBuilder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			user.ID,
			user.UserName,
			domain.NullIfEmpty(user.Email),
			domain.NullIfEmpty(user.PhoneNumber),
			user.Password,
			user.CreatedAt,
			user.UpdatedAt,
		).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return domain.User{}, op.End(err)
	}

	op.Query(stmt, args)

	saved, err := scanUser(ur.db.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.User{}, op.End(database.TranslateError(err, "create user"))
	}

	return saved, op.End(nil)
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, op := ur.start(ctx, "Update", map[string]interface{}{
		"db.operation": "UPDATE",
		"user.id":      user.ID.String(),
	})

	stmt, args, err := ur.db.QueryBuilder.Update(usersTable).
		SetMap(user.ToMap()).
		Where(sq.Eq{domain.ColumnID: user.ID}).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return domain.User{}, op.End(err)
	}

	op.Query(stmt, args)

	saved, err := scanUser(ur.db.QueryRow(ctx, stmt, args...))
	if err != nil {
		return domain.User{}, op.End(database.TranslateError(err, fmt.Sprintf("user %s not found", user.ID)))
	}

	return saved, op.End(nil)
}

func (ur *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, op := ur.start(ctx, "Delete", map[string]interface{}{
		"db.operation": "DELETE",
		"user.id":      id.String(),
	})

	stmt, args, err := ur.db.QueryBuilder.Delete(usersTable).
		Where(sq.Eq{domain.ColumnID: id}).
		ToSql()
	if err != nil {
		return op.End(err)
	}

	op.Query(stmt, args)

	tag, err := ur.db.Exec(ctx, stmt, args...)
	if err != nil {
		return op.End(database.TranslateError(err, "delete user"))
	}

	if tag.RowsAffected() == 0 {
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

	tag, err := ur.db.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, op.End(database.TranslateError(err, "delete users"))
	}

	return tag.RowsAffected(), op.End(nil)
}

func (ur *UserRepository) Ping(ctx context.Context) error {
	if err := ur.db.Pool.Ping(ctx); err != nil {
		return apperror.Wrap(apperror.KindConnectionFailure, "database unreachable", err)
	}

	return nil
}

func columnList() string {
	out := ""
	for i, column := range userColumns {
		if i > 0 {
			out += ", "
		}
		out += column
	}

	return out
}

func queryUsers(ctx context.Context, q querier, stmt string, args []interface{}) ([]domain.User, error) {
	rows, err := q.Query(ctx, stmt, args...)
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

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user        domain.User
		email       *string
		phoneNumber *string
	)

	err := row.Scan(&user.ID, &user.UserName, &email, &phoneNumber, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}

	if email != nil {
		user.Email = *email
	}

	if phoneNumber != nil {
		user.PhoneNumber = *phoneNumber
	}

	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return user, nil
}
