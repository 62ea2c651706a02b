package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"userapp/internal/core/apperror"
	"userapp/internal/core/domain"
	"userapp/internal/core/port"
	"userapp/internal/core/query"
	"userapp/internal/core/telemetry"
	"userapp/internal/core/util"
)

const (
	serviceName     = "user"
	cacheKeyPrefix  = "user:"
	defaultCacheTTL = 5 * time.Minute
)

type UserService struct {
	repo      port.UserRepository
	cache     port.CacheRepository
	cacheTTL  time.Duration
	telemetry port.Telemetry
	metrics   *telemetry.AppMetrics
	hashCost  int
	now       func() time.Time
}

type Option func(*UserService)

// WithCache enables read-through caching of FindByID.
func WithCache(cache port.CacheRepository, ttl time.Duration) Option {
	return func(s *UserService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithTelemetry(probe port.Telemetry) Option {
	return func(s *UserService) {
		if probe != nil {
			s.telemetry = probe
		}
	}
}

func WithMetrics(metrics *telemetry.AppMetrics) Option {
	return func(s *UserService) {
		s.metrics = metrics
	}
}

// WithPasswordCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithPasswordCost(cost int) Option {
	return func(s *UserService) {
		s.hashCost = cost
	}
}

func NewUserService(repo port.UserRepository, opts ...Option) *UserService {
	s := &UserService{
		repo:      repo,
		cacheTTL:  defaultCacheTTL,
		telemetry: telemetry.NewNoOpProbe(),
		hashCost:  bcrypt.DefaultCost,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *UserService) observe(ctx context.Context, operation string, attrs map[string]interface{}) (context.Context, func(error)) {
	ctx, span := s.telemetry.StartServiceSpan(ctx, serviceName, operation, attrs)
	start := time.Now()

	return ctx, func(err error) {
		s.telemetry.RecordServiceOperation(ctx, serviceName, operation, time.Since(start), err)

		if s.metrics != nil {
			s.metrics.RecordUserOperation(ctx, operation, err)
		}

		span.End()
	}
}

func (s *UserService) FindAll(ctx context.Context) (users []domain.User, err error) {
	ctx, done := s.observe(ctx, "find_all", nil)
	defer func() { done(err) }()

	return s.repo.FindAll(ctx)
}

// FindAllWithQuery runs one page of a filtered, ordered listing. The count and
// the page are read from the same snapshot.
func (s *UserService) FindAllWithQuery(ctx context.Context, q domain.PageQuery) (page domain.PageResult, err error) {
	ctx, done := s.observe(ctx, "find_all_with_query", map[string]interface{}{
		"page.limit":  q.Limit,
		"page.number": q.PageNumber,
		"page.search": q.Search != "",
	})
	defer func() { done(err) }()

	if q.Limit <= 0 {
		return domain.PageResult{}, apperror.InvalidArgument("limit must be greater than zero")
	}

	if q.PageNumber <= 0 {
		q.PageNumber = domain.DefaultPageNumber
	}

	if q.OrderByKey != "" && !slices.Contains(domain.SortableColumns, q.OrderByKey) {
		slog.WarnContext(ctx, "Ignoring unsortable order key", "order_by_key", q.OrderByKey)
		q.OrderByKey = ""
	}

	spec := query.FromPageQuery(q, domain.SearchableColumns)

	items, total, err := s.repo.Execute(ctx, spec)
	if err != nil {
		return domain.PageResult{}, err
	}

	return domain.ComputePage(q.Limit, q.PageNumber, total, items)
}

func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (user domain.User, err error) {
	ctx, done := s.observe(ctx, "find_by_id", map[string]interface{}{"user.id": id.String()})
	defer func() { done(err) }()

	if cached, ok := s.cached(ctx, id); ok {
		return cached, nil
	}

	user, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	s.store(ctx, user)

	return user, nil
}

func (s *UserService) FindByUserName(ctx context.Context, userName string) (domain.User, error) {
	return s.findOne(ctx, "find_by_user_name", domain.ColumnUserName, userName)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findOne(ctx, "find_by_email", domain.ColumnEmail, email)
}

func (s *UserService) FindByPhoneNumber(ctx context.Context, phoneNumber string) (domain.User, error) {
	return s.findOne(ctx, "find_by_phone_number", domain.ColumnPhoneNumber, phoneNumber)
}

func (s *UserService) findOne(ctx context.Context, operation, column, value string) (user domain.User, err error) {
	ctx, done := s.observe(ctx, operation, nil)
	defer func() { done(err) }()

	return s.repo.FindOne(ctx, map[string]any{column: value})
}

// Create assigns an id when none is given, hashes the password and stamps
// both timestamps.
func (s *UserService) Create(ctx context.Context, user domain.User) (created domain.User, err error) {
	ctx, done := s.observe(ctx, "create", nil)
	defer func() { done(err) }()

	if !user.HasID() {
		user.ID = uuid.New()
	}

	hash, err := s.hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	user.Password = hash
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err = s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	s.telemetry.RecordBusinessEvent(ctx, "created", "user", created.ID.String(), map[string]interface{}{
		"user_name": created.UserName,
	})

	return created, nil
}

// Update overwrites every mutable field of an existing user.
func (s *UserService) Update(ctx context.Context, user domain.User) (updated domain.User, err error) {
	ctx, done := s.observe(ctx, "update", map[string]interface{}{"user.id": user.ID.String()})
	defer func() { done(err) }()

	existing, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return domain.User{}, err
	}

	hash, err := s.hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}

	user.Password = hash
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = s.now()

	updated, err = s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	s.evict(ctx, user.ID)

	s.telemetry.RecordBusinessEvent(ctx, "updated", "user", updated.ID.String(), nil)

	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, done := s.observe(ctx, "delete", map[string]interface{}{"user.id": id.String()})
	defer func() { done(err) }()

	if _, err = s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.evict(ctx, id)

	s.telemetry.RecordBusinessEvent(ctx, "deleted", "user", id.String(), nil)

	return nil
}

func (s *UserService) DeleteAll(ctx context.Context) (deleted int64, err error) {
	ctx, done := s.observe(ctx, "delete_all", nil)
	defer func() { done(err) }()

	deleted, err = s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPrefix(ctx, cacheKeyPrefix); err != nil {
			slog.WarnContext(ctx, "Failed to clear user cache", "error", err)
		}
	}

	return deleted, nil
}

func (s *UserService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := util.GenerateEncrypt(password, s.hashCost)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInvalidArgument, "password cannot be hashed", err)
	}

	return hash, nil
}

func cacheKey(id uuid.UUID) string {
	return cacheKeyPrefix + id.String()
}

// Cache failures never fail the request; the store stays the source of truth.
func (s *UserService) cached(ctx context.Context, id uuid.UUID) (domain.User, bool) {
	if s.cache == nil {
		return domain.User{}, false
	}

	data, err := s.cache.Get(ctx, cacheKey(id))
	if err != nil {
		slog.WarnContext(ctx, "Failed to read user cache", "user_id", id, "error", err)
		return domain.User{}, false
	}

	if data == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheMiss(ctx, "user")
		}
		return domain.User{}, false
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		slog.WarnContext(ctx, "Discarding unreadable cache entry", "user_id", id, "error", err)
		return domain.User{}, false
	}

	if s.metrics != nil {
		s.metrics.RecordCacheHit(ctx, "user")
	}

	return user, true
}

func (s *UserService) store(ctx context.Context, user domain.User) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, cacheKey(user.ID), data, s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "Failed to write user cache", "user_id", user.ID, "error", err)
	}
}

func (s *UserService) evict(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		slog.WarnContext(ctx, "Failed to evict user cache", "user_id", id, "error", err)
	}
}
