package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	. "userapp/pkg/test"
	"userapp/pkg/test/factory"

	"userapp/internal/adapter/database/sqlite/repository"
	"userapp/internal/core/apperror"
	"userapp/internal/core/domain"
	"userapp/internal/core/port"
	"userapp/internal/core/query"
	"userapp/internal/core/telemetry"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	repo port.UserRepository
	base time.Time
}

func (s *UserRepositoryTestSuite) SetupTest() {
	db := InitTestDB()
	probe := telemetry.NewNoOpProbe()

	s.repo = repository.NewUserRepository(db, probe)
	s.base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestUserRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserRepositoryTestSuite))
}

func (s *UserRepositoryTestSuite) newUser(i int, overrides ...map[string]any) domain.User {
	data := map[string]any{
		"CreatedAt": s.base.Add(time.Duration(i) * time.Minute),
		"UpdatedAt": s.base.Add(time.Duration(i) * time.Minute),
	}

	return factory.NewUser[domain.User](append([]map[string]any{data}, overrides...)...)
}

func (s *UserRepositoryTestSuite) seed(n int) []domain.User {
	users := make([]domain.User, 0, n)

	for i := 0; i < n; i++ {
		user, err := s.repo.Create(context.Background(), s.newUser(i))
		s.Require().NoError(err)
		users = append(users, user)
	}

	return users
}

func (s *UserRepositoryTestSuite) TestRepository_Create_RoundTrip() {
	ctx := context.Background()
	user := s.newUser(1, map[string]any{
		"UserName":    "user1",
		"Email":       "user1@gmail.com",
		"PhoneNumber": "+6282246924990",
	})

	created, err := s.repo.Create(ctx, user)
	Expect(err).To(BeNil())

	found, err := s.repo.FindByID(ctx, user.ID)
	Expect(err).To(BeNil())

	Expect(found.ID).To(Equal(user.ID))
	Expect(found.UserName).To(Equal("user1"))
	Expect(found.Email).To(Equal("user1@gmail.com"))
	Expect(found.PhoneNumber).To(Equal("+6282246924990"))
	Expect(found.Password).To(Equal(user.Password))
	Expect(found.CreatedAt.Equal(user.CreatedAt)).To(BeTrue())
	Expect(created.ID).To(Equal(found.ID))
}

func (s *UserRepositoryTestSuite) TestRepository_Create_OptionalFieldsAbsent() {
	ctx := context.Background()

	first, err := s.repo.Create(ctx, s.newUser(1, map[string]any{"Email": "", "PhoneNumber": ""}))
	Expect(err).To(BeNil())

	second, err := s.repo.Create(ctx, s.newUser(2, map[string]any{"Email": "", "PhoneNumber": ""}))
	Expect(err).To(BeNil())

	Expect(first.Email).To(BeEmpty())
	Expect(second.PhoneNumber).To(BeEmpty())
}

func (s *UserRepositoryTestSuite) TestRepository_Create_DuplicateUniqueField() {
	ctx := context.Background()

	_, err := s.repo.Create(ctx, s.newUser(1, map[string]any{"Email": "same@example.com"}))
	Expect(err).To(BeNil())

	_, err = s.repo.Create(ctx, s.newUser(2, map[string]any{"Email": "same@example.com"}))

	assert.True(s.T(), apperror.IsKind(err, apperror.KindConstraintViolation))
	assert.Contains(s.T(), err.Error(), "email already exists")
}

func (s *UserRepositoryTestSuite) TestRepository_Create_DuplicateID() {
	ctx := context.Background()
	user := s.newUser(1)

	_, err := s.repo.Create(ctx, user)
	Expect(err).To(BeNil())

	_, err = s.repo.Create(ctx, s.newUser(2, map[string]any{"ID": user.ID}))

	assert.True(s.T(), apperror.IsKind(err, apperror.KindConstraintViolation))
}

func (s *UserRepositoryTestSuite) TestRepository_FindByID_NotFound() {
	_, err := s.repo.FindByID(context.Background(), uuid.New())

	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)
}

func (s *UserRepositoryTestSuite) TestRepository_FindOne() {
	ctx := context.Background()
	users := s.seed(3)

	found, err := s.repo.FindOne(ctx, map[string]any{domain.ColumnUserName: users[1].UserName})
	Expect(err).To(BeNil())
	Expect(found.ID).To(Equal(users[1].ID))

	found, err = s.repo.FindOne(ctx, map[string]any{domain.ColumnID: users[2].ID})
	Expect(err).To(BeNil())
	Expect(found.UserName).To(Equal(users[2].UserName))

	_, err = s.repo.FindOne(ctx, map[string]any{domain.ColumnEmail: "nobody@example.com"})
	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)

	_, err = s.repo.FindOne(ctx, map[string]any{domain.ColumnPassword: "x"})
	assert.ErrorIs(s.T(), err, apperror.ErrInvalidArgument)

	_, err = s.repo.FindOne(ctx, map[string]any{})
	assert.ErrorIs(s.T(), err, apperror.ErrInvalidArgument)
}

func (s *UserRepositoryTestSuite) TestRepository_FindAll() {
	s.seed(3)

	users, err := s.repo.FindAll(context.Background())

	Expect(err).To(BeNil())
	Expect(users).To(HaveLen(3))
}

func (s *UserRepositoryTestSuite) TestRepository_Update() {
	ctx := context.Background()
	user := s.seed(1)[0]

	user.UserName = "renamed"
	user.Email = ""
	user.PhoneNumber = "+6281111111111"
	user.Password = "new-hash"
	user.UpdatedAt = s.base.Add(time.Hour)

	updated, err := s.repo.Update(ctx, user)

	Expect(err).To(BeNil())
	Expect(updated.UserName).To(Equal("renamed"))
	Expect(updated.Email).To(BeEmpty())
	Expect(updated.PhoneNumber).To(Equal("+6281111111111"))
	Expect(updated.Password).To(Equal("new-hash"))
	Expect(updated.UpdatedAt.Equal(s.base.Add(time.Hour))).To(BeTrue())
	Expect(updated.CreatedAt.Equal(user.CreatedAt)).To(BeTrue())
}

func (s *UserRepositoryTestSuite) TestRepository_Update_NotFound() {
	_, err := s.repo.Update(context.Background(), s.newUser(1))

	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)
}

func (s *UserRepositoryTestSuite) TestRepository_Update_Conflict() {
	ctx := context.Background()
	users := s.seed(2)

	users[1].UserName = users[0].UserName
	_, err := s.repo.Update(ctx, users[1])

	assert.True(s.T(), apperror.IsKind(err, apperror.KindConstraintViolation))
}

func (s *UserRepositoryTestSuite) TestRepository_Delete_Twice() {
	ctx := context.Background()
	user := s.seed(1)[0]

	err := s.repo.Delete(ctx, user.ID)
	Expect(err).To(BeNil())

	_, err = s.repo.FindByID(ctx, user.ID)
	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)

	err = s.repo.Delete(ctx, user.ID)
	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)
}

func (s *UserRepositoryTestSuite) TestRepository_DeleteAll() {
	s.seed(4)

	deleted, err := s.repo.DeleteAll(context.Background())

	Expect(err).To(BeNil())
	Expect(deleted).To(Equal(int64(4)))
}

func (s *UserRepositoryTestSuite) TestRepository_Execute_Pages() {
	ctx := context.Background()
	users := s.seed(7)
	spec := query.NewSpec(domain.SearchableColumns)

	page, total, err := s.repo.Execute(ctx, spec.Paginate(5, 1))
	Expect(err).To(BeNil())
	Expect(total).To(Equal(7))
	Expect(page).To(HaveLen(5))
	Expect(page[0].ID).To(Equal(users[0].ID))

	page, total, err = s.repo.Execute(ctx, spec.Paginate(5, 2))
	Expect(err).To(BeNil())
	Expect(total).To(Equal(7))
	Expect(page).To(HaveLen(2))
	Expect(page[1].ID).To(Equal(users[6].ID))

	page, total, err = s.repo.Execute(ctx, spec.Paginate(5, 3))
	Expect(err).To(BeNil())
	Expect(total).To(Equal(7))
	Expect(page).To(BeEmpty())
}

func (s *UserRepositoryTestSuite) TestRepository_Execute_SearchAndOrder() {
	ctx := context.Background()

	for i, name := range []string{"alice", "bob", "alicia", "carol"} {
		_, err := s.repo.Create(ctx, s.newUser(i, map[string]any{
			"UserName": name,
			"Email":    fmt.Sprintf("%s@example.com", name),
		}))
		s.Require().NoError(err)
	}

	spec := query.NewSpec(domain.SearchableColumns).
		WithSearch("ALI").
		OrderBy(domain.ColumnUserName, domain.SortDesc).
		Paginate(10, 1)

	page, total, err := s.repo.Execute(ctx, spec)

	Expect(err).To(BeNil())
	Expect(total).To(Equal(2))
	Expect(page).To(HaveLen(2))
	Expect(page[0].UserName).To(Equal("alicia"))
	Expect(page[1].UserName).To(Equal("alice"))

	count, err := s.repo.Count(ctx, spec)
	Expect(err).To(BeNil())
	Expect(count).To(Equal(2))

	fetched, err := s.repo.FetchAll(ctx, spec)
	Expect(err).To(BeNil())
	Expect(fetched).To(HaveLen(2))
}

func (s *UserRepositoryTestSuite) TestRepository_Execute_SearchTreatsWildcardsLiterally() {
	ctx := context.Background()
	s.seed(3)

	_, total, err := s.repo.Execute(ctx, query.NewSpec(domain.SearchableColumns).WithSearch("%"))

	Expect(err).To(BeNil())
	Expect(total).To(Equal(0))
}

func (s *UserRepositoryTestSuite) TestRepository_Ping() {
	assert.NoError(s.T(), s.repo.Ping(context.Background()))
}
