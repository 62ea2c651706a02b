package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	. "userapp/pkg/test"
	"userapp/pkg/test/factory"

	database "userapp/internal/adapter/database/mysql"
	"userapp/internal/adapter/database/mysql/repository"
	"userapp/internal/core/apperror"
	"userapp/internal/core/domain"
	"userapp/internal/core/port"
	"userapp/internal/core/query"
	"userapp/internal/core/telemetry"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	db   *database.DB
	repo port.UserRepository
}

func (s *UserRepositoryTestSuite) SetupSuite() {
	dsn := SkipUnlessEnv(s.T(), "MYSQL_DSN")

	db, err := database.NewDB(database.Config{DSN: dsn})
	s.Require().NoError(err)

	s.db = db
	s.repo = repository.NewUserRepository(db, telemetry.NewNoOpProbe())
}

func (s *UserRepositoryTestSuite) SetupTest() {
	_, err := s.repo.DeleteAll(context.Background())
	s.Require().NoError(err)
}

func (s *UserRepositoryTestSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func TestUserRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserRepositoryTestSuite))
}

func (s *UserRepositoryTestSuite) newUser(i int, overrides ...map[string]any) domain.User {
	at := time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC)
	data := map[string]any{"CreatedAt": at, "UpdatedAt": at}

	return factory.NewUser[domain.User](append([]map[string]any{data}, overrides...)...)
}

func (s *UserRepositoryTestSuite) TestRepository_CreateAndFind() {
	ctx := context.Background()
	user := s.newUser(1, map[string]any{"PhoneNumber": ""})

	created, err := s.repo.Create(ctx, user)
	Expect(err).To(BeNil())
	Expect(created.PhoneNumber).To(BeEmpty())

	found, err := s.repo.FindByID(ctx, user.ID)
	Expect(err).To(BeNil())
	Expect(found.UserName).To(Equal(user.UserName))
	Expect(found.CreatedAt.Equal(user.CreatedAt)).To(BeTrue())

	byEmail, err := s.repo.FindOne(ctx, map[string]any{domain.ColumnEmail: user.Email})
	Expect(err).To(BeNil())
	Expect(byEmail.ID).To(Equal(user.ID))
}

func (s *UserRepositoryTestSuite) TestRepository_Create_Duplicate() {
	ctx := context.Background()

	_, err := s.repo.Create(ctx, s.newUser(1, map[string]any{"UserName": "taken"}))
	Expect(err).To(BeNil())

	_, err = s.repo.Create(ctx, s.newUser(2, map[string]any{"UserName": "taken"}))

	assert.ErrorIs(s.T(), err, apperror.ErrConstraintViolation)
	assert.Contains(s.T(), err.Error(), "user_name already exists")
}

func (s *UserRepositoryTestSuite) TestRepository_Execute_Search() {
	ctx := context.Background()
	for i, name := range []string{"alice", "bob", "alicia"} {
		_, err := s.repo.Create(ctx, s.newUser(i, map[string]any{"UserName": name}))
		s.Require().NoError(err)
	}

	spec := query.NewSpec(domain.SearchableColumns).
		WithSearch("ali").
		OrderBy(domain.ColumnUserName, domain.SortAsc)

	page, total, err := s.repo.Execute(ctx, spec)

	Expect(err).To(BeNil())
	Expect(total).To(Equal(2))
	Expect(page[0].UserName).To(Equal("alice"))
	Expect(page[1].UserName).To(Equal("alicia"))
}

func (s *UserRepositoryTestSuite) TestRepository_UpdateAndDelete() {
	ctx := context.Background()
	user, err := s.repo.Create(ctx, s.newUser(1))
	s.Require().NoError(err)

	user.UserName = "renamed"
	updated, err := s.repo.Update(ctx, user)
	Expect(err).To(BeNil())
	Expect(updated.UserName).To(Equal("renamed"))

	Expect(s.repo.Delete(ctx, user.ID)).To(Succeed())
	assert.ErrorIs(s.T(), s.repo.Delete(ctx, user.ID), apperror.ErrNotFound)

	_, err = s.repo.Update(ctx, s.newUser(2, map[string]any{"ID": uuid.New()}))
	assert.ErrorIs(s.T(), err, apperror.ErrNotFound)
}

func (s *UserRepositoryTestSuite) TestRepository_Execute() {
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, err := s.repo.Create(ctx, s.newUser(i))
		s.Require().NoError(err)
	}

	spec := query.NewSpec(domain.SearchableColumns)

	page, total, err := s.repo.Execute(ctx, spec.Paginate(5, 2))
	Expect(err).To(BeNil())
	Expect(total).To(Equal(7))
	Expect(page).To(HaveLen(2))

	page, total, err = s.repo.Execute(ctx, spec.Paginate(5, 3))
	Expect(err).To(BeNil())
	Expect(total).To(Equal(7))
	Expect(page).To(BeEmpty())
}
