package integration

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"collectify-be/internal/entity"
	"collectify-be/internal/model"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"
	"collectify-be/internal/repository/unitofwork"
	"collectify-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.UserRole{},
		&model.UserRefreshToken{},
		&model.Group{},
		&model.GroupMember{},
		&model.Note{},
	))
	return db
}

func createUser(t *testing.T, uow unitofwork.UnitOfWork) *entity.User {
	t.Helper()
	user := &entity.User{Email: uuid.NewString() + "@it.local", PasswordHash: "x"}
	require.NoError(t, uow.UserRepository().Create(context.Background(), user))
	require.NotEqual(t, uuid.Nil, user.Id)
	return user
}

func TestGormConnection(t *testing.T) {
	db := openDB(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(context.Background())
	_, err = uow.UserRepository().Count(context.Background())
	assert.NoError(t, err)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	user := createUser(t, uow)
	err := uow.UserRepository().Create(ctx, &entity.User{Email: user.Email, PasswordHash: "y"})
	assert.True(t, errors.Is(err, contract.ErrDuplicate))

	require.NoError(t, uow.UserRepository().AddRole(ctx, user.Id, entity.RoleUser))
	roles, err := uow.UserRepository().GetRoles(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleUser}, roles)
}

func TestGroupLifecycle(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	owner := createUser(t, uow)
	member := createUser(t, uow)

	group := &entity.Group{Name: "Integration", CreatorId: &owner.Id}
	require.NoError(t, uow.GroupRepository().Create(ctx, group))

	members := uow.GroupMemberRepository()
	require.NoError(t, members.Create(ctx, &entity.GroupMember{MemberId: owner.Id, GroupId: group.Id}))
	require.NoError(t, members.Create(ctx, &entity.GroupMember{MemberId: member.Id, GroupId: group.Id}))

	err := members.Create(ctx, &entity.GroupMember{MemberId: member.Id, GroupId: group.Id})
	assert.True(t, errors.Is(err, contract.ErrDuplicate))

	count, err := members.Count(ctx, specification.ByGroupID{GroupID: group.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	note := &entity.Note{Title: "ciphertext", Content: "ciphertext", CreatorId: &member.Id, GroupId: &group.Id}
	require.NoError(t, uow.NoteRepository().Create(ctx, note))

	// group removal runs inside one transaction, as the service does it
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.NoteRepository().DeleteAllByGroupId(ctx, group.Id))
	require.NoError(t, uow.GroupMemberRepository().DeleteAllByGroupId(ctx, group.Id))
	require.NoError(t, uow.GroupRepository().Delete(ctx, group.Id))
	require.NoError(t, uow.Commit())

	fresh := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	found, err := fresh.GroupRepository().FindOne(ctx, specification.ByID{ID: group.Id})
	require.NoError(t, err)
	assert.Nil(t, found)

	notes, err := fresh.NoteRepository().Count(ctx, specification.ByGroupID{GroupID: group.Id})
	require.NoError(t, err)
	assert.Zero(t, notes)
}

func TestRefreshTokenPurge(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	user := createUser(t, uow)
	now := time.Now()

	tokens := uow.RefreshTokenRepository()
	require.NoError(t, tokens.Create(ctx, &entity.RefreshToken{UserId: user.Id, TokenHash: uuid.NewString(), ExpiresAt: now.Add(-time.Minute)}))
	live := &entity.RefreshToken{UserId: user.Id, TokenHash: uuid.NewString(), ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, tokens.Create(ctx, live))

	removed, err := tokens.DeleteWhere(ctx, specification.UserOwnedBy{UserID: user.Id}, specification.ExpiredAt{Time: now})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	found, err := tokens.FindOne(ctx, specification.ByTokenHash{Hash: live.TokenHash})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.Id, found.UserId)
}
