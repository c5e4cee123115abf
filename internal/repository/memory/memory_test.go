package memory

import (
	"context"
	"testing"
	"time"

	"collectify-be/internal/entity"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type tickingClock struct {
	t time.Time
}

func (c *tickingClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newStore() *Store {
	s := NewStore()
	clock := &tickingClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.SetClock(clock.now)
	return s
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newStore())

	require.NoError(t, repo.Create(ctx, &entity.User{Email: "a@x.com"}))
	err := repo.Create(ctx, &entity.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, contract.ErrDuplicate)

	found, err := repo.FindOne(ctx, specification.ByEmail{Email: "a@x.com"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.NotEqual(t, uuid.Nil, found.Id)

	missing, err := repo.FindOne(ctx, specification.ByEmail{Email: "b@x.com"})
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_Roles(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newStore())
	id := uuid.New()

	require.NoError(t, repo.AddRole(ctx, id, "user"))
	require.NoError(t, repo.AddRole(ctx, id, "user"))
	require.NoError(t, repo.AddRole(ctx, id, "admin"))

	roles, err := repo.GetRoles(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, roles)
}

func TestFindAll_OrderingAndPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newStore())
	creator := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		n := &entity.Note{CreatorId: &creator}
		require.NoError(t, repo.Create(ctx, n))
		ids = append(ids, n.Id)
	}

	notes, err := repo.FindAll(ctx,
		specification.ByCreatorID{CreatorID: creator},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	require.NoError(t, err)
	require.Len(t, notes, 4)
	assert.Equal(t, ids[3], notes[0].Id)
	assert.Equal(t, ids[0], notes[3].Id)

	page, err := repo.FindAll(ctx,
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: 2, Offset: 1},
	)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[1], page[0].Id)
	assert.Equal(t, ids[2], page[1].Id)
}

type rawWhere struct{}

func (rawWhere) Apply(db *gorm.DB) *gorm.DB { return db.Where("1 = 1") }

func TestFindAll_UnsupportedSpecification(t *testing.T) {
	repo := NewGroupRepository(newStore())

	_, err := repo.FindAll(context.Background(), rawWhere{})
	assert.Error(t, err)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewGroupRepository(newStore())

	g := &entity.Group{Name: "original"}
	require.NoError(t, repo.Create(ctx, g))

	found, err := repo.FindOne(ctx, specification.ByID{ID: g.Id})
	require.NoError(t, err)
	found.Name = "mutated"

	again, _ := repo.FindOne(ctx, specification.ByID{ID: g.Id})
	assert.Equal(t, "original", again.Name)
}

func TestGroupMemberRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGroupMemberRepository(newStore())
	member, group := uuid.New(), uuid.New()

	require.NoError(t, repo.Create(ctx, &entity.GroupMember{MemberId: member, GroupId: group}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.GroupMember{MemberId: member, GroupId: group}), contract.ErrDuplicate)

	count, err := repo.Count(ctx, specification.ByGroupID{GroupID: group}, specification.ByMemberID{MemberID: member})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	removed, err := repo.Delete(ctx, member, group)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.Delete(ctx, member, group)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

func TestRefreshTokenRepository_DeleteWhereIsSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewRefreshTokenRepository(newStore())
	userId := uuid.New()

	require.NoError(t, repo.Create(ctx, &entity.RefreshToken{
		UserId:    userId,
		TokenHash: "hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.ByTokenHash{Hash: "hash"},
		specification.ExpiresAfter{Time: time.Now()},
	}

	first, err := repo.DeleteWhere(ctx, specs...)
	require.NoError(t, err)
	second, err := repo.DeleteWhere(ctx, specs...)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(0), second)
}

func TestUnitOfWork_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	factory := NewRepositoryFactory(store)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.GroupRepository().Create(ctx, &entity.Group{Name: "temp"}))
	require.NoError(t, uow.Rollback())

	groups, err := factory.NewUnitOfWork(ctx).GroupRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)

	uow = factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.GroupRepository().Create(ctx, &entity.Group{Name: "kept"}))
	require.NoError(t, uow.Commit())

	groups, err = factory.NewUnitOfWork(ctx).GroupRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestUnitOfWork_RollbackKeepsOtherWriters(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	factory := NewRepositoryFactory(store)

	userId := uuid.New()
	seeded := &entity.RefreshToken{UserId: userId, TokenHash: "old", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, factory.NewUnitOfWork(ctx).RefreshTokenRepository().Create(ctx, seeded))

	tx := factory.NewUnitOfWork(ctx)
	require.NoError(t, tx.Begin(ctx))
	removed, err := tx.RefreshTokenRepository().DeleteWhere(ctx, specification.ByTokenHash{Hash: "old"})
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	require.NoError(t, tx.GroupRepository().Create(ctx, &entity.Group{Name: "temp"}))
	require.NoError(t, tx.UserRepository().AddRole(ctx, userId, entity.RoleUser))

	// a login on another request while the transaction is open
	other := factory.NewUnitOfWork(ctx)
	require.NoError(t, other.RefreshTokenRepository().Create(ctx,
		&entity.RefreshToken{UserId: uuid.New(), TokenHash: "login", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, other.NoteRepository().Create(ctx, &entity.Note{Title: "t", Content: "c"}))

	require.NoError(t, tx.Rollback())

	check := factory.NewUnitOfWork(ctx)
	login, err := check.RefreshTokenRepository().FindOne(ctx, specification.ByTokenHash{Hash: "login"})
	require.NoError(t, err)
	assert.NotNil(t, login)

	restored, err := check.RefreshTokenRepository().FindOne(ctx, specification.ByTokenHash{Hash: "old"})
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, seeded.Id, restored.Id)

	notes, err := check.NoteRepository().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), notes)

	groups, err := check.GroupRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)

	roles, err := check.UserRepository().GetRoles(ctx, userId)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestUnitOfWork_StateErrors(t *testing.T) {
	ctx := context.Background()
	uow := NewRepositoryFactory(newStore()).NewUnitOfWork(ctx)

	assert.Error(t, uow.Commit())
	assert.Error(t, uow.Rollback())

	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx))
	require.NoError(t, uow.Commit())
}
