package service

import (
	"context"
	"sync"
	"testing"

	"collectify-be/internal/entity"
	"collectify-be/internal/pkg/cipher"
	"collectify-be/internal/pkg/logger"
	"collectify-be/internal/repository/memory"
	"collectify-be/internal/repository/unitofwork"
	"collectify-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testNoteKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

var nopLog = logger.NewNopLogger()

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func (r *recordingPublisher) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func newMemoryFactory() unitofwork.RepositoryFactory {
	return memory.NewRepositoryFactory(memory.NewStore())
}

func newTestCipher(t *testing.T) *cipher.Cipher {
	t.Helper()
	c, err := cipher.New(testNoteKey)
	require.NoError(t, err)
	return c
}

func seedUser(t *testing.T, factory unitofwork.RepositoryFactory, email string) *entity.User {
	t.Helper()
	ctx := context.Background()
	user := &entity.User{Id: uuid.New(), Email: email, PasswordHash: "x"}
	require.NoError(t, factory.NewUnitOfWork(ctx).UserRepository().Create(ctx, user))
	return user
}

func seedGroup(t *testing.T, factory unitofwork.RepositoryFactory, creator *entity.User, members ...*entity.User) *entity.Group {
	t.Helper()
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	creatorId := creator.Id
	group := &entity.Group{Id: uuid.New(), Name: "Family", CreatorId: &creatorId}
	require.NoError(t, uow.GroupRepository().Create(ctx, group))

	for _, u := range append([]*entity.User{creator}, members...) {
		require.NoError(t, uow.GroupMemberRepository().Create(ctx, &entity.GroupMember{MemberId: u.Id, GroupId: group.Id}))
	}
	return group
}
