package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"collectify-be/internal/dto"
	"collectify-be/internal/entity"
	"collectify-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type push struct {
	userIDs []uuid.UUID
	data    map[string]interface{}
}

type recordingDelivery struct {
	mu     sync.Mutex
	pushes []push
}

func (r *recordingDelivery) PushGroupEvent(_ context.Context, userIDs []uuid.UUID, data map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, push{userIDs: append([]uuid.UUID(nil), userIDs...), data: data})
}

func (r *recordingDelivery) all() []push {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]push(nil), r.pushes...)
}

func newGoChannel() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
}

func TestNotificationService_HandleEvent(t *testing.T) {
	ctx := context.Background()
	factory := newMemoryFactory()
	u1 := seedUser(t, factory, "u1@x.com")
	u2 := seedUser(t, factory, "u2@x.com")
	u3 := seedUser(t, factory, "u3@x.com")
	group := seedGroup(t, factory, u1, u2)

	tests := []struct {
		name  string
		event events.Event
		want  []uuid.UUID
	}{
		{
			name:  "note created reaches other members",
			event: events.NewGroupEvent(events.NoteCreated, group.Id.String(), u1.Id.String(), nil),
			want:  []uuid.UUID{u2.Id},
		},
		{
			name: "removed member is told",
			event: events.NewGroupEvent(events.GroupMemberRemoved, group.Id.String(), u1.Id.String(),
				map[string]interface{}{events.KeyMemberID: u3.Id.String()}),
			want: []uuid.UUID{u2.Id, u3.Id},
		},
		{
			name: "deleted group uses the member list from the event",
			event: events.FromPayload(map[string]interface{}{
				events.KeyGroupID: uuid.NewString(),
				events.KeyActorID: u1.Id.String(),
				KeyMemberIDs:      []interface{}{u1.Id.String(), u3.Id.String()},
			}, events.GroupDeleted),
			want: []uuid.UUID{u3.Id},
		},
		{
			name:  "actor alone gets nothing",
			event: events.NewGroupEvent(events.GroupUpdated, seedGroup(t, factory, u3).Id.String(), u3.Id.String(), nil),
		},
		{
			name:  "not a group event",
			event: events.BaseEvent{Type: "USER_CREATED", Data: map[string]interface{}{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delivery := &recordingDelivery{}
			svc := NewNotificationService(factory, nil, newGoChannel(), delivery, nopLog)

			require.NoError(t, svc.HandleEvent(ctx, tt.event))

			pushes := delivery.all()
			if len(tt.want) == 0 {
				assert.Empty(t, pushes)
				return
			}
			require.Len(t, pushes, 1)
			assert.ElementsMatch(t, tt.want, pushes[0].userIDs)
		})
	}
}

func TestNotificationService_ConsumesInProcessBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := newMemoryFactory()
	u1 := seedUser(t, factory, "u1@x.com")
	u2 := seedUser(t, factory, "u2@x.com")
	group := seedGroup(t, factory, u1, u2)

	bus := newGoChannel()
	defer bus.Close()

	delivery := &recordingDelivery{}
	svc := NewNotificationService(factory, nil, bus, delivery, nopLog)
	require.NoError(t, svc.Start(ctx))
	defer svc.Stop()

	publisher := NewPublisherService(bus, nil, nopLog)
	require.NoError(t, publisher.Publish(ctx, events.NewGroupEvent(events.NoteUpdated, group.Id.String(), u1.Id.String(),
		map[string]interface{}{events.KeyNoteID: uuid.NewString()})))

	require.Eventually(t, func() bool { return len(delivery.all()) == 1 }, 2*time.Second, 10*time.Millisecond)

	got := delivery.all()[0]
	assert.Equal(t, []uuid.UUID{u2.Id}, got.userIDs)
	assert.Equal(t, events.NoteUpdated, got.data[events.KeyType])
}

type recordingEmail struct {
	mu   sync.Mutex
	sent [][3]string
}

func (r *recordingEmail) SendMemberAdded(toEmail, groupName, addedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, [3]string{toEmail, groupName, addedBy})
	return nil
}

func (r *recordingEmail) all() [][3]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][3]string(nil), r.sent...)
}

func TestConsumerService_EmailsAddedMember(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := newMemoryFactory()
	nickname := "Ann"
	owner := &entity.User{Id: uuid.New(), Email: "owner@x.com", Nickname: &nickname}
	require.NoError(t, factory.NewUnitOfWork(ctx).UserRepository().Create(ctx, owner))
	newcomer := seedUser(t, factory, "new@x.com")

	bus := newGoChannel()
	defer bus.Close()

	email := &recordingEmail{}
	consumer := NewConsumerService(bus, events.GroupMemberAdded, factory, email, nopLog)
	require.NoError(t, consumer.Consume(ctx))

	groups := NewGroupService(factory, NewPublisherService(bus, nil, nopLog), nopLog)
	group, err := groups.CreateGroup(ctx, owner.Id, &dto.CreateGroupRequest{Name: "Book club"})
	require.NoError(t, err)
	require.NoError(t, groups.AddMemberToGroup(ctx, owner.Id, &dto.GroupMemberRequest{MemberId: newcomer.Id, GroupId: group.Id}))

	require.Eventually(t, func() bool { return len(email.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, [3]string{"new@x.com", "Book club", "Ann"}, email.all()[0])
}

func TestDisplayName(t *testing.T) {
	empty := ""
	nick := "Bob"
	assert.Equal(t, "b@x.com", displayName(nil, "b@x.com"))
	assert.Equal(t, "b@x.com", displayName(&empty, "b@x.com"))
	assert.Equal(t, "Bob", displayName(&nick, "b@x.com"))
}
