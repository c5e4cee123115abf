package service

import (
	"context"
	"testing"

	"collectify-be/internal/dto"
	"collectify-be/internal/entity"
	"collectify-be/internal/pkg/apperror"
	"collectify-be/internal/repository/specification"
	"collectify-be/internal/repository/unitofwork"
	"collectify-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupFixture struct {
	factory   unitofwork.RepositoryFactory
	publisher *recordingPublisher
	service   IGroupService
	u1        *entity.User
	u2        *entity.User
	u3        *entity.User
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()
	factory := newMemoryFactory()
	publisher := &recordingPublisher{}
	return &groupFixture{
		factory:   factory,
		publisher: publisher,
		service:   NewGroupService(factory, publisher, nopLog),
		u1:        seedUser(t, factory, "u1@x.com"),
		u2:        seedUser(t, factory, "u2@x.com"),
		u3:        seedUser(t, factory, "u3@x.com"),
	}
}

func (f *groupFixture) create(t *testing.T, owner *entity.User, name string) *dto.SimpleGroup {
	t.Helper()
	group, err := f.service.CreateGroup(context.Background(), owner.Id, &dto.CreateGroupRequest{Name: name})
	require.NoError(t, err)
	return group
}

func TestGroupService_CreateAddsCreatorAsMember(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)

	group := f.create(t, f.u1, "  Trip  ")
	assert.Equal(t, "Trip", group.Name)
	require.NotNil(t, group.CreatorId)
	assert.Equal(t, f.u1.Id, *group.CreatorId)

	members, err := f.service.GetMembersByGroupId(ctx, group.Id)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, f.u1.Id, members[0].Id)

	_, err = f.service.CreateGroup(ctx, f.u1.Id, &dto.CreateGroupRequest{Name: "  "})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	_, err = f.service.CreateGroup(ctx, uuid.New(), &dto.CreateGroupRequest{Name: "x"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestGroupService_MembershipScenario(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	group := f.create(t, f.u1, "Family")

	require.NoError(t, f.service.AddMemberToGroup(ctx, f.u1.Id, &dto.GroupMemberRequest{MemberId: f.u2.Id, GroupId: group.Id}))

	got, err := f.service.GetGroupById(ctx, group.Id, f.u2.Id)
	require.NoError(t, err)
	assert.Equal(t, "Family", got.Name)

	_, err = f.service.GetGroupById(ctx, group.Id, f.u3.Id)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.service.GetGroupById(ctx, uuid.New(), f.u2.Id)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	last := f.publisher.last()
	require.NotNil(t, last)
	assert.Equal(t, events.GroupMemberAdded, last.EventType())
	assert.Equal(t, f.u2.Id.String(), events.StringField(last, events.KeyMemberID))
	assert.Equal(t, "Family", events.StringField(last, keyGroupName))
}

func TestGroupService_AddMemberErrors(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	group := f.create(t, f.u1, "Family")

	tests := []struct {
		name    string
		req     *dto.GroupMemberRequest
		kind    apperror.Kind
		wantMsg string
	}{
		{"missing ids", &dto.GroupMemberRequest{}, apperror.KindBadRequest, msgMemberIdsRequired},
		{"unknown user", &dto.GroupMemberRequest{MemberId: uuid.New(), GroupId: group.Id}, apperror.KindNotFound, msgUserNotFound},
		{"unknown group", &dto.GroupMemberRequest{MemberId: f.u2.Id, GroupId: uuid.New()}, apperror.KindNotFound, msgGroupNotFound},
		{"already member", &dto.GroupMemberRequest{MemberId: f.u1.Id, GroupId: group.Id}, apperror.KindBadRequest, msgAlreadyMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.AddMemberToGroup(ctx, f.u1.Id, tt.req)
			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestGroupService_RemoveMember(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	group := f.create(t, f.u1, "Family")
	for _, u := range []*entity.User{f.u2, f.u3} {
		require.NoError(t, f.service.AddMemberToGroup(ctx, f.u1.Id, &dto.GroupMemberRequest{MemberId: u.Id, GroupId: group.Id}))
	}

	// a member cannot remove someone else
	err := f.service.RemoveMemberFromGroup(ctx, f.u2.Id, &dto.GroupMemberRequest{MemberId: f.u3.Id, GroupId: group.Id})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	// but can leave
	require.NoError(t, f.service.RemoveMemberFromGroup(ctx, f.u2.Id, &dto.GroupMemberRequest{MemberId: f.u2.Id, GroupId: group.Id}))

	// the creator can remove anyone
	require.NoError(t, f.service.RemoveMemberFromGroup(ctx, f.u1.Id, &dto.GroupMemberRequest{MemberId: f.u3.Id, GroupId: group.Id}))

	err = f.service.RemoveMemberFromGroup(ctx, f.u1.Id, &dto.GroupMemberRequest{MemberId: f.u3.Id, GroupId: group.Id})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, msgMemberRemovalFail, appErr.Message)

	members, err := f.service.GetMembersByGroupId(ctx, group.Id)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, f.u1.Id, members[0].Id)

	assert.Equal(t, events.GroupMemberRemoved, f.publisher.last().EventType())
}

func TestGroupService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)
	group := f.create(t, f.u1, "Family")
	require.NoError(t, f.service.AddMemberToGroup(ctx, f.u1.Id, &dto.GroupMemberRequest{MemberId: f.u2.Id, GroupId: group.Id}))

	_, err := f.service.UpdateGroup(ctx, f.u2.Id, &dto.UpdateGroupRequest{Id: group.Id, Name: "Mine now"})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	updated, err := f.service.UpdateGroup(ctx, f.u1.Id, &dto.UpdateGroupRequest{Id: group.Id, Name: "Relatives"})
	require.NoError(t, err)
	assert.Equal(t, "Relatives", updated.Name)

	groupId := group.Id
	creatorId := f.u2.Id
	uow := f.factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.NoteRepository().Create(ctx, &entity.Note{Title: "t", Content: "c", CreatorId: &creatorId, GroupId: &groupId}))

	err = f.service.DeleteGroup(ctx, f.u2.Id, group.Id)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	require.NoError(t, f.service.DeleteGroup(ctx, f.u1.Id, group.Id))

	notes, err := uow.NoteRepository().FindAll(ctx, specification.ByGroupID{GroupID: groupId})
	require.NoError(t, err)
	assert.Empty(t, notes)

	memberships, err := uow.GroupMemberRepository().FindAll(ctx, specification.ByGroupID{GroupID: groupId})
	require.NoError(t, err)
	assert.Empty(t, memberships)

	_, err = f.service.GetMembersByGroupId(ctx, group.Id)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	last := f.publisher.last()
	assert.Equal(t, events.GroupDeleted, last.EventType())
	assert.ElementsMatch(t, []string{f.u1.Id.String(), f.u2.Id.String()}, last.Payload()[KeyMemberIDs])
}

func TestGroupService_Listings(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture(t)

	first := f.create(t, f.u1, "First")
	second := f.create(t, f.u1, "Second")
	other := f.create(t, f.u2, "Other")
	require.NoError(t, f.service.AddMemberToGroup(ctx, f.u2.Id, &dto.GroupMemberRequest{MemberId: f.u1.Id, GroupId: other.Id}))

	owned, err := f.service.GetGroupsByCreatorId(ctx, f.u1.Id)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.ElementsMatch(t, []uuid.UUID{first.Id, second.Id}, []uuid.UUID{owned[0].Id, owned[1].Id})
	assert.False(t, owned[1].UpdatedAt.After(owned[0].UpdatedAt))

	memberOf, err := f.service.GetGroupsByMemberId(ctx, f.u1.Id)
	require.NoError(t, err)
	assert.Len(t, memberOf, 3)

	none, err := f.service.GetGroupsByMemberId(ctx, f.u3.Id)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.service.GetGroupsByCreatorId(ctx, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
