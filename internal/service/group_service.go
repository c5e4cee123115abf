package service

import (
	"context"
	"errors"
	"strings"

	"collectify-be/internal/dto"
	"collectify-be/internal/entity"
	"collectify-be/internal/pkg/apperror"
	"collectify-be/internal/pkg/logger"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"
	"collectify-be/internal/repository/unitofwork"
	"collectify-be/pkg/events"

	"github.com/google/uuid"
)

const (
	msgNotGroupOwner     = "You are not the owner of this group!"
	msgAlreadyMember     = "User is already a member of this group!"
	msgMemberRemovalFail = "Member removal failed!"
	msgMemberIdsRequired = "MemberId and GroupId are required"

	// KeyMemberIDs lists the members a GROUP_DELETED event must still reach.
	KeyMemberIDs = "member_ids"
	keyGroupName = "group_name"
)

type IGroupService interface {
	CreateGroup(ctx context.Context, userId uuid.UUID, req *dto.CreateGroupRequest) (*dto.SimpleGroup, error)
	UpdateGroup(ctx context.Context, userId uuid.UUID, req *dto.UpdateGroupRequest) (*dto.SimpleGroup, error)
	DeleteGroup(ctx context.Context, userId, groupId uuid.UUID) error
	AddMemberToGroup(ctx context.Context, callerId uuid.UUID, req *dto.GroupMemberRequest) error
	RemoveMemberFromGroup(ctx context.Context, callerId uuid.UUID, req *dto.GroupMemberRequest) error
	GetMembersByGroupId(ctx context.Context, groupId uuid.UUID) ([]*dto.SimpleMember, error)
	GetGroupsByCreatorId(ctx context.Context, userId uuid.UUID) ([]*dto.SimpleGroup, error)
	GetGroupsByMemberId(ctx context.Context, userId uuid.UUID) ([]*dto.SimpleGroup, error)
	GetGroupById(ctx context.Context, groupId, userId uuid.UUID) (*dto.SimpleGroup, error)
}

type groupService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	log        logger.ILogger
}

func NewGroupService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) IGroupService {
	return &groupService{
		uowFactory: uowFactory,
		publisher:  publisher,
		log:        log,
	}
}

func toSimpleGroup(g *entity.Group) *dto.SimpleGroup {
	return &dto.SimpleGroup{
		Id:        g.Id,
		Name:      g.Name,
		CreatorId: g.CreatorId,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func toSimpleGroups(groups []*entity.Group) []*dto.SimpleGroup {
	out := make([]*dto.SimpleGroup, len(groups))
	for i, g := range groups {
		out[i] = toSimpleGroup(g)
	}
	return out
}

func (s *groupService) CreateGroup(ctx context.Context, userId uuid.UUID, req *dto.CreateGroupRequest) (*dto.SimpleGroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.BadRequest("Group name is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal("failed to begin transaction", err)
	}
	defer uow.Rollback()

	if _, err := findUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	creatorId := userId
	group := &entity.Group{Id: uuid.New(), Name: name, CreatorId: &creatorId}
	if err := uow.GroupRepository().Create(ctx, group); err != nil {
		return nil, apperror.Internal("failed to create group", err)
	}
	if err := uow.GroupMemberRepository().Create(ctx, &entity.GroupMember{MemberId: userId, GroupId: group.Id}); err != nil {
		return nil, apperror.Internal("failed to add creator to group", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal("failed to commit group", err)
	}
	return toSimpleGroup(group), nil
}

func (s *groupService) UpdateGroup(ctx context.Context, userId uuid.UUID, req *dto.UpdateGroupRequest) (*dto.SimpleGroup, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findUser(ctx, uow, userId); err != nil {
		return nil, err
	}
	group, err := findGroup(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}
	if !group.IsCreatedBy(userId) {
		return nil, apperror.Forbidden(msgNotGroupOwner)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.BadRequest("Group name is required")
	}
	group.Name = name

	if err := uow.GroupRepository().Update(ctx, group); err != nil {
		return nil, apperror.Internal("failed to update group", err)
	}

	publishEvent(ctx, s.publisher, s.log, events.NewGroupEvent(events.GroupUpdated, group.Id.String(), userId.String(),
		map[string]interface{}{keyGroupName: group.Name}))

	return toSimpleGroup(group), nil
}

// DeleteGroup removes the group with its memberships and notes.
func (s *groupService) DeleteGroup(ctx context.Context, userId, groupId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperror.Internal("failed to begin transaction", err)
	}
	defer uow.Rollback()

	group, err := findGroup(ctx, uow, groupId)
	if err != nil {
		return err
	}
	if _, err := findUser(ctx, uow, userId); err != nil {
		return err
	}
	if !group.IsCreatedBy(userId) {
		return apperror.Forbidden(msgNotGroupOwner)
	}

	members, err := uow.GroupMemberRepository().FindAll(ctx, specification.ByGroupID{GroupID: groupId})
	if err != nil {
		return apperror.Internal("failed to load members", err)
	}

	if err := uow.NoteRepository().DeleteAllByGroupId(ctx, groupId); err != nil {
		return apperror.Internal("failed to delete group notes", err)
	}
	if err := uow.GroupMemberRepository().DeleteAllByGroupId(ctx, groupId); err != nil {
		return apperror.Internal("failed to delete group members", err)
	}
	if err := uow.GroupRepository().Delete(ctx, groupId); err != nil {
		return apperror.Internal("failed to delete group", err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.Internal("failed to commit group deletion", err)
	}

	memberIds := make([]string, len(members))
	for i, m := range members {
		memberIds[i] = m.MemberId.String()
	}
	publishEvent(ctx, s.publisher, s.log, events.NewGroupEvent(events.GroupDeleted, groupId.String(), userId.String(),
		map[string]interface{}{KeyMemberIDs: memberIds, keyGroupName: group.Name}))

	return nil
}

func (s *groupService) AddMemberToGroup(ctx context.Context, callerId uuid.UUID, req *dto.GroupMemberRequest) error {
	if req.MemberId == uuid.Nil || req.GroupId == uuid.Nil {
		return apperror.BadRequest(msgMemberIdsRequired)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findUser(ctx, uow, req.MemberId); err != nil {
		return err
	}
	group, err := findGroup(ctx, uow, req.GroupId)
	if err != nil {
		return err
	}

	err = uow.GroupMemberRepository().Create(ctx, &entity.GroupMember{MemberId: req.MemberId, GroupId: req.GroupId})
	if errors.Is(err, contract.ErrDuplicate) {
		return apperror.BadRequest(msgAlreadyMember)
	}
	if err != nil {
		return apperror.Internal("failed to add member", err)
	}

	publishEvent(ctx, s.publisher, s.log, events.NewGroupEvent(events.GroupMemberAdded, group.Id.String(), callerId.String(),
		map[string]interface{}{events.KeyMemberID: req.MemberId.String(), keyGroupName: group.Name}))

	return nil
}

// RemoveMemberFromGroup lets the group's creator remove anyone and every
// member remove themselves.
func (s *groupService) RemoveMemberFromGroup(ctx context.Context, callerId uuid.UUID, req *dto.GroupMemberRequest) error {
	if req.MemberId == uuid.Nil || req.GroupId == uuid.Nil {
		return apperror.BadRequest(msgMemberIdsRequired)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findUser(ctx, uow, req.MemberId); err != nil {
		return err
	}
	group, err := findGroup(ctx, uow, req.GroupId)
	if err != nil {
		return err
	}
	if !group.IsCreatedBy(callerId) && callerId != req.MemberId {
		return apperror.Forbidden(msgNotGroupOwner)
	}

	removed, err := uow.GroupMemberRepository().Delete(ctx, req.MemberId, req.GroupId)
	if err != nil {
		return apperror.Internal("failed to remove member", err)
	}
	if removed == 0 {
		return apperror.BadRequest(msgMemberRemovalFail)
	}

	publishEvent(ctx, s.publisher, s.log, events.NewGroupEvent(events.GroupMemberRemoved, group.Id.String(), callerId.String(),
		map[string]interface{}{events.KeyMemberID: req.MemberId.String(), keyGroupName: group.Name}))

	return nil
}

func (s *groupService) GetMembersByGroupId(ctx context.Context, groupId uuid.UUID) ([]*dto.SimpleMember, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findGroup(ctx, uow, groupId); err != nil {
		return nil, err
	}

	members, err := uow.GroupMemberRepository().FindAll(ctx,
		specification.ByGroupID{GroupID: groupId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, apperror.Internal("failed to load members", err)
	}
	if len(members) == 0 {
		return []*dto.SimpleMember{}, nil
	}

	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.MemberId
	}
	users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, apperror.Internal("failed to load member profiles", err)
	}
	byId := make(map[uuid.UUID]*entity.User, len(users))
	for _, u := range users {
		byId[u.Id] = u
	}

	out := make([]*dto.SimpleMember, 0, len(members))
	for _, m := range members {
		u, ok := byId[m.MemberId]
		if !ok {
			continue
		}
		out = append(out, &dto.SimpleMember{Id: u.Id, Nickname: u.Nickname, AvatarPath: u.AvatarPath})
	}
	return out, nil
}

func (s *groupService) GetGroupsByCreatorId(ctx context.Context, userId uuid.UUID) ([]*dto.SimpleGroup, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	groups, err := uow.GroupRepository().FindAll(ctx,
		specification.ByCreatorID{CreatorID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("failed to load groups", err)
	}
	return toSimpleGroups(groups), nil
}

func (s *groupService) GetGroupsByMemberId(ctx context.Context, userId uuid.UUID) ([]*dto.SimpleGroup, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := findUser(ctx, uow, userId); err != nil {
		return nil, err
	}

	memberships, err := uow.GroupMemberRepository().FindAll(ctx, specification.ByMemberID{MemberID: userId})
	if err != nil {
		return nil, apperror.Internal("failed to load memberships", err)
	}
	if len(memberships) == 0 {
		return []*dto.SimpleGroup{}, nil
	}

	ids := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		ids[i] = m.GroupId
	}
	groups, err := uow.GroupRepository().FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("failed to load groups", err)
	}
	return toSimpleGroups(groups), nil
}

func (s *groupService) GetGroupById(ctx context.Context, groupId, userId uuid.UUID) (*dto.SimpleGroup, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	group, err := findGroup(ctx, uow, groupId)
	if err != nil {
		return nil, err
	}
	member, err := isMember(ctx, uow, groupId, userId)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperror.Forbidden(msgNotGroupMember)
	}
	return toSimpleGroup(group), nil
}
