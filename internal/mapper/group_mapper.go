package mapper

import (
	"collectify-be/internal/entity"
	"collectify-be/internal/model"
)

type GroupMapper struct{}

func NewGroupMapper() *GroupMapper {
	return &GroupMapper{}
}

func (m *GroupMapper) ToEntity(g *model.Group) *entity.Group {
	if g == nil {
		return nil
	}
	return &entity.Group{
		Id:        g.Id,
		Name:      g.Name,
		CreatorId: g.CreatorId,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func (m *GroupMapper) ToModel(g *entity.Group) *model.Group {
	if g == nil {
		return nil
	}
	return &model.Group{
		Id:        g.Id,
		Name:      g.Name,
		CreatorId: g.CreatorId,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func (m *GroupMapper) ToEntities(groups []*model.Group) []*entity.Group {
	entities := make([]*entity.Group, len(groups))
	for i, g := range groups {
		entities[i] = m.ToEntity(g)
	}
	return entities
}

func (m *GroupMapper) MemberToEntity(gm *model.GroupMember) *entity.GroupMember {
	if gm == nil {
		return nil
	}
	return &entity.GroupMember{
		MemberId:  gm.MemberId,
		GroupId:   gm.GroupId,
		CreatedAt: gm.CreatedAt,
	}
}

func (m *GroupMapper) MemberToModel(gm *entity.GroupMember) *model.GroupMember {
	if gm == nil {
		return nil
	}
	return &model.GroupMember{
		MemberId:  gm.MemberId,
		GroupId:   gm.GroupId,
		CreatedAt: gm.CreatedAt,
	}
}

func (m *GroupMapper) MembersToEntities(members []*model.GroupMember) []*entity.GroupMember {
	entities := make([]*entity.GroupMember, len(members))
	for i, gm := range members {
		entities[i] = m.MemberToEntity(gm)
	}
	return entities
}
