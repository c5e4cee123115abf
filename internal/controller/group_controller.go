package controller

import (
	"collectify-be/internal/dto"
	"collectify-be/internal/pkg/serverutils"
	"collectify-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGroupController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	AddMember(ctx *fiber.Ctx) error
	RemoveMember(ctx *fiber.Ctx) error
	Members(ctx *fiber.Ctx) error
	MemberGroups(ctx *fiber.Ctx) error
	OwnedGroups(ctx *fiber.Ctx) error
	GetGroup(ctx *fiber.Ctx) error
}

type groupController struct {
	groupService service.IGroupService
}

func NewGroupController(groupService service.IGroupService) IGroupController {
	return &groupController{groupService: groupService}
}

func (c *groupController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/groups")
	h.Use(auth)
	h.Post("create_group", c.Create)
	h.Put("update_group", c.Update)
	h.Delete("delete_group", c.Delete)
	h.Post("add_member", c.AddMember)
	h.Delete("remove_member", c.RemoveMember)
	h.Get("get_group_members", c.Members)
	h.Get("get_member_groups", c.MemberGroups)
	h.Get("get_owned_groups", c.OwnedGroups)
	h.Get("get_group", c.GetGroup)
}

func (c *groupController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateGroupRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.groupService.CreateGroup(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *groupController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateGroupRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.groupService.UpdateGroup(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *groupController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	groupId, err := queryUUID(ctx, "groupId")
	if err != nil {
		return err
	}

	if err := c.groupService.DeleteGroup(ctx.UserContext(), userId, groupId); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *groupController) AddMember(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.GroupMemberRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := c.groupService.AddMemberToGroup(ctx.UserContext(), userId, &req); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *groupController) RemoveMember(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.GroupMemberRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := c.groupService.RemoveMemberFromGroup(ctx.UserContext(), userId, &req); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *groupController) Members(ctx *fiber.Ctx) error {
	groupId, err := queryUUID(ctx, "groupId")
	if err != nil {
		return err
	}

	res, err := c.groupService.GetMembersByGroupId(ctx.UserContext(), groupId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *groupController) MemberGroups(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.groupService.GetGroupsByMemberId(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *groupController) OwnedGroups(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.groupService.GetGroupsByCreatorId(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *groupController) GetGroup(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	groupId, err := queryUUID(ctx, "groupId")
	if err != nil {
		return err
	}

	res, err := c.groupService.GetGroupById(ctx.UserContext(), groupId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
