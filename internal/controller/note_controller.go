package controller

import (
	"collectify-be/internal/dto"
	"collectify-be/internal/pkg/serverutils"
	"collectify-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	OwnedNotes(ctx *fiber.Ctx) error
	GetNote(ctx *fiber.Ctx) error
	GroupNotes(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/notes")
	h.Use(auth)
	h.Get("owned_notes", c.OwnedNotes)
	h.Get("get_note", c.GetNote)
	h.Get("get_notes_from_group", c.GroupNotes)
	h.Post("add_note", c.Create)
	h.Put("update_note", c.Update)
	h.Delete("delete_note", c.Delete)
}

func (c *noteController) OwnedNotes(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.GetOwnedNotes(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) GetNote(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	noteId, err := queryUUID(ctx, "noteId")
	if err != nil {
		return err
	}

	res, err := c.noteService.GetNote(ctx.UserContext(), noteId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) GroupNotes(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	groupId, err := queryUUID(ctx, "groupId")
	if err != nil {
		return err
	}

	res, err := c.noteService.GetNotesByGroup(ctx.UserContext(), groupId, userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.CreateNote(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.UpdateNote(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	noteId, err := queryUUID(ctx, "noteId")
	if err != nil {
		return err
	}

	if err := c.noteService.DeleteNote(ctx.UserContext(), userId, noteId); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}
