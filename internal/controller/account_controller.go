package controller

import (
	"errors"
	"io"

	"collectify-be/internal/dto"
	"collectify-be/internal/pkg/apperror"
	"collectify-be/internal/pkg/serverutils"
	"collectify-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IAccountController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Profile(ctx *fiber.Ctx) error
	EditProfile(ctx *fiber.Ctx) error
}

type accountController struct {
	accountService service.IAccountService
}

func NewAccountController(accountService service.IAccountService) IAccountController {
	return &accountController{accountService: accountService}
}

func (c *accountController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/account")
	h.Post("register", c.Register)
	h.Post("login", c.Login)
	h.Post("refresh", c.Refresh)
	h.Post("logout", auth, c.Logout)
	h.Get("profile", auth, c.Profile)
	h.Post("edit_profile", auth, c.EditProfile)
}

func clientInfo(ctx *fiber.Ctx) service.ClientInfo {
	return service.ClientInfo{
		IpAddress: ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
	}
}

func (c *accountController) Register(ctx *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := c.accountService.Register(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *accountController) Login(ctx *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.accountService.Login(ctx.UserContext(), &req, clientInfo(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *accountController) Refresh(ctx *fiber.Ctx) error {
	var req dto.LoginTokens
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.accountService.Refresh(ctx.UserContext(), &req, clientInfo(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *accountController) Logout(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	// the body is optional; without it only the access token is revoked
	var req dto.LogoutRequest
	if len(ctx.Body()) > 0 {
		if err := parseBody(ctx, &req); err != nil {
			return err
		}
	}

	if err := c.accountService.Logout(ctx.UserContext(), userId, req.RefreshToken, serverutils.CurrentClaims(ctx)); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *accountController) Profile(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.accountService.GetUserProfile(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *accountController) EditProfile(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return apperror.BadRequest("Expected multipart form data")
	}

	var req dto.EditProfileRequest
	if values, ok := form.Value["nickname"]; ok && len(values) > 0 {
		nickname := values[0]
		req.Nickname = &nickname
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	avatar, err := readAvatar(ctx)
	if err != nil {
		return err
	}

	res, err := c.accountService.EditUserProfile(ctx.UserContext(), userId, &req, avatar)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// readAvatar returns nil when the form carries no avatar part.
func readAvatar(ctx *fiber.Ctx) (*dto.AvatarUpload, error) {
	header, err := ctx.FormFile("avatar")
	if errors.Is(err, fasthttp.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.BadRequest("Invalid avatar upload")
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperror.Internal("failed to open avatar upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperror.Internal("failed to read avatar upload", err)
	}

	return &dto.AvatarUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Data:     data,
	}, nil
}
