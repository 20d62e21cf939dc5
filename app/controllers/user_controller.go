package controllers

import (
	"net/http"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/ctx"
	"github.com/sincro/backoffice/pkg/middleware"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles the public POST /api/auth/login.
func (h *UserController) Login(c *ctx.Context) {
	var in loginRequest
	if !c.BindJSON(&in) {
		return
	}
	tok, err := h.users.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(tok)
}

// Me returns the caller's own account.
func (h *UserController) Me(c *ctx.Context) {
	id, ok := middleware.UserIDFromCtx(c.R)
	if !ok {
		c.Fail(apperr.New(apperr.Unauthorized, "Unauthorized"))
		return
	}
	u, err := h.users.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

// Index handles GET /api/users?page=&limit=&role=
func (h *UserController) Index(c *ctx.Context) {
	params, err := pageParams(c)
	if err != nil {
		c.Fail(err)
		return
	}
	res, err := h.users.List(c.Context(), services.UserFilter{Params: params, Role: c.Query("role")})
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UserController) Show(c *ctx.Context) {
	u, err := h.users.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

func (h *UserController) Store(c *ctx.Context) {
	var in services.UserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := h.users.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(u)
}

func (h *UserController) Update(c *ctx.Context) {
	var p services.UserPatch
	if !c.BindJSON(&p) {
		return
	}
	u, err := h.users.Update(c.Context(), c.Param("id"), p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

func (h *UserController) Destroy(c *ctx.Context) {
	if err := h.users.Delete(c.Context(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message("User deleted successfully")
}
