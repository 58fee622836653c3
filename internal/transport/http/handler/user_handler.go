package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gin-gorm-users/internal/domain"
	"gin-gorm-users/internal/service"
	resp "gin-gorm-users/internal/transport/http/response"
)

const msgUserNotFound = "User not found"

type UserService interface {
	CreateUser(ctx context.Context, email, password, firstname, lastname string) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User, ch service.UserChanges) (*domain.User, error)
	DeleteUser(ctx context.Context, u *domain.User) error
	FindUserByID(ctx context.Context, id uint) (*domain.User, error)
	FindAllUsers(ctx context.Context) ([]domain.User, error)
}

type UserHandler struct {
	svc UserService
	log *zap.Logger
}

func NewUserHandler(svc UserService, l *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: l}
}

// Mount registers the user routes on g.
func (h *UserHandler) Mount(g gin.IRoutes) {
	g.GET("/user", h.Index)
	g.POST("/user/create", h.Create)
	g.GET("/user/:id", h.Show)
	g.PUT("/user/:id/edit", h.Edit)
	g.DELETE("/user/:id", h.Delete)
}

type userView struct {
	ID             uint      `json:"id"`
	UUID           string    `json:"uuid"`
	Email          string    `json:"email"`
	UserIdentifier string    `json:"userIdentifier"`
	Roles          []string  `json:"roles"`
	Firstname      string    `json:"firstname"`
	Lastname       string    `json:"lastname"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toView(u *domain.User) userView {
	return userView{
		ID:             u.ID,
		UUID:           u.UUID.String(),
		Email:          u.Email,
		UserIdentifier: domain.Identifier(u),
		Roles:          u.Roles(),
		Firstname:      u.Firstname,
		Lastname:       u.Lastname,
		CreatedAt:      u.CreatedAt,
	}
}

type createIn struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Index handles GET /user.
func (h *UserHandler) Index(c *gin.Context) {
	users, err := h.svc.FindAllUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]userView, 0, len(users))
	for i := range users {
		out = append(out, toView(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /user/create.
func (h *UserHandler) Create(c *gin.Context) {
	var in createIn
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badInput(c, err)
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), in.Email, in.Password, in.Firstname, in.Lastname)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(u))
}

// Show handles GET /user/:id. An unknown id answers 200 with a JSON null, unlike
// Edit and Delete which answer 404.
func (h *UserHandler) Show(c *gin.Context) {
	u, ok := h.lookup(c)
	if !ok {
		return
	}
	if u == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, toView(u))
}

// Edit handles PUT /user/:id/edit.
func (h *UserHandler) Edit(c *gin.Context) {
	u, ok := h.lookup(c)
	if !ok {
		return
	}
	if u == nil {
		c.String(http.StatusNotFound, msgUserNotFound)
		return
	}
	// an empty body decodes to no changes
	var ch service.UserChanges
	if err := c.ShouldBindJSON(&ch); err != nil && !errors.Is(err, io.EOF) {
		h.badInput(c, err)
		return
	}
	u, err := h.svc.UpdateUser(c.Request.Context(), u, ch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toView(u))
}

// Delete handles DELETE /user/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	u, ok := h.lookup(c)
	if !ok {
		return
	}
	if u == nil {
		c.String(http.StatusNotFound, msgUserNotFound)
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), u); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// lookup resolves the :id param. A malformed id is treated as an unknown one.
// ok is false when a response has already been written.
func (h *UserHandler) lookup(c *gin.Context) (u *domain.User, ok bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return nil, true
	}
	u, err = h.svc.FindUserByID(c.Request.Context(), uint(id))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return u, true
}

func (h *UserHandler) badInput(c *gin.Context, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodeTooLarge, ""))
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "malformed JSON body"))
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, resp.ErrorWith(resp.CodeBadRequest, domain.ErrValidation.Error(), ve.Fields))
		return
	case errors.Is(err, domain.ErrUserNotFound):
		// removed between lookup and write
		c.Abort()
		c.String(http.StatusNotFound, msgUserNotFound)
		return
	}
	_ = c.Error(err)
	if errors.Is(err, context.DeadlineExceeded) {
		h.log.Warn("user request timed out", zap.String("method", c.Request.Method), zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, resp.Error(resp.CodeTimeout, "timeout"))
		return
	}
	h.log.Error("user request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, ""))
}
