package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/interface/middleware"
)

type UserHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(users *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

func authResponse(s *application.Session) AuthResponse {
	return AuthResponse{Token: s.Token.RefreshToken, User: toUserDto(s.User)}
}

func (h *UserHandler) Register(c *gin.Context) {
	dto := middleware.DTO[CreateUserDto](c)
	h.Logger.WithField("email", dto.Email).Info("user registration")
	session, err := h.Users.Register(c.Request.Context(), application.RegisterInput{
		Name:      dto.Name,
		Email:     dto.Email,
		Password:  dto.Password,
		Type:      entity.UserType(dto.Type),
		IP:        middleware.ClientIP(c),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	c.JSON(http.StatusCreated, authResponse(session))
}

func (h *UserHandler) Login(c *gin.Context) {
	dto := middleware.DTO[LoginUserDto](c)
	session, err := h.Users.Login(c.Request.Context(), dto.Email, dto.Password, c.Request.UserAgent())
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	h.Logger.WithField("user_id", session.User.ID).Info("user logged in")
	c.JSON(http.StatusOK, authResponse(session))
}

// Logout revokes the token the request was made with.
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Users.Logout(c.Request.Context(), middleware.CallerFrom(c), middleware.BearerFrom(c)); err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	c.Status(http.StatusNoContent)
}

// Check returns the user behind the bearer token.
func (h *UserHandler) Check(c *gin.Context) {
	u, err := h.Users.Profile(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	c.JSON(http.StatusOK, toUserDto(u))
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	u, err := h.Users.UpdateAvatar(c.Request.Context(), middleware.CallerFrom(c), middleware.UploadedURL(c))
	if err != nil {
		respondError(c, h.Logger, err, "")
		return
	}
	c.JSON(http.StatusOK, AvatarResponse{AvatarURL: u.Avatar})
}
