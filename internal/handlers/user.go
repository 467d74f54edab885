package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskforge/task-manager-api/internal/auth"
	"github.com/taskforge/task-manager-api/internal/constants"
	"github.com/taskforge/task-manager-api/internal/dto"
	apierrors "github.com/taskforge/task-manager-api/internal/errors"
	"github.com/taskforge/task-manager-api/internal/middleware"
	"github.com/taskforge/task-manager-api/internal/services"
)

// UserHandler coordinates user-related HTTP handlers.
type UserHandler struct {
	userService *services.UserService
	tokens      *auth.TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, tokens *auth.TokenIssuer) *UserHandler {
	return &UserHandler{
		userService: userService,
		tokens:      tokens,
	}
}

// Register creates a new user account. Accepts JSON or a multipart form
// with an optional avatar file.
func (h *UserHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Name             string `json:"name" form:"name"`
		Email            string `json:"email" form:"email"`
		Password         string `json:"password" form:"password"`
		AdminInviteToken string `json:"admin_invite_token" form:"admin_invite_token"`
	}

	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.RegisterInput{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		AdminInviteToken: req.AdminInviteToken,
	}

	// Avatar arrives as a multipart file; it is staged locally before the
	// handoff to the image store.
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		localPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, localPath); err != nil {
			apierrors.InternalError(c, "Failed to store uploaded file")
			return
		}
		defer os.Remove(localPath)
		input.AvatarPath = localPath
	}

	user, err := h.userService.Register(c.Request.Context(), input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to issue token")
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    dto.ToUserDTO(*user),
		"token":   token,
	})
}

// Login authenticates a user and returns a fresh session token.
func (h *UserHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to issue token")
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"message": "User logged in successfully",
		"user":    dto.ToUserDTO(*user),
		"token":   token,
	})
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server-side.
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetCookie(constants.TokenCookieName, "", -1, "/", "", h.secureCookies(), true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetProfile returns the acting user's profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	actor, exists := middleware.GetUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.userService.GetUser(actor.ID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile fetched successfully",
		"user":    dto.ToUserDTO(*user),
	})
}

// ListMembers returns all member users with their task counts.
func (h *UserHandler) ListMembers(c *gin.Context) {
	members, err := h.userService.ListMembers()
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users fetched successfully",
		"users":   members,
	})
}

// GetUserByID returns a single user profile.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User fetched successfully",
		"user":    dto.ToUserDTO(*user),
	})
}

func (h *UserHandler) setTokenCookie(c *gin.Context, token string) {
	maxAge := int(constants.TokenTTL.Seconds())
	c.SetCookie(constants.TokenCookieName, token, maxAge, "/", "", h.secureCookies(), true)
}

func (h *UserHandler) secureCookies() bool {
	return gin.Mode() == gin.ReleaseMode
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingFields):
		apierrors.BadRequest(c, "All fields are mandatory.")
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "User already exists")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User doesn't exist.")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, "Invalid credentials.")
	case errors.Is(err, services.ErrAvatarUploadFailed):
		apierrors.InternalError(c, "Avatar upload failed")
	default:
		apierrors.InternalError(c, "")
	}
}
