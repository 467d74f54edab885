package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskforge/task-manager-api/internal/auth"
	"github.com/taskforge/task-manager-api/internal/constants"
	"github.com/taskforge/task-manager-api/internal/models"
	"github.com/taskforge/task-manager-api/internal/repository"
)

type authMiddlewareEnv struct {
	db       *gorm.DB
	issuer   *auth.TokenIssuer
	userRepo repository.UserRepository
	router   *gin.Engine
}

func setupAuthMiddlewareEnv(t *testing.T) authMiddlewareEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	gin.SetMode(gin.TestMode)

	issuer := auth.NewTokenIssuer("test-secret")
	userRepo := repository.NewUserRepository(db)

	r := gin.New()
	r.GET("/protected", RequireAuth(issuer, userRepo), func(c *gin.Context) {
		user, _ := GetUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	r.GET("/admin-only", RequireAuth(issuer, userRepo), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return authMiddlewareEnv{
		db:       db,
		issuer:   issuer,
		userRepo: userRepo,
		router:   r,
	}
}

func (env authMiddlewareEnv) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func TestRequireAuth_CookieToken(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	user := env.createUser(t, "cookie@example.com", models.RoleMember)

	token, err := env.issuer.Issue(user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: constants.TokenCookieName, Value: token})
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.Email, response["email"])
}

func TestRequireAuth_BearerToken(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	user := env.createUser(t, "bearer@example.com", models.RoleMember)

	token, err := env.issuer.Issue(user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_CookieBeforeHeader(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	user := env.createUser(t, "both@example.com", models.RoleMember)

	token, err := env.issuer.Issue(user.ID)
	require.NoError(t, err)

	// A stale header credential loses to a valid cookie
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: constants.TokenCookieName, Value: token})
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Not authorized. Token not found.", response["message"])
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.value")
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Invalid access token", response["message"])
}

func TestRequireAuth_UserGone(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	user := env.createUser(t, "gone@example.com", models.RoleMember)

	token, err := env.issuer.Issue(user.ID)
	require.NoError(t, err)

	require.NoError(t, env.db.Delete(user).Error)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_StoreFailure(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	user := env.createUser(t, "unlucky@example.com", models.RoleMember)

	token, err := env.issuer.Issue(user.ID)
	require.NoError(t, err)

	// A failing user store is a server fault, not a credential problem
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)

	token, err := env.issuer.Issue(admin.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_RejectsMember(t *testing.T) {
	env := setupAuthMiddlewareEnv(t)
	member := env.createUser(t, "member@example.com", models.RoleMember)

	token, err := env.issuer.Issue(member.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Access denied. Admin only.", response["message"])
}
