package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gescourrier/mail-registry-api/internal/constants"
	"github.com/gescourrier/mail-registry-api/internal/database"
	"github.com/gescourrier/mail-registry-api/internal/dto"
	"github.com/gescourrier/mail-registry-api/internal/models"
	"github.com/gescourrier/mail-registry-api/internal/repository"
	"github.com/gescourrier/mail-registry-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	gin.SetMode(gin.TestMode)

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
	}
}

func newAuthRouter(env authTestEnv) *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/register", env.handler.Register)
	r.POST("/api/auth/login", env.handler.Login)
	return r
}

func TestAuthHandler_Register_CreatesInactiveAccount(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	payload := map[string]string{
		"firstName": "Awa",
		"lastName":  "Traoré",
		"email":     "awa@ministere.test",
		"role":      "SECRETARIAT",
		"password":  "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "awa@ministere.test", response.Email)
	require.False(t, response.IsActive)
}

func TestAuthHandler_Register_UnknownRole(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	payload := map[string]string{
		"firstName": "Awa",
		"lastName":  "Traoré",
		"email":     "awa@ministere.test",
		"role":      "DIRECTOR",
		"password":  "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_InactiveAccountRejected(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	_, err := env.authService.Register(services.RegisterInput{
		FirstName: "Moussa",
		LastName:  "Diarra",
		Email:     "moussa@ministere.test",
		Role:      models.RoleBAOC,
		Password:  "supersecret",
	})
	require.NoError(t, err)

	payload := map[string]string{
		"email":    "moussa@ministere.test",
		"password": "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "ACCOUNT_INACTIVE")
}

func TestAuthHandler_Login_AfterActivation(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	user, err := env.authService.Register(services.RegisterInput{
		FirstName: "Moussa",
		LastName:  "Diarra",
		Email:     "moussa@ministere.test",
		Role:      models.RoleBAOC,
		Password:  "supersecret",
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(user).Update("is_active", true).Error)

	payload := map[string]string{
		"email":    "moussa@ministere.test",
		"password": "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.ID, response.ID)
	require.NotEmpty(t, w.Header().Get("Set-Cookie"))
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	user, err := env.authService.Register(services.RegisterInput{
		FirstName: "Moussa",
		LastName:  "Diarra",
		Email:     "moussa@ministere.test",
		Role:      models.RoleBAOC,
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(user).Update("is_active", true).Error)

	payload := map[string]string{
		"email":    "moussa@ministere.test",
		"password": "wrongpassword",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)
	r := newAuthRouter(env)

	_, err := env.authService.Register(services.RegisterInput{
		FirstName: "Awa",
		LastName:  "Traoré",
		Email:     "awa@ministere.test",
		Role:      models.RoleSecretariat,
		Password:  "supersecret",
	})
	require.NoError(t, err)

	payload := map[string]string{
		"firstName": "Awa",
		"lastName":  "Keita",
		"email":     "AWA@ministere.test",
		"role":      "DFS",
		"password":  "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}
