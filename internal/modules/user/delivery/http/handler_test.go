package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/learnhub/internal/modules/user/dto"
	"anoa.com/learnhub/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	lastLogin dto.LoginInput
	loginErr  error
}

func (s *stubAuth) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	return &dto.AuthResponse{AccessToken: "tok", TokenType: "Bearer"}, nil
}

func (s *stubAuth) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	s.lastLogin = input
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &dto.AuthResponse{AccessToken: "tok", TokenType: "Bearer"}, nil
}

func (s *stubAuth) GoogleLogin(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (s *stubAuth) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	return &dto.AuthResponse{AccessToken: "g-" + code}, nil
}

func newRouter(h *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/google/login", h.GoogleLogin)
	r.GET("/google/callback", h.GoogleCallback)
	return r
}

func TestLoginValidatesBody(t *testing.T) {
	r := newRouter(NewAuthHandler(&stubAuth{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"not-an-email"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginMapsUnauthorized(t *testing.T) {
	stub := &stubAuth{loginErr: fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)}
	r := newRouter(NewAuthHandler(stub))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"a@example.com","password":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "a@example.com", stub.lastLogin.Email)
}

func TestRegisterCreated(t *testing.T) {
	r := newRouter(NewAuthHandler(&stubAuth{}))

	body := `{"username":"ann","email":"ann@example.com","password":"password1","full_name":"Ann"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	var res dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "tok", res.AccessToken)
}

func TestGoogleCallbackChecksState(t *testing.T) {
	r := newRouter(NewAuthHandler(&stubAuth{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/google/login", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	state := cookies[0].Value

	bad := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/google/callback?state=other&code=abc", nil)
	req.AddCookie(cookies[0])
	r.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	ok := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/google/callback?state="+state+"&code=abc", nil)
	req.AddCookie(cookies[0])
	r.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Contains(t, ok.Body.String(), "g-abc")
}
