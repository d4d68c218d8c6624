package middleware

import (
	"encoding/json"
	"errors"
	"logicfy_backend/internal/config"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, id uint, role model.UserRole) string {
	t.Helper()
	tok, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: id}, Role: role}, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func newRouter() *gin.Engine {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	r := gin.New()
	r.Use(AuthMiddleware(cfg))
	r.GET("/me", func(c *gin.Context) {
		id, err := TargetUserID(c)
		if err != nil {
			util.HandleError(c, err)
			return
		}
		util.Success(c, id)
	})
	r.GET("/admin", RoleMiddleware(model.Admin), func(c *gin.Context) { util.Success(c, "ok") })
	return r
}

func do(r *gin.Engine, path, tok string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "not-a-jwt").Code)

	forged, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: 1}, Role: model.Admin}, "other-secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", forged).Code)

	expired, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: 1}}, testSecret, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", expired).Code)

	w := do(r, "/me?token="+token(t, 7, model.Learner), "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data uint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(7), resp.Data)
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", token(t, 1, model.Learner)).Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", token(t, 2, model.Admin)).Code)
}

func TestTargetUserID(t *testing.T) {
	r := newRouter()
	learner := token(t, 3, model.Learner)
	admin := token(t, 1, model.Admin)

	assert.Equal(t, http.StatusOK, do(r, "/me?userId=3", learner).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/me?userId=4", learner).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, "/me?userId=abc", learner).Code)
	assert.Equal(t, http.StatusOK, do(r, "/me?userId=4", admin).Code)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := TargetUserID(c)
	assert.True(t, errors.Is(err, util.ErrPermissionDenied))
}
