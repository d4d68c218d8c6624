package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"logicfy_backend/internal/config"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/testutil"
	"logicfy_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const routerSecret = "router-test-secret"

type apiEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	learner *model.User
	admin   *model.User
	tree    *testutil.Tree
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	cfg := &config.Config{
		JWT:          config.JWTConfig{Secret: routerSecret},
		Gamification: config.GamificationConfig{XPFastAnswer: 10, XPSlowAnswer: 5, FastAnswerMs: 30000, XPPerLevel: 100},
		Analytics:    config.AnalyticsConfig{Timezone: "UTC", HardestDefaultLimit: 10},
		Repair:       config.RepairConfig{QueueSize: 16, MaxAttempts: 1, InitialBackoff: time.Millisecond},
	}
	a := &App{Config: cfg, DB: db}
	repos := a.initRepositories(db, nil, cfg)
	svcs := a.initServices(repos, cfg, db, nil)
	ctrls := a.initControllers(svcs, db, nil)

	router := gin.New()
	a.registerRoutes(router, ctrls, cfg)

	return &apiEnv{
		router:  router,
		db:      db,
		learner: testutil.SeedUser(t, db, model.Learner),
		admin:   testutil.SeedUser(t, db, model.Admin),
		tree:    testutil.SeedTree(t, db, []int{1}, 2),
	}
}

func (e *apiEnv) call(t *testing.T, user *model.User, method, path string, body interface{}) (int, json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		tok, err := util.GenerateJWT(user, routerSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp.Data
}

func TestAnswerFlowOverHTTP(t *testing.T) {
	e := newAPIEnv(t)
	lesson := e.tree.Lessons[0]
	q := e.tree.Questions[lesson.ID][0]

	code, data := e.call(t, e.learner, http.MethodPost, "/api/answers", gin.H{
		"questionId": q.ID,
		"answer":     testutil.RightAnswer(q),
		"elapsedMs":  4000,
	})
	require.Equal(t, http.StatusCreated, code)
	var ev model.AnswerEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.True(t, ev.IsCorrect)
	assert.Equal(t, e.learner.ID, ev.UserID)

	code, data = e.call(t, e.learner, http.MethodGet, fmt.Sprintf("/api/progress/lessons/%d", lesson.ID), nil)
	require.Equal(t, http.StatusOK, code)
	var p model.LessonProgress
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, 50, p.Percent)

	code, data = e.call(t, e.learner, http.MethodGet, "/api/xp/stats", nil)
	require.Equal(t, http.StatusOK, code)
	var stats model.XpStats
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, 10, stats.TotalXp)
	assert.Equal(t, 1, stats.Streak)

	code, _ = e.call(t, e.learner, http.MethodGet, fmt.Sprintf("/api/answers/%d", q.ID), nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAnswerErrorsOverHTTP(t *testing.T) {
	e := newAPIEnv(t)
	q := e.tree.Questions[e.tree.Lessons[0].ID][0]

	code, _ := e.call(t, nil, http.MethodPost, "/api/answers", gin.H{"questionId": q.ID, "answer": gin.H{}})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.call(t, e.learner, http.MethodPost, "/api/answers", gin.H{"questionId": q.ID})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.call(t, e.learner, http.MethodPost, "/api/answers", gin.H{"questionId": q.ID, "answer": gin.H{}, "elapsedMs": -5})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.call(t, e.learner, http.MethodPost, "/api/answers", gin.H{"questionId": 9999, "answer": gin.H{}})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = e.call(t, e.learner, http.MethodGet, "/api/progress/lessons/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAccessControlOverHTTP(t *testing.T) {
	e := newAPIEnv(t)

	code, _ := e.call(t, e.learner, http.MethodGet, fmt.Sprintf("/api/xp/log?userId=%d", e.admin.ID), nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = e.call(t, e.admin, http.MethodGet, fmt.Sprintf("/api/xp/log?userId=%d", e.learner.ID), nil)
	assert.Equal(t, http.StatusOK, code)

	grant := gin.H{"userId": e.learner.ID, "amount": 40}
	code, _ = e.call(t, e.learner, http.MethodPost, "/api/admin/xp/grant", grant)
	assert.Equal(t, http.StatusForbidden, code)

	code, data := e.call(t, e.admin, http.MethodPost, "/api/admin/xp/grant", grant)
	require.Equal(t, http.StatusCreated, code)
	var entry model.XpLog
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, fmt.Sprintf("admin:%d", e.admin.ID), entry.Source)

	code, _ = e.call(t, e.admin, http.MethodPost, "/api/admin/xp/grant", gin.H{"userId": e.learner.ID, "amount": 0})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEnrollmentAndAdminOverHTTP(t *testing.T) {
	e := newAPIEnv(t)
	lesson := e.tree.Lessons[0]
	path := fmt.Sprintf("/api/enrollments/%d", lesson.ID)

	code, _ := e.call(t, e.learner, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusCreated, code)
	code, _ = e.call(t, e.learner, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, code)
	code, _ = e.call(t, e.learner, http.MethodPatch, path, gin.H{"active": false})
	assert.Equal(t, http.StatusOK, code)

	code, data := e.call(t, e.admin, http.MethodGet, "/api/admin/dashboard/lessons/popular", nil)
	require.Equal(t, http.StatusOK, code)
	var popular []model.FollowedItem
	require.NoError(t, json.Unmarshal(data, &popular))
	require.Len(t, popular, 1)
	assert.Equal(t, 1, popular[0].Followers)

	code, _ = e.call(t, e.admin, http.MethodGet, "/api/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = e.call(t, e.admin, http.MethodDelete, fmt.Sprintf("/api/admin/content/lessons/%d", lesson.ID), nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = e.call(t, e.admin, http.MethodGet, "/api/admin/dashboard/languages/9999", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthOverHTTP(t *testing.T) {
	e := newAPIEnv(t)
	code, data := e.call(t, nil, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, code)

	var health struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "disabled", health.Components["redis"])
}

func TestSwaggerDocServed(t *testing.T) {
	e := newAPIEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc), w.Body.String())
	assert.Equal(t, "/api", doc.BasePath)
	assert.Contains(t, doc.Paths, "/answers")
	assert.Contains(t, doc.Paths, "/admin/dashboard")
}
