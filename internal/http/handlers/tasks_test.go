package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"task_tracker/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	tasks   []domain.Task
	creates int
	err     error
	now     time.Time
}

func (m *memStore) List(ctx context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Task, len(m.tasks))
	for i := range m.tasks {
		out[i] = m.tasks[len(m.tasks)-1-i]
	}
	return out, nil
}

func (m *memStore) Create(ctx context.Context, t domain.NewTask) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.err != nil {
		return nil, m.err
	}
	if m.now.IsZero() {
		m.now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	m.now = m.now.Add(time.Second)
	task := domain.Task{
		ID:          int64(len(m.tasks) + 1),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   m.now,
		UpdatedAt:   m.now,
	}
	m.tasks = append(m.tasks, task)
	return &task, nil
}

func setupRouter(store TaskStore, verbose bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(store, verbose)
	r.GET("/tasks", h.ListTasks)
	r.POST("/tasks", h.CreateTask)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateTaskDefaults(t *testing.T) {
	for _, title := range []string{"Buy milk", "  padded  ", "\tx\n"} {
		store := &memStore{}
		w := do(setupRouter(store, false), http.MethodPost, "/tasks", `{"title":`+mustJSON(title)+`}`)

		require.Equal(t, http.StatusCreated, w.Code, title)
		body := decode(t, w)
		assert.Equal(t, strings.TrimSpace(title), body["title"])
		assert.Equal(t, "pending", body["status"])
		assert.Nil(t, body["description"])
		assert.Contains(t, body, "description")
		assert.Equal(t, float64(1), body["id"])
		assert.Contains(t, body, "created_at")
		assert.Contains(t, body, "updated_at")
	}
}

func TestCreateTaskTrimsByteOrderMark(t *testing.T) {
	store := &memStore{}
	w := do(setupRouter(store, false), http.MethodPost, "/tasks", `{"title":"\ufeff Plan sprint \ufeff"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Plan sprint", decode(t, w)["title"])
}

func TestCreateTaskWithAllFields(t *testing.T) {
	store := &memStore{}
	w := do(setupRouter(store, false), http.MethodPost, "/tasks",
		`{"title":"Write report","description":"quarterly","status":"in_progress"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "quarterly", body["description"])
	assert.Equal(t, "in_progress", body["status"])
	assert.NotContains(t, body, "task")
}

func TestCreateTaskFalsyOptionalFields(t *testing.T) {
	store := &memStore{}
	w := do(setupRouter(store, false), http.MethodPost, "/tasks",
		`{"title":"t","description":"","status":null}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Nil(t, body["description"])
	assert.Equal(t, "pending", body["status"])

	w = do(setupRouter(store, false), http.MethodPost, "/tasks",
		`{"title":"t","description":false,"status":0}`)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateTaskValidation(t *testing.T) {
	cases := map[string]string{
		"missing title":    `{"description":"No title provided"}`,
		"empty title":      `{"title":""}`,
		"blank title":      `{"title":"   "}`,
		"numeric title":    `{"title":42}`,
		"boolean title":    `{"title":true}`,
		"object title":     `{"title":{"a":1}}`,
		"null title":       `{"title":null}`,
		"bom title":        `{"title":"\ufeff"}`,
		"bom and spaces":   `{"title":" \ufeff\t"}`,
		"whitespace body":  "  \n ",
		"empty body":       ``,
		"null body":        `null`,
		"array body":       `[{"title":"x"}]`,
		"malformed json":   `{"title":`,
		"bad description":  `{"title":"x","description":12}`,
		"bad status":       `{"title":"x","status":["done"]}`,
		"truthy bool desc": `{"title":"x","description":true}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := &memStore{}
			w := do(setupRouter(store, false), http.MethodPost, "/tasks", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode(t, w)
			assert.Equal(t, "Validation failed", resp["error"])
			assert.NotEmpty(t, resp["message"])
			assert.Equal(t, 0, store.creates)
		})
	}
}

func TestCreateTaskDatabaseError(t *testing.T) {
	store := &memStore{err: errors.New("Insert failed")}

	w := do(setupRouter(store, false), http.MethodPost, "/tasks", `{"title":"Task causing DB error"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Internal server error", resp["error"])
	assert.NotContains(t, resp, "message")

	w = do(setupRouter(store, true), http.MethodPost, "/tasks", `{"title":"Test task","description":"desc"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp = decode(t, w)
	assert.Equal(t, "Internal server error", resp["error"])
	assert.Equal(t, "Insert failed", resp["message"])
}

func TestListTasksEmpty(t *testing.T) {
	w := do(setupRouter(&memStore{}, false), http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[]}`, w.Body.String())
}

func TestListTasksEchoesStoreRows(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	desc := "Desc"
	store := &memStore{tasks: []domain.Task{
		{ID: 1, Title: "Test", Description: &desc, Status: "pending", CreatedAt: created, UpdatedAt: created},
	}}

	w := do(setupRouter(store, false), http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[{
		"id":1,"title":"Test","description":"Desc","status":"pending",
		"created_at":"2026-03-01T12:00:00Z","updated_at":"2026-03-01T12:00:00Z"
	}]}`, w.Body.String())
}

func TestListTasksDatabaseError(t *testing.T) {
	store := &memStore{err: errors.New("DB fail")}

	w := do(setupRouter(store, false), http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

	w = do(setupRouter(store, true), http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error","message":"DB fail"}`, w.Body.String())
}

func TestCreateThenListRoundTrip(t *testing.T) {
	store := &memStore{}
	r := setupRouter(store, false)

	w := do(r, http.MethodPost, "/tasks", `{"title":"first"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(r, http.MethodPost, "/tasks", `{"title":"second","description":"d","status":"done"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)

	w = do(r, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Tasks []map[string]any `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Tasks, 2)
	assert.Equal(t, created, list.Tasks[0])
	assert.Equal(t, "first", list.Tasks[1]["title"])
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
