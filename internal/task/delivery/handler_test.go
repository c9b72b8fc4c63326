package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authdomain "timesync-backend/internal/auth/domain"
	authrepo "timesync-backend/internal/auth/repository"
	"timesync-backend/internal/task/domain"
	"timesync-backend/internal/task/repository"
	"timesync-backend/internal/task/usecase"
	"timesync-backend/pkg/ai"
	"timesync-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return m.GenerateFunc(ctx, prompt)
}

func setupRouter(t *testing.T, generator ai.TextGenerator) (*gin.Engine, repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	profiles := authrepo.NewMemoryProfileRepository()
	_ = profiles.Create(context.Background(), &authdomain.User{ID: "u1", Email: "me@example.com"})

	var schedule *ai.ScheduleService
	if generator != nil {
		schedule = ai.NewScheduleService(generator)
	}
	uc := usecase.NewTaskUsecase(store, profiles, nil, schedule, nil, &config.Config{Timezone: "UTC"})
	h := NewTaskHandler(uc)

	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	api.GET("/tasks", h.GetTasks)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/:id", h.GetTaskByID)
	api.DELETE("/tasks/:id", h.DeleteTask)
	api.PATCH("/tasks/:id/complete", h.ToggleCompletion)
	api.POST("/tasks/:id/reminder", h.SetReminder)
	api.POST("/tasks/:id/share", h.ShareTask)
	api.POST("/tasks/migrate", h.MigrateLegacy)
	api.POST("/categories", h.RegisterCategory)
	api.POST("/schedule/suggest", h.SuggestSchedule)
	return r, store
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTask(t *testing.T, r http.Handler, body map[string]interface{}) *domain.Task {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/tasks", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var task domain.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return &task
}

func TestCreateAndListTasks(t *testing.T) {
	r, _ := setupRouter(t, nil)

	createTask(t, r, map[string]interface{}{"task": "low", "priority": 2, "tags": []string{"home"}})
	createTask(t, r, map[string]interface{}{"task": "high", "priority": 5})

	w := doJSON(r, http.MethodGet, "/api/tasks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list usecase.TaskList
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Tasks) != 2 || list.Tasks[0].Description != "high" {
		t.Fatalf("tasks = %+v", list.Tasks)
	}

	w = doJSON(r, http.MethodGet, "/api/tasks?tag=home", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Tasks) != 1 || list.Tasks[0].Description != "low" {
		t.Fatalf("filtered = %+v", list.Tasks)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	r, _ := setupRouter(t, nil)
	task := createTask(t, r, map[string]interface{}{"task": "shared"})

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"empty description", http.MethodPost, "/api/tasks", map[string]string{"task": " "}, http.StatusBadRequest},
		{"bad priority", http.MethodPost, "/api/tasks", map[string]interface{}{"task": "x", "priority": 9}, http.StatusBadRequest},
		{"missing task", http.MethodGet, "/api/tasks/nope", nil, http.StatusNotFound},
		{"complete missing body", http.MethodPatch, "/api/tasks/" + task.ID + "/complete", map[string]string{}, http.StatusBadRequest},
		{"complete missing task", http.MethodPatch, "/api/tasks/nope/complete", map[string]bool{"completed": true}, http.StatusNotFound},
		{"past reminder", http.MethodPost, "/api/tasks/" + task.ID + "/reminder", map[string]time.Time{"at": time.Now().Add(-time.Hour)}, http.StatusBadRequest},
		{"self share", http.MethodPost, "/api/tasks/" + task.ID + "/share", map[string]string{"email": "ME@example.com"}, http.StatusConflict},
		{"empty category", http.MethodPost, "/api/categories", map[string]string{"name": ""}, http.StatusBadRequest},
		{"schedule not configured", http.MethodPost, "/api/schedule/suggest", nil, http.StatusServiceUnavailable},
		{"delete missing task", http.MethodDelete, "/api/tasks/nope", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCompleteArchivesTask(t *testing.T) {
	r, _ := setupRouter(t, nil)
	task := createTask(t, r, map[string]interface{}{"task": "done soon"})

	w := doJSON(r, http.MethodPatch, "/api/tasks/"+task.ID+"/complete", map[string]bool{"completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var completed domain.Task
	_ = json.Unmarshal(w.Body.Bytes(), &completed)
	if !completed.Completed || !completed.Archived || completed.CompletedAt == nil {
		t.Fatalf("completed = %+v", completed)
	}

	w = doJSON(r, http.MethodGet, "/api/tasks", nil)
	var list usecase.TaskList
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Tasks) != 0 {
		t.Fatalf("completed task still listed: %+v", list.Tasks)
	}
}

func TestShareToUnknownEmail(t *testing.T) {
	r, store := setupRouter(t, nil)
	task := createTask(t, r, map[string]interface{}{"task": "read book"})

	w := doJSON(r, http.MethodPost, "/api/tasks/"+task.ID+"/share", map[string]string{"email": "friend@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	inbox, _ := store.ListIncoming(context.Background(), "friend_example_com")
	if len(inbox) != 1 || inbox[0].SharedBy != "me@example.com" {
		t.Fatalf("inbox = %+v", inbox)
	}
}

func TestMigrateLegacyBody(t *testing.T) {
	r, _ := setupRouter(t, nil)

	if w := doJSON(r, http.MethodPost, "/api/tasks/migrate", nil); w.Code != http.StatusOK {
		t.Fatalf("empty body: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodPost, "/api/tasks/migrate", map[string]bool{"dry_run": true}); w.Code != http.StatusOK {
		t.Fatalf("dry run: status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodPost, "/api/tasks/migrate", map[string]string{"dry_run": "yes"}); w.Code != http.StatusBadRequest {
		t.Fatalf("mistyped flag: status = %d, want 400", w.Code)
	}
}

func TestSuggestSchedule(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, _ := setupRouter(t, &MockGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Start with the report.", nil
		}})
		w := doJSON(r, http.MethodPost, "/api/schedule/suggest", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["suggestion"] != "Start with the report." {
			t.Errorf("resp = %v", resp)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		r, _ := setupRouter(t, &MockGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", context.DeadlineExceeded
		}})
		w := doJSON(r, http.MethodPost, "/api/schedule/suggest", nil)
		if w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d", w.Code)
		}
		var resp map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["error"] != "failed to fetch schedule" {
			t.Errorf("resp = %v", resp)
		}
	})
}
