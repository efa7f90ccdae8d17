package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
	"github.com/guaianases/go-recruiting-backend/internal/http/middleware"
	"github.com/guaianases/go-recruiting-backend/internal/notifycache"
	"github.com/guaianases/go-recruiting-backend/internal/repo"
	"github.com/guaianases/go-recruiting-backend/internal/services"
)

//
// Test plumbing
//

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:handlers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Application{}, &domain.Notification{}, &domain.Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// realRepo mirrors the router's adapter so handlers tests exercise the real
// repo functions.
type realRepo struct{}

func (realRepo) CreateApplication(ctx context.Context, db *gorm.DB, fullName, idGame string, age int, phone string) (*domain.Application, error) {
	return repo.CreateApplication(ctx, db, fullName, idGame, age, phone)
}

func (realRepo) ListApplications(ctx context.Context, db *gorm.DB) ([]domain.Application, error) {
	return repo.ListApplications(ctx, db)
}

func (realRepo) GetApplication(ctx context.Context, db *gorm.DB, id string) (*domain.Application, error) {
	return repo.GetApplication(ctx, db, id)
}

func (realRepo) UpdateApplicationStatus(ctx context.Context, db *gorm.DB, id string, status domain.Status) error {
	return repo.UpdateApplicationStatus(ctx, db, id, status)
}

func (realRepo) DeleteApplication(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteApplication(ctx, db, id)
}

func newHandlerEnv(t *testing.T) (*gin.Engine, *Handlers, *gorm.DB, *notifycache.Cache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	cache := notifycache.New(notifycache.NewMemorySlot())
	notifier := services.NewNotifierService(db)
	appSvc := services.NewApplicationService(db, realRepo{}, notifier)
	notifSvc := services.NewNotificationService(db)
	h := New(appSvc, notifSvc, cache, time.Hour)

	r := gin.New()
	r.Use(middleware.Identity())
	r.POST("/applications", h.SubmitApplication)
	r.GET("/applications", h.ListApplications)
	r.PUT("/applications/:id/status", h.UpdateApplicationStatus)
	r.DELETE("/applications/:id", h.DeleteApplication)
	r.GET("/notifications", h.ListNotifications)
	r.DELETE("/notifications", h.ClearNotifications)
	r.PUT("/notifications/:id/read", h.MarkNotificationRead)
	r.DELETE("/notifications/:id", h.DeleteNotification)
	r.GET("/notifications/cache", h.GetCachedNotifications)
	r.DELETE("/notifications/cache", h.ClearCachedNotifications)
	r.DELETE("/notifications/cache/:id", h.RemoveCachedNotification)
	return r, h, db, cache
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func submitBody(name, age, phone, idGame string) map[string]string {
	return map[string]string{
		"full_name": name,
		"age":       age,
		"phone":     phone,
		"id_game":   idGame,
	}
}

//
// SubmitApplication
//

func TestSubmitApplication_CreatesPending(t *testing.T) {
	r, _, db, cache := newHandlerEnv(t)

	w := doJSON(t, r, http.MethodPost, "/applications", submitBody("João Silva", "25", "11987654321", "12345"), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp SubmitApplicationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Application == nil || resp.Application.Status != domain.StatusPending {
		t.Fatalf("unexpected application: %+v", resp.Application)
	}
	if resp.Application.Age != 25 || resp.Application.IDGame != "12345" {
		t.Fatalf("fields not persisted: %+v", resp.Application)
	}

	// One durable notification appended.
	var n int64
	if err := db.Model(&domain.Notification{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("notification count = %d err=%v, want 1", n, err)
	}
	// And one cached entry.
	if got := cache.Unread(); got != 1 {
		t.Fatalf("cache unread = %d, want 1", got)
	}
}

func TestSubmitApplication_ValidationMessagesVerbatim(t *testing.T) {
	r, _, _, _ := newHandlerEnv(t)

	cases := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing field", submitBody("", "25", "11987654321", "12345"), "Todos os campos são obrigatórios"},
		{"age too low", submitBody("João", "17", "11987654321", "12345"), "Idade deve ser entre 18 e 70 anos"},
		{"age too high", submitBody("João", "71", "11987654321", "12345"), "Idade deve ser entre 18 e 70 anos"},
		{"age not numeric", submitBody("João", "abc", "11987654321", "12345"), "Idade deve ser entre 18 e 70 anos"},
		{"phone with letters", submitBody("João", "25", "11-98765", "12345"), "Telefone deve conter apenas números"},
		{"id with letters", submitBody("João", "25", "11987654321", "12a45"), "ID deve conter apenas números"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/applications", tc.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("json: %v", err)
			}
			if er.Code != ErrCodeValidationFailed || er.Message != tc.want {
				t.Fatalf("got %q/%q, want %q/%q", er.Code, er.Message, ErrCodeValidationFailed, tc.want)
			}
		})
	}
}

func TestSubmitApplication_DuplicateFieldsAllowed(t *testing.T) {
	r, _, _, _ := newHandlerEnv(t)

	body := submitBody("João Silva", "25", "11987654321", "12345")
	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/applications", body, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("submission %d expected 201, got %d", i, w.Code)
		}
	}
}

func TestSubmitApplication_IdempotencyReplay(t *testing.T) {
	r, _, db, _ := newHandlerEnv(t)

	hdr := map[string]string{"Idempotency-Key": "form-abc-1", "X-User-ID": "u1"}
	body := submitBody("Maria Souza", "30", "21999998888", "777")

	w1 := doJSON(t, r, http.MethodPost, "/applications", body, hdr)
	if w1.Code != http.StatusCreated {
		t.Fatalf("first submit expected 201, got %d: %s", w1.Code, w1.Body.String())
	}
	var first SubmitApplicationResponse
	_ = json.Unmarshal(w1.Body.Bytes(), &first)

	w2 := doJSON(t, r, http.MethodPost, "/applications", body, hdr)
	if w2.Code != http.StatusOK {
		t.Fatalf("replay expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	if w2.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("expected Idempotency-Replayed header")
	}
	var second SubmitApplicationResponse
	_ = json.Unmarshal(w2.Body.Bytes(), &second)
	if first.Application.ID != second.Application.ID {
		t.Fatalf("replay returned a different application: %s vs %s", first.Application.ID, second.Application.ID)
	}

	// Only one row was created.
	var n int64
	if err := db.Model(&domain.Application{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("application count = %d err=%v, want 1", n, err)
	}
}

func TestSubmitApplication_IdempotencyRecordUsesConfiguredTTL(t *testing.T) {
	// newHandlerEnv wires the handlers with a 1h TTL; the stored record must
	// reflect that, not a built-in default.
	r, _, db, _ := newHandlerEnv(t)

	hdr := map[string]string{"Idempotency-Key": "ttl-check-1", "X-User-ID": "u1"}
	w := doJSON(t, r, http.MethodPost, "/applications", submitBody("Maria Souza", "30", "21999998888", "777"), hdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var rec domain.Idempotency
	if err := db.Where("user_id = ? AND key = ?", "u1", "ttl-check-1").First(&rec).Error; err != nil {
		t.Fatalf("load idempotency record: %v", err)
	}
	if got := rec.ExpiresAt.Sub(rec.CreatedAt); got != time.Hour {
		t.Fatalf("record TTL = %v, want %v", got, time.Hour)
	}
}

func TestSubmitApplication_InvalidJSON(t *testing.T) {
	r, _, _, _ := newHandlerEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/applications", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

//
// ListApplications
//

func seedApplications(t *testing.T, r *gin.Engine) {
	t.Helper()
	for _, b := range []map[string]string{
		submitBody("João Silva", "25", "11987654321", "12345"),
		submitBody("Maria Souza", "30", "21999998888", "777"),
		submitBody("José da Silva", "40", "31888887777", "900001"),
	} {
		if w := doJSON(t, r, http.MethodPost, "/applications", b, nil); w.Code != http.StatusCreated {
			t.Fatalf("seed submit failed: %d", w.Code)
		}
	}
}

func TestListApplications_FilterAndCounts(t *testing.T) {
	r, _, _, _ := newHandlerEnv(t)
	seedApplications(t, r)

	w := doJSON(t, r, http.MethodGet, "/applications?status=all&search=silva", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ListApplicationsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Counts.Shown != 2 || resp.Counts.Total != 3 {
		t.Fatalf("counts = %+v, want shown 2 of 3", resp.Counts)
	}
	if resp.Summary != "Mostrando 2 de 3" {
		t.Fatalf("summary = %q", resp.Summary)
	}
	if len(resp.Applications) != 2 {
		t.Fatalf("applications len = %d", len(resp.Applications))
	}
}

func TestListApplications_ETag304(t *testing.T) {
	r, _, _, _ := newHandlerEnv(t)
	seedApplications(t, r)

	w1 := doJSON(t, r, http.MethodGet, "/applications", nil, nil)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}
	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}

	w2 := doJSON(t, r, http.MethodGet, "/applications", nil, map[string]string{"If-None-Match": etag})
	if w2.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w2.Code)
	}
}

func TestListApplications_ETagInvalidatedByDecision(t *testing.T) {
	r, _, _, _ := newHandlerEnv(t)
	app := createOne(t, r)

	w1 := doJSON(t, r, http.MethodGet, "/applications", nil, nil)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}
	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}

	// Unchanged snapshot still revalidates.
	if w := doJSON(t, r, http.MethodGet, "/applications", nil, map[string]string{"If-None-Match": etag}); w.Code != http.StatusNotModified {
		t.Fatalf("expected 304 before decision, got %d", w.Code)
	}

	// A review decision changes the snapshot the admin sees. The stale tag
	// must stop validating even though the row count did not change.
	w := doJSON(t, r, http.MethodPut, "/applications/"+app.ID+"/status", map[string]string{"status": "approved"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("decision expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w3 := doJSON(t, r, http.MethodGet, "/applications", nil, map[string]string{"If-None-Match": etag})
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 with fresh body after decision, got %d", w3.Code)
	}
	if got := w3.Header().Get("ETag"); got == "" || got == etag {
		t.Fatalf("ETag did not change after decision: %q", got)
	}
	var resp ListApplicationsResponse
	if err := json.Unmarshal(w3.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(resp.Applications) != 1 || resp.Applications[0].Status != domain.StatusApproved {
		t.Fatalf("stale snapshot served after decision: %+v", resp.Applications)
	}
}

func TestListApplications_StoreFailureGenericMessage(t *testing.T) {
	r, _, db, _ := newHandlerEnv(t)
	seedApplications(t, r)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	_ = sqlDB.Close()

	w := doJSON(t, r, http.MethodGet, "/applications", nil, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Message != "não foi possível carregar as candidaturas" {
		t.Fatalf("message = %q, want the generic retry copy", er.Message)
	}
	// Driver/SQL details must never reach the client.
	if s := strings.ToLower(w.Body.String()); strings.Contains(s, "sql") || strings.Contains(s, "database") {
		t.Fatalf("response leaks store internals: %s", w.Body.String())
	}
}

//
// UpdateApplicationStatus / DeleteApplication
//

func createOne(t *testing.T, r *gin.Engine) *domain.Application {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/applications", submitBody("João Silva", "25", "11987654321", "12345"), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}
	var resp SubmitApplicationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	return resp.Application
}

func TestUpdateApplicationStatus_Approve(t *testing.T) {
	r, _, db, _ := newHandlerEnv(t)
	app := createOne(t, r)

	w := doJSON(t, r, http.MethodPut, "/applications/"+app.ID+"/status",
		map[string]string{"status": "approved"},
		map[string]string{"X-User-Name": "Carlos Mendes"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp SubmitApplicationResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Application.Status != domain.StatusApproved {
		t.Fatalf("status = %q, want approved", resp.Application.Status)
	}

	// The decision appended a "general" notification naming the actor.
	var last domain.Notification
	if err := db.Where("type = ?", domain.NotificationTypeGeneral).Order("created_at desc").First(&last).Error; err != nil {
		t.Fatalf("load notification: %v", err)
	}
	want := "Candidatura de João Silva foi aprovada por Carlos Mendes"
	if last.Type != domain.NotificationTypeGeneral || last.Message != want {
		t.Fatalf("notification = %q (%s), want %q", last.Message, last.Type, want)
	}
}

func TestUpdateApplicationStatus_Errors(t *testing.T) {
	r, _, _, _ := newHandlerEnv(t)
	app := createOne(t, r)

	t.Run("invalid status value", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/applications/"+app.ID+"/status", map[string]string{"status": "archived"}, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
	t.Run("pending is not a decision", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/applications/"+app.ID+"/status", map[string]string{"status": "pending"}, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/applications/"+uuid.NewString()+"/status", map[string]string{"status": "approved"}, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
	t.Run("malformed id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/applications/not-a-uuid/status", map[string]string{"status": "approved"}, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestUpdateApplicationStatus_RedecideAllowed(t *testing.T) {
	r, _, _, _ := newHandlerEnv(t)
	app := createOne(t, r)

	for _, status := range []string{"approved", "rejected"} {
		w := doJSON(t, r, http.MethodPut, "/applications/"+app.ID+"/status", map[string]string{"status": status}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("decision %q expected 200, got %d", status, w.Code)
		}
	}
}

func TestDeleteApplication(t *testing.T) {
	r, _, db, _ := newHandlerEnv(t)
	app := createOne(t, r)

	w := doJSON(t, r, http.MethodDelete, "/applications/"+app.ID, nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	// Gone from the store; notifications remain.
	var n int64
	if err := db.Model(&domain.Application{}).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("application count = %d, want 0", n)
	}
	if err := db.Model(&domain.Notification{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("notification count = %d, want 1 (kept)", n)
	}

	// Deleting again → 404.
	w = doJSON(t, r, http.MethodDelete, "/applications/"+app.ID, nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
