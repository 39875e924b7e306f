package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/civicpulse-api/internal/ai"
	"github.com/gravadigital/civicpulse-api/internal/auth"
	"github.com/gravadigital/civicpulse-api/internal/config"
	"github.com/gravadigital/civicpulse-api/internal/domain/profile"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/services"
	"github.com/gravadigital/civicpulse-api/internal/storage/memory"
)

// testEnv wires the full route table against in-memory repositories.
type testEnv struct {
	router      *gin.Engine
	issuer      *auth.TokenIssuer
	profileRepo *memory.InMemoryProfileRepository
	issueRepo   *memory.InMemoryIssueRepository
	eventRepo   *memory.InMemoryEventRepository
	notifRepo   *memory.InMemoryNotificationRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Initialize("error")

	cfg := &config.Config{}
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.Issuer = "civicpulse-test"
	cfg.JWT.TTLMinutes = 60

	issueRepo := memory.NewInMemoryIssueRepository()
	voteRepo := memory.NewInMemoryVoteRepository()
	commentRepo := memory.NewInMemoryCommentRepository()
	eventRepo := memory.NewInMemoryEventRepository()
	profileRepo := memory.NewInMemoryProfileRepository()
	notifRepo := memory.NewInMemoryNotificationRepository()

	issueService := services.NewIssueService(issueRepo, voteRepo, commentRepo, notifRepo)
	eventService := services.NewEventService(eventRepo)

	issuer := auth.NewTokenIssuer(cfg)
	aiClient := ai.NewClient(config.AIConfig{})

	authHandler := NewAuthHandler(profileRepo, issuer)
	issueHandler := NewIssueHandler(issueService, issueRepo, voteRepo, commentRepo)
	eventHandler := NewEventHandler(eventService, eventRepo)
	profileHandler := NewProfileHandler(profileRepo, issueRepo, voteRepo, commentRepo, eventRepo)
	notifHandler := NewNotificationHandler(notifRepo)
	adminHandler := NewAdminHandler(issueService, issueRepo, voteRepo, commentRepo, eventRepo, profileRepo)
	aiHandler := NewAIHandler(aiClient, issueRepo, commentRepo)
	uploadHandler := NewUploadHandler(nil)

	router := gin.New()
	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/me", auth.RequireAuth(issuer), authHandler.Me)

	issues := api.Group("/issues")
	issues.GET("", issueHandler.List)
	issues.GET("/stats", issueHandler.Stats)
	issues.GET("/categories", issueHandler.ListCategories)
	issues.GET("/:id", issueHandler.Get)
	issues.GET("/:id/comments", issueHandler.ListComments)
	authedIssues := issues.Group("", auth.RequireAuth(issuer))
	authedIssues.POST("", issueHandler.Create)
	authedIssues.PUT("/:id", issueHandler.Update)
	authedIssues.DELETE("/:id", issueHandler.Delete)
	authedIssues.GET("/:id/vote", issueHandler.GetVote)
	authedIssues.POST("/:id/vote", issueHandler.Vote)
	authedIssues.POST("/:id/comments", issueHandler.CreateComment)
	issues.POST("/categories", auth.RequireAuth(issuer), auth.RequireAdmin(), issueHandler.CreateCategory)

	events := api.Group("/events")
	events.GET("", eventHandler.List)
	events.GET("/:id", eventHandler.Get)
	authedEvents := events.Group("", auth.RequireAuth(issuer))
	authedEvents.POST("", eventHandler.Create)
	authedEvents.PUT("/:id", eventHandler.Update)
	authedEvents.DELETE("/:id", eventHandler.Delete)
	authedEvents.GET("/:id/attend", eventHandler.GetAttendance)
	authedEvents.POST("/:id/attend", eventHandler.Attend)

	profiles := api.Group("/profiles", auth.RequireAuth(issuer))
	profiles.GET("", profileHandler.List)
	profiles.GET("/:id", profileHandler.Get)
	profiles.PUT("/:id", profileHandler.Update)

	notifications := api.Group("/notifications", auth.RequireAuth(issuer))
	notifications.GET("", notifHandler.List)
	notifications.POST("", auth.RequireAdmin(), notifHandler.Create)
	notifications.PUT("/:id/read", notifHandler.MarkRead)

	api.POST("/uploads", auth.RequireAuth(issuer), uploadHandler.Upload)

	admin := api.Group("/admin", auth.RequireAuth(issuer), auth.RequireAdmin())
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/issues", adminHandler.ListIssues)
	admin.PATCH("/issues/:id/status", adminHandler.ChangeIssueStatus)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PATCH("/users/:id", adminHandler.PatchUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/reports", adminHandler.Reports)

	aiRoutes := api.Group("/ai", auth.RequireAuth(issuer))
	aiRoutes.POST("/categorize", aiHandler.Categorize)
	aiRoutes.POST("/moderate", aiHandler.Moderate)
	aiRoutes.POST("/solutions", aiHandler.Solutions)
	aiRoutes.POST("/summarize", auth.RequireAdmin(), aiHandler.Summarize)
	aiRoutes.GET("/analytics", auth.RequireAdmin(), aiHandler.Analytics)

	return &testEnv{
		router:      router,
		issuer:      issuer,
		profileRepo: profileRepo,
		issueRepo:   issueRepo,
		eventRepo:   eventRepo,
		notifRepo:   notifRepo,
	}
}

// createUser seeds a profile directly and returns a token for it
func (env *testEnv) createUser(t *testing.T, email string, role profile.Role) (string, *profile.Profile) {
	t.Helper()

	hash, err := auth.HashPassword("a-long-enough-password")
	require.NoError(t, err)

	p := profile.NewProfile(email, hash, "Test", "User")
	p.Role = role
	require.NoError(t, env.profileRepo.Create(p))

	token, err := env.issuer.Issue(p)
	require.NoError(t, err)
	return token, p
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":      "Resident@Example.com",
		"password":   "a-long-enough-password",
		"first_name": "Rita",
		"last_name":  "Gomez",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])
	registered := body["profile"].(map[string]any)
	assert.Equal(t, "resident@example.com", registered["email"])
	assert.Equal(t, "user", registered["role"])

	// Duplicate email, case-insensitive
	w = env.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":      "resident@example.com",
		"password":   "a-long-enough-password",
		"first_name": "Rita",
		"last_name":  "Gomez",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Email already registered"}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "resident@example.com",
		"password": "a-long-enough-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "resident@example.com",
		"password": "wrong-password-entirely",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Invalid email or password"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "resident@example.com", decodeBody(t, w)["email"])
}

func TestIssueEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/issues", "", gin.H{
		"title":       "No token",
		"description": "Should bounce",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Unauthorized"}`, w.Body.String())
}

func TestIssueReportToResolutionFlow(t *testing.T) {
	env := newTestEnv(t)
	userToken, _ := env.createUser(t, "reporter@example.com", profile.RoleUser)
	adminToken, _ := env.createUser(t, "admin@example.com", profile.RoleAdmin)

	// Resident reports an issue
	w := env.do(t, http.MethodPost, "/api/issues", userToken, gin.H{
		"title":       "Flooded underpass",
		"description": "Water pools after every rain",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody(t, w)
	issueID := created["id"].(string)
	assert.Equal(t, "open", created["status"])
	assert.Equal(t, "high", created["priority"])

	// Anyone can read it
	w = env.do(t, http.MethodGet, "/api/issues/"+issueID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "open", body["issue"].(map[string]any)["status"])
	assert.Equal(t, float64(1), body["issue"].(map[string]any)["view_count"])

	// Admin resolves it
	w = env.do(t, http.MethodPatch, "/api/admin/issues/"+issueID+"/status", adminToken, gin.H{
		"status":      "resolved",
		"admin_notes": "Drain cleared",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "resolved", decodeBody(t, w)["status"])

	// The reporter got notified
	w = env.do(t, http.MethodGet, "/api/notifications?unread=true", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	notifications := body["notifications"].([]any)
	require.Len(t, notifications, 1)
	notif := notifications[0].(map[string]any)
	assert.Equal(t, "issue_status_update", notif["type"])

	// Marking it read empties the unread list
	w = env.do(t, http.MethodPut, "/api/notifications/"+notif["id"].(string)+"/read", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["is_read"])

	w = env.do(t, http.MethodGet, "/api/notifications?unread=true", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["notifications"])
}

func TestVoteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	userToken, _ := env.createUser(t, "voter@example.com", profile.RoleUser)
	reporterToken, _ := env.createUser(t, "rep@example.com", profile.RoleUser)

	w := env.do(t, http.MethodPost, "/api/issues", reporterToken, gin.H{
		"title":       "Broken bench",
		"description": "Slats missing in the plaza",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	issueID := decodeBody(t, w)["id"].(string)

	w = env.do(t, http.MethodPost, "/api/issues/"+issueID+"/vote", userToken, gin.H{"vote_type": "up"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "created", body["outcome"])
	assert.Equal(t, float64(1), body["votes"].(map[string]any)["up"])

	// Voting the same way again withdraws the vote
	w = env.do(t, http.MethodPost, "/api/issues/"+issueID+"/vote", userToken, gin.H{"vote_type": "up"})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, "removed", body["outcome"])
	assert.Equal(t, float64(0), body["votes"].(map[string]any)["up"])

	w = env.do(t, http.MethodPost, "/api/issues/"+issueID+"/vote", userToken, gin.H{"vote_type": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateIssueForbidden(t *testing.T) {
	env := newTestEnv(t)
	ownerToken, _ := env.createUser(t, "owner@example.com", profile.RoleUser)
	otherToken, _ := env.createUser(t, "other@example.com", profile.RoleUser)

	w := env.do(t, http.MethodPost, "/api/issues", ownerToken, gin.H{
		"title":       "Graffiti",
		"description": "On the library wall",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	issueID := decodeBody(t, w)["id"].(string)

	w = env.do(t, http.MethodPut, "/api/issues/"+issueID, otherToken, gin.H{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error": "You do not have permission to perform this action"}`, w.Body.String())

	w = env.do(t, http.MethodDelete, "/api/issues/"+issueID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIssueNotFoundAndBadID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/issues/b3c54687-9d5a-4b4e-9737-34f5db09f30b", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Resource not found"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/issues/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueListPagination(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.createUser(t, "lister@example.com", profile.RoleUser)

	for i := 0; i < 5; i++ {
		w := env.do(t, http.MethodPost, "/api/issues", token, gin.H{
			"title":       fmt.Sprintf("Issue %d", i),
			"description": "Filler",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/issues?page=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["issues"].([]any), 2)

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(5), pagination["total"])
	assert.Equal(t, float64(3), pagination["totalPages"])
}

func TestEventCapacityOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	organizerToken, _ := env.createUser(t, "org@example.com", profile.RoleUser)
	firstToken, _ := env.createUser(t, "first@example.com", profile.RoleUser)
	secondToken, _ := env.createUser(t, "second@example.com", profile.RoleUser)

	w := env.do(t, http.MethodPost, "/api/events", organizerToken, gin.H{
		"title":         "Small workshop",
		"event_date":    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"max_attendees": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	eventID := decodeBody(t, w)["id"].(string)

	w = env.do(t, http.MethodPost, "/api/events/"+eventID+"/attend", firstToken, gin.H{"status": "attending"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/events/"+eventID+"/attend", secondToken, gin.H{"status": "attending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Event is at capacity"}`, w.Body.String())

	// A maybe RSVP is not capacity bound
	w = env.do(t, http.MethodPost, "/api/events/"+eventID+"/attend", secondToken, gin.H{"status": "maybe"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventRejectsPastDateOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.createUser(t, "org2@example.com", profile.RoleUser)

	w := env.do(t, http.MethodPost, "/api/events", token, gin.H{
		"title":      "Yesterday's meetup",
		"event_date": time.Now().Add(-24 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRejectResidents(t *testing.T) {
	env := newTestEnv(t)
	userToken, _ := env.createUser(t, "plain@example.com", profile.RoleUser)

	w := env.do(t, http.MethodGet, "/api/admin/dashboard", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error": "Admin access required"}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/notifications", userToken, gin.H{
		"user_id": "b3c54687-9d5a-4b4e-9737-34f5db09f30b",
		"title":   "Hello",
		"message": "World",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPatchUserPartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := env.createUser(t, "boss@example.com", profile.RoleAdmin)
	_, target := env.createUser(t, "target@example.com", profile.RoleUser)

	w := env.do(t, http.MethodPatch, "/api/admin/users/"+target.ID.String(), adminToken, gin.H{
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["is_active"])
	// Role stays untouched on a partial update
	assert.Equal(t, "user", body["role"])

	// A deactivated user can no longer log in
	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "target@example.com",
		"password": "a-long-enough-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPatch, "/api/admin/users/"+target.ID.String(), adminToken, gin.H{
		"role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUserDeactivates(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := env.createUser(t, "boss2@example.com", profile.RoleAdmin)
	_, target := env.createUser(t, "gone@example.com", profile.RoleUser)

	w := env.do(t, http.MethodDelete, "/api/admin/users/"+target.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "User deactivated"}`, w.Body.String())

	stored, err := env.profileRepo.GetByID(target.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestAdminReports(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := env.createUser(t, "boss3@example.com", profile.RoleAdmin)

	w := env.do(t, http.MethodGet, "/api/admin/reports?type=summary", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "summary", body["type"])
	assert.Equal(t, float64(1), body["data"].(map[string]any)["total_users"])

	w = env.do(t, http.MethodGet, "/api/admin/reports?type=bogus", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileUpdateSelfOnly(t *testing.T) {
	env := newTestEnv(t)
	aToken, a := env.createUser(t, "a@example.com", profile.RoleUser)
	_, b := env.createUser(t, "b@example.com", profile.RoleUser)

	w := env.do(t, http.MethodPut, "/api/profiles/"+b.ID.String(), aToken, gin.H{"bio": "Not mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, "/api/profiles/"+a.ID.String(), aToken, gin.H{"bio": "Longtime resident"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Longtime resident", decodeBody(t, w)["bio"])
}

func TestAIRoutesReturn503WhenUnconfigured(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.createUser(t, "curious@example.com", profile.RoleUser)

	w := env.do(t, http.MethodPost, "/api/ai/categorize", token, gin.H{
		"title":       "Leaning lamp post",
		"description": "It tilts a little more every week",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error": "AI features are not configured"}`, w.Body.String())
}

func TestUploadsUnavailableWithoutStore(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.createUser(t, "uploader@example.com", profile.RoleUser)

	w := env.do(t, http.MethodPost, "/api/uploads", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error": "Uploads are not configured"}`, w.Body.String())
}
