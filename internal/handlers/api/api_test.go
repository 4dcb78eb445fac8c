package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/agicotech/ForumApp/internal/audit"
	"github.com/agicotech/ForumApp/internal/auth"
	"github.com/agicotech/ForumApp/internal/forum"
	"github.com/agicotech/ForumApp/internal/middlewares"
	"github.com/agicotech/ForumApp/internal/users"
	"github.com/agicotech/ForumApp/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "forum.db")), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	userRepo := users.NewUserRepository(db)
	auditRepo := audit.NewAuditLogRepository(db)
	topicRepo := forum.NewTopicRepository(db)
	messageRepo := forum.NewMessageRepository(db)
	audit.Initialize(auditRepo)

	tokenService := auth.NewTokenService("test-secret", "forumapp", "forumapp-clients", time.Hour)
	userService := users.NewUserService(userRepo, tokenService)
	forumService := forum.NewForumService(topicRepo, messageRepo, nil)

	authHandler := NewAuthHandler(userService)
	auditHandler := NewAuditHandler(auditRepo)
	topicHandler := NewTopicHandler(forumService)
	messageHandler := NewMessageHandler(forumService)

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ErrorHandler:  middlewares.ErrorHandler,
	})
	app.Use(middlewares.TokenAuth(tokenService))
	app.Use(middlewares.RequestAudit())

	adminOnly := middlewares.RequireRole(model.RoleAdmin)
	memberOnly := middlewares.RequireRole(model.RoleUser, model.RoleAdmin)

	router := app.Group("/api")
	router.Post("/auth/register", authHandler.PostRegister)
	router.Post("/auth/login", authHandler.PostLogin)
	router.Post("/auth/change-password", middlewares.RequireAuth(), authHandler.PostChangePassword)
	router.Post("/auth/promote-to-admin/:userId", adminOnly, authHandler.PostPromoteToAdmin)
	router.Get("/auth/users", adminOnly, authHandler.GetUsers)
	router.Get("/audit", adminOnly, auditHandler.GetAll)
	router.Get("/audit/user/:userId", adminOnly, auditHandler.GetByUser)
	router.Get("/topics", topicHandler.GetTopics)
	router.Get("/topics/:id", topicHandler.GetTopic)
	router.Post("/topics", adminOnly, topicHandler.PostTopic)
	router.Delete("/topics/:id", adminOnly, topicHandler.DeleteTopic)
	router.Get("/messages/topic/:topicId", messageHandler.GetByTopic)
	router.Get("/messages/:id", messageHandler.GetMessage)
	router.Post("/messages", memberOnly, messageHandler.PostMessage)
	router.Put("/messages/:id", memberOnly, messageHandler.PutMessage)
	router.Delete("/messages/:id", memberOnly, messageHandler.DeleteMessage)

	return &testEnv{app: app, db: db}
}

// doJSON performs one request against the test app and decodes the response
// body into out when out is non-nil. An empty token sends no Authorization
// header.
func (env *testEnv) doJSON(t *testing.T, method string, path string, token string, body any, out any) int {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: failed to decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (env *testEnv) register(t *testing.T, username string, password string) {
	t.Helper()
	status := env.doJSON(t, fiber.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	}, nil)
	if status != fiber.StatusOK {
		t.Fatalf("register %s: got status %d", username, status)
	}
}

func (env *testEnv) login(t *testing.T, username string, password string) string {
	t.Helper()
	var body struct {
		Token string           `json:"token"`
		User  UserInfoResponse `json:"user"`
	}
	status := env.doJSON(t, fiber.MethodPost, "/api/auth/login", "", LoginRequest{
		Username: username,
		Password: password,
	}, &body)
	if status != fiber.StatusOK {
		t.Fatalf("login %s: got status %d", username, status)
	}
	if body.Token == "" {
		t.Fatalf("login %s: empty token", username)
	}
	return body.Token
}

// registerAdmin creates a user and lifts it to Admin directly in the store,
// then logs in so the returned token carries the Admin role.
func (env *testEnv) registerAdmin(t *testing.T, username string) string {
	t.Helper()
	env.register(t, username, "secret123")
	err := env.db.Model(&model.User{}).
		Where("username = ?", username).
		Update("role", model.RoleAdmin).Error
	if err != nil {
		t.Fatalf("failed to grant admin role: %v", err)
	}
	return env.login(t, username, "secret123")
}

func TestRegisterLoginChangePassword(t *testing.T) {
	env := newTestEnv(t)

	var registered struct {
		User UserInfoResponse `json:"user"`
	}
	status := env.doJSON(t, fiber.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
	}, &registered)
	if status != fiber.StatusOK {
		t.Fatalf("register: got status %d", status)
	}
	if registered.User.Username != "bob" || registered.User.Role != "User" {
		t.Errorf("unexpected registered user: %+v", registered.User)
	}

	token := env.login(t, "bob", "secret123")

	status = env.doJSON(t, fiber.MethodPost, "/api/auth/change-password", token, ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "evenmoresecret",
	}, nil)
	if status != fiber.StatusOK {
		t.Fatalf("change-password: got status %d", status)
	}

	// The old password must stop working immediately.
	status = env.doJSON(t, fiber.MethodPost, "/api/auth/login", "", LoginRequest{
		Username: "bob",
		Password: "secret123",
	}, nil)
	if status != fiber.StatusUnauthorized {
		t.Errorf("login with old password: got status %d, want 401", status)
	}
	env.login(t, "bob", "evenmoresecret")
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "bob", "secret123")

	var body struct {
		Message string `json:"message"`
	}
	status := env.doJSON(t, fiber.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "bob",
		Email:    "other@example.com",
		Password: "secret123",
	}, &body)
	if status != fiber.StatusBadRequest {
		t.Fatalf("duplicate register: got status %d, want 400", status)
	}
	if body.Message != "A user with this username or email already exists" {
		t.Errorf("unexpected message: %q", body.Message)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	status := env.doJSON(t, fiber.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: "ab",
		Email:    "not-an-email",
		Password: "123",
	}, &body)
	if status != fiber.StatusBadRequest {
		t.Fatalf("got status %d, want 400", status)
	}
	if body.Message != "Validation failed" {
		t.Errorf("unexpected message: %q", body.Message)
	}
	for _, field := range []string{"username", "email", "password"} {
		if body.Errors[field] == "" {
			t.Errorf("expected a validation error for %q, got %v", field, body.Errors)
		}
	}
}

func TestWrongOldPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "bob", "secret123")
	token := env.login(t, "bob", "secret123")

	var body struct {
		Message string `json:"message"`
	}
	status := env.doJSON(t, fiber.MethodPost, "/api/auth/change-password", token, ChangePasswordRequest{
		OldPassword: "nope",
		NewPassword: "evenmoresecret",
	}, &body)
	if status != fiber.StatusBadRequest {
		t.Fatalf("got status %d, want 400", status)
	}
	if body.Message != "Wrong old password" {
		t.Errorf("unexpected message: %q", body.Message)
	}
	env.login(t, "bob", "secret123")
}

func TestPromoteToAdmin(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerAdmin(t, "root")
	env.register(t, "bob", "secret123")

	var bob model.User
	if err := env.db.Where("username = ?", "bob").First(&bob).Error; err != nil {
		t.Fatalf("failed to look up user: %v", err)
	}

	path := fmt.Sprintf("/api/auth/promote-to-admin/%d", bob.ID)
	if status := env.doJSON(t, fiber.MethodPost, path, adminToken, nil, nil); status != fiber.StatusOK {
		t.Fatalf("promote: got status %d", status)
	}

	var list []UserDetailResponse
	if status := env.doJSON(t, fiber.MethodGet, "/api/auth/users", adminToken, nil, &list); status != fiber.StatusOK {
		t.Fatalf("list users: got status %d", status)
	}
	found := false
	for _, u := range list {
		if u.Username == "bob" {
			found = true
			if u.Role != "Admin" {
				t.Errorf("bob's role after promotion: got %q, want Admin", u.Role)
			}
		}
	}
	if !found {
		t.Fatalf("promoted user missing from listing: %+v", list)
	}

	// Promoting a nonexistent user fails without leaking why.
	status := env.doJSON(t, fiber.MethodPost, "/api/auth/promote-to-admin/999999", adminToken, nil, nil)
	if status != fiber.StatusBadRequest {
		t.Errorf("promote unknown user: got status %d, want 400", status)
	}
}

func TestAdminRouteGates(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "bob", "secret123")
	userToken := env.login(t, "bob", "secret123")

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{fiber.MethodGet, "/api/auth/users", nil},
		{fiber.MethodGet, "/api/audit", nil},
		{fiber.MethodPost, "/api/topics", CreateTopicRequest{Title: "Topic title", Description: "d"}},
		{fiber.MethodDelete, "/api/topics/1", nil},
	}
	for _, tc := range cases {
		if status := env.doJSON(t, tc.method, tc.path, "", tc.body, nil); status != fiber.StatusUnauthorized {
			t.Errorf("%s %s anonymous: got status %d, want 401", tc.method, tc.path, status)
		}
		if status := env.doJSON(t, tc.method, tc.path, userToken, tc.body, nil); status != fiber.StatusForbidden {
			t.Errorf("%s %s as regular user: got status %d, want 403", tc.method, tc.path, status)
		}
	}

	// Member routes reject anonymous callers but accept regular users.
	status := env.doJSON(t, fiber.MethodPost, "/api/messages", "", CreateMessageRequest{TopicID: 1, Text: "hi"}, nil)
	if status != fiber.StatusUnauthorized {
		t.Errorf("anonymous message post: got status %d, want 401", status)
	}
}

func TestMessageOwnership(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerAdmin(t, "root")
	env.register(t, "alice", "secret123")
	env.register(t, "mallory", "secret123")
	aliceToken := env.login(t, "alice", "secret123")
	malloryToken := env.login(t, "mallory", "secret123")

	var topic TopicResponse
	status := env.doJSON(t, fiber.MethodPost, "/api/topics", adminToken, CreateTopicRequest{
		Title:       "General discussion",
		Description: "Anything goes",
	}, &topic)
	if status != fiber.StatusCreated {
		t.Fatalf("create topic: got status %d", status)
	}

	var message MessageResponse
	status = env.doJSON(t, fiber.MethodPost, "/api/messages", aliceToken, CreateMessageRequest{
		TopicID: topic.ID,
		Text:    "first post",
	}, &message)
	if status != fiber.StatusCreated {
		t.Fatalf("create message: got status %d", status)
	}
	if message.Author.Username != "alice" {
		t.Errorf("message author: got %q", message.Author.Username)
	}

	msgPath := fmt.Sprintf("/api/messages/%d", message.ID)

	status = env.doJSON(t, fiber.MethodPut, msgPath, malloryToken, UpdateMessageRequest{Text: "hijacked"}, nil)
	if status != fiber.StatusForbidden {
		t.Errorf("edit by another user: got status %d, want 403", status)
	}
	status = env.doJSON(t, fiber.MethodDelete, msgPath, malloryToken, nil, nil)
	if status != fiber.StatusForbidden {
		t.Errorf("delete by another user: got status %d, want 403", status)
	}

	var edited MessageResponse
	status = env.doJSON(t, fiber.MethodPut, msgPath, aliceToken, UpdateMessageRequest{Text: "edited post"}, &edited)
	if status != fiber.StatusOK {
		t.Fatalf("edit by author: got status %d", status)
	}
	if edited.Text != "edited post" || edited.UpdatedAt == nil {
		t.Errorf("unexpected edited message: %+v", edited)
	}

	// Admins may remove any message.
	if status := env.doJSON(t, fiber.MethodDelete, msgPath, adminToken, nil, nil); status != fiber.StatusOK {
		t.Fatalf("delete by admin: got status %d", status)
	}
	if status := env.doJSON(t, fiber.MethodGet, msgPath, "", nil, nil); status != fiber.StatusNotFound {
		t.Errorf("deleted message still readable: got status %d", status)
	}
}

func TestAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.registerAdmin(t, "root")

	env.register(t, "bob", "secret123")
	bobToken := env.login(t, "bob", "secret123")
	status := env.doJSON(t, fiber.MethodPost, "/api/auth/change-password", bobToken, ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "evenmoresecret",
	}, nil)
	if status != fiber.StatusOK {
		t.Fatalf("change-password: got status %d", status)
	}

	var trail []AuditLogResponse
	if status := env.doJSON(t, fiber.MethodGet, "/api/audit", adminToken, nil, &trail); status != fiber.StatusOK {
		t.Fatalf("list audit: got status %d", status)
	}

	actions := make(map[string]AuditLogResponse)
	for _, entry := range trail {
		actions[entry.Action] = entry
	}
	// A password change leaves two entries: the semantic action and the
	// generic request record written by the middleware.
	for _, action := range []string{audit.ActionRegister, audit.ActionLogin, audit.ActionChangePassword, "POST /api/auth/change-password"} {
		if _, ok := actions[action]; !ok {
			t.Errorf("missing audit action %q in %d entries", action, len(trail))
		}
	}
	if entry := actions["POST /api/auth/change-password"]; entry.Details != "Status: 200" {
		t.Errorf("generic entry details: got %q, want %q", entry.Details, "Status: 200")
	}
	if entry := actions[audit.ActionChangePassword]; entry.Username != "bob" {
		t.Errorf("semantic entry username: got %q, want bob", entry.Username)
	}
	if len(trail) > 0 && trail[0].Action != "POST /api/auth/change-password" {
		t.Errorf("trail must be newest first, got %q at the head", trail[0].Action)
	}

	bobID := actions[audit.ActionChangePassword].UserID
	var bobTrail []AuditLogResponse
	path := fmt.Sprintf("/api/audit/user/%d", bobID)
	if status := env.doJSON(t, fiber.MethodGet, path, adminToken, nil, &bobTrail); status != fiber.StatusOK {
		t.Fatalf("list audit by user: got status %d", status)
	}
	if len(bobTrail) == 0 {
		t.Fatal("expected audit entries for the user")
	}
	for _, entry := range bobTrail {
		if entry.UserID != bobID {
			t.Errorf("entry for wrong user: %+v", entry)
		}
	}
}
