package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"vlogapp/api/internal/config"
	"vlogapp/api/internal/handlers"
	"vlogapp/api/internal/ids"
	"vlogapp/api/internal/memstore"
	"vlogapp/api/internal/models"
	"vlogapp/api/internal/storage"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		HTTP: config.HTTPConfig{
			PublicURL: "http://localhost:3001",
		},
		Security: config.SecurityConfig{
			JWTSecret:       "test-secret",
			JWTTTL:          time.Hour,
			ResetTokenTTL:   15 * time.Minute,
			MinPasswordLen:  6,
			DefaultPassword: "changeme123",
		},
		Debug: config.DebugConfig{ExposeResetTokens: true},
	}
}

func newTestServer(t *testing.T) (*gin.Engine, *memstore.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	mem := memstore.New()
	mem.SeedCategories([]models.Category{
		{ID: ids.New(), Name: "Travel"},
		{ID: ids.New(), Name: "Food"},
	})
	blobs := storage.NewDiscardStore(cfg.HTTP.PublicURL)

	hs := handlers.NewHandlerSet(zerolog.Nop(), mem, nil, blobs, cfg)
	engine := gin.New()
	hs.Register(engine)
	return engine, mem
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func signup(t *testing.T, engine *gin.Engine, email, password, name string) (token, userID string) {
	t.Helper()
	rec, body := doJSON(t, engine, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": email, "password": password, "name": name,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token = body["token"].(string)
	userID = body["user"].(map[string]any)["id"].(string)
	return token, userID
}

func TestSignupLoginMe(t *testing.T) {
	engine, _ := newTestServer(t)

	token, _ := signup(t, engine, "alice@example.com", "secret1", "Alice")
	require.NotEmpty(t, token)

	rec, body := doJSON(t, engine, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	require.Equal(t, "alice@example.com", user["email"])
	require.Equal(t, "Alice", user["name"])

	// Same email again.
	rec, body = doJSON(t, engine, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": "alice@example.com", "password": "other66", "name": "Imposter",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Email already registered", body["error"])

	rec, _ = doJSON(t, engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid credentials", body["error"])

	rec, body = doJSON(t, engine, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Missing token", body["error"])

	rec, body = doJSON(t, engine, http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid token", body["error"])
}

func TestPasswordResetFlow(t *testing.T) {
	engine, _ := newTestServer(t)
	signup(t, engine, "alice@example.com", "secret1", "Alice")

	rec, body := doJSON(t, engine, http.MethodPost, "/api/auth/forgot-password", "", gin.H{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "If the email exists, a reset link has been sent", body["message"])
	resetToken := body["resetToken"].(string)
	require.NotEmpty(t, resetToken)
	require.Contains(t, body["resetUrl"], "/reset-password?token=")

	// Unknown email gets the same message and nothing else.
	rec, body = doJSON(t, engine, http.MethodPost, "/api/auth/forgot-password", "", gin.H{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "If the email exists, a reset link has been sent", body["message"])
	require.NotContains(t, body, "resetToken")

	// Token shows up on the debug listing.
	rec, body = doJSON(t, engine, http.MethodGet, "/api/auth/reset-tokens", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tokens := body["tokens"].([]any)
	require.Len(t, tokens, 1)

	rec, body = doJSON(t, engine, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"token": resetToken, "newPassword": "newpass2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Password updated successfully", body["message"])

	// Old password is dead, new one works.
	rec, _ = doJSON(t, engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "newpass2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// One-shot token.
	rec, body = doJSON(t, engine, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"token": resetToken, "newPassword": "another8",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid or expired reset token", body["error"])

	// Too-short replacement password.
	rec, _ = doJSON(t, engine, http.MethodPost, "/api/auth/reset-password", "", gin.H{
		"token": "whatever", "newPassword": "abc",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserCRUDAndStats(t *testing.T) {
	engine, _ := newTestServer(t)
	signup(t, engine, "alice@example.com", "secret1", "Alice")

	rec, body := doJSON(t, engine, http.MethodPost, "/api/users", "", gin.H{
		"name": "Bob", "email": "bob@example.com", "status": "pending",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	bobID := body["id"].(string)
	require.Equal(t, "pending", body["status"])
	require.Equal(t, false, body["isActive"])

	// List comes back as a bare array, newest first.
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	listRec := httptest.NewRecorder()
	engine.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	for _, u := range users {
		require.NotContains(t, u, "passwordHash")
		require.NotContains(t, u, "password_hash")
	}

	rec, body = doJSON(t, engine, http.MethodPut, "/api/users/"+bobID, "", gin.H{
		"status": "active",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, body["updated"])

	rec, body = doJSON(t, engine, http.MethodGet, "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 2, body["totalUsers"])
	require.EqualValues(t, 2, body["activeSessions"])
	require.EqualValues(t, 0, body["pendingActions"])

	rec, body = doJSON(t, engine, http.MethodDelete, "/api/users/"+bobID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, body["deleted"])

	// Deleting again is still a 200, just with nothing to count.
	rec, body = doJSON(t, engine, http.MethodDelete, "/api/users/"+bobID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, body["deleted"])

	rec, body = doJSON(t, engine, http.MethodPut, "/api/users/no-such-id", "", gin.H{"name": "X"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, body["updated"])
}

func TestResetTokensRouteHiddenWithoutFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	cfg.Debug.ExposeResetTokens = false
	hs := handlers.NewHandlerSet(zerolog.Nop(), memstore.New(), nil, storage.NewDiscardStore(cfg.HTTP.PublicURL), cfg)
	engine := gin.New()
	hs.Register(engine)

	rec, _ := doJSON(t, engine, http.MethodGet, "/api/auth/reset-tokens", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVlogEndpoints(t *testing.T) {
	engine, _ := newTestServer(t)
	aliceToken, _ := signup(t, engine, "alice@example.com", "secret1", "Alice")
	bobToken, bobID := signup(t, engine, "bob@example.com", "secret1", "Bob")

	vlogID := uploadVlog(t, engine, aliceToken, "Street Food Tour")

	rec, body := doJSON(t, engine, http.MethodGet, "/api/vlogs/"+vlogID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	vlog := body["vlog"].(map[string]any)
	require.Equal(t, "Street Food Tour", vlog["title"])
	require.Equal(t, "Alice", vlog["authorName"])

	// Anonymous uploads bounce off the auth middleware.
	rec, _ = doJSON(t, engine, http.MethodPost, "/api/vlogs", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Only the owner edits.
	rec, _ = doJSON(t, engine, http.MethodPut, "/api/vlogs/"+vlogID, bobToken, gin.H{"title": "Hijacked"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doJSON(t, engine, http.MethodPut, "/api/vlogs/"+vlogID, aliceToken, gin.H{"title": "Night Market Tour"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, engine, http.MethodPost, "/api/vlogs/"+vlogID+"/comments", bobToken, gin.H{
		"content": "Looks delicious",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Looks delicious", body["content"])

	rec, _ = doJSON(t, engine, http.MethodPost, "/api/vlogs/"+vlogID+"/like", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, engine, http.MethodGet, "/api/vlogs/"+vlogID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	vlog = body["vlog"].(map[string]any)
	require.EqualValues(t, 1, vlog["likeCount"])
	require.EqualValues(t, 1, vlog["commentCount"])
	require.Len(t, body["comments"].([]any), 1)

	// Follows.
	rec, _ = doJSON(t, engine, http.MethodPost, "/api/users/"+bobID+"/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, engine, http.MethodGet, "/api/users/"+bobID+"/follow-stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, body["followers"])
	require.EqualValues(t, 0, body["following"])

	rec, _ = doJSON(t, engine, http.MethodDelete, "/api/vlogs/"+vlogID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, engine, http.MethodGet, "/api/vlogs/"+vlogID, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCategoriesAndHealth(t *testing.T) {
	engine, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	catRec := httptest.NewRecorder()
	engine.ServeHTTP(catRec, req)
	require.Equal(t, http.StatusOK, catRec.Code)
	var categories []map[string]any
	require.NoError(t, json.Unmarshal(catRec.Body.Bytes(), &categories))
	require.Len(t, categories, 2)

	rec, body := doJSON(t, engine, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["ok"])
	require.Equal(t, "disabled", body["cache"])
}

func uploadVlog(t *testing.T, engine *gin.Engine, token, title string) string {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", title))
	require.NoError(t, w.WriteField("description", "filmed on a phone"))

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", `form-data; name="video"; filename="clip.mp4"`)
	partHeader.Set("Content-Type", "video/mp4")
	part, err := w.CreatePart(partHeader)
	require.NoError(t, err)
	payload := append([]byte{0, 0, 0, 0x18}, []byte("ftypisom\x00\x00\x02\x00isomiso2avc1mp41 frames")...)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/vlogs", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["id"].(string)
}
