package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"claridx/internal/config"
	"claridx/internal/conversation"
	"claridx/internal/locale"
	"claridx/internal/user"
	"claridx/internal/wire"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *wire.Application {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test", AllowedOrigin: "http://app.test", MaxUploadMB: 1},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Storage:      config.StorageConfig{Backend: "memory"},
		Auth:         config.AuthConfig{JWTSecret: "test-secret", Issuer: "claridx", TokenTTL: time.Hour},
		Copilot:      config.CopilotConfig{RatePerMinute: 6, RateBurst: 1},
		Notification: config.NotificationConfig{Workers: 2, ChannelBufferSize: 64},
	}
	log := zap.NewNop()

	db, closeDB, err := wire.ProvideDatabase(cfg, log)
	require.NoError(t, err)
	t.Cleanup(closeDB)

	hub, closeHub, err := wire.ProvideHub(cfg, db, nil, log)
	require.NoError(t, err)
	t.Cleanup(closeHub)

	blobs, err := wire.ProvideBlobStore(cfg, nil, log)
	require.NoError(t, err)

	users := wire.ProvideUserService(user.NewUserRepository(db), wire.ProvideTokenManager(cfg),
		wire.ProvideRevocationStore(cfg, nil), hub, log)
	repo := conversation.NewRepository(db)
	sync := wire.ProvideSynchronizer(repo, blobs, hub, log)

	catalog, err := locale.Load()
	require.NoError(t, err)

	return &wire.Application{
		Config:       cfg,
		Logger:       log,
		Hub:          hub,
		Health:       wire.ProvideHealthChecker(db, nil, nil, log),
		Users:        users,
		User:         user.NewHandler(users, log),
		Conversation: wire.ProvideConversationHandler(cfg, sync, conversation.NewAuthorizer(repo), users, log),
		Copilot:      wire.ProvideCopilotHandler(cfg, log),
		Locale:       locale.NewHandler(catalog),
	}
}

func request(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signUp(t *testing.T, h http.Handler, email, role, name string) user.Session {
	t.Helper()
	rec := request(t, h, http.MethodPost, "/api/v1/auth/signup", "", user.SignUpRequest{
		Email: email, Password: "secret1", Role: role, FullName: name,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var s user.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s
}

func TestRouter_ConversationFlow(t *testing.T) {
	h := setupRouter(newTestApp(t))

	patient := signUp(t, h, "p1@example.com", "patient", "Pat One")
	doctor := signUp(t, h, "d1@example.com", "doctor", "Dr. One")

	path := "/api/v1/conversations/" + patient.AccountID + "/messages"

	rec := request(t, h, http.MethodGet, path, doctor.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "doctor is not assigned yet")

	rec = request(t, h, http.MethodPut, "/api/v1/conversations/"+patient.AccountID+"/doctor", patient.Token,
		map[string]string{"doctor_id": doctor.AccountID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = request(t, h, http.MethodPost, path, patient.Token, map[string]string{"text": "I have a cough"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = request(t, h, http.MethodPost, path, doctor.Token, map[string]string{"text": "Since when?"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp struct {
		PatientID string                          `json:"patient_id"`
		Messages  []conversation.ProjectedMessage `json:"messages"`
	}
	rec = request(t, h, http.MethodGet, path, doctor.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, conversation.SenderOther, resp.Messages[0].Sender)
	assert.Equal(t, "I have a cough", resp.Messages[0].Text)
	assert.Equal(t, conversation.SenderSelf, resp.Messages[1].Sender)

	rec = request(t, h, http.MethodGet, "/api/v1/patients", doctor.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), patient.AccountID)
}

func TestRouter_DoctorCannotTakeOverAssignedPatient(t *testing.T) {
	h := setupRouter(newTestApp(t))

	patient := signUp(t, h, "p1@example.com", "patient", "Pat One")
	assigned := signUp(t, h, "d1@example.com", "doctor", "Dr. One")
	intruder := signUp(t, h, "d2@example.com", "doctor", "Dr. Two")

	assignPath := "/api/v1/conversations/" + patient.AccountID + "/doctor"
	messagesPath := "/api/v1/conversations/" + patient.AccountID + "/messages"

	rec := request(t, h, http.MethodPut, assignPath, patient.Token, map[string]string{"doctor_id": assigned.AccountID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = request(t, h, http.MethodPost, messagesPath, patient.Token, map[string]string{"text": "private symptoms"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = request(t, h, http.MethodPut, assignPath, intruder.Token, map[string]string{"doctor_id": intruder.AccountID})
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = request(t, h, http.MethodGet, messagesPath, intruder.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "private symptoms")

	rec = request(t, h, http.MethodGet, messagesPath, assigned.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "private symptoms")
}

func TestRouter_PublicAndProtected(t *testing.T) {
	h := setupRouter(newTestApp(t))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "locales are public", method: http.MethodGet, path: "/api/v1/locales/es", wantStatus: http.StatusOK},
		{name: "doctors need a token", method: http.MethodGet, path: "/api/v1/doctors", wantStatus: http.StatusUnauthorized},
		{name: "messages need a token", method: http.MethodGet, path: "/api/v1/conversations/P1/messages", wantStatus: http.StatusUnauthorized},
		{name: "copilot needs a token", method: http.MethodPost, path: "/api/v1/copilot/summary", wantStatus: http.StatusUnauthorized},
		{name: "unknown path", method: http.MethodGet, path: "/api/v2/doctors", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(t, h, tt.method, tt.path, "", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouter_Preflight(t *testing.T) {
	h := setupRouter(newTestApp(t))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/conversations/P1/messages", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
