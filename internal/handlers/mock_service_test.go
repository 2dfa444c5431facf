package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"hvac/internal/hvac"
	"hvac/internal/models"
	"hvac/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockControl struct {
	state models.ControllerState
	err   error

	calls    []string
	lastAuto bool
	lastNow  hvac.Seconds
}

func (m *mockControl) record(call string) (models.ControllerState, error) {
	m.calls = append(m.calls, call)
	return m.state, m.err
}

func (m *mockControl) Boot(ctx context.Context) (models.ControllerState, error) {
	return m.record("boot")
}
func (m *mockControl) Heat(ctx context.Context) (models.ControllerState, error) {
	return m.record("heat")
}
func (m *mockControl) Cool(ctx context.Context) (models.ControllerState, error) {
	return m.record("cool")
}
func (m *mockControl) Idle(ctx context.Context) (models.ControllerState, error) {
	return m.record("idle")
}
func (m *mockControl) SetFanAuto(ctx context.Context, auto bool) (models.ControllerState, error) {
	m.lastAuto = auto
	return m.record("fan")
}
func (m *mockControl) Tick(ctx context.Context, now hvac.Seconds) (models.ControllerState, error) {
	m.lastNow = now
	return m.record("tick")
}

type mockMonitoring struct {
	mu    sync.Mutex
	state models.ControllerState
	err   error
	// advance bumps ClockS on every call
	advance bool
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.ControllerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state
	if m.advance {
		m.state.ClockS++
	}
	return st, m.err
}

type mockEventLog struct {
	resp     []models.ControllerEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ControllerEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
