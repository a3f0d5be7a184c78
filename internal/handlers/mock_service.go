package handlers

import (
	"context"
	"net/http"
	"sync"

	"building_energy/internal/models"
	"building_energy/internal/service"

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

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockBuildings struct {
	created   models.BuildingState
	createErr error
	adjusted  models.BuildingState
	adjustErr error
	deleteErr error

	lastName   string
	lastID     string
	lastSignal models.Signal
	adjustCall int
	deleteCall int
}

func (m *mockBuildings) Create(_ context.Context, name string) (models.BuildingState, error) {
	m.lastName = name
	return m.created, m.createErr
}
func (m *mockBuildings) Adjust(_ context.Context, id string, sig models.Signal) (models.BuildingState, error) {
	m.adjustCall++
	m.lastID = id
	m.lastSignal = sig
	return m.adjusted, m.adjustErr
}
func (m *mockBuildings) Delete(_ context.Context, id string) error {
	m.deleteCall++
	m.lastID = id
	return m.deleteErr
}

// mockMonitoring is read from the websocket goroutine, so it locks.
type mockMonitoring struct {
	mu     sync.Mutex
	states map[string]models.BuildingState
	err    error
	calls  int
}

func (m *mockMonitoring) GetState(_ context.Context, id string) (models.BuildingState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return models.BuildingState{}, m.err
	}
	st, ok := m.states[id]
	if !ok {
		return models.BuildingState{}, service.ErrBuildingNotFound
	}
	return st, nil
}

func (m *mockMonitoring) ListStates(context.Context) ([]models.BuildingState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.BuildingState, 0, len(m.states))
	for _, st := range m.states {
		out = append(out, st)
	}
	return out, nil
}

func (m *mockMonitoring) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type mockEventLog struct {
	resp       []models.ControlEvent
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.ControlEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
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

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
