package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"building_energy/internal/models"
	"building_energy/internal/service"
)

func newBuildingTestRouter(b *mockBuildings, m *mockMonitoring) *service.Service {
	return &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Buildings:     b,
		Monitoring:    m,
	}
}

func TestBuildingHandlers_RequireAuth(t *testing.T) {
	r := newTestRouter(newBuildingTestRouter(&mockBuildings{}, &mockMonitoring{}))

	for _, path := range []string{"/api/v1/buildings", "/api/v1/buildings/x"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s without auth: got %d", path, w.Code)
		}
	}
}

func TestBuildingHandlers_Create(t *testing.T) {
	b := &mockBuildings{created: models.BuildingState{ID: "b-1", Name: "HQ", HVACPowerKW: 5, LightingPowerKW: 2}}
	r := newTestRouter(newBuildingTestRouter(b, &mockMonitoring{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(postJSON("/api/v1/buildings", `{"name":"HQ"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var st models.BuildingState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.ID != "b-1" || st.Mode != models.ModeNormal || b.lastName != "HQ" {
		t.Fatalf("unexpected: %+v (name=%q)", st, b.lastName)
	}

	b.createErr = service.ErrInvalidName
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(postJSON("/api/v1/buildings", `{"name":"  "}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank name: status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(postJSON("/api/v1/buildings", `{}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing name: status=%d", w.Code)
	}
}

func TestBuildingHandlers_Signal(t *testing.T) {
	b := &mockBuildings{adjusted: models.BuildingState{ID: "b-1", HVACPowerKW: 3.5, LightingPowerKW: 1.6, Mode: models.ModeEnergySaving}}
	r := newTestRouter(newBuildingTestRouter(b, &mockMonitoring{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(postJSON("/api/v1/buildings/b-1/signal", `{"price":0.2,"duration_minutes":60}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Status string               `json:"status"`
		State  models.BuildingState `json:"state"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusAdjusted || resp.State.Mode != models.ModeEnergySaving {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if b.lastID != "b-1" || b.lastSignal != (models.Signal{Price: 0.2, DurationMinutes: 60}) {
		t.Fatalf("signal not forwarded: id=%q sig=%+v", b.lastID, b.lastSignal)
	}

	// price 0 is a real price, not a missing field
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(postJSON("/api/v1/buildings/b-1/signal", `{"price":0}`)))
	if w.Code != http.StatusOK || b.lastSignal.Price != 0 {
		t.Fatalf("zero price: status=%d sig=%+v", w.Code, b.lastSignal)
	}
}

func TestBuildingHandlers_SignalErrors(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		adjustErr error
		code      int
		calls     int
	}{
		{name: "missing price", body: `{"duration_minutes":60}`, code: http.StatusBadRequest},
		{name: "negative duration", body: `{"price":0.2,"duration_minutes":-1}`, code: http.StatusBadRequest},
		{name: "malformed json", body: `{"price":`, code: http.StatusBadRequest},
		{name: "unknown building", body: `{"price":0.2}`, adjustErr: service.ErrBuildingNotFound, code: http.StatusNotFound, calls: 1},
		{name: "storage failure", body: `{"price":0.2}`, adjustErr: errors.New("disk"), code: http.StatusInternalServerError, calls: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &mockBuildings{adjustErr: tc.adjustErr}
			r := newTestRouter(newBuildingTestRouter(b, &mockMonitoring{}))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, withAuth(postJSON("/api/v1/buildings/b-1/signal", tc.body)))
			if w.Code != tc.code {
				t.Fatalf("status=%d want %d body=%s", w.Code, tc.code, w.Body.String())
			}
			if b.adjustCall != tc.calls {
				t.Fatalf("Adjust calls=%d want %d", b.adjustCall, tc.calls)
			}
		})
	}
}

func TestBuildingHandlers_GetListDelete(t *testing.T) {
	m := &mockMonitoring{states: map[string]models.BuildingState{
		"b-1": {ID: "b-1", Name: "HQ", HVACPowerKW: 5, LightingPowerKW: 2},
	}}
	b := &mockBuildings{}
	r := newTestRouter(newBuildingTestRouter(b, m))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/buildings/b-1", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/buildings/nope", nil)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("get unknown status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/buildings", nil)))
	var list struct {
		Count     int                    `json:"count"`
		Buildings []models.BuildingState `json:"buildings"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || list.Count != 1 || list.Buildings[0].ID != "b-1" {
		t.Fatalf("list status=%d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodDelete, "/api/v1/buildings/b-1", nil)))
	if w.Code != http.StatusOK || b.deleteCall != 1 || b.lastID != "b-1" {
		t.Fatalf("delete status=%d calls=%d", w.Code, b.deleteCall)
	}

	b.deleteErr = service.ErrBuildingNotFound
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodDelete, "/api/v1/buildings/b-1", nil)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", w.Code)
	}

	m.setErr(errors.New("db down"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/buildings", nil)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("list failure status=%d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
}
