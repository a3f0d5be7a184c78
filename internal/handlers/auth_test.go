package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"building_energy/internal/service"
)

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandlers_SignUpAndSignIn(t *testing.T) {
	auth := &mockAuth{signUpID: 42, genTokenToken: "tok123"}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postJSON("/auth/sign-up", `{"username":"ops","password":"p"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status=%d, body=%s", w.Code, w.Body.String())
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["id"] != float64(42) {
		t.Fatalf("expected id=42, got %v", m["id"])
	}
	if auth.lastSignUpUsername != "ops" || auth.lastSignUpPassword != "p" {
		t.Fatalf("credentials not forwarded: %q/%q", auth.lastSignUpUsername, auth.lastSignUpPassword)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, postJSON("/auth/sign-in", `{"username":"ops","password":"p"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status=%d, body=%s", w.Code, w.Body.String())
	}
	m = nil
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["token"] != "tok123" {
		t.Fatalf("expected token tok123, got %v", m["token"])
	}
}

func TestAuthHandlers_Failures(t *testing.T) {
	cases := []struct {
		name string
		auth *mockAuth
		path string
		body string
		code int
	}{
		{name: "sign-in bad body", auth: &mockAuth{}, path: "/auth/sign-in", body: `{"username":1}`, code: http.StatusBadRequest},
		{name: "sign-up missing password", auth: &mockAuth{}, path: "/auth/sign-up", body: `{"username":"u"}`, code: http.StatusBadRequest},
		{name: "sign-up duplicate", auth: &mockAuth{signUpErr: errors.New("unique")}, path: "/auth/sign-up", body: `{"username":"u","password":"p"}`, code: http.StatusBadRequest},
		{name: "sign-in wrong password", auth: &mockAuth{genTokenErr: service.ErrInvalidPassword}, path: "/auth/sign-in", body: `{"username":"u","password":"p"}`, code: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: tc.auth})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, postJSON(tc.path, tc.body))
			if w.Code != tc.code {
				t.Fatalf("status=%d, want %d; body=%s", w.Code, tc.code, w.Body.String())
			}
		})
	}
}
