package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hvac/internal/hvac"
	"hvac/internal/metrics"
	"hvac/internal/models"
	"hvac/internal/service"
)

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHVACHandlers_Requests(t *testing.T) {
	ctl := &mockControl{state: models.ControllerState{ID: 1, Service: "HEAT", Fan: true, Request: "HEAT", ClockS: 60}}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Control: ctl}
	r := newTestRouter(s)

	for _, tc := range []struct {
		path, status, call string
	}{
		{"/api/v1/hvac/heat", "heat_requested", "heat"},
		{"/api/v1/hvac/cool", "cool_requested", "cool"},
		{"/api/v1/hvac/idle", "idle_requested", "idle"},
	} {
		w := doJSON(t, r, http.MethodPost, tc.path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d, body=%s", tc.path, w.Code, w.Body.String())
		}
		var resp struct {
			Status string                 `json:"status"`
			State  models.ControllerState `json:"state"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Status != tc.status || resp.State.Service != "HEAT" || resp.State.ClockS != 60 {
			t.Fatalf("%s bad response: %+v", tc.path, resp)
		}
		if last := ctl.calls[len(ctl.calls)-1]; last != tc.call {
			t.Fatalf("%s called %q", tc.path, last)
		}
	}
}

func TestHVACHandlers_RequireAuth(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{}, Control: &mockControl{}}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/hvac/heat", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestHVACHandlers_SetFan(t *testing.T) {
	ctl := &mockControl{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, Control: ctl})

	w := doJSON(t, r, http.MethodPost, "/api/v1/hvac/fan", `{"auto":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if len(ctl.calls) != 1 || ctl.lastAuto {
		t.Fatalf("expected SetFanAuto(false), calls=%v auto=%v", ctl.calls, ctl.lastAuto)
	}

	for _, body := range []string{`{}`, `{"auto":"yes"}`, `not json`} {
		w = doJSON(t, r, http.MethodPost, "/api/v1/hvac/fan", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, w.Code)
		}
	}
	if len(ctl.calls) != 1 {
		t.Fatalf("bad bodies must not reach the controller, calls=%v", ctl.calls)
	}
}

func TestHVACHandlers_Tick(t *testing.T) {
	ctl := &mockControl{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, Control: ctl})

	w := doJSON(t, r, http.MethodPost, "/api/v1/hvac/tick", `{"now":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/hvac/tick", `{"now":300}`)
	if w.Code != http.StatusOK || ctl.lastNow != 300 {
		t.Fatalf("status=%d now=%d", w.Code, ctl.lastNow)
	}

	for _, body := range []string{`{}`, `{"now":-1}`, `{"now":"soon"}`} {
		w = doJSON(t, r, http.MethodPost, "/api/v1/hvac/tick", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestHVACHandlers_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"clock backwards", fmt.Errorf("tick 5 before 9: %w", hvac.ErrClockWentBackwards), http.StatusConflict, errClockBackwards},
		{"storage", errors.New("persist controller state: disk full"), http.StatusInternalServerError, errControl},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctl := &mockControl{err: tc.err}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, Control: ctl})

			w := doJSON(t, r, http.MethodPost, "/api/v1/hvac/tick", `{"now":5}`)
			if w.Code != tc.code {
				t.Fatalf("status=%d, want %d", w.Code, tc.code)
			}
			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.msg {
				t.Fatalf("error=%q, want %q", out.Error, tc.msg)
			}
		})
	}
}

func TestHVACHandlers_GetState(t *testing.T) {
	mon := &mockMonitoring{state: models.ControllerState{ID: 1, Service: "COOL", Fan: true, Request: "COOL", CoolLockoutS: 120}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 1}, Monitoring: mon})

	w := doJSON(t, r, http.MethodGet, "/api/v1/hvac/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.ControllerState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Service != "COOL" || st.CoolLockoutS != 120 {
		t.Fatalf("unexpected state: %+v", st)
	}

	mon.err = errors.New("db down")
	w = doJSON(t, r, http.MethodGet, "/api/v1/hvac/state", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	m := metrics.New()
	m.Transition("heat", true)
	h := NewHandler(&service.Service{}, m, nil)
	r := h.InitRoutes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), statusOK) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `hvac_unit_active{unit="heat"} 1`) {
		t.Fatalf("metrics: %d %s", w.Code, w.Body.String())
	}
}
