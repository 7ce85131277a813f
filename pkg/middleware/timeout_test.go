package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestTimeout_SlowHandlerGets503(t *testing.T) {
	release := make(chan struct{})
	handlerDone := make(chan struct{})
	cancelled := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(cancelled)
		// Held until the middleware has responded, so this write is
		// unambiguously late and must be swallowed.
		<-release
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("too late"))
		close(handlerDone)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	RequestTimeout(20 * time.Millisecond)(slow).ServeHTTP(rec, req)
	close(release)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("timeout response should be JSON: %v (%s)", err, rec.Body.String())
	}
	if body.Error == "" {
		t.Errorf("expected an error message, got %q", rec.Body.String())
	}

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("handler never observed context cancellation")
	}
	select {
	case <-handlerDone:
	case <-time.After(time.Second):
		t.Fatal("handler never finished")
	}
	if got := rec.Body.String(); got != `{"error":"Request timeout"}` {
		t.Errorf("late handler write leaked into the response: %q", got)
	}
}

func TestRequestTimeout_FastHandlerPassesThrough(t *testing.T) {
	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":"ok"}`))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fast", nil)
	RequestTimeout(time.Second)(fast).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if rec.Body.String() != `{"data":"ok"}` {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRequestTimeout_CompletedResponseIsNotOverwritten(t *testing.T) {
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		<-release
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/half-done", nil)

	done := make(chan struct{})
	go func() {
		RequestTimeout(20 * time.Millisecond)(handler).ServeHTTP(rec, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("middleware did not return at the deadline")
	}
	close(release)

	// The handler already committed a status; the middleware must not write
	// a second response on top of it.
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}
