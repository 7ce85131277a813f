package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// deadlineWriter suppresses handler writes once the request deadline has
// passed, so a late handler cannot corrupt the timeout response.
type deadlineWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	expired bool
	written bool
	status  int
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.written {
		return
	}

	dw.status = code
	dw.written = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}

	if !dw.written {
		dw.status = http.StatusOK
		dw.written = true
	}

	return dw.ResponseWriter.Write(b)
}

// expire marks the writer dead and reports whether the handler had already
// produced a response.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
	return dw.written
}

// RequestTimeout bounds handler execution. The wrapped context is cancelled
// at the deadline; if the handler has not responded by then the client gets
// a 503 and any later handler writes are discarded.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			dw := &deadlineWriter{ResponseWriter: w}

			done := make(chan struct{})
			go func() {
				next.ServeHTTP(dw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if responded := dw.expire(); !responded {
					rejectTimedOut(w)
				}
			}
		})
	}
}

func rejectTimedOut(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"error":"Request timeout"}`))
}
