package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "sweethomes/pkg/errors"
)

// TimeoutMessage is returned when a site request outlives its deadline,
// usually because the booking backend is slow to answer.
const TimeoutMessage = "Request timed out. Please try again."

// deadlineWriter lets exactly one side answer: the handler, or the timeout.
type deadlineWriter struct {
	http.ResponseWriter
	mu       sync.Mutex
	expired  bool
	answered bool
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.answered {
		return
	}
	dw.answered = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	dw.answered = true
	return dw.ResponseWriter.Write(b)
}

// expire claims the response for the timeout. It reports false when the
// handler already started answering.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	dw.expired = true
	return !dw.answered
}

// RequestTimeout cancels the request context after timeout and answers 503
// if the handler has not written anything by then. A zero timeout disables it.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			dw := &deadlineWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if dw.expire() {
					_ = apperrors.WriteError(w, apperrors.New(apperrors.CodeUnavailable, TimeoutMessage, http.StatusServiceUnavailable))
				}
			}
		})
	}
}
