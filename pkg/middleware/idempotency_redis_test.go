package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sweethomes/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func TestRedisIdempotencyStore_UnreachableDegrades(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	store := NewRedisIdempotencyStore(rdb, time.Minute, logger.Discard())
	defer store.Stop()

	var calls int32
	handler := Idempotency(store, IdempotencyOptions{HeaderName: "Idempotency-Key"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "k1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, rec.Code)
		}
		if rec.Header().Get(ReplayedHeader) != "" {
			t.Errorf("request %d: nothing can be replayed without Redis", i)
		}
	}

	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected both requests to reach the handler, got %d", calls)
	}
}
