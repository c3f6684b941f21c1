package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	apperrors "sweethomes/pkg/errors"
	"sweethomes/pkg/model"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) (*BackendClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewBackendClient(server.URL, 2*time.Second), server
}

func TestBackendClient_GetBookings(t *testing.T) {
	var gotQuery string
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"status":"success","bookings":[{"ID":"1","Name":"Jane","Total":"3000"}]}`)
	})

	bookings, err := c.GetBookings(context.Background(), "tok")
	if err != nil {
		t.Fatalf("GetBookings() error = %v", err)
	}
	if len(bookings) != 1 || bookings[0].Name != "Jane" || bookings[0].Total != 3000 {
		t.Errorf("unexpected bookings: %+v", bookings)
	}
	if !strings.Contains(gotQuery, "action=getBookings") || !strings.Contains(gotQuery, "token=tok") {
		t.Errorf("unexpected query %q", gotQuery)
	}
}

func TestBackendClient_GetBookings_WithoutToken(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("token") {
			t.Errorf("token param should be omitted when empty")
		}
		_, _ = io.WriteString(w, `{"status":"success"}`)
	})

	bookings, err := c.GetBookings(context.Background(), "")
	if err != nil {
		t.Fatalf("GetBookings() error = %v", err)
	}
	if bookings == nil || len(bookings) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", bookings)
	}
}

func TestBackendClient_GetData(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != ActionGetData {
			t.Errorf("unexpected action %q", r.URL.Query().Get("action"))
		}
		_, _ = io.WriteString(w, `{"status":"success","prices":{"1 Bedroom":"3000","2 Bedroom":5000},"images":["https://x/a.jpg",{"url":"https://x/b.jpg","caption":"Pool"}]}`)
	})

	data, err := c.GetData(context.Background())
	if err != nil {
		t.Fatalf("GetData() error = %v", err)
	}
	if data.Prices.Rate("1 Bedroom") != 3000 || data.Prices.Rate("2 Bedroom") != 5000 {
		t.Errorf("unexpected prices %v", data.Prices)
	}
	if len(data.Images) != 2 || data.Images[1].Caption != "Pool" {
		t.Errorf("unexpected images %+v", data.Images)
	}
}

func TestBackendClient_BaseURLWithQuery(t *testing.T) {
	var gotMethod []string
	var gotQuery []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = append(gotMethod, r.Method)
		gotQuery = append(gotQuery, r.URL.Query())
		if r.URL.Path != "/exec" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"status":"success","message":"ok"}`)
	}))
	t.Cleanup(server.Close)

	c := NewBackendClient(server.URL+"/exec?key=abc", 2*time.Second)

	if _, err := c.GetBookings(context.Background(), "tok"); err != nil {
		t.Fatalf("GetBookings() error = %v", err)
	}
	if _, err := c.DeleteBooking(context.Background(), "tok", "B1"); err != nil {
		t.Fatalf("DeleteBooking() error = %v", err)
	}

	tests := []struct {
		method     string
		wantAction string
	}{
		{method: http.MethodGet, wantAction: ActionGetBookings},
		{method: http.MethodPost, wantAction: ""},
	}

	if len(gotQuery) != len(tests) {
		t.Fatalf("expected %d requests, got %d", len(tests), len(gotQuery))
	}
	for i, tt := range tests {
		if gotMethod[i] != tt.method {
			t.Errorf("request %d: method = %s, want %s", i, gotMethod[i], tt.method)
		}
		if gotQuery[i].Get("key") != "abc" {
			t.Errorf("request %d: base query lost, got %v", i, gotQuery[i])
		}
		if gotQuery[i].Get("action") != tt.wantAction {
			t.Errorf("request %d: action = %q, want %q", i, gotQuery[i].Get("action"), tt.wantAction)
		}
	}
}

func TestBackendClient_Login(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantToken   string
		wantRemote  bool
		wantMessage string
	}{
		{
			name:      "success",
			response:  `{"status":"success","token":"abc123"}`,
			wantToken: "abc123",
		},
		{
			name:        "rejected",
			response:    `{"status":"error","message":"Invalid credentials"}`,
			wantRemote:  true,
			wantMessage: "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				_, _ = io.WriteString(w, tt.response)
			})

			token, err := c.Login(context.Background(), "admin", "secret")
			if body["action"] != ActionLogin || body["username"] != "admin" || body["password"] != "secret" {
				t.Errorf("unexpected request body %v", body)
			}

			if tt.wantRemote {
				var remoteErr *RemoteError
				if !errors.As(err, &remoteErr) {
					t.Fatalf("expected RemoteError, got %v", err)
				}
				if remoteErr.Message != tt.wantMessage {
					t.Errorf("message = %q, want %q", remoteErr.Message, tt.wantMessage)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

func TestBackendClient_TransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "html error page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, "<html>Script error</html>")
			},
		},
		{
			name: "json without status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"bookings":[]}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestBackend(t, tt.handler)
			_, err := c.GetBookings(context.Background(), "tok")
			if !IsTransport(err) {
				t.Fatalf("expected TransportError, got %v", err)
			}
		})
	}
}

func TestBackendClient_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewBackendClient(server.URL, time.Second)
	server.Close()

	_, err := c.DeleteBooking(context.Background(), "tok", "1")
	if !IsTransport(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}

	appErr := apperrors.AsAppError(ToAppError(err))
	if appErr.Code != apperrors.CodeUnavailable || appErr.Message != apperrors.ConnectionErrorMessage {
		t.Errorf("unexpected mapping %+v", appErr)
	}
}

func TestBackendClient_ValidatesBeforeSending(t *testing.T) {
	called := false
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, _ = io.WriteString(w, `{"status":"success"}`)
	})

	_, err := c.UpdatePrice(context.Background(), "", "1 Bedroom", 3000)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	_, err = c.UpdatePrice(context.Background(), "tok", "1 Bedroom", -1)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for negative price, got %v", err)
	}
	if called {
		t.Errorf("backend must not be called for invalid requests")
	}
}

func TestBackendClient_EditBookingFlattensRecord(t *testing.T) {
	var body map[string]any
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"status":"success","message":"Booking updated"}`)
	})

	msg, err := c.EditBooking(context.Background(), "tok", "BK-7", model.BookingUpdate{
		Name:      "Jane",
		Phone:     "0712345678",
		Room:      "1 Bedroom",
		Arrival:   "2024-01-10",
		Departure: "2024-01-13",
		Total:     9000,
		Status:    "Confirmed",
	})
	if err != nil {
		t.Fatalf("EditBooking() error = %v", err)
	}
	if msg != "Booking updated" {
		t.Errorf("message = %q", msg)
	}
	if body["action"] != ActionEditBooking || body["id"] != "BK-7" || body["Name"] != "Jane" || body["Total"] != float64(9000) {
		t.Errorf("unexpected request body %v", body)
	}
}

func TestToAppError(t *testing.T) {
	remote := ToAppError(&RemoteError{Action: ActionBook, Message: "Room fully booked"})
	appErr := apperrors.AsAppError(remote)
	if appErr.Code != apperrors.CodeRemote || appErr.Message != "Room fully booked" {
		t.Errorf("unexpected remote mapping %+v", appErr)
	}

	plain := errors.New("plain")
	if ToAppError(plain) != plain {
		t.Errorf("unrelated errors should pass through")
	}
	if ToAppError(nil) != nil {
		t.Errorf("nil should stay nil")
	}
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"remote", &RemoteError{Action: ActionDeleteImage, Message: "Image not found"}, "Image not found"},
		{"transport", &TransportError{Action: ActionDeleteImage, Err: errors.New("EOF")}, apperrors.ConnectionErrorMessage},
		{"plain", errors.New("file unreadable"), "file unreadable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureMessage(tt.err); got != tt.want {
				t.Errorf("FailureMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
