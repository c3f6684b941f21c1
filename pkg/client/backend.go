package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"sweethomes/pkg/model"

	"github.com/go-playground/validator/v10"
)

// BackendClient speaks the action protocol of the spreadsheet backend.
// Reads are GET with ?action=, writes are POST with {"action": ...}.
type BackendClient struct {
	httpClient *HttpClient
	validate   *validator.Validate
}

func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		httpClient: NewHttpClient(baseURL, timeout),
		validate:   validator.New(),
	}
}

func (c *BackendClient) GetBookings(ctx context.Context, token string) ([]model.Booking, error) {
	q := url.Values{}
	q.Set("action", ActionGetBookings)
	if token != "" {
		q.Set("token", token)
	}

	var out BookingsResponse
	if err := c.get(ctx, ActionGetBookings, q, &out); err != nil {
		return nil, err
	}
	if out.Bookings == nil {
		out.Bookings = []model.Booking{}
	}
	return out.Bookings, nil
}

func (c *BackendClient) GetData(ctx context.Context) (*model.SiteData, error) {
	q := url.Values{}
	q.Set("action", ActionGetData)

	var out SiteDataResponse
	if err := c.get(ctx, ActionGetData, q, &out); err != nil {
		return nil, err
	}
	if out.Prices == nil {
		out.Prices = model.RoomPrices{}
	}
	if out.Images == nil {
		out.Images = []model.GalleryImage{}
	}
	return &out.SiteData, nil
}

// Login returns the opaque token the backend issues for privileged actions.
func (c *BackendClient) Login(ctx context.Context, username, password string) (string, error) {
	req := LoginRequest{Action: ActionLogin, Username: username, Password: password}

	var out LoginResponse
	if err := c.post(ctx, req.Action, req, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &TransportError{Action: ActionLogin, Err: fmt.Errorf("success response without token")}
	}
	return out.Token, nil
}

func (c *BackendClient) UpdatePrice(ctx context.Context, token, room string, price model.Amount) (string, error) {
	req := UpdatePriceRequest{Action: ActionUpdatePrice, Token: token, RoomType: room, NewPrice: price}
	return c.postMessage(ctx, req.Action, req)
}

func (c *BackendClient) UploadImage(ctx context.Context, req UploadImageRequest) (string, error) {
	req.Action = ActionUploadImage
	return c.postMessage(ctx, req.Action, req)
}

func (c *BackendClient) EditBooking(ctx context.Context, token, id string, update model.BookingUpdate) (string, error) {
	req := EditBookingRequest{Action: ActionEditBooking, Token: token, ID: id, BookingUpdate: update}
	return c.postMessage(ctx, req.Action, req)
}

func (c *BackendClient) DeleteBooking(ctx context.Context, token, id string) (string, error) {
	req := DeleteBookingRequest{Action: ActionDeleteBooking, Token: token, ID: id}
	return c.postMessage(ctx, req.Action, req)
}

func (c *BackendClient) DeleteImage(ctx context.Context, token, imageURL string) (string, error) {
	req := DeleteImageRequest{Action: ActionDeleteImage, Token: token, URL: imageURL}
	return c.postMessage(ctx, req.Action, req)
}

func (c *BackendClient) Book(ctx context.Context, req BookRequest) (string, error) {
	req.Action = ActionBook
	return c.postMessage(ctx, req.Action, req)
}

func (c *BackendClient) postMessage(ctx context.Context, action string, req any) (string, error) {
	var out Envelope
	if err := c.post(ctx, action, req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *BackendClient) get(ctx context.Context, action string, q url.Values, out any) error {
	resp, err := c.httpClient.GET(ctx, q)
	if err != nil {
		return &TransportError{Action: action, Err: err}
	}
	return decodeEnvelope(action, resp, out)
}

func (c *BackendClient) post(ctx context.Context, action string, req any, out any) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRequest, action, err)
	}

	resp, err := c.httpClient.POST(ctx, req)
	if err != nil {
		return &TransportError{Action: action, Err: err}
	}
	return decodeEnvelope(action, resp, out)
}

// decodeEnvelope reads the status first so a rejection with an unexpected
// payload shape still surfaces the server's message.
func decodeEnvelope(action string, resp *Response, out any) error {
	var env Envelope
	if err := resp.DecodeJSON(&env); err != nil {
		return &TransportError{Action: action, Err: fmt.Errorf("unreadable response (HTTP %d): %w", resp.StatusCode, err)}
	}
	if env.Status == "" {
		return &TransportError{Action: action, Err: fmt.Errorf("response without status (HTTP %d)", resp.StatusCode)}
	}
	if !env.OK() {
		return &RemoteError{Action: action, Message: env.Message}
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &TransportError{Action: action, Err: fmt.Errorf("decode %s payload: %w", action, err)}
	}
	return nil
}
