package service

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"sweethomes/internal/events"
	"sweethomes/internal/gallery"
	"sweethomes/pkg/client"
	"sweethomes/pkg/config"
	apperrors "sweethomes/pkg/errors"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/model"
)

// ────────────────────────────────────────────────
// Fake backend holding a gallery sheet
// ────────────────────────────────────────────────

type fakeBackend struct {
	mu       sync.Mutex
	images   []model.GalleryImage
	uploads  []client.UploadImageRequest
	failURLs map[string]error
	failName map[string]error
}

func (f *fakeBackend) UploadImage(_ context.Context, req client.UploadImageRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failName[req.FileName]; err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, req)
	f.images = append(f.images, model.GalleryImage{URL: "https://img.example/" + req.FileName, Caption: req.Caption})
	return "Image uploaded", nil
}

func (f *fakeBackend) DeleteImage(_ context.Context, _ string, imageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failURLs[imageURL]; err != nil {
		return "", err
	}
	kept := f.images[:0]
	for _, img := range f.images {
		if img.URL != imageURL {
			kept = append(kept, img)
		}
	}
	f.images = kept
	return "Image deleted", nil
}

func (f *fakeBackend) Refresh(_ context.Context) (*model.SiteData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	images := make([]model.GalleryImage, len(f.images))
	copy(images, f.images)
	return &model.SiteData{Images: images}, nil
}

func (f *fakeBackend) Invalidate(_ context.Context) {}

type countingCatalog struct {
	*fakeBackend
	invalidations int
}

func (c *countingCatalog) Invalidate(_ context.Context) { c.invalidations++ }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Log:                 logger.Discard(),
		PlaceholderImageURL: "https://placehold.example/img.png",
	}
}

func fileUpload(name, contentType, body string) Upload {
	return Upload{
		Name:        name,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

// Smallest valid PNG header; enough for content sniffing.
var pngBytes = string([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'})

// ────────────────────────────────────────────────
// Tests for List()
// ────────────────────────────────────────────────

func TestList_RendersDisplayURLs(t *testing.T) {
	backend := &fakeBackend{images: []model.GalleryImage{
		{URL: "https://drive.google.com/file/d/abc123/view", Caption: "Pool"},
		{URL: ""},
	}}
	svc := NewGalleryService(backend, backend, events.NewNoopPublisher(), testConfig())

	images, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(images))
	}
	if images[0].DisplayURL != "https://lh3.googleusercontent.com/d/abc123" {
		t.Errorf("unexpected display url %q", images[0].DisplayURL)
	}
	if images[0].FallbackURL != "https://placehold.example/img.png" {
		t.Errorf("unexpected fallback url %q", images[0].FallbackURL)
	}
}

// ────────────────────────────────────────────────
// Tests for Upload()
// ────────────────────────────────────────────────

func TestUpload_NoFiles(t *testing.T) {
	svc := NewGalleryService(&fakeBackend{}, &fakeBackend{}, events.NewNoopPublisher(), testConfig())

	_, err := svc.Upload(context.Background(), "tok", nil, "")
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestUpload_ReadFailureContinuesBatch(t *testing.T) {
	backend := &fakeBackend{}
	catalog := &countingCatalog{fakeBackend: backend}
	publisher := &recordingPublisher{}
	svc := NewGalleryService(backend, catalog, publisher, testConfig())

	broken := Upload{
		Name: "broken.jpg",
		Open: func() (io.ReadCloser, error) { return nil, errors.New("disk gone") },
	}
	result, err := svc.Upload(context.Background(), "tok", []Upload{
		fileUpload("a.jpg", "image/jpeg", "jpeg-bytes"),
		broken,
		fileUpload("b.png", "", pngBytes),
	}, "  Garden  ")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if result.Succeeded != 2 || result.Requested != 3 {
		t.Errorf("expected 2 of 3, got %d of %d", result.Succeeded, result.Requested)
	}
	if result.Message != "Uploaded 2 of 3 images" {
		t.Errorf("unexpected summary %q", result.Message)
	}
	if len(result.Failed) != 1 || result.Failed[0].Item != "broken.jpg" {
		t.Errorf("expected broken.jpg to fail, got %+v", result.Failed)
	}
	if catalog.invalidations != 1 {
		t.Errorf("expected catalog invalidation, got %d", catalog.invalidations)
	}
	if len(publisher.events) != 2 {
		t.Errorf("expected 2 upload events, got %d", len(publisher.events))
	}

	first := backend.uploads[0]
	if first.Caption != "Garden" {
		t.Errorf("expected trimmed caption, got %q", first.Caption)
	}
	decoded, err := base64.StdEncoding.DecodeString(first.FileData)
	if err != nil || string(decoded) != "jpeg-bytes" {
		t.Errorf("expected base64 payload, got %q (%v)", first.FileData, err)
	}
	if backend.uploads[1].MimeType != "image/png" {
		t.Errorf("expected sniffed image/png, got %q", backend.uploads[1].MimeType)
	}
}

func TestUpload_RejectsNonImages(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewGalleryService(backend, backend, events.NewNoopPublisher(), testConfig())

	result, err := svc.Upload(context.Background(), "tok", []Upload{
		fileUpload("notes.txt", "application/octet-stream", "just some text"),
	}, "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.Succeeded != 0 || len(result.Failed) != 1 {
		t.Errorf("expected the text file to fail, got %+v", result)
	}
	if len(backend.uploads) != 0 {
		t.Errorf("non-image reached the backend")
	}
}

func TestUpload_RemoteMessageKept(t *testing.T) {
	backend := &fakeBackend{failName: map[string]error{
		"big.jpg": &client.RemoteError{Action: client.ActionUploadImage, Message: "File too large"},
	}}
	svc := NewGalleryService(backend, backend, events.NewNoopPublisher(), testConfig())

	result, _ := svc.Upload(context.Background(), "tok", []Upload{
		fileUpload("big.jpg", "image/jpeg", "x"),
	}, "")
	if len(result.Failed) != 1 || result.Failed[0].Error != "File too large" {
		t.Errorf("expected server message, got %+v", result.Failed)
	}
}

func TestUpload_PacesBetweenFiles(t *testing.T) {
	backend := &fakeBackend{}
	cfg := testConfig()
	cfg.UploadPacing = time.Second
	svc := NewGalleryService(backend, backend, events.NewNoopPublisher(), cfg).(*galleryService)

	var pauses int
	svc.pause = func(ctx context.Context, d time.Duration) error {
		pauses++
		return nil
	}

	_, _ = svc.Upload(context.Background(), "tok", []Upload{
		fileUpload("a.jpg", "image/jpeg", "a"),
		fileUpload("b.jpg", "image/jpeg", "b"),
		fileUpload("c.jpg", "image/jpeg", "c"),
	}, "")
	if pauses != 2 {
		t.Errorf("expected 2 pauses between 3 files, got %d", pauses)
	}
}

func TestUpload_CancelledDuringPause(t *testing.T) {
	backend := &fakeBackend{}
	cfg := testConfig()
	cfg.UploadPacing = time.Hour
	svc := NewGalleryService(backend, backend, events.NewNoopPublisher(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result, err := svc.Upload(ctx, "tok", []Upload{
		fileUpload("a.jpg", "image/jpeg", "a"),
		fileUpload("b.jpg", "image/jpeg", "b"),
	}, "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.Succeeded != 1 || len(result.Failed) != 1 {
		t.Errorf("expected first file kept and second failed, got %+v", result)
	}
}

// ────────────────────────────────────────────────
// Tests for Delete() and BatchDelete()
// ────────────────────────────────────────────────

func TestDelete_RequiresConfirmation(t *testing.T) {
	backend := &fakeBackend{images: []model.GalleryImage{{URL: "u1"}}}
	svc := NewGalleryService(backend, backend, events.NewNoopPublisher(), testConfig())

	_, err := svc.Delete(context.Background(), "tok", "u1", false)
	if apperrors.AsAppError(err).Code != apperrors.CodeConfirmationRequired {
		t.Errorf("expected confirmation required, got %v", err)
	}
	if len(backend.images) != 1 {
		t.Errorf("image deleted without confirmation")
	}
}

func TestDelete_TransportError(t *testing.T) {
	backend := &fakeBackend{failURLs: map[string]error{
		"u1": &client.TransportError{Action: client.ActionDeleteImage, Err: errors.New("timeout")},
	}}
	svc := NewGalleryService(backend, backend, events.NewNoopPublisher(), testConfig())

	_, err := svc.Delete(context.Background(), "tok", "u1", true)
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != http.StatusBadGateway || appErr.Message != apperrors.ConnectionErrorMessage {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestBatchDelete_PartialFailure(t *testing.T) {
	backend := &fakeBackend{
		images: []model.GalleryImage{{URL: "u1"}, {URL: "u2"}, {URL: "u3"}},
		failURLs: map[string]error{
			"u2": &client.RemoteError{Action: client.ActionDeleteImage, Message: "Image not found"},
		},
	}
	publisher := &recordingPublisher{}
	svc := NewGalleryService(backend, backend, publisher, testConfig())
	selection := gallery.NewSelection("u1", "u2", "u3")

	result, err := svc.BatchDelete(context.Background(), "tok", selection, true)
	if err != nil {
		t.Fatalf("BatchDelete() error = %v", err)
	}
	if result.Message != "Deleted 2 of 3 images" {
		t.Errorf("unexpected summary %q", result.Message)
	}
	if len(result.Failed) != 1 || result.Failed[0].Item != "u2" || result.Failed[0].Error != "Image not found" {
		t.Errorf("unexpected failures %+v", result.Failed)
	}
	if got := selection.URLs(); len(got) != 1 || got[0] != "u2" {
		t.Errorf("expected only the failed image to stay selected, got %v", got)
	}
	if len(publisher.events) != 2 {
		t.Errorf("expected 2 delete events, got %d", len(publisher.events))
	}

	images, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(images) != 1 || images[0].URL != "u2" {
		t.Errorf("expected failed image to remain, got %+v", images)
	}
}

func TestBatchDelete_Guards(t *testing.T) {
	svc := NewGalleryService(&fakeBackend{}, &fakeBackend{}, events.NewNoopPublisher(), testConfig())

	_, err := svc.BatchDelete(context.Background(), "tok", gallery.NewSelection("u1"), false)
	if apperrors.AsAppError(err).Code != apperrors.CodeConfirmationRequired {
		t.Errorf("expected confirmation required, got %v", err)
	}

	_, err = svc.BatchDelete(context.Background(), "tok", gallery.NewSelection(), true)
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input for empty selection, got %v", err)
	}
}
