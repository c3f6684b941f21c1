package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"sweethomes/internal/events"
	"sweethomes/internal/gallery"
	galleryerrors "sweethomes/internal/gallery/errors"
	"sweethomes/pkg/client"
	"sweethomes/pkg/config"
	apperrors "sweethomes/pkg/errors"
	"sweethomes/pkg/model"

	"github.com/gabriel-vasile/mimetype"
)

const genericContentType = "application/octet-stream"

type Backend interface {
	UploadImage(ctx context.Context, req client.UploadImageRequest) (string, error)
	DeleteImage(ctx context.Context, token, imageURL string) (string, error)
}

type Catalog interface {
	Refresh(ctx context.Context) (*model.SiteData, error)
	Invalidate(ctx context.Context)
}

// Upload is one file of a multi-file upload. Open is called once, when the
// file's turn comes.
type Upload struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type GalleryService interface {
	List(ctx context.Context) ([]model.RenderedImage, error)
	Upload(ctx context.Context, token string, files []Upload, caption string) (*model.BatchResult, error)
	Delete(ctx context.Context, token, imageURL string, confirm bool) (string, error)
	BatchDelete(ctx context.Context, token string, selection *gallery.Selection, confirm bool) (*model.BatchResult, error)
}

type galleryService struct {
	backend   Backend
	catalog   Catalog
	publisher events.Publisher
	cfg       *config.Config
	pause     func(ctx context.Context, d time.Duration) error
}

func NewGalleryService(
	backend Backend,
	catalog Catalog,
	publisher events.Publisher,
	cfg *config.Config,
) GalleryService {
	return &galleryService{
		backend:   backend,
		catalog:   catalog,
		publisher: publisher,
		cfg:       cfg,
		pause:     sleepContext,
	}
}

// List always reads the backend so admins see their own changes.
func (s *galleryService) List(ctx context.Context) ([]model.RenderedImage, error) {
	data, err := s.catalog.Refresh(ctx)
	if err != nil {
		s.cfg.Log.Warn("Failed to fetch gallery", "error", err)
		return nil, client.ToAppError(err)
	}
	return gallery.Render(data.Images, s.cfg.PlaceholderImageURL), nil
}

// Upload sends files one at a time, pausing between them. A file that
// cannot be read or is rejected is recorded and the rest still go.
func (s *galleryService) Upload(ctx context.Context, token string, files []Upload, caption string) (*model.BatchResult, error) {
	if len(files) == 0 {
		return nil, apperrors.InvalidInput(galleryerrors.ErrNoFiles.Error())
	}
	caption = strings.TrimSpace(caption)

	result := model.NewBatchResult(len(files))
	for i, file := range files {
		if i > 0 && s.cfg.UploadPacing > 0 {
			if err := s.pause(ctx, s.cfg.UploadPacing); err != nil {
				for _, rest := range files[i:] {
					result.Fail(rest.Name, apperrors.ConnectionErrorMessage)
				}
				break
			}
		}

		if err := s.uploadOne(ctx, token, file, caption); err != nil {
			result.Fail(file.Name, client.FailureMessage(err))
			continue
		}
		result.Succeed()
	}
	result.Summarize("Uploaded", "images")

	if result.Succeeded > 0 {
		s.catalog.Invalidate(ctx)
	}

	s.cfg.Log.Info("Gallery upload finished",
		"requested", result.Requested,
		"succeeded", result.Succeeded,
	)
	return result, nil
}

func (s *galleryService) uploadOne(ctx context.Context, token string, file Upload, caption string) error {
	data, err := readUpload(file)
	if err != nil {
		s.cfg.Log.Warn("Failed to read upload",
			"file_name", file.Name,
			"error", err,
		)
		return err
	}

	mimeType := detectMimeType(file.ContentType, data)
	if !strings.HasPrefix(mimeType, "image/") {
		s.cfg.Log.Warn("Rejected non-image upload",
			"file_name", file.Name,
			"mime_type", mimeType,
		)
		return galleryerrors.ErrUnsupportedType
	}

	if _, err := s.backend.UploadImage(ctx, client.UploadImageRequest{
		Token:    token,
		FileData: base64.StdEncoding.EncodeToString(data),
		FileName: file.Name,
		MimeType: mimeType,
		Caption:  caption,
	}); err != nil {
		s.cfg.Log.Warn("Image upload rejected",
			"file_name", file.Name,
			"error", err,
		)
		return err
	}

	s.publisher.Publish(ctx, events.Event{
		Type: events.ImageUploaded,
		Key:  file.Name,
		Data: map[string]any{"file_name": file.Name, "mime_type": mimeType, "size": len(data), "caption": caption},
	})
	return nil
}

func (s *galleryService) Delete(ctx context.Context, token, imageURL string, confirm bool) (string, error) {
	if !confirm {
		return "", apperrors.ConfirmationRequired("Deleting an image")
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return "", apperrors.InvalidInput(galleryerrors.ErrURLRequired.Error())
	}

	message, err := s.deleteOne(ctx, token, imageURL)
	if err != nil {
		return "", client.ToAppError(err)
	}
	s.catalog.Invalidate(ctx)
	return message, nil
}

func (s *galleryService) BatchDelete(ctx context.Context, token string, selection *gallery.Selection, confirm bool) (*model.BatchResult, error) {
	if !confirm {
		return nil, apperrors.ConfirmationRequired("Deleting the selected images")
	}
	if selection == nil || selection.Len() == 0 {
		return nil, apperrors.InvalidInput(galleryerrors.ErrNoSelection.Error())
	}

	urls := selection.URLs()
	result := model.NewBatchResult(len(urls))
	for _, imageURL := range urls {
		if _, err := s.deleteOne(ctx, token, imageURL); err != nil {
			result.Fail(imageURL, client.FailureMessage(err))
			continue
		}
		selection.Remove(imageURL)
		result.Succeed()
	}
	result.Summarize("Deleted", "images")

	if result.Succeeded > 0 {
		s.catalog.Invalidate(ctx)
	}

	s.cfg.Log.Info("Batch image delete finished",
		"requested", result.Requested,
		"succeeded", result.Succeeded,
	)
	return result, nil
}

func (s *galleryService) deleteOne(ctx context.Context, token, imageURL string) (string, error) {
	message, err := s.backend.DeleteImage(ctx, token, imageURL)
	if err != nil {
		s.cfg.Log.Warn("Image delete rejected",
			"url", imageURL,
			"error", err,
		)
		return "", err
	}

	s.publisher.Publish(ctx, events.Event{
		Type: events.ImageDeleted,
		Key:  imageURL,
		Data: map[string]any{"url": imageURL},
	})
	s.cfg.Log.Info("Image deleted", "url", imageURL)
	return message, nil
}

func readUpload(file Upload) ([]byte, error) {
	if file.Open == nil {
		return nil, fmt.Errorf("%s: no content", file.Name)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}
	if len(data) == 0 {
		return nil, galleryerrors.ErrEmptyFile
	}
	return data, nil
}

// detectMimeType trusts a specific declared type and sniffs the bytes
// otherwise.
func detectMimeType(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	if declared != "" && declared != genericContentType {
		return declared
	}
	detected := mimetype.Detect(data).String()
	return strings.TrimSpace(strings.SplitN(detected, ";", 2)[0])
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
