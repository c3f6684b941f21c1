package gallery

import (
	"regexp"
	"strings"

	"sweethomes/pkg/model"
)

const embedBaseURL = "https://lh3.googleusercontent.com/d/"

var (
	drivePathID  = regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`)
	driveQueryID = regexp.MustCompile(`[?&]id=([A-Za-z0-9_-]+)`)
)

// DisplayURL rewrites Google Drive share links into directly embeddable
// image URLs. Any other URL is returned unchanged.
func DisplayURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "drive.google.com") && !strings.Contains(raw, "docs.google.com") {
		return raw
	}

	if m := drivePathID.FindStringSubmatch(raw); m != nil {
		return embedBaseURL + m[1]
	}
	if m := driveQueryID.FindStringSubmatch(raw); m != nil {
		return embedBaseURL + m[1]
	}
	return raw
}

// Render prepares images for display. Entries without a URL are skipped.
func Render(images []model.GalleryImage, placeholderURL string) []model.RenderedImage {
	rendered := make([]model.RenderedImage, 0, len(images))
	for _, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			continue
		}
		rendered = append(rendered, model.RenderedImage{
			URL:         img.URL,
			DisplayURL:  DisplayURL(img.URL),
			FallbackURL: placeholderURL,
			Caption:     img.Caption,
		})
	}
	return rendered
}
