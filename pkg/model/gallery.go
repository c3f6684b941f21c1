package model

import (
	"encoding/json"
	"strings"
)

// GalleryImage is identified by its URL.
type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// UnmarshalJSON accepts either a bare URL string or an object. Object keys
// are matched case-insensitively because sheet headers are capitalised.
func (g *GalleryImage) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		*g = GalleryImage{URL: strings.TrimSpace(url)}
		return nil
	}

	var cells map[string]json.RawMessage
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}

	*g = GalleryImage{}
	for key, raw := range cells {
		switch strings.ToLower(key) {
		case "url":
			g.URL = cellText(raw)
		case "caption":
			g.Caption = cellText(raw)
		}
	}
	return nil
}

// RenderedImage is a gallery image ready for an <img> tag.
type RenderedImage struct {
	URL         string `json:"url"`
	DisplayURL  string `json:"display_url"`
	FallbackURL string `json:"fallback_url"`
	Caption     string `json:"caption,omitempty"`
}
