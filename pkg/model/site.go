package model

// SiteData is the public catalog the backend returns for getData.
type SiteData struct {
	Prices RoomPrices     `json:"prices"`
	Images []GalleryImage `json:"images"`
}
