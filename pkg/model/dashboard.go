package model

// Dashboard is everything the admin page shows after login.
type Dashboard struct {
	Bookings []Booking       `json:"bookings"`
	Prices   RoomPrices      `json:"prices"`
	Rooms    []RoomRate      `json:"rooms"`
	Gallery  []RenderedImage `json:"gallery"`
}
