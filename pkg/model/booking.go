package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Booking is one row of the remote bookings sheet. JSON keys are the sheet headers.
type Booking struct {
	ID            string    `json:"ID"`
	Timestamp     Timestamp `json:"Timestamp"`
	Name          string    `json:"Name"`
	Phone         string    `json:"Phone"`
	Nationality   string    `json:"Nationality"`
	Address       string    `json:"Address"`
	IDPassport    string    `json:"IDPassport"`
	CarPlate      string    `json:"CarPlate"`
	Room          string    `json:"Room"`
	Arrival       string    `json:"Arrival"`
	ArrivalTime   string    `json:"ArrivalTime"`
	Departure     string    `json:"Departure"`
	DepartureTime string    `json:"DepartureTime"`
	Total         Amount    `json:"Total"`
	Status        string    `json:"Status"`
}

// UnmarshalJSON accepts sheet cells of any scalar type. Phone numbers and ids
// typed into a spreadsheet routinely come back as JSON numbers.
func (b *Booking) UnmarshalJSON(data []byte) error {
	var cells map[string]json.RawMessage
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}

	*b = Booking{
		ID:            cellText(cells["ID"]),
		Timestamp:     ParseTimestamp(cellText(cells["Timestamp"])),
		Name:          cellText(cells["Name"]),
		Phone:         cellText(cells["Phone"]),
		Nationality:   cellText(cells["Nationality"]),
		Address:       cellText(cells["Address"]),
		IDPassport:    cellText(cells["IDPassport"]),
		CarPlate:      cellText(cells["CarPlate"]),
		Room:          cellText(cells["Room"]),
		Arrival:       cellText(cells["Arrival"]),
		ArrivalTime:   cellText(cells["ArrivalTime"]),
		Departure:     cellText(cells["Departure"]),
		DepartureTime: cellText(cells["DepartureTime"]),
		Status:        cellText(cells["Status"]),
	}

	if raw, ok := cells["Timestamp"]; ok && isNumber(raw) {
		if err := json.Unmarshal(raw, &b.Timestamp); err != nil {
			return err
		}
	}

	if total, err := ParseAmount(cellText(cells["Total"])); err == nil {
		b.Total = total
	}
	return nil
}

// Fields returns the string form of every field, in sheet column order.
func (b *Booking) Fields() []string {
	return []string{
		b.ID,
		b.Timestamp.Raw,
		b.Name,
		b.Phone,
		b.Nationality,
		b.Address,
		b.IDPassport,
		b.CarPlate,
		b.Room,
		b.Arrival,
		b.ArrivalTime,
		b.Departure,
		b.DepartureTime,
		b.Total.String(),
		b.Status,
	}
}

// Matches reports whether query is a case-insensitive substring of any field.
// An empty query matches everything.
func (b *Booking) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range b.Fields() {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// BookingForm is what a guest submits from the public site.
type BookingForm struct {
	FullName      string `json:"fullName" validate:"required,min=2,max=120"`
	Nationality   string `json:"nationality" validate:"omitempty,max=80"`
	PhoneNumber   string `json:"phoneNumber" validate:"required,guest_phone"`
	Address       string `json:"address" validate:"omitempty,max=250"`
	IDPassport    string `json:"idPassport" validate:"omitempty,max=40"`
	CarPlate      string `json:"carPlate" validate:"omitempty,max=20"`
	RoomType      string `json:"roomType" validate:"required,max=60"`
	ArrivalDate   string `json:"arrivalDate" validate:"required,datetime=2006-01-02,not_past_date"`
	ArrivalTime   string `json:"arrivalTime" validate:"omitempty,datetime=15:04"`
	DepartureDate string `json:"departureDate" validate:"required,datetime=2006-01-02"`
	DepartureTime string `json:"departureTime" validate:"omitempty,datetime=15:04"`
}

// BookingUpdate is the full record an admin submits when editing a booking.
// Every field is sent, so an omitted field clears the sheet cell.
type BookingUpdate struct {
	Name          string `json:"Name" validate:"required,min=2,max=120"`
	Phone         string `json:"Phone" validate:"required,max=30"`
	Nationality   string `json:"Nationality" validate:"omitempty,max=80"`
	Address       string `json:"Address" validate:"omitempty,max=250"`
	IDPassport    string `json:"IDPassport" validate:"omitempty,max=40"`
	CarPlate      string `json:"CarPlate" validate:"omitempty,max=20"`
	Room          string `json:"Room" validate:"required,max=60"`
	Arrival       string `json:"Arrival" validate:"required,datetime=2006-01-02"`
	ArrivalTime   string `json:"ArrivalTime" validate:"omitempty,datetime=15:04"`
	Departure     string `json:"Departure" validate:"required,datetime=2006-01-02"`
	DepartureTime string `json:"DepartureTime" validate:"omitempty,datetime=15:04"`
	Total         Amount `json:"Total" validate:"gte=0"`
	Status        string `json:"Status" validate:"required,max=40"`
}

func cellText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}

	return ""
}

func isNumber(raw json.RawMessage) bool {
	var f float64
	return json.Unmarshal(raw, &f) == nil
}
