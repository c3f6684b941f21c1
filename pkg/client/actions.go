package client

import "sweethomes/pkg/model"

const (
	ActionGetBookings   = "getBookings"
	ActionGetData       = "getData"
	ActionLogin         = "login"
	ActionUpdatePrice   = "updatePrice"
	ActionUploadImage   = "uploadImage"
	ActionEditBooking   = "editBooking"
	ActionDeleteBooking = "deleteBooking"
	ActionDeleteImage   = "deleteImage"
	ActionBook          = "book"
)

const StatusSuccess = "success"

// Envelope is shared by every backend response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

type LoginRequest struct {
	Action   string `json:"action" validate:"required,eq=login"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Envelope
	Token string `json:"token"`
}

type BookingsResponse struct {
	Envelope
	Bookings []model.Booking `json:"bookings"`
}

type SiteDataResponse struct {
	Envelope
	model.SiteData
}

type UpdatePriceRequest struct {
	Action   string       `json:"action" validate:"required,eq=updatePrice"`
	Token    string       `json:"token" validate:"required"`
	RoomType string       `json:"roomType" validate:"required"`
	NewPrice model.Amount `json:"newPrice" validate:"gte=0"`
}

type UploadImageRequest struct {
	Action   string `json:"action" validate:"required,eq=uploadImage"`
	Token    string `json:"token" validate:"required"`
	FileData string `json:"fileData" validate:"required,base64"`
	FileName string `json:"fileName" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
	Caption  string `json:"caption"`
}

type EditBookingRequest struct {
	Action string `json:"action" validate:"required,eq=editBooking"`
	Token  string `json:"token" validate:"required"`
	ID     string `json:"id" validate:"required"`
	model.BookingUpdate
}

type DeleteBookingRequest struct {
	Action string `json:"action" validate:"required,eq=deleteBooking"`
	Token  string `json:"token" validate:"required"`
	ID     string `json:"id" validate:"required"`
}

type DeleteImageRequest struct {
	Action string `json:"action" validate:"required,eq=deleteImage"`
	Token  string `json:"token" validate:"required"`
	URL    string `json:"url" validate:"required"`
}

// BookRequest carries the guest form plus the total computed from current rates.
type BookRequest struct {
	Action        string       `json:"action" validate:"required,eq=book"`
	FullName      string       `json:"fullName" validate:"required"`
	Nationality   string       `json:"nationality"`
	PhoneNumber   string       `json:"phoneNumber" validate:"required"`
	Address       string       `json:"address"`
	IDPassport    string       `json:"idPassport"`
	CarPlate      string       `json:"carPlate"`
	RoomType      string       `json:"roomType" validate:"required"`
	ArrivalDate   string       `json:"arrivalDate" validate:"required"`
	ArrivalTime   string       `json:"arrivalTime"`
	DepartureDate string       `json:"departureDate" validate:"required"`
	DepartureTime string       `json:"departureTime"`
	TotalPrice    model.Amount `json:"totalPrice" validate:"gte=0"`
}

func NewBookRequest(form model.BookingForm, total model.Amount) BookRequest {
	return BookRequest{
		Action:        ActionBook,
		FullName:      form.FullName,
		Nationality:   form.Nationality,
		PhoneNumber:   form.PhoneNumber,
		Address:       form.Address,
		IDPassport:    form.IDPassport,
		CarPlate:      form.CarPlate,
		RoomType:      form.RoomType,
		ArrivalDate:   form.ArrivalDate,
		ArrivalTime:   form.ArrivalTime,
		DepartureDate: form.DepartureDate,
		DepartureTime: form.DepartureTime,
		TotalPrice:    total,
	}
}
