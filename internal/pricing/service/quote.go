package service

import (
	"math"
	"time"

	"sweethomes/pkg/model"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

type QuoteRequest struct {
	RoomType      string `json:"roomType"`
	ArrivalDate   string `json:"arrivalDate"`
	DepartureDate string `json:"departureDate"`
}

// Quote is a price preview. A quote that cannot be computed is zeroed and
// not Visible, but still carries a display string.
type Quote struct {
	Room     string       `json:"room"`
	Rate     model.Amount `json:"rate"`
	Nights   int          `json:"nights"`
	Total    model.Amount `json:"total"`
	Currency string       `json:"currency"`
	Display  string       `json:"display"`
	Visible  bool         `json:"visible"`
}

type Quoter struct {
	currency string
	location *time.Location
	printer  *message.Printer
}

func NewQuoter(currency string, location *time.Location) *Quoter {
	if location == nil {
		location = time.UTC
	}
	return &Quoter{
		currency: currency,
		location: location,
		printer:  message.NewPrinter(language.English),
	}
}

// Nights counts whole days between two dates, rounding partial days up.
// It returns 0 when either date is unparseable or departure is not after arrival.
func (q *Quoter) Nights(arrival, departure string) int {
	arr, err := time.ParseInLocation(dateLayout, arrival, q.location)
	if err != nil {
		return 0
	}
	dep, err := time.ParseInLocation(dateLayout, departure, q.location)
	if err != nil {
		return 0
	}
	if !dep.After(arr) {
		return 0
	}
	return int(math.Ceil(dep.Sub(arr).Hours() / 24))
}

func (q *Quoter) Quote(req QuoteRequest, rate model.Amount) Quote {
	quote := Quote{
		Room:     req.RoomType,
		Rate:     rate,
		Currency: q.currency,
	}

	nights := q.Nights(req.ArrivalDate, req.DepartureDate)
	if nights <= 0 || rate <= 0 {
		quote.Display = q.FormatAmount(0)
		return quote
	}

	quote.Nights = nights
	quote.Total = rate * model.Amount(nights)
	quote.Visible = true
	quote.Display = q.printer.Sprintf("%s (%d %s)", q.FormatAmount(quote.Total), nights, pluralNights(nights))
	return quote
}

// FormatAmount renders "KES 9,000", or "KES 9,000.50" for fractional amounts.
func (q *Quoter) FormatAmount(amount model.Amount) string {
	f := amount.Float64()
	if f == math.Trunc(f) {
		return q.printer.Sprintf("%s %d", q.currency, int64(f))
	}
	return q.printer.Sprintf("%s %.2f", q.currency, f)
}

func pluralNights(n int) string {
	if n == 1 {
		return "night"
	}
	return "nights"
}
