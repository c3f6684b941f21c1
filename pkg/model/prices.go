package model

import "sort"

// RoomPrices maps a room-type label such as "1 Bedroom" to its nightly rate.
type RoomPrices map[string]Amount

type RoomRate struct {
	Room string `json:"room"`
	Rate Amount `json:"rate"`
}

// Rate returns 0 for rooms the backend does not price.
func (p RoomPrices) Rate(room string) Amount {
	if p == nil {
		return 0
	}
	return p[room]
}

func (p RoomPrices) Has(room string) bool {
	_, ok := p[room]
	return ok
}

// Rooms lists every priced room sorted by label.
func (p RoomPrices) Rooms() []RoomRate {
	rooms := make([]RoomRate, 0, len(p))
	for room, rate := range p {
		rooms = append(rooms, RoomRate{Room: room, Rate: rate})
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].Room < rooms[j].Room
	})
	return rooms
}
