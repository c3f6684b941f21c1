package model

import "time"

const (
	SessionUnauthenticated = "unauthenticated"
	SessionAuthenticated   = "authenticated"
)

// Session binds a browser cookie to the opaque token the backend issued at login.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	Token     string    `json:"-" bson:"token"`
	Username  string    `json:"username" bson:"username"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
