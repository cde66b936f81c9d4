package models

import "time"

type Review struct {
	ID        int64     `json:"id"`
	ISBN      string    `json:"isbn"`
	Username  string    `json:"username"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
