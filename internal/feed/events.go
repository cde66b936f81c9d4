package feed

import "time"

const (
	ReviewCreated = "review.created"
	Welcome       = "welcome"
)

// ReviewEvent is one line on the TCP feed and one text frame on /ws.
type ReviewEvent struct {
	Type     string    `json:"type"`
	ISBN     string    `json:"isbn"`
	Username string    `json:"username"`
	Rating   int       `json:"rating"`
	Review   string    `json:"review,omitempty"`
	At       time.Time `json:"at"`
}

// Hello is the first line every subscriber receives.
type Hello struct {
	Type      string `json:"type"`
	Transport string `json:"transport"`
	Clients   int    `json:"clients"`
}
