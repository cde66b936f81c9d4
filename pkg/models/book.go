package models

// Book is a catalog entry keyed by ISBN.
type Book struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
}

// BookStats is the aggregate served by the JSON lookup endpoint.
type BookStats struct {
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Year         int     `json:"year"`
	ISBN         string  `json:"isbn"`
	ReviewCount  int     `json:"review_count"`
	AverageScore float64 `json:"average_score"`
}
