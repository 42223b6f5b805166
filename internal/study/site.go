package study

import "time"

// Site is a measurement location and the sensor file holding its readings.
type Site struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Description string    `json:"description"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	AddedAt     time.Time `json:"added_at"`
}

// Artifact is a chart or report written for a study.
type Artifact struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Site      string    `json:"site,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
