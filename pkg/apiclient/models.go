package apiclient

import "time"

// Contact is a consultation request left by a visitor.
type Contact struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Service   string    `json:"service,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Project is a portfolio entry.
type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Area        string   `json:"area,omitempty"`
	Year        int      `json:"year,omitempty"`
	Client      string   `json:"client,omitempty"`
	Description string   `json:"description"`
	Images      []string `json:"images,omitempty"`
	Featured    bool     `json:"featured,omitempty"`
}

// Service is one of the firm's service lines.
type Service struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon,omitempty"`
	Features    []string `json:"features,omitempty"`
}
