package model

// Theme is an escape-room experience offered for booking (`theme` table).
type Theme struct {
	ID          int64  // theme.id
	Name        string // theme.name (unique)
	Description string // theme.description
	Thumbnail   string // theme.thumbnail (image URL)
}

// PopularTheme is a theme together with how often it was booked in the
// ranking window.
type PopularTheme struct {
	Theme
	ReservationCount int64
}
