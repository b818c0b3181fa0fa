package player

import "time"

// Track is a fully resolved queue entry. URL is what the opener streams from;
// for search-backed sources it may be a "ytsearch1:" query handled by yt-dlp.
type Track struct {
	ID               string
	Title            string
	URL              string
	Duration         time.Duration
	RequestedBy      string // discord user ID
	Source           string
	AvailableParsers []string
}

// DisplayTitle returns something printable even for untitled streams.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.URL
}
