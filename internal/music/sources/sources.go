package sources

import "time"

const (
	SourceYouTube = "youtube"
	SourceSpotify = "spotify"
	SourceRadio   = "radio"
)

// TrackInfo is the resolver's output: enough to open a stream later without
// having downloaded anything yet.
type TrackInfo struct {
	URL              string
	Title            string
	Duration         time.Duration
	SourceName       string
	AvailableParsers []string
}

// Source turns user input into playable track descriptors.
type Source interface {
	// Match checks if this source can handle the given input.
	Match(input string) bool

	// Resolve turns an input into one or more playable tracks.
	Resolve(input string) ([]TrackInfo, error)

	// SourceName returns the string identifier ("youtube", "radio", etc.)
	SourceName() string

	// AvailableParsers returns the parsers supported by this source, in
	// preference order.
	AvailableParsers() []string
}
