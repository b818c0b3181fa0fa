// Package parsers defines the audio extraction backends. A parser takes a
// track URL and yields raw PCM ready for Opus encoding.
package parsers

import (
	"io"
	"time"
)

// PCM format shared by every parser and the Discord encoder.
const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

// Stream is an open PCM stream plus what the parser learned about the track
// along the way.
type Stream struct {
	Reader   io.ReadCloser
	Cleanup  func()
	Duration time.Duration
	Title    string
}

// Streamer extracts audio in one of two modes: link (resolve a direct media
// URL, let ffmpeg fetch it) or pipe (download through the parser, feed ffmpeg
// over stdin).
type Streamer interface {
	LinkStream(url string, seekSec float64) (*Stream, error)
	PipeStream(url string, seekSec float64) (*Stream, error)
	SupportsPipe() bool
}
