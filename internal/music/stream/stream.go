// Package stream turns a resolved track into audio on a Discord voice
// connection: parser dispatch, mid-track recovery and the Opus send loop.
package stream

import (
	"fmt"
	"io"
	"strings"

	"woot/internal/music/parsers"
	"woot/internal/music/parsers/ffmpeg"
	"woot/internal/music/parsers/kkdai"
	"woot/internal/music/parsers/ytdlp"
	"woot/internal/music/player"
)

var streamersRegistry = map[string]parsers.Streamer{
	"ytdlp-link":  &ytdlp.Streamer{},
	"ytdlp-pipe":  &ytdlp.Streamer{},
	"kkdai-link":  &kkdai.Streamer{},
	"kkdai-pipe":  &kkdai.Streamer{},
	"ffmpeg-link": &ffmpeg.Streamer{},
}

func isPipeMode(parser string) bool {
	return strings.HasSuffix(parser, "-pipe")
}

// openWithParser opens a PCM stream using the named parser at a seek offset.
func openWithParser(url, parser string, seekSec float64) (*parsers.Stream, error) {
	streamer, ok := streamersRegistry[parser]
	if !ok {
		return nil, fmt.Errorf("streamer not found for parser: %v", parser)
	}

	if isPipeMode(parser) && streamer.SupportsPipe() {
		return streamer.PipeStream(url, seekSec)
	}
	return streamer.LinkStream(url, seekSec)
}

// Opener implements the player's Opener: it walks the track's parsers in
// preference order and wraps the winner in a self-recovering reader.
type Opener struct{}

func NewOpener() *Opener {
	return &Opener{}
}

func (o *Opener) Open(track player.Track) (io.ReadCloser, func(), string, error) {
	names := track.AvailableParsers
	if len(names) == 0 {
		names = []string{"ytdlp-link", "ytdlp-pipe"}
	}

	rs := newRecoveryStream(track.URL, names)
	if err := rs.open(0); err != nil {
		return nil, nil, "", err
	}
	return rs, func() { rs.Close() }, rs.Parser(), nil
}
