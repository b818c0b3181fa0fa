package stream

import (
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"woot/internal/logging"
	"woot/internal/music/parsers"
)

const maxRecoveryAttempts = 3

// recoveryStream reads PCM from a parser and, when the stream dies early,
// reopens it at the current position. Parsers that keep failing are skipped
// in favor of the next one on the list.
type recoveryStream struct {
	mu          sync.Mutex
	url         string
	parserNames []string
	parserIndex int
	cur         *parsers.Stream
	seekSec     float64
	retries     map[string]int
	closed      bool
	log         zerolog.Logger
}

func newRecoveryStream(url string, parserNames []string) *recoveryStream {
	return &recoveryStream{
		url:         url,
		parserNames: parserNames,
		retries:     make(map[string]int),
		log:         logging.Component("stream"),
	}
}

// open tries parsers starting at the current index until one yields a stream.
func (rs *recoveryStream) open(seekSec float64) error {
	for i := rs.parserIndex; i < len(rs.parserNames); i++ {
		parser := rs.parserNames[i]

		if rs.retries[parser] >= maxRecoveryAttempts {
			rs.log.Debug().Str("parser", parser).Msg("parser exceeded recovery attempts, skipping")
			continue
		}

		s, err := openWithParser(rs.url, parser, seekSec)
		if err != nil {
			rs.log.Warn().Err(err).Str("parser", parser).Msg("parser failed to open stream")
			rs.retries[parser]++
			continue
		}

		rs.parserIndex = i
		rs.cur = s
		rs.seekSec = seekSec
		rs.log.Info().Str("parser", parser).Float64("seek_sec", seekSec).Msg("stream opened")
		return nil
	}

	return errors.New("all parsers failed or exceeded recovery attempts")
}

func (rs *recoveryStream) Read(p []byte) (int, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.closed {
		return 0, io.EOF
	}
	if rs.cur == nil {
		return 0, errors.New("stream not opened")
	}

	n, err := rs.cur.Reader.Read(p)
	rs.seekSec += float64(n) / (parsers.SampleRate * parsers.Channels * 2)

	if err != nil && n == 0 && !rs.finished() {
		return rs.recoverLocked(p)
	}
	return n, err
}

// finished reports whether the known duration has effectively elapsed, in
// which case an EOF is the real end rather than a dropped connection.
func (rs *recoveryStream) finished() bool {
	d := rs.cur.Duration
	if d <= 0 {
		return true // unknown duration, radio etc; trust the EOF
	}
	return rs.seekSec >= d.Seconds()-1
}

func (rs *recoveryStream) recoverLocked(p []byte) (int, error) {
	parser := rs.parserNames[rs.parserIndex]
	if rs.retries[parser] >= maxRecoveryAttempts {
		rs.log.Warn().Str("parser", parser).Msg("max recovery attempts reached")
		return 0, io.EOF
	}
	rs.retries[parser]++
	rs.log.Info().Str("parser", parser).Int("attempt", rs.retries[parser]).Float64("seek_sec", rs.seekSec).
		Msg("stream ended prematurely, recovering")

	if rs.cur.Cleanup != nil {
		rs.cur.Cleanup()
	}

	if err := rs.open(rs.seekSec); err != nil {
		rs.log.Warn().Err(err).Msg("recovery failed")
		return 0, io.EOF
	}

	n, err := rs.cur.Reader.Read(p)
	rs.seekSec += float64(n) / (parsers.SampleRate * parsers.Channels * 2)
	return n, err
}

func (rs *recoveryStream) Close() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.closed {
		return nil
	}
	rs.closed = true

	if rs.cur != nil {
		if rs.cur.Cleanup != nil {
			rs.cur.Cleanup()
		}
		return rs.cur.Reader.Close()
	}
	return nil
}

// Parser returns the name of the parser currently in use.
func (rs *recoveryStream) Parser() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.parserIndex < len(rs.parserNames) {
		return rs.parserNames[rs.parserIndex]
	}
	return ""
}
