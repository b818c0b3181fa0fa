// Package ffmpeg streams a direct media URL straight through ffmpeg. Used for
// radio stations and anything already pointing at raw audio.
package ffmpeg

import (
	"errors"
	"fmt"
	"os/exec"

	"woot/internal/music/parsers"
)

type Streamer struct{}

func (s *Streamer) LinkStream(url string, seekSec float64) (*parsers.Stream, error) {
	cmd := exec.Command("ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", parsers.SampleRate),
		"-ac", fmt.Sprintf("%d", parsers.Channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &parsers.Stream{
		Reader:  reader,
		Cleanup: func() { cmd.Process.Kill() },
	}, nil
}

func (s *Streamer) PipeStream(url string, seekSec float64) (*parsers.Stream, error) {
	return nil, errors.New("pipe streaming not supported")
}

func (s *Streamer) SupportsPipe() bool { return false }
