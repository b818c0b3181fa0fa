// Package ytdlp extracts audio via the yt-dlp binary. It handles every site
// yt-dlp supports, including "ytsearch1:" query inputs.
package ytdlp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"woot/internal/music/parsers"
)

type Streamer struct{}

func (s *Streamer) LinkStream(url string, seekSec float64) (*parsers.Stream, error) {
	return linkStream(url, seekSec)
}

func (s *Streamer) PipeStream(url string, seekSec float64) (*parsers.Stream, error) {
	return pipeStream(url, seekSec)
}

func (s *Streamer) SupportsPipe() bool { return true }

type mediaInfo struct {
	title    string
	duration time.Duration
	url      string
}

// probe runs yt-dlp -j and pulls out the direct media URL plus metadata.
func probe(url string) (mediaInfo, error) {
	out, err := exec.Command("yt-dlp", "-j", "-f", "bestaudio", url).Output()
	if err != nil {
		return mediaInfo{}, fmt.Errorf("yt-dlp probe error: %w", err)
	}

	type fragment struct {
		Duration float64 `json:"duration"`
	}
	type format struct {
		URL       string     `json:"url"`
		Fragments []fragment `json:"fragments,omitempty"`
	}
	var info struct {
		Title    string   `json:"title"`
		Duration float64  `json:"duration"`
		Formats  []format `json:"formats"`
		URL      string   `json:"url"`
	}
	if err := json.Unmarshal(out, &info); err != nil {
		return mediaInfo{}, fmt.Errorf("yt-dlp json error: %w", err)
	}

	// live/fragmented streams report duration per fragment
	if info.Duration == 0 && len(info.Formats) > 0 && len(info.Formats[0].Fragments) > 0 {
		info.Duration = info.Formats[0].Fragments[0].Duration
	}

	link := strings.TrimSpace(info.URL)
	if link == "" && len(info.Formats) > 0 {
		link = strings.TrimSpace(info.Formats[0].URL)
	}

	return mediaInfo{
		title:    info.Title,
		duration: time.Duration(info.Duration * float64(time.Second)),
		url:      link,
	}, nil
}

func linkStream(url string, seekSec float64) (*parsers.Stream, error) {
	info, err := probe(url)
	if err != nil {
		return nil, err
	}
	if info.url == "" {
		return nil, errors.New("empty media URL returned from yt-dlp")
	}

	ffmpeg := exec.Command("ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seekSec),
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", info.url,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", parsers.SampleRate),
		"-ac", fmt.Sprintf("%d", parsers.Channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &parsers.Stream{
		Reader:   reader,
		Cleanup:  func() { ffmpeg.Process.Kill() },
		Duration: info.duration,
		Title:    info.title,
	}, nil
}

func pipeStream(url string, seekSec float64) (*parsers.Stream, error) {
	info, err := probe(url)
	if err != nil {
		return nil, err
	}

	ytdlp := exec.Command("yt-dlp", "-o", "-", "-f", "bestaudio", url)
	ffmpeg := exec.Command("ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seekSec),
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", parsers.SampleRate),
		"-ac", fmt.Sprintf("%d", parsers.Channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	var ffmpegIn io.ReadCloser
	ffmpegIn, err = ytdlp.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp stdout pipe error: %w", err)
	}
	ffmpeg.Stdin = ffmpegIn

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}

	if err := ytdlp.Start(); err != nil {
		return nil, fmt.Errorf("yt-dlp start error: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		ytdlp.Process.Kill()
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		ffmpeg.Process.Kill()
		ytdlp.Process.Kill()
	}

	return &parsers.Stream{
		Reader:   reader,
		Cleanup:  cleanup,
		Duration: info.duration,
		Title:    info.title,
	}, nil
}
