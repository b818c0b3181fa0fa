// Package kkdai extracts YouTube audio in-process via kkdai/youtube, avoiding
// the yt-dlp binary on the hot path. ffmpeg still does the PCM transcode.
package kkdai

import (
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	youtube "github.com/kkdai/youtube/v2"

	"woot/internal/music/parsers"
)

type Streamer struct{}

func newClient() *youtube.Client {
	return &youtube.Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *Streamer) LinkStream(url string, seekSec float64) (*parsers.Stream, error) {
	videoID, err := extractYouTubeID(url)
	if err != nil {
		return nil, err
	}

	client := newClient()
	video, err := client.GetVideo(videoID)
	if err != nil {
		return nil, fmt.Errorf("youtube client error: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, errors.New("no audio formats found for video")
	}

	link, err := client.GetStreamURL(video, &formats[0])
	if err != nil {
		return nil, fmt.Errorf("get stream URL error: %w", err)
	}

	ffmpeg := exec.Command("ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seekSec),
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", link,
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
		Duration: video.Duration,
		Title:    video.Title,
	}, nil
}

func (s *Streamer) PipeStream(url string, seekSec float64) (*parsers.Stream, error) {
	videoID, err := extractYouTubeID(url)
	if err != nil {
		return nil, err
	}

	client := newClient()
	video, err := client.GetVideo(videoID)
	if err != nil {
		return nil, fmt.Errorf("youtube client error: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, errors.New("no audio formats found for video")
	}

	stream, _, err := client.GetStream(video, &formats[0])
	if err != nil {
		return nil, fmt.Errorf("get stream error: %w", err)
	}

	ffmpeg := exec.Command("ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seekSec),
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", parsers.SampleRate),
		"-ac", fmt.Sprintf("%d", parsers.Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
	ffmpeg.Stdin = stream

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		stream.Close()
		return nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		stream.Close()
		ffmpeg.Process.Kill()
	}

	return &parsers.Stream{
		Reader:   reader,
		Cleanup:  cleanup,
		Duration: video.Duration,
		Title:    video.Title,
	}, nil
}

func (s *Streamer) SupportsPipe() bool { return true }

func extractYouTubeID(url string) (string, error) {
	switch {
	case strings.Contains(url, "youtu.be/"):
		parts := strings.Split(url, "youtu.be/")
		if len(parts) != 2 {
			return "", errors.New("invalid YouTube URL format")
		}
		return strings.Split(parts[1], "?")[0], nil

	case strings.Contains(url, "youtube.com/watch?v="):
		parts := strings.Split(url, "v=")
		if len(parts) != 2 {
			return "", errors.New("invalid YouTube URL format")
		}
		return strings.Split(parts[1], "&")[0], nil

	default:
		return "", errors.New("unsupported URL format")
	}
}
