// Package radio handles direct audio stream URLs: internet radio stations and
// any other HTTP endpoint that serves a continuous audio stream.
package radio

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	source "woot/internal/music/sources"
)

const (
	probeTimeout = 5 * time.Second
	maxRedirects = 5
)

// Exact content types that mark a playable stream or playlist. Anything under
// audio/* or video/* qualifies too; octet-stream is loose but many stations
// serve it.
var streamTypes = map[string]bool{
	"application/vnd.apple.mpegurl": true,
	"application/x-mpegurl":         true,
	"application/ogg":               true,
	"application/x-scpls":           true,
	"application/xspf+xml":          true,
	"application/octet-stream":      true,
}

var playlistExts = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
	".xspf": true,
	".asx":  true,
}

type RadioSource struct {
	client *http.Client
}

func New() *RadioSource {
	return &RadioSource{
		client: &http.Client{
			Timeout: probeTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
	}
}

func (r *RadioSource) Match(input string) bool {
	u, err := url.Parse(input)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	_, err = r.probe(input)
	return err == nil
}

func (r *RadioSource) Resolve(input string) ([]source.TrackInfo, error) {
	p, err := r.probe(input)
	if err != nil {
		return nil, fmt.Errorf("radio: %w", err)
	}

	return []source.TrackInfo{
		{
			URL:              input,
			Title:            p.station,
			SourceName:       source.SourceRadio,
			AvailableParsers: r.AvailableParsers(),
		},
	}, nil
}

func (r *RadioSource) SourceName() string {
	return source.SourceRadio
}

func (r *RadioSource) AvailableParsers() []string {
	return []string{"ffmpeg-link"}
}

type probeResult struct {
	contentType string
	station     string
}

// probe fetches the endpoint's headers and decides whether they describe a
// playable stream. Stations often reject HEAD, so a failed HEAD falls back to
// GET; only headers are read, the body may be endless.
func (r *RadioSource) probe(rawURL string) (probeResult, error) {
	resp, err := r.fetch(http.MethodHead, rawURL)
	if err != nil || resp.StatusCode >= 400 {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = r.fetch(http.MethodGet, rawURL)
		if err != nil {
			return probeResult{}, fmt.Errorf("probe failed: %w", err)
		}
	}
	defer resp.Body.Close()

	p := probeResult{
		contentType: mediaType(resp.Header.Get("Content-Type")),
		station:     resp.Header.Get("icy-name"),
	}
	finalURL := resp.Request.URL.String() // after redirects

	if playableType(p.contentType) || playlistURL(finalURL) {
		return p, nil
	}
	return p, fmt.Errorf("not an audio stream: content-type %q at %s", p.contentType, finalURL)
}

func (r *RadioSource) fetch(method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	return r.client.Do(req)
}

// mediaType strips parameters like "; charset=utf-8".
func mediaType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func playableType(ct string) bool {
	if strings.HasPrefix(ct, "audio/") || strings.HasPrefix(ct, "video/") {
		return true
	}
	return streamTypes[ct]
}

// playlistURL spots playlist files served with a generic content-type.
func playlistURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return playlistExts[strings.ToLower(path.Ext(u.Path))]
}
