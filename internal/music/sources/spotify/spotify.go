// Package spotify expands Spotify links into YouTube search queries. Spotify
// has no public audio streams, so each track becomes a "ytsearch1:" input for
// yt-dlp with the track/artist names as the query.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	source "woot/internal/music/sources"
)

var (
	trackPattern    = regexp.MustCompile(`(?:open\.spotify\.com/track/|spotify:track:)([A-Za-z0-9]+)`)
	albumPattern    = regexp.MustCompile(`(?:open\.spotify\.com/album/|spotify:album:)([A-Za-z0-9]+)`)
	playlistPattern = regexp.MustCompile(`(?:open\.spotify\.com/playlist/|spotify:playlist:)([A-Za-z0-9]+)`)

	ErrNotConfigured = errors.New("spotify credentials are not configured")
)

const playlistPageLimit = 10 // 100 items each; enough for any sane queue

type SpotifySource struct {
	client *spotify.Client
}

// New builds a SpotifySource using the client-credentials flow. Returns a
// source with a nil client when credentials are absent; Resolve then fails
// with ErrNotConfigured while Match keeps working, so the user gets a clear
// message instead of a silent fallthrough.
func New(ctx context.Context, clientID, clientSecret string) *SpotifySource {
	if clientID == "" || clientSecret == "" {
		return &SpotifySource{}
	}

	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := cfg.Token(ctx)
	if err != nil {
		return &SpotifySource{}
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return &SpotifySource{client: spotify.New(httpClient)}
}

func (s *SpotifySource) Match(input string) bool {
	return trackPattern.MatchString(input) ||
		albumPattern.MatchString(input) ||
		playlistPattern.MatchString(input)
}

func (s *SpotifySource) SourceName() string {
	return source.SourceSpotify
}

func (s *SpotifySource) AvailableParsers() []string {
	// search-query inputs; only yt-dlp understands ytsearch:
	return []string{"ytdlp-link", "ytdlp-pipe"}
}

func (s *SpotifySource) Resolve(input string) ([]source.TrackInfo, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	ctx := context.Background()

	if m := trackPattern.FindStringSubmatch(input); m != nil {
		return s.resolveTrack(ctx, spotify.ID(m[1]))
	}
	if m := albumPattern.FindStringSubmatch(input); m != nil {
		return s.resolveAlbum(ctx, spotify.ID(m[1]))
	}
	if m := playlistPattern.FindStringSubmatch(input); m != nil {
		return s.resolvePlaylist(ctx, spotify.ID(m[1]))
	}

	return nil, errors.New("invalid Spotify URL")
}

func (s *SpotifySource) resolveTrack(ctx context.Context, id spotify.ID) ([]source.TrackInfo, error) {
	t, err := s.client.GetTrack(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("spotify track lookup: %w", err)
	}
	return []source.TrackInfo{s.trackInfo(t.Name, artistNames(t.Artists), t.TimeDuration())}, nil
}

func (s *SpotifySource) resolveAlbum(ctx context.Context, id spotify.ID) ([]source.TrackInfo, error) {
	album, err := s.client.GetAlbum(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("spotify album lookup: %w", err)
	}

	infos := make([]source.TrackInfo, 0, len(album.Tracks.Tracks))
	for _, t := range album.Tracks.Tracks {
		infos = append(infos, s.trackInfo(t.Name, artistNames(t.Artists), t.TimeDuration()))
	}
	if len(infos) == 0 {
		return nil, errors.New("spotify album has no tracks")
	}
	return infos, nil
}

func (s *SpotifySource) resolvePlaylist(ctx context.Context, id spotify.ID) ([]source.TrackInfo, error) {
	page, err := s.client.GetPlaylistItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("spotify playlist lookup: %w", err)
	}

	var infos []source.TrackInfo
	for pageNum := 0; pageNum < playlistPageLimit; pageNum++ {
		for _, item := range page.Items {
			t := item.Track.Track
			if t == nil {
				continue // episode or removed track
			}
			infos = append(infos, s.trackInfo(t.Name, artistNames(t.Artists), t.TimeDuration()))
		}
		if err := s.client.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("spotify playlist page: %w", err)
		}
	}

	if len(infos) == 0 {
		return nil, errors.New("spotify playlist has no playable tracks")
	}
	return infos, nil
}

func (s *SpotifySource) trackInfo(name, artists string, dur time.Duration) source.TrackInfo {
	query := strings.TrimSpace(name + " " + artists)
	title := name
	if artists != "" {
		title = name + " - " + artists
	}
	return source.TrackInfo{
		URL:              "ytsearch1:" + query,
		Title:            title,
		Duration:         dur,
		SourceName:       source.SourceSpotify,
		AvailableParsers: s.AvailableParsers(),
	}
}

func artistNames(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if strings.TrimSpace(a.Name) != "" {
			names = append(names, strings.TrimSpace(a.Name))
		}
	}
	return strings.Join(names, ", ")
}
