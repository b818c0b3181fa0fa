// Package source_resolver routes user input to the right track source:
// matching URLs go to their source, free text becomes a YouTube search, and
// unmatched URLs fall through to the radio stream check.
package source_resolver

import (
	"context"
	"errors"
	"strings"

	"woot/internal/music/player"
	"woot/internal/music/sources"
	"woot/internal/music/sources/radio"
	"woot/internal/music/sources/spotify"
	"woot/internal/music/sources/youtube"
	"woot/pkg/retrylimit"
)

const resolveAttempts = 3

type SourceResolver struct {
	// ordered: radio is last because its Match does a network probe
	ordered []sources.Source
	limiter *retrylimit.AdaptiveLimiter
}

func New(ctx context.Context, spotifyClientID, spotifyClientSecret string) *SourceResolver {
	return &SourceResolver{
		ordered: []sources.Source{
			youtube.New(),
			spotify.New(ctx, spotifyClientID, spotifyClientSecret),
			radio.New(),
		},
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
	}
}

// Resolve turns input into track descriptors, retrying transient failures.
func (r *SourceResolver) Resolve(ctx context.Context, input string) ([]sources.TrackInfo, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty input")
	}

	src, err := r.pick(input)
	if err != nil {
		return nil, err
	}

	var infos []sources.TrackInfo
	err = retrylimit.WithRetryMax(ctx, func() error {
		var rErr error
		infos, rErr = src.Resolve(input)
		if errors.Is(rErr, spotify.ErrNotConfigured) {
			return &retrylimit.FatalError{Err: rErr}
		}
		return rErr
	}, r.limiter, resolveAttempts)
	if err != nil {
		return nil, err
	}
	return infos, nil
}

func (r *SourceResolver) pick(input string) (sources.Source, error) {
	if !isURL(input) {
		// free text is always a YouTube search
		return r.ordered[0], nil
	}
	for _, s := range r.ordered {
		if s.Match(input) {
			return s, nil
		}
	}
	return nil, errors.New("no matching source found for: " + input)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// PlayerResolver adapts SourceResolver to the player's Resolver interface.
type PlayerResolver struct {
	inner *SourceResolver
}

func NewPlayerResolver(inner *SourceResolver) *PlayerResolver {
	return &PlayerResolver{inner: inner}
}

func (p *PlayerResolver) Resolve(ctx context.Context, input string) ([]player.Track, error) {
	infos, err := p.inner.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	tracks := make([]player.Track, len(infos))
	for i, info := range infos {
		tracks[i] = player.Track{
			Title:            info.Title,
			URL:              info.URL,
			Duration:         info.Duration,
			Source:           info.SourceName,
			AvailableParsers: info.AvailableParsers,
		}
	}
	return tracks, nil
}
