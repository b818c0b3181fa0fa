package youtube

import (
	"errors"
	"strings"

	source "woot/internal/music/sources"
)

type YouTubeSource struct {
	resolver *SearchResolver
}

func New() *YouTubeSource {
	return &YouTubeSource{
		resolver: NewSearchResolver(),
	}
}

func (y *YouTubeSource) Match(input string) bool {
	return isYouTubeURL(input)
}

func (y *YouTubeSource) Resolve(input string) ([]source.TrackInfo, error) {
	input = strings.TrimSpace(input)

	// direct video URL
	if isYouTubeVideoURL(input) {
		return []source.TrackInfo{
			{
				URL:              cleanVideoURL(input),
				SourceName:       source.SourceYouTube,
				AvailableParsers: y.AvailableParsers(),
			},
		}, nil
	}

	if isURL(input) {
		return nil, errors.New("invalid YouTube URL format")
	}

	// free-text search: first hit wins
	videoURL, err := y.resolver.SearchFirstVideoURL(input)
	if err != nil {
		return nil, err
	}

	return []source.TrackInfo{
		{
			URL:              videoURL,
			Title:            input,
			SourceName:       source.SourceYouTube,
			AvailableParsers: y.AvailableParsers(),
		},
	}, nil
}

func (y *YouTubeSource) SourceName() string {
	return source.SourceYouTube
}

func (y *YouTubeSource) AvailableParsers() []string {
	return []string{"kkdai-link", "ytdlp-link", "ytdlp-pipe"}
}
