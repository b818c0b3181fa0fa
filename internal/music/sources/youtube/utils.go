package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var youtubeHostPattern = regexp.MustCompile(`(?i)^(www\.)?(youtube\.com|youtu\.be|music\.youtube\.com)$`)

func isURL(input string) bool {
	u, err := url.Parse(input)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func isYouTubeURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return youtubeHostPattern.MatchString(u.Host)
}

func isYouTubeVideoURL(input string) bool {
	if !isYouTubeURL(input) {
		return false
	}
	u, _ := url.Parse(input)
	if strings.EqualFold(strings.TrimPrefix(u.Host, "www."), "youtu.be") {
		return strings.Trim(u.Path, "/") != ""
	}
	return u.Query().Get("v") != ""
}

// cleanVideoURL strips playlist/mix parameters so a shared link enqueues one
// track, not an entire mix.
func cleanVideoURL(input string) string {
	u, err := url.Parse(input)
	if err != nil {
		return input
	}

	if strings.EqualFold(strings.TrimPrefix(u.Host, "www."), "youtu.be") {
		id := strings.Trim(u.Path, "/")
		return "https://www.youtube.com/watch?v=" + id
	}

	id := u.Query().Get("v")
	if id == "" {
		return input
	}
	return "https://www.youtube.com/watch?v=" + id
}
