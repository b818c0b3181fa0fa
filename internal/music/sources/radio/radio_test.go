package radio_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	source "woot/internal/music/sources"
	"woot/internal/music/sources/radio"
)

func newStationServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("icy-name", "Test FM")
	})
	mux.HandleFunc("/playlist.m3u", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})
	// rejects HEAD the way shoutcast servers do
	mux.HandleFunc("/head-hostile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/ogg")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMatchAcceptsAudioStream(t *testing.T) {
	srv := newStationServer(t)
	r := radio.New()

	if !r.Match(srv.URL + "/stream") {
		t.Error("audio/mpeg endpoint should match")
	}
	if !r.Match(srv.URL + "/playlist.m3u") {
		t.Error("playlist extension should match despite generic content-type")
	}
	if r.Match(srv.URL + "/page") {
		t.Error("text/html endpoint should not match")
	}
	if r.Match("not a url") {
		t.Error("non-URL input should not match")
	}
}

func TestMatchFallsBackToGet(t *testing.T) {
	srv := newStationServer(t)
	r := radio.New()

	if !r.Match(srv.URL + "/head-hostile") {
		t.Error("endpoint rejecting HEAD should still match via GET")
	}
}

func TestResolveCarriesStationName(t *testing.T) {
	srv := newStationServer(t)
	r := radio.New()

	tracks, err := r.Resolve(srv.URL + "/stream")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("Resolve returned %d tracks, want 1", len(tracks))
	}
	tr := tracks[0]
	if tr.Title != "Test FM" {
		t.Errorf("title = %q, want station name from icy-name", tr.Title)
	}
	if tr.SourceName != source.SourceRadio {
		t.Errorf("source = %q, want %q", tr.SourceName, source.SourceRadio)
	}
	if len(tr.AvailableParsers) == 0 || tr.AvailableParsers[0] != "ffmpeg-link" {
		t.Errorf("parsers = %v, want ffmpeg-link first", tr.AvailableParsers)
	}
}

func TestResolveRejectsNonStream(t *testing.T) {
	srv := newStationServer(t)
	r := radio.New()

	if _, err := r.Resolve(srv.URL + "/page"); err == nil {
		t.Error("Resolve of an html page should fail")
	}
}
