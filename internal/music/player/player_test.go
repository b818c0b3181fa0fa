package player_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"woot/internal/music/player"
)

type fakeResolver struct {
	mu     sync.Mutex
	tracks map[string][]player.Track
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, input string) ([]player.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.tracks[input], nil
}

type fakeOpener struct {
	mu      sync.Mutex
	err     error
	failIDs map[string]error
}

func (f *fakeOpener) Open(track player.Track) (io.ReadCloser, func(), string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, "", f.err
	}
	if err := f.failIDs[track.ID]; err != nil {
		return nil, nil, "", err
	}
	return io.NopCloser(strings.NewReader("")), func() {}, "fake", nil
}

type fakeDriver struct {
	mu        sync.Mutex
	finish    chan error
	connected string
	sends     int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{finish: make(chan error)}
}

func (d *fakeDriver) Connect(channelID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = channelID
	return nil
}

func (d *fakeDriver) Send(pcm io.Reader, ctl *player.Controls) error {
	d.mu.Lock()
	d.sends++
	d.mu.Unlock()

	select {
	case <-ctl.Done():
		return nil
	case err := <-d.finish:
		return err
	}
}

func (d *fakeDriver) Disconnect() error { return nil }

func (d *fakeDriver) sendCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sends
}

func track(id string) player.Track {
	return player.Track{ID: id, Title: id, URL: "https://example.com/" + id}
}

func newTestSession(t *testing.T, resolver *fakeResolver, opener *fakeOpener, driver *fakeDriver) *player.Session {
	t.Helper()
	s := player.NewSession("guild-1", resolver, opener, driver, player.Config{
		MaxFailures:    2,
		ResolveTimeout: time.Second,
	})
	t.Cleanup(func() { s.Close() })
	return s
}

// waitFor reads events until one of the wanted type arrives.
func waitFor(t *testing.T, s *player.Session, want player.EventType) player.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-s.Events:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %q", want)
		}
	}
}

func TestEnqueueStartsPlayback(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a")},
	}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, &fakeOpener{}, driver)

	if err := s.Enqueue("song", "user-1", "voice-1"); err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}

	ev := waitFor(t, s, player.EventTrackStarted)
	if ev.Track.ID != "a" {
		t.Errorf("started track = %q, want a", ev.Track.ID)
	}

	snap := s.Snapshot()
	if snap.Status != player.StatusPlaying {
		t.Errorf("status = %q, want Playing", snap.Status)
	}
	if snap.Current == nil || snap.Current.RequestedBy != "user-1" {
		t.Errorf("current track missing requester: %+v", snap.Current)
	}
	if driver.connected != "voice-1" {
		t.Errorf("connected channel = %q, want voice-1", driver.connected)
	}
}

func TestQueuePlaysInRequestOrder(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"first":  {track("a"), track("b")},
		"second": {track("c")},
	}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, &fakeOpener{}, driver)

	_ = s.Enqueue("first", "u", "v")
	_ = s.Enqueue("second", "u", "v")

	for _, want := range []string{"a", "b", "c"} {
		ev := waitFor(t, s, player.EventTrackStarted)
		if ev.Track.ID != want {
			t.Fatalf("track order: got %q, want %q", ev.Track.ID, want)
		}
		driver.finish <- nil
	}

	waitFor(t, s, player.EventQueueEnded)
	if got := s.Status(); got != player.StatusIdle {
		t.Errorf("status after queue end = %q, want Idle", got)
	}
}

func TestSkipAdvancesWithoutRequeueWhenLoopOff(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a"), track("b")},
	}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, &fakeOpener{}, driver)

	_ = s.Enqueue("song", "u", "v")
	waitFor(t, s, player.EventTrackStarted)

	if err := s.Skip(); err != nil {
		t.Fatalf("Skip returned error: %v", err)
	}

	ev := waitFor(t, s, player.EventTrackStarted)
	if ev.Track.ID != "b" {
		t.Fatalf("after skip got %q, want b", ev.Track.ID)
	}

	snap := s.Snapshot()
	if len(snap.Queue) != 0 {
		t.Errorf("queue after skip = %d tracks, want 0 (loop off drops skipped)", len(snap.Queue))
	}
}

func TestSkipRequeuesAtBackUnderQueueLoop(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a"), track("b")},
	}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, &fakeOpener{}, driver)
	s.SetLoopMode(player.LoopQueue)

	_ = s.Enqueue("song", "u", "v")
	waitFor(t, s, player.EventTrackStarted) // a

	_ = s.Skip()
	ev := waitFor(t, s, player.EventTrackStarted)
	if ev.Track.ID != "b" {
		t.Fatalf("after skip got %q, want b", ev.Track.ID)
	}

	snap := s.Snapshot()
	if len(snap.Queue) != 1 || snap.Queue[0].ID != "a" {
		t.Fatalf("queue = %+v, want [a] at the back", snap.Queue)
	}
}

func TestSkipOnLastTrackNeverReplaysIt(t *testing.T) {
	for _, mode := range []player.LoopMode{player.LoopTrack, player.LoopQueue} {
		t.Run(string(mode), func(t *testing.T) {
			resolver := &fakeResolver{tracks: map[string][]player.Track{
				"song": {track("a")},
			}}
			driver := newFakeDriver()
			s := newTestSession(t, resolver, &fakeOpener{}, driver)
			s.SetLoopMode(mode)

			_ = s.Enqueue("song", "u", "v")
			waitFor(t, s, player.EventTrackStarted)

			if err := s.Skip(); err != nil {
				t.Fatalf("Skip returned error: %v", err)
			}

			waitFor(t, s, player.EventQueueEnded)
			snap := s.Snapshot()
			if snap.Status != player.StatusIdle {
				t.Errorf("status after skipping the only track = %q, want Idle", snap.Status)
			}
			if len(snap.Queue) != 0 || snap.Current != nil {
				t.Errorf("skipped track came back: queue=%+v current=%v", snap.Queue, snap.Current)
			}
			if got := driver.sendCount(); got != 1 {
				t.Errorf("send count = %d, want 1 (no replay)", got)
			}
		})
	}
}

func TestLoopTrackReplaysOnNaturalEnd(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a")},
	}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, &fakeOpener{}, driver)
	s.SetLoopMode(player.LoopTrack)

	_ = s.Enqueue("song", "u", "v")
	waitFor(t, s, player.EventTrackStarted)

	driver.finish <- nil // natural end

	ev := waitFor(t, s, player.EventTrackStarted)
	if ev.Track.ID != "a" {
		t.Errorf("loop track replayed %q, want a", ev.Track.ID)
	}
}

func TestPauseAndResume(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a")},
	}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, &fakeOpener{}, driver)

	_ = s.Enqueue("song", "u", "v")
	waitFor(t, s, player.EventTrackStarted)

	if err := s.Pause(); err != nil {
		t.Fatalf("Pause returned error: %v", err)
	}
	if got := s.Status(); got != player.StatusPaused {
		t.Errorf("status = %q, want Paused", got)
	}
	if err := s.Pause(); err != nil {
		t.Errorf("Pause while paused = %v, want no-op nil", err)
	}
	if got := s.Status(); got != player.StatusPaused {
		t.Errorf("status after double Pause = %q, want Paused", got)
	}

	if err := s.Resume(); err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if got := s.Status(); got != player.StatusPlaying {
		t.Errorf("status = %q, want Playing", got)
	}
	if err := s.Resume(); err != nil {
		t.Errorf("Resume while playing = %v, want no-op nil", err)
	}
	if got := s.Status(); got != player.StatusPlaying {
		t.Errorf("status after double Resume = %q, want Playing", got)
	}
}

func TestPauseResumeRejectedWhenIdle(t *testing.T) {
	s := newTestSession(t, &fakeResolver{}, &fakeOpener{}, newFakeDriver())

	if err := s.Pause(); !errors.Is(err, player.ErrNoTrackPlaying) {
		t.Errorf("Pause while idle = %v, want ErrNoTrackPlaying", err)
	}
	if err := s.Resume(); !errors.Is(err, player.ErrNoTrackPlaying) {
		t.Errorf("Resume while idle = %v, want ErrNoTrackPlaying", err)
	}
}

func TestStopClearsQueue(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a"), track("b"), track("c")},
	}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, &fakeOpener{}, driver)

	_ = s.Enqueue("song", "u", "v")
	waitFor(t, s, player.EventTrackStarted)

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	waitFor(t, s, player.EventSessionStopped)

	snap := s.Snapshot()
	if len(snap.Queue) != 0 || snap.Current != nil {
		t.Errorf("after stop: queue=%d current=%v, want empty", len(snap.Queue), snap.Current)
	}
	if err := s.Skip(); !errors.Is(err, player.ErrNoTrackPlaying) {
		t.Errorf("Skip after stop = %v, want ErrNoTrackPlaying", err)
	}
}

func TestVolumeClamping(t *testing.T) {
	s := newTestSession(t, &fakeResolver{}, &fakeOpener{}, newFakeDriver())

	if got := s.SetVolume("u", 5.0); got != 2.0 {
		t.Errorf("SetVolume(5.0) = %v, want clamp to 2.0", got)
	}
	if got := s.SetVolume("u", -1); got != 0 {
		t.Errorf("SetVolume(-1) = %v, want 0", got)
	}
	if got := s.Volume("unknown"); got != 1.0 {
		t.Errorf("default volume = %v, want 1.0", got)
	}
}

func TestTooManyFailuresGoesIdle(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a"), track("b"), track("c")},
	}}
	opener := &fakeOpener{err: errors.New("boom")}
	s := newTestSession(t, resolver, opener, newFakeDriver())

	_ = s.Enqueue("song", "u", "v")

	waitFor(t, s, player.EventTrackFailed)
	waitFor(t, s, player.EventTooManyFailures)

	if got := s.Status(); got != player.StatusIdle {
		t.Errorf("status = %q, want Idle after repeated failures", got)
	}
}

func TestBadTrackAdvancesToNext(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a"), track("b"), track("c")},
	}}
	opener := &fakeOpener{failIDs: map[string]error{"a": errors.New("broken link")}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, opener, driver)

	_ = s.Enqueue("song", "u", "v")

	ev := waitFor(t, s, player.EventTrackFailed)
	if ev.Track == nil || ev.Track.ID != "a" {
		t.Fatalf("failed event names %+v, want track a", ev.Track)
	}

	ev = waitFor(t, s, player.EventTrackStarted)
	if ev.Track.ID != "b" {
		t.Fatalf("after failure got %q, want b", ev.Track.ID)
	}

	driver.finish <- nil
	ev = waitFor(t, s, player.EventTrackStarted)
	if ev.Track.ID != "c" {
		t.Fatalf("got %q, want c", ev.Track.ID)
	}
	snap := s.Snapshot()
	for _, tr := range snap.Queue {
		if tr.ID == "a" {
			t.Errorf("failed track re-queued: %+v", snap.Queue)
		}
	}
}

func TestResolveFailureEmitsEvent(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("not found")}
	s := newTestSession(t, resolver, &fakeOpener{}, newFakeDriver())

	_ = s.Enqueue("nope", "u", "v")

	ev := waitFor(t, s, player.EventResolveFailed)
	if ev.Input != "nope" {
		t.Errorf("event input = %q, want nope", ev.Input)
	}
}

func TestJumpToDropsEarlierTracks(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a"), track("b"), track("c"), track("d")},
	}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, &fakeOpener{}, driver)

	_ = s.Enqueue("song", "u", "v")
	waitFor(t, s, player.EventTrackStarted) // a playing, queue = b c d

	if err := s.JumpTo(5); !errors.Is(err, player.ErrIndexOutOfRange) {
		t.Fatalf("JumpTo(5) = %v, want ErrIndexOutOfRange", err)
	}

	if err := s.JumpTo(2); err != nil {
		t.Fatalf("JumpTo(2) returned error: %v", err)
	}
	ev := waitFor(t, s, player.EventTrackStarted)
	if ev.Track.ID != "d" {
		t.Errorf("after jump got %q, want d", ev.Track.ID)
	}
}

func TestShuffleKeepsAllTracks(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"song": {track("a"), track("b"), track("c"), track("d"), track("e")},
	}}
	driver := newFakeDriver()
	s := newTestSession(t, resolver, &fakeOpener{}, driver)

	_ = s.Enqueue("song", "u", "v")
	waitFor(t, s, player.EventTrackStarted) // a playing

	if err := s.Shuffle(); err != nil {
		t.Fatalf("Shuffle returned error: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Queue) != 4 {
		t.Fatalf("queue length after shuffle = %d, want 4", len(snap.Queue))
	}
	seen := make(map[string]bool)
	for _, tr := range snap.Queue {
		seen[tr.ID] = true
	}
	for _, id := range []string{"b", "c", "d", "e"} {
		if !seen[id] {
			t.Errorf("track %q lost in shuffle", id)
		}
	}
}

func TestClosedSessionRejectsOperations(t *testing.T) {
	s := player.NewSession("guild-x", &fakeResolver{}, &fakeOpener{}, newFakeDriver(), player.Config{})
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if err := s.Enqueue("x", "u", "v"); !errors.Is(err, player.ErrSessionClosed) {
		t.Errorf("Enqueue after close = %v, want ErrSessionClosed", err)
	}
	if err := s.Close(); !errors.Is(err, player.ErrSessionClosed) {
		t.Errorf("second Close = %v, want ErrSessionClosed", err)
	}
}
