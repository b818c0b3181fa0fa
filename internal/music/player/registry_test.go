package player_test

import (
	"sync"
	"testing"
	"time"

	"woot/internal/music/player"
)

func newTestRegistry() *player.Registry {
	return player.NewRegistry(
		&fakeResolver{},
		&fakeOpener{},
		func(guildID string) player.Driver { return newFakeDriver() },
		player.Config{ResolveTimeout: time.Second},
		time.Minute,
	)
}

func TestRegistryGetOrCreate(t *testing.T) {
	r := newTestRegistry()
	defer r.Shutdown()

	s1, created := r.GetOrCreate("g1")
	if !created {
		t.Error("first GetOrCreate should report created")
	}
	s2, created := r.GetOrCreate("g1")
	if created {
		t.Error("second GetOrCreate should not report created")
	}
	if s1 != s2 {
		t.Error("GetOrCreate returned different sessions for the same guild")
	}

	if r.Get("g2") != nil {
		t.Error("Get for unknown guild should return nil")
	}
}

func TestRegistryRemoveClosesSession(t *testing.T) {
	r := newTestRegistry()
	defer r.Shutdown()

	s, _ := r.GetOrCreate("g1")
	r.Remove("g1")

	if !s.Closed() {
		t.Error("Remove should close the session")
	}
	if r.Get("g1") != nil {
		t.Error("removed session still retrievable")
	}
}

func TestGuildSessionsDoNotCrossContaminate(t *testing.T) {
	resolver := &fakeResolver{tracks: map[string][]player.Track{
		"alpha": {track("a1"), track("a2")},
		"beta":  {track("b1")},
	}}

	var mu sync.Mutex
	drivers := make(map[string]*fakeDriver)
	factory := func(guildID string) player.Driver {
		mu.Lock()
		defer mu.Unlock()
		d := newFakeDriver()
		drivers[guildID] = d
		return d
	}

	r := player.NewRegistry(resolver, &fakeOpener{}, factory, player.Config{ResolveTimeout: time.Second}, time.Minute)
	defer r.Shutdown()

	s1, _ := r.GetOrCreate("g1")
	s2, _ := r.GetOrCreate("g2")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := s1.Enqueue("alpha", "user-1", "voice-1"); err != nil {
			t.Errorf("g1 Enqueue: %v", err)
			return
		}
		waitFor(t, s1, player.EventTrackStarted)
		if err := s1.Pause(); err != nil {
			t.Errorf("g1 Pause: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := s2.Enqueue("beta", "user-2", "voice-2"); err != nil {
			t.Errorf("g2 Enqueue: %v", err)
			return
		}
		waitFor(t, s2, player.EventTrackStarted)
		mu.Lock()
		d := drivers["g2"]
		mu.Unlock()
		d.finish <- nil
		waitFor(t, s2, player.EventQueueEnded)
	}()
	wg.Wait()

	snap1 := s1.Snapshot()
	if snap1.Status != player.StatusPaused {
		t.Errorf("g1 status = %q, want Paused", snap1.Status)
	}
	if snap1.Current == nil || snap1.Current.ID != "a1" {
		t.Errorf("g1 current = %+v, want a1", snap1.Current)
	}
	if len(snap1.Queue) != 1 || snap1.Queue[0].ID != "a2" {
		t.Errorf("g1 queue = %+v, want [a2]", snap1.Queue)
	}

	snap2 := s2.Snapshot()
	if snap2.Status != player.StatusIdle {
		t.Errorf("g2 status = %q, want Idle after its queue drained", snap2.Status)
	}
	if len(snap2.Queue) != 0 || snap2.Current != nil {
		t.Errorf("g2 picked up foreign tracks: queue=%+v current=%v", snap2.Queue, snap2.Current)
	}

	mu.Lock()
	defer mu.Unlock()
	if drivers["g1"].connected != "voice-1" || drivers["g2"].connected != "voice-2" {
		t.Errorf("driver channels = %q/%q, want voice-1/voice-2",
			drivers["g1"].connected, drivers["g2"].connected)
	}
}

func TestRegistryShutdownClosesAll(t *testing.T) {
	r := newTestRegistry()

	s1, _ := r.GetOrCreate("g1")
	s2, _ := r.GetOrCreate("g2")

	r.Shutdown()

	if !s1.Closed() || !s2.Closed() {
		t.Error("Shutdown should close every session")
	}
}
