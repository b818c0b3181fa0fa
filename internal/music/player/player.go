// Package player implements per-guild playback sessions: a queue, loop modes,
// per-user volume and an event stream, on top of pluggable resolve/open/send
// stages.
package player

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"woot/internal/logging"
)

type Status string

const (
	StatusIdle      Status = "Idle"
	StatusBuffering Status = "Buffering"
	StatusPlaying   Status = "Playing"
	StatusPaused    Status = "Paused"
	StatusStopped   Status = "Stopped"
)

type LoopMode string

const (
	LoopOff   LoopMode = "off"
	LoopTrack LoopMode = "track"
	LoopQueue LoopMode = "queue"
)

// ParseLoopMode maps user input to a LoopMode.
func ParseLoopMode(s string) (LoopMode, error) {
	switch LoopMode(s) {
	case LoopOff, LoopTrack, LoopQueue:
		return LoopMode(s), nil
	}
	return LoopOff, errors.New("unknown loop mode: " + s)
}

var (
	ErrNoTrackPlaying   = errors.New("no track is currently playing")
	ErrNoTracksInQueue  = errors.New("no tracks in queue")
	ErrSessionClosed    = errors.New("player session is closed")
	ErrIndexOutOfRange  = errors.New("queue index out of range")
	ErrResolveQueueFull = errors.New("too many pending requests, try again shortly")
)

// Resolver turns raw user input into playable tracks.
type Resolver interface {
	Resolve(ctx context.Context, input string) ([]Track, error)
}

// Opener produces a 48kHz stereo s16le PCM stream for a track. It returns the
// stream, a cleanup func, and the parser it ended up using.
type Opener interface {
	Open(track Track) (io.ReadCloser, func(), string, error)
}

// Driver moves PCM into a voice channel. Send blocks until the stream ends,
// the controls are stopped, or an unrecoverable transport error occurs.
type Driver interface {
	Connect(channelID string) error
	Send(pcm io.Reader, ctl *Controls) error
	Disconnect() error
}

// Config holds session tunables, normally sourced from the app config.
type Config struct {
	MaxFailures    int
	VolumeMax      float64
	ResolveTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxFailures <= 0 {
		c.MaxFailures = 3
	}
	if c.VolumeMax <= 0 {
		c.VolumeMax = 2.0
	}
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = 20 * time.Second
	}
	return c
}

type resolveRequest struct {
	input       string
	requestedBy string
	channelID   string
}

// Session is the playback state machine for one guild. All public methods are
// safe for concurrent use.
type Session struct {
	GuildID string

	// Events carries session notifications; sends never block, a full
	// buffer drops the event.
	Events chan Event

	mu         sync.Mutex
	status     Status
	loopMode   LoopMode
	queue      []Track
	current    *Track
	history    []Track
	gen        uint64
	skipped    bool
	failures   int
	channelID  string
	lastActive time.Time
	closed     bool
	gains      map[string]float64
	ctl        *Controls

	resolver Resolver
	opener   Opener
	driver   Driver
	cfg      Config
	log      zerolog.Logger

	resolveCh chan resolveRequest
	done      chan struct{}
}

// NewSession creates a session and starts its resolve worker.
func NewSession(guildID string, resolver Resolver, opener Opener, driver Driver, cfg Config) *Session {
	s := &Session{
		GuildID:    guildID,
		Events:     make(chan Event, 32),
		status:     StatusIdle,
		loopMode:   LoopOff,
		gains:      make(map[string]float64),
		resolver:   resolver,
		opener:     opener,
		driver:     driver,
		cfg:        cfg.withDefaults(),
		log:        logging.Component("player").With().Str("guild_id", guildID).Logger(),
		resolveCh:  make(chan resolveRequest, 64),
		done:       make(chan struct{}),
		lastActive: time.Now(),
	}
	go s.resolveLoop()
	return s
}

// Enqueue resolves input asynchronously and appends the results to the queue.
// Requests resolve one at a time so queue order follows request order even
// when a playlist expansion is slow.
func (s *Session) Enqueue(input, requestedBy, channelID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.channelID = channelID
	s.lastActive = time.Now()
	s.mu.Unlock()

	select {
	case s.resolveCh <- resolveRequest{input: input, requestedBy: requestedBy, channelID: channelID}:
		return nil
	default:
		return ErrResolveQueueFull
	}
}

func (s *Session) resolveLoop() {
	for {
		select {
		case <-s.done:
			return
		case req := <-s.resolveCh:
			s.handleResolve(req)
		}
	}
}

func (s *Session) handleResolve(req resolveRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ResolveTimeout)
	tracks, err := s.resolver.Resolve(ctx, req.input)
	cancel()

	if err != nil {
		s.log.Warn().Err(err).Str("input", req.input).Msg("resolve failed")
		s.emit(Event{Type: EventResolveFailed, GuildID: s.GuildID, Input: req.input, Err: err})
		return
	}
	if len(tracks) == 0 {
		s.emit(Event{Type: EventResolveFailed, GuildID: s.GuildID, Input: req.input, Err: errors.New("no playable tracks found")})
		return
	}

	for i := range tracks {
		tracks[i].RequestedBy = req.requestedBy
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, tracks...)
	s.lastActive = time.Now()
	s.log.Info().Int("added", len(tracks)).Int("queue_len", len(s.queue)).Msg("tracks enqueued")

	added := slices.Clone(tracks)
	shouldStart := s.current == nil && (s.status == StatusIdle || s.status == StatusStopped)
	if shouldStart {
		s.startNextLocked()
	}
	s.mu.Unlock()

	s.emit(Event{Type: EventTracksAdded, GuildID: s.GuildID, Added: added, Input: req.input})
}

// startNextLocked pops the queue head and launches playback. Caller holds mu.
func (s *Session) startNextLocked() {
	if len(s.queue) == 0 {
		s.status = StatusIdle
		s.current = nil
		s.emit(Event{Type: EventQueueEnded, GuildID: s.GuildID})
		return
	}

	track := s.queue[0]
	s.queue = s.queue[1:]
	s.current = &track
	s.skipped = false
	s.status = StatusBuffering
	s.gen++
	s.ctl = NewControls(s.gainForLocked(track.RequestedBy))

	go s.playTrack(track, s.gen, s.ctl)
}

// playTrack runs one track end to end and then advances the session exactly
// once, guarded by the generation counter.
func (s *Session) playTrack(track Track, gen uint64, ctl *Controls) {
	s.log.Info().Str("title", track.DisplayTitle()).Str("url", track.URL).Msg("opening track")

	pcm, cleanup, parser, err := s.opener.Open(track)
	if err != nil {
		s.log.Warn().Err(err).Str("title", track.DisplayTitle()).Msg("failed to open stream")
		s.finishTrack(gen, &track, err)
		return
	}
	defer cleanup()

	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	channelID := s.channelID
	s.mu.Unlock()

	if err := s.driver.Connect(channelID); err != nil {
		s.log.Warn().Err(err).Str("channel_id", channelID).Msg("voice connect failed")
		s.finishTrack(gen, &track, err)
		return
	}

	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	s.status = StatusPlaying
	s.mu.Unlock()

	s.log.Info().Str("title", track.DisplayTitle()).Str("parser", parser).Msg("now playing")
	s.emit(Event{Type: EventTrackStarted, GuildID: s.GuildID, Track: &track})

	sendErr := s.driver.Send(pcm, ctl)
	s.finishTrack(gen, &track, sendErr)
}

// finishTrack records the outcome of a finished track and advances the queue.
// Stale generations (a Stop or Close raced the natural end) are ignored.
func (s *Session) finishTrack(gen uint64, track *Track, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.closed {
		return
	}

	s.lastActive = time.Now()

	if err != nil {
		s.failures++
		s.log.Warn().Err(err).Int("failures", s.failures).Str("title", track.DisplayTitle()).Msg("track failed")
		s.emit(Event{Type: EventTrackFailed, GuildID: s.GuildID, Track: track, Err: err})

		if s.failures >= s.cfg.MaxFailures {
			s.log.Error().Int("failures", s.failures).Msg("too many consecutive failures, going idle")
			s.current = nil
			s.status = StatusIdle
			s.emit(Event{Type: EventTooManyFailures, GuildID: s.GuildID})
			return
		}
		// failed tracks are never re-queued by loop modes
		s.current = nil
		s.startNextLocked()
		return
	}

	s.failures = 0
	s.history = append(s.history, *track)

	switch {
	case s.skipped:
		// a skipped track goes to the back under either loop mode, but never
		// straight back to the front: skip always advances
		if s.loopMode != LoopOff && len(s.queue) > 0 {
			s.queue = append(s.queue, *track)
		}
	case s.loopMode == LoopTrack:
		s.queue = append([]Track{*track}, s.queue...)
	case s.loopMode == LoopQueue:
		s.queue = append(s.queue, *track)
	}

	s.current = nil
	s.startNextLocked()
}

// Skip ends the current track and moves on. Under an active loop mode the
// skipped track is re-queued at the back rather than replayed.
func (s *Session) Skip() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoTrackPlaying
	}
	s.skipped = true
	s.lastActive = time.Now()
	ctl := s.ctl
	s.mu.Unlock()

	ctl.Stop()
	return nil
}

// Pause suspends transmission without losing position. Pausing an already
// paused session is a no-op.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.status == StatusPaused {
		return nil
	}
	if s.status != StatusPlaying {
		return ErrNoTrackPlaying
	}
	s.status = StatusPaused
	s.ctl.SetPaused(true)
	s.lastActive = time.Now()
	return nil
}

// Resume continues a paused track. Resuming while already playing is a no-op.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.status == StatusPlaying {
		return nil
	}
	if s.status != StatusPaused {
		return ErrNoTrackPlaying
	}
	s.status = StatusPlaying
	s.ctl.SetPaused(false)
	s.lastActive = time.Now()
	return nil
}

// Stop ends playback, clears the queue and leaves the voice channel. The
// session itself stays usable; a later Enqueue starts fresh.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	wasActive := s.current != nil
	s.queue = nil
	s.current = nil
	s.skipped = false
	s.failures = 0
	s.status = StatusStopped
	s.gen++ // in-flight finishTrack becomes stale
	ctl := s.ctl
	s.lastActive = time.Now()
	s.mu.Unlock()

	if ctl != nil {
		ctl.Stop()
	}
	if err := s.driver.Disconnect(); err != nil {
		s.log.Warn().Err(err).Msg("voice disconnect failed")
	}

	if wasActive {
		s.log.Info().Msg("playback stopped")
	}
	s.emit(Event{Type: EventSessionStopped, GuildID: s.GuildID})
	return nil
}

// SetLoopMode changes how finished tracks are re-queued.
func (s *Session) SetLoopMode(mode LoopMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loopMode = mode
	s.lastActive = time.Now()
}

func (s *Session) LoopMode() LoopMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loopMode
}

// SetVolume stores a user's gain. The gain applies to tracks that user
// requested; if their track is playing right now it takes effect immediately.
func (s *Session) SetVolume(userID string, gain float64) float64 {
	if gain < 0 {
		gain = 0
	}
	if gain > s.cfg.VolumeMax {
		gain = s.cfg.VolumeMax
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gains[userID] = gain
	s.lastActive = time.Now()
	if s.current != nil && s.current.RequestedBy == userID && s.ctl != nil {
		s.ctl.SetGain(gain)
	}
	return gain
}

// Volume returns a user's stored gain, defaulting to 1.0.
func (s *Session) Volume(userID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gainForLocked(userID)
}

func (s *Session) gainForLocked(userID string) float64 {
	if g, ok := s.gains[userID]; ok {
		return g
	}
	return 1.0
}

// JumpTo drops queued tracks before index (zero-based) and skips the current
// track so the target plays next.
func (s *Session) JumpTo(index int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if index < 0 || index >= len(s.queue) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	s.queue = s.queue[index:]
	s.lastActive = time.Now()

	if s.current == nil {
		s.startNextLocked()
		s.mu.Unlock()
		return nil
	}

	s.skipped = true
	ctl := s.ctl
	s.mu.Unlock()

	ctl.Stop()
	return nil
}

// Shuffle randomizes the pending queue. The current track is unaffected.
func (s *Session) Shuffle() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if len(s.queue) == 0 {
		return ErrNoTracksInQueue
	}
	rand.Shuffle(len(s.queue), func(i, j int) {
		s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
	})
	s.lastActive = time.Now()
	return nil
}

// Snapshot is a consistent read of the session for display purposes.
type Snapshot struct {
	Status   Status
	LoopMode LoopMode
	Current  *Track
	Queue    []Track
	History  []Track
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Status:   s.status,
		LoopMode: s.loopMode,
		Queue:    slices.Clone(s.queue),
		History:  slices.Clone(s.history),
	}
	if s.current != nil {
		cur := *s.current
		snap.Current = &cur
	}
	return snap
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// IdleSince reports how long the session has been without activity while not
// playing. Returns zero while a track is active.
func (s *Session) IdleSince() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return 0
	}
	return time.Since(s.lastActive)
}

// Close permanently shuts the session down. Further calls return
// ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.closed = true
	s.gen++
	ctl := s.ctl
	s.queue = nil
	s.current = nil
	s.status = StatusStopped
	s.mu.Unlock()

	close(s.done)
	if ctl != nil {
		ctl.Stop()
	}
	if err := s.driver.Disconnect(); err != nil {
		s.log.Warn().Err(err).Msg("voice disconnect failed")
	}
	s.emit(Event{Type: EventSessionStopped, GuildID: s.GuildID})
	return nil
}

// emit sends without blocking; a slow consumer loses events instead of
// wedging playback.
func (s *Session) emit(ev Event) {
	select {
	case s.Events <- ev:
	default:
		s.log.Debug().Str("event", string(ev.Type)).Msg("event dropped, channel full")
	}
}
