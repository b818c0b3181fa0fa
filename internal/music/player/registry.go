package player

import (
	"context"
	"sync"
	"time"

	"woot/internal/logging"
	"woot/pkg/jobmgr"
)

// DriverFactory builds a Driver bound to one guild.
type DriverFactory func(guildID string) Driver

// Registry owns the per-guild sessions and reaps the ones that sit idle past
// the timeout.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	resolver  Resolver
	opener    Opener
	newDriver DriverFactory
	cfg       Config

	idleTimeout time.Duration
	jobs        *jobmgr.Manager
}

func NewRegistry(resolver Resolver, opener Opener, newDriver DriverFactory, cfg Config, idleTimeout time.Duration) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		resolver:    resolver,
		opener:      opener,
		newDriver:   newDriver,
		cfg:         cfg,
		idleTimeout: idleTimeout,
		jobs:        jobmgr.NewManager(nil),
	}
}

// GetOrCreate returns the guild's session, creating one on first use.
// The second return is true when the session was just created.
func (r *Registry) GetOrCreate(guildID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s, false
	}
	s := NewSession(guildID, r.resolver, r.opener, r.newDriver(guildID), r.cfg)
	r.sessions[guildID] = s
	return s, true
}

// Get returns the guild's session or nil.
func (r *Registry) Get(guildID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[guildID]
}

// Remove closes and forgets a session.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	delete(r.sessions, guildID)
	r.mu.Unlock()

	if ok {
		_ = s.Close()
	}
}

// StartSweeper launches the idle sweep job. No-op when the timeout is zero.
func (r *Registry) StartSweeper() {
	if r.idleTimeout <= 0 {
		return
	}
	_ = r.jobs.StartAsync("session-sweep", func(ctx context.Context) error {
		log := logging.Component("player")
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				for _, guildID := range r.idleGuilds() {
					log.Info().Str("guild_id", guildID).Msg("sweeping idle session")
					r.Remove(guildID)
				}
			}
		}
	})
}

func (r *Registry) idleGuilds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for guildID, s := range r.sessions {
		if s.IdleSince() >= r.idleTimeout {
			out = append(out, guildID)
		}
	}
	return out
}

// Shutdown stops the sweeper and closes every session.
func (r *Registry) Shutdown() {
	r.jobs.StopAll()

	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for guildID, s := range r.sessions {
		sessions = append(sessions, s)
		delete(r.sessions, guildID)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		_ = s.Close()
	}
}
