package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit = 20

// DefaultBalance is the starting blackjack bankroll for a new player.
const DefaultBalance = 1_000_000.0

// Storage keeps the per-guild records that survive restarts: game balances,
// the muted-role binding, pending unmutes, and a short command history.
// Player/session state is deliberately not here; queues die with the process.
type Storage struct {
	ds *datastore.DataStore
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	Balances            map[string]float64     `json:"balances"`      // key = userID
	MutedRoleID         string                 `json:"muted_role_id"` // guild's muted role
	MuteExpiries        map[string]time.Time   `json:"mute_expiries"` // key = userID
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// getOrCreateGuildRecord returns the guild's record, creating it on first use.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		rec := &Record{
			CommandsHistoryList: []CommandHistoryRecord{},
			Balances:            map[string]float64{},
			MuteExpiries:        map[string]time.Time{},
		}
		s.ds.Add(guildID, rec)
		return rec, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(jsonData, &rec); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}
	if rec.Balances == nil {
		rec.Balances = map[string]float64{}
	}
	if rec.MuteExpiries == nil {
		rec.MuteExpiries = map[string]time.Time{}
	}
	return &rec, nil
}

func (s *Storage) saveGuildRecord(guildID string, rec *Record) {
	s.ds.Add(guildID, rec)
}

// Balance returns the user's bankroll, seeding the default for new players.
func (s *Storage) Balance(guildID, userID string) (float64, error) {
	rec, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return 0, err
	}
	bal, ok := rec.Balances[userID]
	if !ok {
		bal = DefaultBalance
		rec.Balances[userID] = bal
		s.saveGuildRecord(guildID, rec)
	}
	return bal, nil
}

func (s *Storage) SetBalance(guildID, userID string, balance float64) error {
	rec, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	rec.Balances[userID] = balance
	s.saveGuildRecord(guildID, rec)
	return nil
}

func (s *Storage) MutedRole(guildID string) (string, error) {
	rec, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return "", err
	}
	return rec.MutedRoleID, nil
}

func (s *Storage) SetMutedRole(guildID, roleID string) error {
	rec, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	rec.MutedRoleID = roleID
	s.saveGuildRecord(guildID, rec)
	return nil
}

// SetMuteExpiry records when a user's mute should lift. Zero time clears it.
func (s *Storage) SetMuteExpiry(guildID, userID string, until time.Time) error {
	rec, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if until.IsZero() {
		delete(rec.MuteExpiries, userID)
	} else {
		rec.MuteExpiries[userID] = until
	}
	s.saveGuildRecord(guildID, rec)
	return nil
}

// MuteExpiries returns pending unmutes for a guild.
func (s *Storage) MuteExpiries(guildID string) (map[string]time.Time, error) {
	rec, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(rec.MuteExpiries))
	for k, v := range rec.MuteExpiries {
		out[k] = v
	}
	return out, nil
}

// AddCommandHistory appends a command record, keeping the list bounded.
func (s *Storage) AddCommandHistory(guildID string, record CommandHistoryRecord) error {
	rec, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	rec.CommandsHistoryList = append(rec.CommandsHistoryList, record)
	if len(rec.CommandsHistoryList) > commandHistoryLimit {
		rec.CommandsHistoryList = rec.CommandsHistoryList[len(rec.CommandsHistoryList)-commandHistoryLimit:]
	}
	s.saveGuildRecord(guildID, rec)
	return nil
}

func (s *Storage) CommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	rec, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return rec.CommandsHistoryList, nil
}
