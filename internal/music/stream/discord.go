package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"

	"woot/internal/music/parsers"
	"woot/internal/music/player"
)

const pausePollInterval = 100 * time.Millisecond

// DiscordDriver sends PCM to a guild's voice connection as Opus frames. One
// driver per guild; the connection is reused across tracks.
type DiscordDriver struct {
	dg      *discordgo.Session
	guildID string

	mu sync.Mutex
	vc *discordgo.VoiceConnection
}

func NewDiscordDriver(dg *discordgo.Session, guildID string) *DiscordDriver {
	return &DiscordDriver{dg: dg, guildID: guildID}
}

// Connect joins the voice channel, moving the existing connection when the
// target differs.
func (d *DiscordDriver) Connect(channelID string) error {
	if channelID == "" {
		return errors.New("voice channel ID is not set")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc != nil {
		if d.vc.ChannelID == channelID {
			return nil
		}
		if err := d.vc.ChangeChannel(channelID, false, true); err != nil {
			return fmt.Errorf("failed to move voice channel: %w", err)
		}
		return nil
	}

	vc, err := d.dg.ChannelVoiceJoin(d.guildID, channelID, false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}
	d.vc = vc
	return nil
}

// Send encodes the PCM stream to Opus frame by frame. It returns nil on
// natural end of stream or when ctl is stopped.
func (d *DiscordDriver) Send(pcm io.Reader, ctl *player.Controls) error {
	d.mu.Lock()
	vc := d.vc
	d.mu.Unlock()
	if vc == nil {
		return errors.New("no voice connection")
	}

	encoder, err := gopus.NewEncoder(parsers.SampleRate, parsers.Channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	_ = vc.Speaking(true)
	defer vc.Speaking(false)

	pcmBuf := make([]byte, parsers.FrameSize*parsers.Channels*2)
	intBuf := make([]int16, parsers.FrameSize*parsers.Channels)

	for {
		select {
		case <-ctl.Done():
			return nil
		default:
		}

		if ctl.Paused() {
			time.Sleep(pausePollInterval)
			continue
		}

		if _, err := io.ReadFull(pcm, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}
		applyGain(intBuf, ctl.Gain())

		opus, err := encoder.Encode(intBuf, parsers.FrameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case vc.OpusSend <- opus:
		case <-ctl.Done():
			return nil
		}
	}
}

// Disconnect leaves the voice channel if connected.
func (d *DiscordDriver) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil
	}
	err := d.vc.Disconnect()
	d.vc = nil
	return err
}

// applyGain scales samples by a linear gain, clipping at int16 bounds.
func applyGain(samples []int16, gain float64) {
	if gain == 1.0 {
		return
	}
	for i, s := range samples {
		v := float64(s) * gain
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		samples[i] = int16(v)
	}
}
