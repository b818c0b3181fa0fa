package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config holds all startup knobs. Player settings are read once at startup;
// sessions are not reconfigured live.
type Config struct {
	DiscordToken      string `env:"DISCORD_TOKEN,required"`
	StoragePath       string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LogPath           string `env:"LOG_PATH"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	InitSlashCommands bool   `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	// Same variable names the Spotify client library ecosystem uses.
	SpotifyClientID     string `env:"SPOTIPY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIPY_CLIENT_SECRET"`

	PlayerIdleTimeout    time.Duration `env:"PLAYER_IDLE_TIMEOUT" envDefault:"5m"`
	PlayerMaxFailures    int           `env:"PLAYER_MAX_FAILURES" envDefault:"3"`
	PlayerVolumeMax      float64       `env:"PLAYER_VOLUME_MAX" envDefault:"2.0"`
	PlayerResolveTimeout time.Duration `env:"PLAYER_RESOLVE_TIMEOUT" envDefault:"20s"`
}

// New parses the environment into a Config. Missing required variables are
// fatal; a bot without a token has nothing to do.
func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}
