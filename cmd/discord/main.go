package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"woot/internal/command"
	"woot/internal/command/blackjack"
	"woot/internal/command/core"
	"woot/internal/command/moderation"
	"woot/internal/command/music"
	"woot/internal/config"
	"woot/internal/discord"
	"woot/internal/logging"
	"woot/internal/storage"
	"woot/internal/version"
)

func main() {
	cfg := config.New()
	logging.Setup(cfg.LogLevel, cfg.LogPath)
	log := logging.Component("main")

	log.Info().Str("app", version.AppName).Msg("starting bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	bot := discord.NewBot(cfg, store)

	command.Register(command.ApplyMiddlewares(
		music.New(bot),
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	))
	command.Register(command.ApplyMiddlewares(
		blackjack.New(),
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	))
	for _, cmd := range []command.Command{
		&moderation.KickCommand{},
		&moderation.BanCommand{},
		&moderation.MuteCommand{},
		&moderation.ClearCommand{},
		&moderation.UserInfoCommand{},
	} {
		command.Register(command.ApplyMiddlewares(
			cmd,
			command.WithGuildOnly(),
			command.WithAdminOnly(),
			command.WithCommandLogger(),
		))
	}
	for _, cmd := range []command.Command{
		&core.HelpCommand{},
		&core.AboutCommand{},
		&core.PingCommand{},
	} {
		command.Register(command.ApplyMiddlewares(
			cmd,
			command.WithCommandLogger(),
		))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("bot exited with error")
		}
		cancel()
	}

	log.Info().Msg("bot exited cleanly")
}
