package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhotheone/discordmusicbot/internal/bot"
	"github.com/zhotheone/discordmusicbot/internal/config"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

func main() {
	// Load configuration first so the logger honors LOG_LEVEL/LOG_FORMAT
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Format: "text"})
		fallback.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	log.Infof("Starting %s v%s", cfg.BotName, cfg.Version)
	log.Infof("Token: %s", cfg.GetSafeToken())
	log.Infof("Database: %v, Telegram bridge: %v", cfg.UseDatabase, cfg.EnableTelegram)

	// Initialize bot
	musicBot, err := bot.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Start bot
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := musicBot.Start(ctx); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	log.Info("✅ Bot is now running. Press CTRL-C to exit.")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	// Cleanup
	log.Info("Shutting down gracefully...")
	cancel()
	musicBot.Stop()
	log.Info("Bot stopped successfully")
}
