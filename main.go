package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go_resale_bot/config"
	"go_resale_bot/database"
	"go_resale_bot/handlers"
	"go_resale_bot/tglog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN не установлен")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL не установлен")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	opts := []bot.Option{
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		log.Fatal(err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		log.Fatal(err)
	}

	tglog.Init(b, cfg.LogChannelID)

	h := handlers.New(b, cfg, db, me.Username)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, h.OnMessage)

	// Ежечасная проверка истёкших подписок
	c := cron.New()
	_, err = c.AddFunc("@every 1h", func() {
		h.CheckSubscriptions(ctx)
	})
	if err != nil {
		log.Fatal(err)
	}
	c.Start()
	defer c.Stop()

	log.Printf("Бот @%s запущен", me.Username)
	b.Start(ctx)
}
