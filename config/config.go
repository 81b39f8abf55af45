package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	BotToken     string
	DatabaseURL  string
	LogChannelID int64

	// Мінімальні ціни для #продам
	MinPriceDefault int
	MinPriceTshirt  int

	MediaGroupWait  time.Duration
	WarningCooldown time.Duration
	WarningLifetime time.Duration

	ReportChatID int64

	// TestMode включает служебные команды вроде /testsub
	TestMode bool
}

func Load() *Config {
	minDefault, _ := strconv.Atoi(getEnv("MIN_PRICE_DEFAULT", "3000"))
	minTshirt, _ := strconv.Atoi(getEnv("MIN_PRICE_TSHIRT", "1500"))
	logChannel, _ := strconv.ParseInt(getEnv("LOG_CHANNEL_ID", "0"), 10, 64)
	reportChat, _ := strconv.ParseInt(getEnv("REPORT_CHAT_ID", "0"), 10, 64)
	groupWaitMs, _ := strconv.Atoi(getEnv("MEDIA_GROUP_WAIT_MS", "2000"))

	return &Config{
		BotToken:        getEnv("BOT_TOKEN", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LogChannelID:    logChannel,
		MinPriceDefault: minDefault,
		MinPriceTshirt:  minTshirt,
		MediaGroupWait:  time.Duration(groupWaitMs) * time.Millisecond,
		WarningCooldown: 30 * time.Second,
		WarningLifetime: 3 * time.Second,
		ReportChatID:    reportChat,
		TestMode:        getEnv("TEST_MODE", "false") == "true",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
