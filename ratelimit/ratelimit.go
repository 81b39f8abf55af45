package ratelimit

import (
	"fmt"
	"time"

	"go_resale_bot/database"
)

type Rule struct {
	Hours int
	Limit int
}

// Лимиты объявлений по подпискам
var rules = map[database.Subscription]Rule{
	database.SubBasic:     {Hours: 24, Limit: 1},
	database.SubBasicPlus: {Hours: 12, Limit: 3},
	database.SubShop:      {Hours: 12, Limit: 10},
}

// RuleFor возвращает лимит подписки, по умолчанию BASIC
func RuleFor(sub database.Subscription) Rule {
	if r, ok := rules[sub]; ok {
		return r
	}
	return rules[database.SubBasic]
}

func (r Rule) Window() time.Duration {
	return time.Duration(r.Hours) * time.Hour
}

// Exceeded — счётчик уже достиг лимита
func (r Rule) Exceeded(count int) bool {
	return count >= r.Limit
}

// Remaining — сколько ждать до выхода самого старого поста из окна
func Remaining(oldest time.Time, rule Rule, now time.Time) time.Duration {
	return oldest.Add(rule.Window()).Sub(now)
}

// FormatRemaining форматирует остаток, округляя вверх до минуты
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0 хв"
	}
	totalMinutes := int((d + time.Minute - 1) / time.Minute)
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d год %d хв", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d год", hours)
	default:
		return fmt.Sprintf("%d хв", minutes)
	}
}
