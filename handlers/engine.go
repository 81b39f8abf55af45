package handlers

import (
	"context"
	"strings"
	"time"

	"go_resale_bot/database"
	"go_resale_bot/messages"
	"go_resale_bot/moderation"
	"go_resale_bot/ratelimit"
)

// PostStore — часть хранилища, нужная движку модерации
type PostStore interface {
	CreatePost(ctx context.Context, userID int, telegramID, category, content string) (*database.Post, error)
	GetRecentPostsCount(ctx context.Context, telegramID, category string, hours int) (int, error)
	GetOldestRecentPost(ctx context.Context, telegramID, category string, hours int) (*time.Time, error)
}

// PostInput — один логический пост: одиночное сообщение или
// собранная медиагруппа
type PostInput struct {
	Text       string
	HasMedia   bool
	HasSticker bool
	HasVoice   bool
}

type Decision struct {
	Allowed  bool
	Warning  string
	Category moderation.Category
}

func reject(warning string) Decision {
	return Decision{Warning: warning}
}

// Engine применяет правила гилки к посту. Пост записывается в
// хранилище только после прохождения всех проверок.
type Engine struct {
	store           PostStore
	minPriceDefault int
	minPriceTshirt  int
	now             func() time.Time
}

func NewEngine(store PostStore, minPriceDefault, minPriceTshirt int) *Engine {
	return &Engine{
		store:           store,
		minPriceDefault: minPriceDefault,
		minPriceTshirt:  minPriceTshirt,
		now:             time.Now,
	}
}

func (e *Engine) Evaluate(ctx context.Context, user *database.User, in PostInput) (Decision, error) {
	text := strings.TrimSpace(in.Text)

	if moderation.IsAllowedCommand(text) {
		return Decision{Allowed: true}, nil
	}

	if in.HasSticker {
		return reject(messages.MsgWarnSticker), nil
	}
	if in.HasVoice {
		return reject(messages.MsgWarnVoice), nil
	}
	if text == "" {
		if in.HasMedia {
			return reject(messages.MsgWarnNoDescription), nil
		}
		// нечего модерировать
		return Decision{Allowed: true}, nil
	}
	// Неизвестная команда — не объявление
	if strings.HasPrefix(text, "/") {
		return reject(messages.MsgWarnNoHashtag), nil
	}

	if user.Subscription == database.SubShop {
		return e.evaluateShop(ctx, user, text)
	}

	category := moderation.Classify(text)
	if category == "" {
		return reject(messages.MsgWarnNoHashtag), nil
	}

	rule := ratelimit.RuleFor(user.Subscription)
	count, err := e.store.GetRecentPostsCount(ctx, user.TelegramID, string(category), rule.Hours)
	if err != nil {
		return Decision{}, err
	}
	if rule.Exceeded(count) {
		categoryName := "#продам"
		if category == moderation.CategoryBuy {
			categoryName = "#куплю"
		}
		return reject(messages.FormatLimitExceeded(
			count, rule.Limit, rule.Hours, categoryName, e.remaining(ctx, user.TelegramID, string(category), rule),
		)), nil
	}

	if category == moderation.CategorySell {
		minPrice := e.minPriceDefault
		if strings.Contains(strings.ToLower(text), "#футболка") {
			minPrice = e.minPriceTshirt
		}
		price, ok := moderation.ExtractPrice(text)
		if !ok {
			return reject(messages.FormatNoPrice(minPrice)), nil
		}
		if price < float64(minPrice) {
			return reject(messages.FormatPriceTooLow(price, minPrice)), nil
		}
	}

	if _, err := e.store.CreatePost(ctx, user.ID, user.TelegramID, string(category), truncate(text, 50)); err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true, Category: category}, nil
}

func (e *Engine) evaluateShop(ctx context.Context, user *database.User, text string) (Decision, error) {
	if !moderation.HasShopTrigger(text) {
		return reject(messages.MsgWarnShopNoPrice), nil
	}

	rule := ratelimit.RuleFor(database.SubShop)
	count, err := e.store.GetRecentPostsCount(ctx, user.TelegramID, string(moderation.CategoryShopAd), rule.Hours)
	if err != nil {
		return Decision{}, err
	}
	if rule.Exceeded(count) {
		return reject(messages.FormatShopLimitExceeded(
			count, rule.Limit, rule.Hours, e.remaining(ctx, user.TelegramID, string(moderation.CategoryShopAd), rule),
		)), nil
	}

	if _, err := e.store.CreatePost(ctx, user.ID, user.TelegramID, string(moderation.CategoryShopAd), truncate(text, 50)); err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true, Category: moderation.CategoryShopAd}, nil
}

// remaining — отформатированное время до освобождения окна, пустая
// строка если окно уже свободно или хранилище недоступно
func (e *Engine) remaining(ctx context.Context, telegramID, category string, rule ratelimit.Rule) string {
	oldest, err := e.store.GetOldestRecentPost(ctx, telegramID, category, rule.Hours)
	if err != nil || oldest == nil {
		return ""
	}
	d := ratelimit.Remaining(*oldest, rule, e.now())
	if d <= 0 {
		return ""
	}
	return ratelimit.FormatRemaining(d)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
