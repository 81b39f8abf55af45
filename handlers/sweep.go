package handlers

import (
	"context"
	"log"
	"time"

	"go_resale_bot/database"
	"go_resale_bot/tglog"
)

const expiryWarningWindow = 3 * 24 * time.Hour

// SubscriptionStore — часть хранилища, нужная проверке подписок
type SubscriptionStore interface {
	GetExpiredSubscriptions(ctx context.Context) ([]database.User, error)
	GetActiveSubscriptions(ctx context.Context) ([]database.User, error)
	UpdateUserSubscription(ctx context.Context, telegramID string, sub database.Subscription, expiresAt *time.Time) error
}

// CheckSubscriptions — ежечасная проверка подписок: просроченные
// откатываются на BASIC, о скором истечении пишется один раз.
// Повторный прогон по уже откаченному пользователю — no-op.
func (h *Handler) CheckSubscriptions(ctx context.Context) {
	expired, err := h.subs.GetExpiredSubscriptions(ctx)
	if err != nil {
		log.Printf("Помилка перевірки підписок: %v", err)
	} else {
		for _, u := range expired {
			if err := h.subs.UpdateUserSubscription(ctx, u.TelegramID, database.SubBasic, nil); err != nil {
				log.Printf("Помилка скидання підписки %s: %v", u.TelegramID, err)
				continue
			}
			tglog.Printf("Підписка %s автоматично прострочена, повернуто BASIC", displayOf(&u))
			h.clearNotified(u.TelegramID)
		}
	}

	active, err := h.subs.GetActiveSubscriptions(ctx)
	if err != nil {
		log.Printf("Помилка отримання активних підписок: %v", err)
		return
	}

	now := time.Now()
	for _, u := range active {
		if u.SubscriptionExpiresAt == nil {
			continue
		}
		diff := u.SubscriptionExpiresAt.Sub(now)
		if diff <= 0 || diff > expiryWarningWindow {
			continue
		}
		if h.markNotified(u.TelegramID) {
			days := int((diff + 24*time.Hour - 1) / (24 * time.Hour))
			tglog.Printf("Підписка %s (%s) закінчується через %d дн.", displayOf(&u), u.Subscription, days)
		}
	}
}

// markNotified — true, если уведомление ещё не отправлялось
func (h *Handler) markNotified(telegramID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.notifiedExpiring[telegramID] {
		return false
	}
	h.notifiedExpiring[telegramID] = true
	return true
}

func (h *Handler) clearNotified(telegramID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.notifiedExpiring, telegramID)
}
