package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go_resale_bot/antiflood"
	"go_resale_bot/config"
	"go_resale_bot/database"
	"go_resale_bot/mediagroup"
	"go_resale_bot/messages"
	"go_resale_bot/moderation"
	"go_resale_bot/tglog"
	"go_resale_bot/xp"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
)

type Handler struct {
	bot         *bot.Bot
	cfg         *config.Config
	db          *database.DB
	subs        SubscriptionStore
	engine      *Engine
	groups      *mediagroup.Aggregator
	warnings    *antiflood.Suppressor
	reported    *lru.Cache[string, struct{}]
	botUsername string

	mu               sync.Mutex
	resaleTopicID    int
	reportChatID     int64
	notifiedExpiring map[string]bool
}

func New(b *bot.Bot, cfg *config.Config, db *database.DB, username string) *Handler {
	reported, _ := lru.New[string, struct{}](8192)

	h := &Handler{
		bot:              b,
		cfg:              cfg,
		db:               db,
		subs:             db,
		engine:           NewEngine(db, cfg.MinPriceDefault, cfg.MinPriceTshirt),
		warnings:         antiflood.NewSuppressor(cfg.WarningCooldown),
		reported:         reported,
		botUsername:      username,
		reportChatID:     cfg.ReportChatID,
		notifiedExpiring: make(map[string]bool),
	}
	h.groups = mediagroup.New(cfg.MediaGroupWait, h.onMediaGroup)
	return h
}

func (h *Handler) OnMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	user, err := h.resolveUser(ctx, msg)
	if err != nil {
		log.Printf("Помилка завантаження користувача %d: %v", msg.From.ID, err)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		text = strings.TrimSpace(msg.Caption)
	}

	if strings.HasPrefix(text, "/") && h.dispatchCommand(ctx, msg, user, text) {
		return
	}

	if msg.Chat.Type != "group" && msg.Chat.Type != "supergroup" {
		return
	}

	// XP начисляется за любые живые сообщения в группе, не только в гилке
	if text != "" && !strings.HasPrefix(text, "/") && !moderation.IsSpam(text) && !user.IsAdmin {
		h.accrueXP(ctx, user)
	}

	topicID := h.topicID()
	if topicID == 0 || msg.MessageThreadID != topicID {
		return
	}
	if msg.From.IsBot {
		return
	}
	if user.IsAdmin {
		log.Printf("Пропускаємо повідомлення адміністратора @%s", deref(user.Username))
		return
	}

	// Голосовые не бывают частью медиагруппы — отклоняем сразу
	if msg.Voice != nil || msg.VideoNote != nil {
		h.deleteAndWarn(ctx, msg.Chat.ID, topicID, []int{msg.ID}, msg.From.ID, user, messages.MsgWarnVoice)
		return
	}

	if msg.MediaGroupID != "" {
		h.groups.Add(msg.MediaGroupID, msg.Chat.ID, msg.MessageThreadID, msg.From.ID, mediagroup.Message{
			ID:         msg.ID,
			Text:       text,
			HasMedia:   len(msg.Photo) > 0 || msg.Video != nil || msg.Document != nil || msg.Animation != nil,
			HasSticker: msg.Sticker != nil,
		})
		return
	}

	h.moderate(ctx, user, msg.Chat.ID, msg.MessageThreadID, []int{msg.ID}, msg.From.ID, PostInput{
		Text:       text,
		HasMedia:   len(msg.Photo) > 0 || msg.Video != nil || msg.Document != nil || msg.Animation != nil,
		HasSticker: msg.Sticker != nil,
	})
}

// onMediaGroup — отложенная модерация собранной медиагруппы
func (h *Handler) onMediaGroup(g *mediagroup.Group) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := h.db.GetUser(ctx, strconv.FormatInt(g.FromID, 10))
	if err != nil {
		log.Printf("Помилка завантаження користувача %d для медіагрупи: %v", g.FromID, err)
		return
	}

	h.moderate(ctx, user, g.ChatID, g.ThreadID, g.MessageIDs(), g.FromID, PostInput{
		Text:       g.Caption(),
		HasMedia:   g.HasMedia(),
		HasSticker: g.HasSticker(),
	})
}

func (h *Handler) moderate(ctx context.Context, user *database.User, chatID int64, threadID int, messageIDs []int, fromID int64, in PostInput) {
	dec, err := h.engine.Evaluate(ctx, user, in)
	if err != nil {
		log.Printf("Помилка модерації повідомлення від %s: %v", user.TelegramID, err)
		return
	}
	if dec.Allowed {
		if dec.Category != "" {
			log.Printf("Оголошення %s від %s прийнято", dec.Category, user.TelegramID)
		}
		return
	}
	h.deleteAndWarn(ctx, chatID, threadID, messageIDs, fromID, user, dec.Warning)
}

// deleteAndWarn удаляет сообщения нарушителя и шлёт самоудаляющееся
// предупреждение. Анти-флуд гасит только текст, удаление — всегда.
func (h *Handler) deleteAndWarn(ctx context.Context, chatID int64, threadID int, messageIDs []int, fromID int64, user *database.User, text string) {
	warn := h.warnings.ShouldWarn(fromID)
	if !warn {
		log.Printf("Попередження для %d придушено (анти-флуд)", fromID)
	}

	for _, id := range messageIDs {
		_, err := h.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    chatID,
			MessageID: id,
		})
		if err != nil {
			log.Printf("Помилка видалення повідомлення %d: %v", id, err)
		}
	}

	if !warn {
		return
	}

	warning, err := h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Text:            messages.FormatWarning(deref(user.Username), text),
		ParseMode:       models.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Помилка відправки попередження: %v", err)
		return
	}

	time.AfterFunc(h.cfg.WarningLifetime, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = h.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    chatID,
			MessageID: warning.ID,
		})
	})
}

// resolveUser создаёт/обновляет пользователя по апдейту: статус
// админа, актуальные имена, ленивое снятие просроченной подписки
func (h *Handler) resolveUser(ctx context.Context, msg *models.Message) (*database.User, error) {
	from := msg.From
	telegramID := strconv.FormatInt(from.ID, 10)

	isAdmin := false
	if msg.Chat.Type == "group" || msg.Chat.Type == "supergroup" {
		member, err := h.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
			ChatID: msg.Chat.ID,
			UserID: from.ID,
		})
		if err == nil && member != nil {
			isAdmin = member.Type == models.ChatMemberTypeOwner || member.Type == models.ChatMemberTypeAdministrator
		}
	}

	user, err := h.db.GetUser(ctx, telegramID)
	if errors.Is(err, pgx.ErrNoRows) {
		rank := xp.RankDefault
		if isAdmin {
			rank = xp.RankAdmin
		}
		return h.db.GetOrCreateUser(ctx, telegramID, ptr(from.Username), ptr(from.FirstName), rank, isAdmin)
	}
	if err != nil {
		return nil, err
	}

	if user.Subscription != database.SubBasic && user.SubscriptionExpiresAt != nil && !user.SubscriptionExpiresAt.After(time.Now()) {
		if err := h.db.UpdateUserSubscription(ctx, telegramID, database.SubBasic, nil); err != nil {
			log.Printf("Помилка скидання підписки %s: %v", telegramID, err)
		} else {
			user.Subscription = database.SubBasic
			user.SubscriptionExpiresAt = nil
			tglog.Printf("Підписка %s прострочена, повернуто BASIC", displayOf(user))
		}
	}

	if deref(user.Username) != from.Username || deref(user.FirstName) != from.FirstName || user.IsAdmin != isAdmin {
		if isAdmin && !user.IsAdmin {
			if err := h.db.SetUserRank(ctx, telegramID, xp.RankAdmin); err == nil {
				user.Rank = xp.RankAdmin
			}
		}
		if err := h.db.UpdateUserIdentity(ctx, telegramID, ptr(from.Username), ptr(from.FirstName), isAdmin); err != nil {
			return nil, err
		}
		user.Username = ptr(from.Username)
		user.FirstName = ptr(from.FirstName)
		user.IsAdmin = isAdmin
	}
	return user, nil
}

func (h *Handler) accrueXP(ctx context.Context, user *database.User) {
	award := xp.Accrue(user.XP, user.DailyXP, user.DailyXPDate, time.Now())
	if !award.Changed {
		return
	}
	rank := xp.RecalcRank(user.Rank, award.XP)
	if err := h.db.UpdateUserXP(ctx, user.TelegramID, award.XP, award.DailyXP, award.Date, rank); err != nil {
		log.Printf("Помилка нарахування XP для %s: %v", user.TelegramID, err)
	}
}

func (h *Handler) topicID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resaleTopicID
}

func (h *Handler) setTopicID(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resaleTopicID = id
}

func (h *Handler) reportChat() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reportChatID
}

func (h *Handler) setReportChat(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reportChatID = id
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func displayOf(u *database.User) string {
	if name := deref(u.Username); name != "" {
		return "@" + name
	}
	if name := deref(u.FirstName); name != "" {
		return name
	}
	return u.TelegramID
}
