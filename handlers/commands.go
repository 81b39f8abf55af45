package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"go_resale_bot/database"
	"go_resale_bot/messages"
	"go_resale_bot/tglog"
	"go_resale_bot/xp"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5"
)

// dispatchCommand обрабатывает известные команды; false — текст не
// команда бота и идёт дальше по общему конвейеру
func (h *Handler) dispatchCommand(ctx context.Context, msg *models.Message, user *database.User, text string) bool {
	cmd, args, _ := strings.Cut(text, " ")
	if name, mention, ok := strings.Cut(cmd, "@"); ok {
		if !strings.EqualFold(mention, h.botUsername) {
			return false
		}
		cmd = name
	}
	args = strings.TrimSpace(args)

	switch cmd {
	case "/resale_topic":
		h.cmdResaleTopic(ctx, msg, user)
	case "/notification":
		if h.requireAdmin(ctx, msg, user) {
			h.replyHTML(ctx, msg, messages.RulesText)
		}
	case "/set_report_chat":
		if h.requireAdmin(ctx, msg, user) {
			h.setReportChat(msg.Chat.ID)
			h.reply(ctx, msg, messages.MsgReportChatSet)
			log.Printf("Чат скарг встановлено: %d", msg.Chat.ID)
		}
	case "/set":
		h.cmdSetSubscription(ctx, msg, user, args)
	case "/unset":
		h.cmdUnsetSubscription(ctx, msg, user)
	case "/admsub":
		h.cmdAdmSub(ctx, msg, user)
	case "/resetcd":
		h.cmdResetCooldown(ctx, msg, user, args)
	case "/addxp":
		h.cmdAddXP(ctx, msg, user, args)
	case "/removexp":
		h.cmdRemoveXP(ctx, msg, user, args)
	case "/setrank":
		h.cmdSetRank(ctx, msg, user, args)
	case "/resetxp":
		h.cmdResetXP(ctx, msg, user)
	case "/myprofile":
		h.replyHTML(ctx, msg, messages.FormatProfile(user))
	case "/perks":
		h.replyHTML(ctx, msg, messages.FormatPerks())
	case "/top":
		h.cmdTop(ctx, msg)
	case "/report":
		h.cmdReport(ctx, msg, user, args)
	case "/testsub":
		// Только в тестовом режиме: выдать подписку самому себе
		if !h.cfg.TestMode {
			return false
		}
		h.cmdTestSub(ctx, msg, user, args)
	default:
		return false
	}
	return true
}

func (h *Handler) cmdResaleTopic(ctx context.Context, msg *models.Message, user *database.User) {
	if !user.IsAdmin {
		_, _ = h.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: msg.ID})
		h.reply(ctx, msg, messages.MsgAdminOnly)
		return
	}

	if msg.MessageThreadID == 0 {
		h.reply(ctx, msg, messages.MsgTopicHowTo)
		return
	}

	h.setTopicID(msg.MessageThreadID)
	tglog.Printf("Гілку оголошень встановлено: %d (@%s)", msg.MessageThreadID, deref(user.Username))
	_, _ = h.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: msg.ID})
	h.replyHTML(ctx, msg, messages.RulesText)
}

func (h *Handler) cmdSetSubscription(ctx context.Context, msg *models.Message, user *database.User, args string) {
	if !h.requireAdmin(ctx, msg, user) {
		return
	}
	if args == "" {
		h.reply(ctx, msg, messages.MsgSetUsage)
		return
	}

	var sub database.Subscription
	switch strings.ToLower(strings.Fields(args)[0]) {
	case "basic+":
		sub = database.SubBasicPlus
	case "shop", "seller+":
		sub = database.SubShop
	default:
		h.reply(ctx, msg, messages.MsgBadSubType)
		return
	}

	reply := msg.ReplyToMessage
	if reply == nil || reply.From == nil {
		h.reply(ctx, msg, messages.MsgReplyRequired)
		return
	}

	targetID := strconv.FormatInt(reply.From.ID, 10)
	target, err := h.db.GetOrCreateUser(ctx, targetID, ptr(reply.From.Username), ptr(reply.From.FirstName), xp.RankDefault, false)
	if err != nil {
		log.Printf("Помилка створення користувача %s: %v", targetID, err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	if err := h.db.UpdateUserSubscription(ctx, target.TelegramID, sub, &expiresAt); err != nil {
		log.Printf("Помилка встановлення підписки %s: %v", targetID, err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}

	h.clearNotified(target.TelegramID)
	username := replyUsername(reply)
	tglog.Printf("Підписка %s встановлена для @%s адміном @%s", sub, username, deref(user.Username))
	h.reply(ctx, msg, messages.FormatSubscriptionSet(username, sub, expiresAt))
}

func (h *Handler) cmdTestSub(ctx context.Context, msg *models.Message, user *database.User, args string) {
	var sub database.Subscription
	switch strings.ToLower(args) {
	case "basic+":
		sub = database.SubBasicPlus
	case "shop", "seller+":
		sub = database.SubShop
	default:
		h.reply(ctx, msg, messages.MsgTestSubUsage)
		return
	}

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	if err := h.db.UpdateUserSubscription(ctx, user.TelegramID, sub, &expiresAt); err != nil {
		log.Printf("Помилка встановлення тестової підписки %s: %v", user.TelegramID, err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}

	h.clearNotified(user.TelegramID)
	log.Printf("Тестова підписка %s встановлена для %s", sub, displayOf(user))
	h.reply(ctx, msg, messages.FormatSubscriptionSet(deref(user.Username), sub, expiresAt))
}

func (h *Handler) cmdUnsetSubscription(ctx context.Context, msg *models.Message, user *database.User) {
	if !h.requireAdmin(ctx, msg, user) {
		return
	}

	reply := msg.ReplyToMessage
	if reply == nil || reply.From == nil {
		h.reply(ctx, msg, messages.MsgReplyRequired)
		return
	}

	targetID := strconv.FormatInt(reply.From.ID, 10)
	if _, err := h.db.GetUser(ctx, targetID); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Помилка завантаження користувача %s: %v", targetID, err)
		}
		return
	}

	if err := h.db.UpdateUserSubscription(ctx, targetID, database.SubBasic, nil); err != nil {
		log.Printf("Помилка скидання підписки %s: %v", targetID, err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}
	h.reply(ctx, msg, messages.FormatSubscriptionUnset(replyUsername(reply)))
}

func (h *Handler) cmdAdmSub(ctx context.Context, msg *models.Message, user *database.User) {
	if !h.requireAdmin(ctx, msg, user) {
		return
	}

	active, err := h.db.GetActiveSubscriptions(ctx)
	if err != nil {
		log.Printf("Помилка отримання підписок: %v", err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}
	if len(active) == 0 {
		h.reply(ctx, msg, messages.MsgNoActiveSubs)
		return
	}
	h.replyHTML(ctx, msg, messages.FormatSubscriptionList(active, time.Now()))
}

func (h *Handler) cmdResetCooldown(ctx context.Context, msg *models.Message, user *database.User, args string) {
	if !h.requireAdmin(ctx, msg, user) {
		return
	}

	reply := msg.ReplyToMessage
	if reply == nil || reply.From == nil {
		h.reply(ctx, msg, messages.MsgReplyRequired+"\nВикористання: /resetcd [buy/sell/all]")
		return
	}

	category := "all"
	switch strings.ToLower(args) {
	case "buy", "sell", "shop_ad":
		category = strings.ToLower(args)
	}

	targetID := strconv.FormatInt(reply.From.ID, 10)
	if err := h.db.DeleteRecentPosts(ctx, targetID, category); err != nil {
		log.Printf("Помилка скидання кулдауну %s: %v", targetID, err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}

	username := replyUsername(reply)
	log.Printf("Кулдаун @%s (%s) скинуто адміном @%s, категорія: %s", username, targetID, deref(user.Username), category)
	h.reply(ctx, msg, messages.FormatCooldownReset(username, category))
}

func (h *Handler) cmdAddXP(ctx context.Context, msg *models.Message, user *database.User, args string) {
	if !h.requireAdmin(ctx, msg, user) {
		return
	}
	h.adjustXP(ctx, msg, user, args, 1)
}

func (h *Handler) cmdRemoveXP(ctx context.Context, msg *models.Message, user *database.User, args string) {
	if !h.requireAdmin(ctx, msg, user) {
		return
	}
	h.adjustXP(ctx, msg, user, args, -1)
}

func (h *Handler) adjustXP(ctx context.Context, msg *models.Message, admin *database.User, args string, sign int) {
	reply := msg.ReplyToMessage
	if reply == nil || reply.From == nil {
		h.reply(ctx, msg, messages.MsgReplyRequired+"\nВикористання: /addxp 100")
		return
	}

	fields := strings.Fields(args)
	if len(fields) == 0 {
		h.reply(ctx, msg, messages.MsgBadXPAmount)
		return
	}
	amount, err := strconv.Atoi(fields[0])
	if err != nil || amount <= 0 {
		h.reply(ctx, msg, messages.MsgBadXPAmount)
		return
	}

	targetID := strconv.FormatInt(reply.From.ID, 10)
	target, err := h.db.GetUser(ctx, targetID)
	if err != nil {
		h.reply(ctx, msg, messages.MsgUserNotFound)
		return
	}

	newXP := target.XP + sign*amount
	if newXP < 0 {
		newXP = 0
	}
	newRank := xp.RecalcRank(target.Rank, newXP)
	if err := h.db.SetUserXPRank(ctx, targetID, newXP, newRank); err != nil {
		log.Printf("Помилка оновлення XP %s: %v", targetID, err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}

	reason := "addxp"
	if sign < 0 {
		reason = "removexp"
	}
	if _, err := h.db.CreateXPHistory(ctx, target.ID, newXP-target.XP, reason, ptr(admin.TelegramID)); err != nil {
		log.Printf("Помилка запису історії XP %s: %v", targetID, err)
	}

	username := replyUsername(reply)
	if sign > 0 {
		h.reply(ctx, msg, messages.FormatXPAdded(amount, username))
	} else {
		h.reply(ctx, msg, messages.FormatXPRemoved(amount, username))
	}
}

func (h *Handler) cmdSetRank(ctx context.Context, msg *models.Message, user *database.User, args string) {
	if !h.requireAdmin(ctx, msg, user) {
		return
	}

	reply := msg.ReplyToMessage
	if reply == nil || reply.From == nil {
		h.reply(ctx, msg, messages.MsgReplyRequired+"\nВикористання: /setrank Ресейлер")
		return
	}
	if args == "" {
		h.reply(ctx, msg, messages.MsgRankRequired)
		return
	}

	targetID := strconv.FormatInt(reply.From.ID, 10)
	if err := h.db.SetUserRank(ctx, targetID, args); err != nil {
		log.Printf("Помилка встановлення рангу %s: %v", targetID, err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}
	h.reply(ctx, msg, messages.FormatRankSet(args, replyUsername(reply)))
}

func (h *Handler) cmdResetXP(ctx context.Context, msg *models.Message, user *database.User) {
	if !h.requireAdmin(ctx, msg, user) {
		return
	}

	reply := msg.ReplyToMessage
	if reply == nil || reply.From == nil {
		h.reply(ctx, msg, messages.MsgReplyRequired)
		return
	}

	targetID := strconv.FormatInt(reply.From.ID, 10)
	target, err := h.db.GetUser(ctx, targetID)
	if err != nil {
		h.reply(ctx, msg, messages.MsgUserNotFound)
		return
	}

	if err := h.db.SetUserXPRank(ctx, targetID, 0, xp.RankDefault); err != nil {
		log.Printf("Помилка скидання XP %s: %v", targetID, err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}
	if target.XP != 0 {
		if _, err := h.db.CreateXPHistory(ctx, target.ID, -target.XP, "resetxp", ptr(user.TelegramID)); err != nil {
			log.Printf("Помилка запису історії XP %s: %v", targetID, err)
		}
	}
	h.reply(ctx, msg, messages.FormatXPReset(replyUsername(reply)))
}

func (h *Handler) cmdTop(ctx context.Context, msg *models.Message) {
	top, err := h.db.GetTopUsers(ctx, 10)
	if err != nil {
		log.Printf("Помилка отримання рейтингу: %v", err)
		h.reply(ctx, msg, messages.MsgInternal)
		return
	}
	if len(top) == 0 {
		h.reply(ctx, msg, messages.MsgEmptyTop)
		return
	}

	_, err = h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		MessageThreadID: msg.MessageThreadID,
		Text:            messages.FormatTop(top),
		ParseMode:       models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: bot.True(),
		},
	})
	if err != nil {
		log.Printf("Помилка відправки рейтингу: %v", err)
	}
}

func (h *Handler) requireAdmin(ctx context.Context, msg *models.Message, user *database.User) bool {
	if user.IsAdmin {
		return true
	}
	h.reply(ctx, msg, messages.MsgAdminOnly)
	return false
}

func (h *Handler) reply(ctx context.Context, msg *models.Message, text string) {
	_, err := h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		MessageThreadID: msg.MessageThreadID,
		Text:            text,
	})
	if err != nil {
		log.Printf("Помилка відправки: %v", err)
	}
}

func (h *Handler) replyHTML(ctx context.Context, msg *models.Message, text string) {
	_, err := h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		MessageThreadID: msg.MessageThreadID,
		Text:            text,
		ParseMode:       models.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Помилка відправки: %v", err)
	}
}

func replyUsername(reply *models.Message) string {
	if reply.From.Username != "" {
		return reply.From.Username
	}
	if reply.From.FirstName != "" {
		return reply.From.FirstName
	}
	return "користувач"
}
