package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"go_resale_bot/database"
	"go_resale_bot/messages"
	"go_resale_bot/xp"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// cmdReport пересылает пожалованное сообщение в чат админов.
// Одно сообщение можно пожаловаться только один раз.
func (h *Handler) cmdReport(ctx context.Context, msg *models.Message, user *database.User, reason string) {
	reply := msg.ReplyToMessage
	if reply == nil {
		h.reply(ctx, msg, messages.MsgReportNoReply)
		return
	}

	reportChatID := h.reportChat()
	if reportChatID == 0 {
		h.reply(ctx, msg, messages.MsgReportNoChat)
		return
	}

	key := fmt.Sprintf("%d_%d", msg.Chat.ID, reply.ID)
	if _, dup := h.reported.Get(key); dup {
		h.reply(ctx, msg, messages.MsgReportDuplicate)
		return
	}
	h.reported.Add(key, struct{}{})

	if reason == "" {
		reason = "Причина не вказана"
	}

	reporter := "Anonymous"
	if msg.From.Username != "" {
		reporter = msg.From.Username
	}
	offender := "Anonymous"
	if reply.From != nil && reply.From.Username != "" {
		offender = reply.From.Username
	}

	link := ""
	if chatStr := strconv.FormatInt(msg.Chat.ID, 10); len(chatStr) > 4 {
		link = fmt.Sprintf("https://t.me/c/%s/%d", chatStr[4:], reply.ID)
	}

	_, err := h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    reportChatID,
		Text:      messages.FormatReport(reporter, offender, reason, link),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Помилка відправки скарги: %v", err)
	}
	_, err = h.bot.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:     reportChatID,
		FromChatID: msg.Chat.ID,
		MessageID:  reply.ID,
	})
	if err != nil {
		log.Printf("Помилка пересилання скарги: %v", err)
	}

	h.reply(ctx, msg, messages.MsgReportSent)

	// Бонус за скаргу
	newXP := user.XP + 5
	newRank := xp.RecalcRank(user.Rank, newXP)
	if err := h.db.SetUserXPRank(ctx, user.TelegramID, newXP, newRank); err != nil {
		log.Printf("Помилка нарахування XP за скаргу %s: %v", user.TelegramID, err)
		return
	}
	if _, err := h.db.CreateXPHistory(ctx, user.ID, 5, "report", nil); err != nil {
		log.Printf("Помилка запису історії XP %s: %v", user.TelegramID, err)
	}
}
