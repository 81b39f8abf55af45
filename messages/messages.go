package messages

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go_resale_bot/database"
	"go_resale_bot/ratelimit"
	"go_resale_bot/xp"
)

const (
	MsgAdminOnly     = `❌ Ця команда тільки для адміністраторів.`
	MsgReplyRequired = `❌ Відповідайте на повідомлення користувача.`

	MsgWarnSticker       = `❌ Стікери заборонені у цій гілці.`
	MsgWarnVoice         = `❌ Голосові повідомлення заборонені у цій гілці.`
	MsgWarnNoDescription = `❌ Ваше повідомлення було видалено, оскільки воно не містить опису.`
	MsgWarnNoHashtag     = `❌ Ваше повідомлення було видалено, оскільки воно не містить хештегів '#куплю' або '#продам'.`
	MsgWarnShopNoPrice   = `❌ Ваше повідомлення було видалено. Для підписки SHOP потрібно вказати ціну (наприклад: 5000 грн).`

	MsgTopicHowTo      = `❌ Використовуйте цю команду в гілці (topic), яку хочете встановити для оголошень.`
	MsgReportChatSet   = `✅ Цей чат встановлено для отримання скарг.`
	MsgReportNoChat    = `❌ Адміністратори ще не налаштували чат для скарг.`
	MsgReportNoReply   = `❌ Ви повинні відповісти на повідомлення, щоб залишити скаргу.`
	MsgReportDuplicate = `❌ Це повідомлення вже було відправлено адміністраторам.`
	MsgReportSent      = `✅ Скаргу відправлено адміністрації.`

	MsgUserNotFound = `❌ Користувача не знайдено.`
	MsgBadXPAmount  = `❌ Вкажіть коректну кількість XP.`
	MsgRankRequired = `❌ Вкажіть назву рангу.`
	MsgSetUsage     = `❌ Використання: /set [basic+|shop] (відповіддю на повідомлення)`
	MsgBadSubType   = `❌ Невірний тип підписки. Використовуйте 'basic+' або 'shop'.`
	MsgTestSubUsage = `❌ Використання: /testsub [basic+|shop]`
	MsgNoActiveSubs = `📋 Немає активних підписок.`
	MsgEmptyTop     = `❌ Рейтинг порожній.`
	MsgInternal     = `❌ Помилка. Спробуйте пізніше.`
)

const RulesText = `<b>Правила для гілки #продам та #куплю</b>

<b>📌 Обов’язково в оголошенні:</b>
• хештег <b>#продам</b> або <b>#куплю</b>
• чіткий опис товару
• вказана ціна у форматі <b>ціна: XXXX грн</b>
• якісні фото, розмір та стан речі

<b>Мінімальна ціна в оголошенні:</b>
• #футболка — <b>від 1500 грн</b>
• інші товари — <b>від 3000 грн</b>

<b>Ліміти між оголошеннями:</b>
• <b>BASIC:</b> 1 оголошення / 24 години
• <b>BASIC+:</b> 3 оголошення / 12 годин
• <b>SHOP:</b> 10 оголошень / 12 годин

<b>🚫 Заборонено:</b>
• продаж фейків, реплік, копій у будь-якому вигляді
• обхід ціни (подвійні ціни, «в лс дешевше»)
• спам, дублювання, масова скупка речей
• реклама сторонніх каналів і посилань
• оголошення не про одяг/взуття/аксесуари
• пересилання постів зі своїх каналів
• публікація кількох речей в одному оголошенні
• використання #куплю без конкретного товару
• обхід роботи бота або маніпуляції форматом

<b>❗ Угоди здійснюються на відповідальність сторін.</b>

🛡 Для скарги: відповідь на повідомлення
<b>/report [причина]</b>`

// FormatPrice печатает цену без лишних нулей (5000, 2500.5)
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func FormatNoPrice(minPrice int) string {
	return fmt.Sprintf(`❌ Ваше повідомлення було видалено, оскільки воно не містить ціни. Мінімальна ціна: %d грн.`, minPrice)
}

func FormatPriceTooLow(price float64, minPrice int) string {
	return fmt.Sprintf(`❌ Ваше повідомлення було видалено, оскільки ціна %s грн нижча за мінімальну (%d грн).`, FormatPrice(price), minPrice)
}

func FormatLimitExceeded(count, limit, hours int, categoryName, remaining string) string {
	timer := ""
	if remaining != "" {
		timer = fmt.Sprintf("\n⏳ Наступне оголошення через: %s", remaining)
	}
	return fmt.Sprintf(`<b>⏰ Ви вичерпали ліміт оголошень.</b>
💎 Використано %d/%d в категорії %s за %d год.%s`, count, limit, categoryName, hours, timer)
}

func FormatShopLimitExceeded(count, limit, hours int, remaining string) string {
	timer := ""
	if remaining != "" {
		timer = fmt.Sprintf("\n⏳ Наступне оголошення через: %s", remaining)
	}
	return fmt.Sprintf(`<b>⏰ Ліміт вичерпано.</b>
💎 Використано %d/%d оголошень за %d год.%s`, count, limit, hours, timer)
}

// FormatWarning подставляет упоминание нарушителя в текст предупреждения
func FormatWarning(username, text string) string {
	if username == "" {
		return text
	}
	if strings.HasPrefix(text, "❌") {
		return fmt.Sprintf("❌<b>@%s</b>, %s", username, strings.TrimSpace(strings.TrimPrefix(text, "❌")))
	}
	if strings.Contains(text, "⏰") {
		stripped := strings.NewReplacer("⏰", "", "<b>", "", "</b>", "").Replace(text)
		return fmt.Sprintf("⏰<b>@%s</b>, %s", username, strings.TrimSpace(stripped))
	}
	return text
}

func displayName(u *database.User) string {
	if u.Username != nil && *u.Username != "" {
		return "@" + *u.Username
	}
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.TelegramID
}

func FormatSubscriptionSet(username string, sub database.Subscription, expiresAt time.Time) string {
	return fmt.Sprintf("✅ Користувачу @%s встановлено підписку %s\n📅 Дійсна до: %s (30 днів)",
		username, sub, expiresAt.Format("02.01.2006"))
}

func FormatSubscriptionUnset(username string) string {
	return fmt.Sprintf("✅ Підписку @%s скинуто до BASIC", username)
}

func FormatCooldownReset(username, category string) string {
	var categoryText string
	switch category {
	case "all":
		categoryText = "всіх категорій"
	case "buy":
		categoryText = "#куплю"
	default:
		categoryText = "#продам"
	}
	return fmt.Sprintf("✅ Кулдаун @%s для %s скинуто", username, categoryText)
}

func FormatXPAdded(amount int, username string) string {
	return fmt.Sprintf("✅ Додано %d XP користувачу @%s", amount, username)
}

func FormatXPRemoved(amount int, username string) string {
	return fmt.Sprintf("✅ Забрано %d XP у користувача @%s", amount, username)
}

func FormatRankSet(rank, username string) string {
	return fmt.Sprintf("✅ Встановлено ранг \"%s\" користувачу @%s", rank, username)
}

func FormatXPReset(username string) string {
	return fmt.Sprintf("✅ XP користувача @%s скинуто", username)
}

func FormatProfile(u *database.User) string {
	var b strings.Builder
	b.WriteString("<b>Профіль користувача</b>\n\n")
	name := "Не вказано"
	if u.FirstName != nil && *u.FirstName != "" {
		name = *u.FirstName
	}
	fmt.Fprintf(&b, "<b>Ім'я:</b> %s\n", name)
	if u.Username != nil && *u.Username != "" {
		fmt.Fprintf(&b, "<b>Username:</b> @%s\n", *u.Username)
	}

	if u.IsAdmin {
		b.WriteString("<b>Ранг:</b> Адміністратор")
		return b.String()
	}

	rule := ratelimit.RuleFor(u.Subscription)
	fmt.Fprintf(&b, "<b>XP:</b> %d\n", u.XP)
	fmt.Fprintf(&b, "<b>Ранг:</b> %s\n", u.Rank)
	fmt.Fprintf(&b, "<b>XP сьогодні:</b> %d/%d\n", u.DailyXP, xp.DailyCap)
	fmt.Fprintf(&b, "<b>Підписка:</b> %s\n", u.Subscription)
	if u.Subscription != database.SubBasic && u.SubscriptionExpiresAt != nil {
		daysLeft := int((time.Until(*u.SubscriptionExpiresAt) + 24*time.Hour - 1) / (24 * time.Hour))
		status := "прострочена"
		if daysLeft > 0 {
			status = fmt.Sprintf("%d дн.", daysLeft)
		}
		fmt.Fprintf(&b, "<b>Дійсна до:</b> %s (%s)\n", u.SubscriptionExpiresAt.Format("02.01.2006"), status)
	}
	fmt.Fprintf(&b, "<b>Ліміт:</b> %d оголошень / %d годин", rule.Limit, rule.Hours)

	if !xp.IsSpecialRank(u.Rank) && u.Rank != xp.RankTop {
		if next, ok := xp.NextRank(u.XP); ok {
			fmt.Fprintf(&b, "\n\n<b>Наступний ранг:</b> %s\n", next.Rank)
			fmt.Fprintf(&b, "<b>Потрібно XP:</b> %d", next.XP-u.XP)
		}
	}

	if u.Rank == xp.RankReseller {
		b.WriteString("\n\n<b>Бонуси:</b>\n• +1 оголошення на годину")
	}
	return b.String()
}

func FormatPerks() string {
	var b strings.Builder
	b.WriteString("<b>🏆 Ранги та вимоги:</b>\n\n")
	for _, t := range xp.Thresholds() {
		fmt.Fprintf(&b, "• <b>%s</b> — %d XP\n", t.Rank, t.XP)
	}
	b.WriteString("\n<b>Спеціальні ранги:</b>\n")
	b.WriteString("• <b>Ресейлер</b> — призначається адмінами\n")
	b.WriteString("• <b>Адміністратор</b> — для адмінів чату")
	return b.String()
}

func FormatTop(users []database.User) string {
	var b strings.Builder
	b.WriteString("<b>🏆 Топ користувачів за XP</b>\n\n")
	medals := []string{"🥇", "🥈", "🥉"}
	for i, u := range users {
		medal := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			medal = medals[i]
		}
		display := "Користувач"
		if u.FirstName != nil && *u.FirstName != "" {
			display = *u.FirstName
		} else if u.Username != nil && *u.Username != "" {
			display = *u.Username
		}
		name := display
		if u.Username != nil && *u.Username != "" {
			name = fmt.Sprintf(`<a href="https://t.me/%s">%s</a>`, *u.Username, display)
		}
		fmt.Fprintf(&b, "%s %s — %d XP (%s)\n", medal, name, u.XP, u.Rank)
	}
	return b.String()
}

func FormatSubscriptionList(users []database.User, now time.Time) string {
	var b strings.Builder
	b.WriteString("<b>📋 Активні підписки:</b>\n\n")
	for _, u := range users {
		name := displayName(&u)
		if u.SubscriptionExpiresAt == nil {
			fmt.Fprintf(&b, "-- <b>%s</b> — %s\n   Безстрокова (встановлена до оновлення)\n\n", name, u.Subscription)
			continue
		}

		diff := u.SubscriptionExpiresAt.Sub(now)
		statusIcon := "[OK]"
		var timeLeft string
		days := int((diff + 24*time.Hour - 1) / (24 * time.Hour))
		switch {
		case diff <= 0:
			statusIcon = "[!!]"
			timeLeft = "прострочена"
		case diff <= 3*24*time.Hour:
			statusIcon = "[!]"
			timeLeft = fmt.Sprintf("%d дн.", days)
		default:
			timeLeft = fmt.Sprintf("%d дн.", days)
		}
		fmt.Fprintf(&b, "%s <b>%s</b> — %s\n   До: %s (%s)\n\n",
			statusIcon, name, u.Subscription, u.SubscriptionExpiresAt.Format("02.01.2006"), timeLeft)
	}
	b.WriteString("<b>Легенда:</b> [OK] активна | [!] менше 3 днів | [!!] прострочена")
	return b.String()
}

func FormatReport(reporter, offender, reason, link string) string {
	return fmt.Sprintf("<b>🔔 Нова скарга!</b>\nВідправник: @%s\nПорушник: @%s\nПричина: %s\nПосилання: %s",
		reporter, offender, reason, link)
}
