package moderation

import "strings"

type Category string

const (
	CategoryBuy    Category = "buy"
	CategorySell   Category = "sell"
	CategoryShopAd Category = "shop_ad"
)

// Команды, которые бот не считает объявлением
var allowedCommands = map[string]bool{
	"/resale_topic":    true,
	"/notification":    true,
	"/report":          true,
	"/resetcd":         true,
	"/changecd":        true,
	"/set_report_chat": true,
	"/myprofile":       true,
	"/perks":           true,
	"/top":             true,
	"/addxp":           true,
	"/removexp":        true,
	"/setrank":         true,
	"/resetxp":         true,
	"/set":             true,
	"/unset":           true,
	"/admsub":          true,
}

// Classify определяет категорию объявления по хештегам
func Classify(text string) Category {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "#куплю") || strings.Contains(lower, "#купим") {
		return CategoryBuy
	}
	if strings.Contains(lower, "#продам") || strings.Contains(lower, "#продаю") {
		return CategorySell
	}
	return ""
}

// IsAllowedCommand — текст начинается с разрешённой команды.
// Токен сравнивается как есть: /set@somebot командой не считается.
func IsAllowedCommand(text string) bool {
	if !strings.HasPrefix(text, "/") {
		return false
	}
	cmd, _, _ := strings.Cut(text, " ")
	return allowedCommands[cmd]
}
