package moderation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	priceKeywordRe = regexp.MustCompile(`(?i)(?:ціна\s*:|price:|цена:|\$)[^0-9]*(\d+(?:[.,]\d{3})*(?:[.,]\d{1,2})?)\s*(грн|uah|usd|k|к|kг|тис|₴|\$|гривен)?`)
	priceTokenRe   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d{3})*(?:[.,]\d{1,2})?)\s*(грн|uah|usd|k|к|kг|тис|₴|\$|гривен)?`)
	shopTriggerRe  = regexp.MustCompile(`(?i)(price|ціна|цена)\s*[:\-]?\s*\d+`)
	shopAmountRe   = regexp.MustCompile(`(?i)\d+\s*(грн|uah|usd|₴)`)

	numericPrefixRe = regexp.MustCompile(`^\d+(?:\.\d*)?`)
)

// Минимальный порог для fallback-поиска: числа меньше (размеры,
// количество) ценой не считаются.
const fallbackMinPrice = 100

// ExtractPrice ищет цену в тексте объявления. Сначала по ключевому
// слову (ціна: 5000 грн), затем перебором всех чисел с валютой —
// берётся максимальное значение не ниже порога.
func ExtractPrice(text string) (float64, bool) {
	if m := priceKeywordRe.FindStringSubmatch(text); m != nil {
		if val := parsePrice(m[1], m[2]); val > 0 {
			return val, true
		}
	}

	var maxPrice float64
	for _, m := range priceTokenRe.FindAllStringSubmatch(text, -1) {
		val := parsePrice(m[1], m[2])
		if val >= fallbackMinPrice && val > maxPrice {
			maxPrice = val
		}
	}
	if maxPrice > 0 {
		return maxPrice, true
	}
	return 0, false
}

// HasShopTrigger — есть ли в тексте что-то похожее на цену
func HasShopTrigger(text string) bool {
	return shopTriggerRe.MatchString(text) || shopAmountRe.MatchString(text)
}

func parsePrice(numStr, unit string) float64 {
	s := strings.Replace(numStr, ",", ".", 1)

	if parts := strings.Split(s, "."); len(parts) > 1 {
		last := parts[len(parts)-1]
		// Несколько разделителей или группа из трёх цифр — это
		// разбивка тысяч, а не десятичная часть
		if len(parts) > 2 || len(last) == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Число с мусором в хвосте: берём числовой префикс
		prefix := numericPrefixRe.FindString(s)
		if prefix == "" {
			return 0
		}
		val, err = strconv.ParseFloat(strings.TrimSuffix(prefix, "."), 64)
		if err != nil {
			return 0
		}
	}

	switch strings.ToLower(unit) {
	case "k", "к", "тис":
		val *= 1000
	}
	return val
}
