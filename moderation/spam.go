package moderation

import (
	"regexp"
	"strings"
)

// Флуд, за который XP не начисляется
var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[+\-.]$`),
	regexp.MustCompile(`^(ок|ok|да|не|нет)$`),
	regexp.MustCompile(`^[+\-]*$`),
	regexp.MustCompile(`^\s*$`),
	regexp.MustCompile(`^.{1,2}$`),
}

func IsSpam(text string) bool {
	if text == "" {
		return true
	}
	trimmed := strings.ToLower(strings.TrimSpace(text))
	for _, p := range spamPatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}
