// redact маскирует персональные данные и секреты перед записью в лог.
package redact

import (
	"strings"
	"unicode/utf8"
)

// Email скрывает локальную часть адреса, оставляя первые две руны:
// "alice@x.io" -> "al***@x.io". Короткие и некорректные адреса скрываются целиком.
func Email(s string) string {
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 || strings.Count(s, "@") != 1 {
		return "***"
	}

	local, domain := s[:at], s[at+1:]
	if utf8.RuneCountInString(local) <= 2 {
		return "***@" + domain
	}

	r := []rune(local)
	return string(r[:2]) + "***@" + domain
}

// Token оставляет последние четыре символа токена для сопоставления в логах.
func Token(s string) string {
	if len(s) <= 8 {
		return "[token]"
	}

	return "[token …" + s[len(s)-4:] + "]"
}
