package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text убирает любую разметку и возвращает обычный текст.
// Экранированные теги после раскодирования вычищаются повторным проходом.
func Text(s string) string {
	out := s
	for i := 0; i < 3; i++ {
		next := html.UnescapeString(strict.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

// OptionalText - то же для необязательных полей
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	return &v
}
