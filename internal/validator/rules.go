package validator

import (
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"auxchat_backend/internal/models"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// registerCustomRules регистрирует кастомные правила.
// Ошибка регистрации - ошибка запуска, поэтому Fatal.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("phone", validatePhone)
	mustRegister("emoji", validateEmoji)
	mustRegister("admin_action", validateAdminAction)
}

// NormalizePhone убирает пробелы, скобки и дефисы
func NormalizePhone(phone string) string {
	r := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return r.Replace(strings.TrimSpace(phone))
}

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

func validatePhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' обрабатывает пустые
	}
	return IsValidPhone(value)
}

func validateEmoji(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return false
	}
	n := utf8.RuneCountInString(value)
	if n > 16 {
		return false
	}
	// ASCII буквы и цифры эмодзи не являются
	for _, r := range value {
		if r < 0x80 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func validateAdminAction(fl validator.FieldLevel) bool {
	switch models.AdminAction(fl.Field().String()) {
	case models.AdminActionAddEnergy, models.AdminActionRemoveEnergy,
		models.AdminActionBan, models.AdminActionUnban,
		models.AdminActionSetAdmin, models.AdminActionUnsetAdmin,
		models.AdminActionDelete:
		return true
	default:
		return false
	}
}
