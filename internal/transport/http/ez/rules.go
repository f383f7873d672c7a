package ez

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"realty-api/pkg/utils"
)

var phoneRe = regexp.MustCompile(`^[\d\s\-+()]+$`)

func validObjectID(fl validator.FieldLevel) bool { return utils.IsObjectID(fl.Field().String()) }

func validPhone(fl validator.FieldLevel) bool { return phoneRe.MatchString(fl.Field().String()) }

func validISODate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// ParseDate 接受 RFC3339 或 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	return t.UTC(), err
}

// Trim 去掉首尾空白；nil 保持 nil
func Trim(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

func Lower(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(*p))
	return &s
}
