package util

import (
	"fmt"
	"strings"
	"time"
)

// Moscow is the display timezone for reminder texts and exports.
var Moscow = time.FixedZone("MSK", 3*60*60)

var ruMonths = [...]string{
	"январь", "февраль", "март", "апрель", "май", "июнь",
	"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
}

// RussianMonthName returns the lowercase Russian name of a month.
func RussianMonthName(m time.Month) string {
	return ruMonths[int(m)-1]
}

// ParseRussianMonth maps a Russian month name back to its number.
func ParseRussianMonth(name string) (time.Month, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, m := range ruMonths {
		if m == name {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// FormatDateTime renders a timestamp for user-facing messages in MSK.
func FormatDateTime(t time.Time) string {
	return t.In(Moscow).Format("02.01.2006 15:04")
}

// FormatDate renders only the calendar day.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatTimeOfDay renders only the clock part in MSK.
func FormatTimeOfDay(t time.Time) string {
	return t.In(Moscow).Format("15:04")
}

// OrDash substitutes a placeholder for empty optional strings in messages.
func OrDash(s *string) string {
	if s == nil || *s == "" {
		return "не указано"
	}
	return *s
}

// StringOrEmpty dereferences an optional string for exports.
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TimeOrEmpty renders an optional timestamp as RFC 3339 for exports.
func TimeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// SortColumn whitelists a sort field, falling back to a default.
func SortColumn(requested string, allowed map[string]string, fallback string) string {
	if col, ok := allowed[requested]; ok {
		return col
	}
	return fallback
}

// PageBounds converts 1-based page/limit into an SQL offset.
func PageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return (page - 1) * limit, limit
}

// TotalPages computes ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// LikePattern wraps a search term for ILIKE matching.
func LikePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return fmt.Sprintf("%%%s%%", escaped)
}
