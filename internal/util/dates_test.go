package util

import (
	"testing"
	"time"
)

func TestRussianMonthRoundTrip(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		name := RussianMonthName(m)
		got, ok := ParseRussianMonth(name)
		if !ok || got != m {
			t.Errorf("ParseRussianMonth(%q) = %v, %v; want %v", name, got, ok, m)
		}
	}
}

func TestParseRussianMonthNormalizes(t *testing.T) {
	if m, ok := ParseRussianMonth("  Сентябрь "); !ok || m != time.September {
		t.Errorf("ParseRussianMonth = %v, %v", m, ok)
	}
	if _, ok := ParseRussianMonth("brumaire"); ok {
		t.Error("expected unknown month to fail")
	}
}

func TestFormatDateTimeUsesMoscow(t *testing.T) {
	utc := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := FormatDateTime(utc); got != "10.03.2026 15:00" {
		t.Errorf("FormatDateTime = %q", got)
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		page, limit            int
		wantOffset, wantLimit  int
	}{
		{1, 10, 0, 10},
		{3, 20, 40, 20},
		{0, 10, 0, 10},
		{2, 0, 10, 10},
		{-5, -1, 0, 10},
	}

	for _, tt := range tests {
		offset, limit := PageBounds(tt.page, tt.limit)
		if offset != tt.wantOffset || limit != tt.wantLimit {
			t.Errorf("PageBounds(%d, %d) = %d, %d; want %d, %d",
				tt.page, tt.limit, offset, limit, tt.wantOffset, tt.wantLimit)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestLikePatternEscapes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", "%abc%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`a\b`, `%a\\b%`},
	}

	for _, tt := range tests {
		if got := LikePattern(tt.in); got != tt.want {
			t.Errorf("LikePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOrDash(t *testing.T) {
	s := "значение"
	empty := ""
	if got := OrDash(&s); got != "значение" {
		t.Errorf("OrDash = %q", got)
	}
	if got := OrDash(&empty); got != "не указано" {
		t.Errorf("OrDash(empty) = %q", got)
	}
	if got := OrDash(nil); got != "не указано" {
		t.Errorf("OrDash(nil) = %q", got)
	}
}

func TestSortColumn(t *testing.T) {
	allowed := map[string]string{"start": "m.start_at"}
	if got := SortColumn("start", allowed, "m.created_at"); got != "m.start_at" {
		t.Errorf("SortColumn = %q", got)
	}
	if got := SortColumn("evil; DROP TABLE", allowed, "m.created_at"); got != "m.created_at" {
		t.Errorf("SortColumn fallback = %q", got)
	}
}
