package events

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mut-digital/mutbot/pkg/domain/model/config"
)

func TestDateMentions(t *testing.T) {
	testCases := map[string]struct {
		text string
		want []dayMonth
	}{
		"single mention": {
			text: "22 de junio",
			want: []dayMonth{{day: 22, month: 6}},
		},
		"range keeps both mentions in order": {
			text: "15 de enero al 28 de febrero",
			want: []dayMonth{{day: 15, month: 1}, {day: 28, month: 2}},
		},
		"case insensitive": {
			text: "Desde el 3 de Marzo",
			want: []dayMonth{{day: 3, month: 3}},
		},
		"unknown month word skipped": {
			text: "5 de cadames",
			want: nil,
		},
		"day out of range skipped": {
			text: "45 de junio",
			want: nil,
		},
		"weekday phrase is not a date": {
			text: "todos los lunes a viernes",
			want: nil,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Value(t, dateMentions(tc.text)).Equal(tc.want)
		})
	}
}

func TestRangeEnd(t *testing.T) {
	connectors := config.DefaultEventPatterns().RangeConnectors

	testCases := map[string]struct {
		text string
		year int
		want string
	}{
		"al range":             {"9 al 24 de junio", 2024, "20240624"},
		"hasta range":          {"abierto hasta el 28 de febrero", 2026, "20260228"},
		"dash range":           {"1 de marzo - 15 de abril", 2025, "20250415"},
		"no connector":         {"22 de junio", 2024, ""},
		"connector but no date": {"hasta agotar stock", 2024, ""},
		"empty":                {"", 2024, ""},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Value(t, rangeEnd(tc.text, tc.year, connectors)).Equal(tc.want)
		})
	}
}

func TestEndHour(t *testing.T) {
	testCases := map[string]struct {
		text   string
		want   float64
		wantOK bool
	}{
		"start and end":        {"10:00 a 20:00", 20.0, true},
		"end with minutes":     {"10:00 a 13:30", 13.5, true},
		"single time is start": {"desde las 10:00", 0, false},
		"single time as limit": {"hasta las 18:00", 18.0, true},
		"no time at all":       {"todo el día", 0, false},
		"invalid hour":         {"10:00 a 33:00", 0, false},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, ok := endHour(tc.text)
			gt.Value(t, ok).Equal(tc.wantOK)
			gt.Number(t, got).Equal(tc.want)
		})
	}
}

func TestEventDateYear(t *testing.T) {
	year, ok := eventDateYear("20240610")
	gt.Bool(t, ok).True()
	gt.Number(t, year).Equal(2024)

	_, ok = eventDateYear("junio")
	gt.Bool(t, ok).False()

	_, ok = eventDateYear("")
	gt.Bool(t, ok).False()
}
