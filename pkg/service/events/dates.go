package events

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// monthNumbers maps Spanish month names, accent-free spellings included,
// to their calendar number.
var monthNumbers = map[string]int{
	"enero":      1,
	"febrero":    2,
	"marzo":      3,
	"abril":      4,
	"mayo":       5,
	"junio":      6,
	"julio":      7,
	"agosto":     8,
	"septiembre": 9,
	"setiembre":  9,
	"octubre":    10,
	"noviembre":  11,
	"diciembre":  12,
}

// dayOfMonthRe matches "15 de enero" style mentions in display text.
var dayOfMonthRe = regexp.MustCompile(`(\d{1,2})\s+de\s+([a-záéíóúñ]+)`)

// clockTimeRe matches "10:00" style times in display text.
var clockTimeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// dayMonth is one "day of month" mention extracted from free text.
type dayMonth struct {
	day   int
	month int
}

// dateMentions extracts every "D de Month" occurrence from text, in order.
// Mentions with an unknown month word or an out-of-range day are skipped.
func dateMentions(text string) []dayMonth {
	var out []dayMonth
	for _, m := range dayOfMonthRe.FindAllStringSubmatch(strings.ToLower(text), -1) {
		month, ok := monthNumbers[m[2]]
		if !ok {
			continue
		}
		day, err := strconv.Atoi(m[1])
		if err != nil || day < 1 || day > 31 {
			continue
		}
		out = append(out, dayMonth{day: day, month: month})
	}
	return out
}

// hasCalendarDate reports whether text embeds a specific "D de Month" date.
func hasCalendarDate(text string) bool {
	return len(dateMentions(text)) > 0
}

// rangeEnd resolves the end date of a multi-day range from display text,
// as YYYYMMDD using year as the reference year. Returns "" when the text
// does not read as a range or no date mention can be extracted. With a
// single mention the connector must precede it ("hasta el 28 de febrero");
// with several, the last mention is the end ("15 de enero al 28 de
// febrero").
func rangeEnd(text string, year int, connectors []string) string {
	lower := strings.ToLower(text)

	connected := false
	for _, c := range connectors {
		if strings.Contains(lower, c) {
			connected = true
			break
		}
	}
	if !connected {
		return ""
	}

	mentions := dateMentions(lower)
	if len(mentions) == 0 {
		return ""
	}

	end := mentions[len(mentions)-1]
	return fmt.Sprintf("%04d%02d%02d", year, end.month, end.day)
}

// endHour extracts the end-of-day time from display text as a decimal hour.
// The last of two or more clock times is the end ("10:00 a 20:00" → 20.0).
// A single time only counts as an end when preceded by "hasta"; otherwise
// it reads as a start and the second return is false.
func endHour(text string) (float64, bool) {
	matches := clockTimeRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	if len(matches) == 1 && !strings.Contains(strings.ToLower(text), "hasta") {
		return 0, false
	}

	last := matches[len(matches)-1]
	hour, err := strconv.Atoi(last[1])
	if err != nil || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(last[2])
	if err != nil || minute > 59 {
		return 0, false
	}
	return float64(hour) + float64(minute)/60, true
}

// eventDateYear extracts the year from an 8-digit YYYYMMDD string.
func eventDateYear(eventDate string) (int, bool) {
	if len(eventDate) != 8 {
		return 0, false
	}
	year, err := strconv.Atoi(eventDate[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}
