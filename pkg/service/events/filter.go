package events

import (
	"sort"
	"strings"

	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/model/config"
)

// Filter decides which event records are still current relative to the
// mall's local clock. Phrase sets come from configuration because the feed
// carries free-form Spanish marketing copy.
type Filter struct {
	patterns *config.EventPatterns
}

// NewFilter creates a Filter with the given phrase sets; nil means defaults.
func NewFilter(patterns *config.EventPatterns) *Filter {
	if patterns == nil {
		patterns = config.DefaultEventPatterns()
	}
	return &Filter{patterns: patterns}
}

// Current drops past-due records and orders the rest: records with a
// structured date ascending by that date, then undated records in their
// original feed order.
func (x *Filter) Current(records []*model.EventRecord, now model.MallNow) []*model.EventRecord {
	kept := make([]*model.EventRecord, 0, len(records))
	for _, rec := range records {
		if !x.pastDue(rec, now) {
			kept = append(kept, rec)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		switch {
		case a.HasEventDate() && !b.HasEventDate():
			return true
		case !a.HasEventDate():
			return false
		default:
			return a.EventDate < b.EventDate
		}
	})

	return kept
}

// pastDue implements the validity decision for one record.
func (x *Filter) pastDue(rec *model.EventRecord, now model.MallNow) bool {
	if !rec.HasEventDate() {
		// Free text with an embedded calendar date but no structured date:
		// the year cannot be trusted, so the record is dropped. Recurring
		// phrasing without a date keeps it, and so does text that gives no
		// signal either way.
		if x.isRecurring(rec.DateText) && !hasCalendarDate(rec.DateText) {
			return false
		}
		return hasCalendarDate(rec.DateText)
	}

	switch {
	case rec.EventDate > now.Date:
		return false

	case rec.EventDate == now.Date:
		return x.endedToday(rec, now)

	default:
		year, ok := eventDateYear(rec.EventDate)
		if !ok {
			return true
		}
		end := rangeEnd(rec.DateText, year, x.patterns.RangeConnectors)
		if end == "" || end < now.Date {
			return true
		}
		if end == now.Date {
			return x.endedToday(rec, now)
		}
		return false
	}
}

// endedToday reports whether a today-dated record is already over. Without
// a parseable end time the record is kept.
func (x *Filter) endedToday(rec *model.EventRecord, now model.MallNow) bool {
	end, ok := endHour(rec.TimeText)
	return ok && end < now.DecimalHour
}

func (x *Filter) isRecurring(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range x.patterns.Recurring {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
