package model

import (
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultTimezone is the mall's local timezone. All "now" decisions in the
// events pipeline are made in this zone, not in server time.
const DefaultTimezone = "America/Santiago"

var spanishWeekdays = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
}

var spanishMonths = map[time.Month]string{
	time.January:   "enero",
	time.February:  "febrero",
	time.March:     "marzo",
	time.April:     "abril",
	time.May:       "mayo",
	time.June:      "junio",
	time.July:      "julio",
	time.August:    "agosto",
	time.September: "septiembre",
	time.October:   "octubre",
	time.November:  "noviembre",
	time.December:  "diciembre",
}

// MallNow is the current moment expressed in the mall's timezone, in the
// shapes the events filter and the prompts need.
type MallNow struct {
	// Date is the local date as YYYYMMDD, comparable to EventRecord.EventDate
	Date string
	// ISODate is the local date as YYYY-MM-DD
	ISODate string
	// DecimalHour is the local time of day as a decimal (14:30 → 14.5)
	DecimalHour float64
	// Weekday is the Spanish weekday name ("lunes")
	Weekday string
	// Readable is a human-readable Spanish date for prompt headers
	Readable string

	time time.Time
}

// Time returns the underlying localized time.
func (x MallNow) Time() time.Time {
	return x.time
}

// MallNowAt converts t into MallNow in the given timezone.
func MallNowAt(t time.Time, timezone string) (MallNow, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return MallNow{}, goerr.Wrap(err, "failed to load timezone", goerr.V("timezone", timezone))
	}

	local := t.In(loc)
	return MallNow{
		Date:        local.Format("20060102"),
		ISODate:     local.Format("2006-01-02"),
		DecimalHour: float64(local.Hour()) + float64(local.Minute())/60,
		Weekday:     spanishWeekdays[local.Weekday()],
		Readable: fmt.Sprintf("%s %d de %s de %d",
			spanishWeekdays[local.Weekday()], local.Day(), spanishMonths[local.Month()], local.Year()),
		time: local,
	}, nil
}
