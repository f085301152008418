package model

// EventDescriptionLimit caps the description text carried on an EventRecord.
const EventDescriptionLimit = 200

// EventRecord is one upcoming-event entry as served to the answer pipeline.
// The whole collection is rebuilt on every cache refresh; records are never
// partially updated.
type EventRecord struct {
	Title string `json:"title"`

	// EventDate is the structured event date in YYYYMMDD form, or "" when the
	// source only provides free text. When present it is authoritative for
	// the event's year; for multi-day events it is the start of the range.
	EventDate string `json:"event_date,omitempty"`

	// DateText and TimeText are free-form display strings from the source
	// ("15 de enero al 28 de febrero", "10:00 a 20:00 hrs"). They are only
	// consulted when EventDate is absent or when resolving a range end.
	DateText string `json:"date_text,omitempty"`
	TimeText string `json:"time_text,omitempty"`

	Place       string `json:"place,omitempty"`
	Description string `json:"description,omitempty"`
	Organizer   string `json:"organizer,omitempty"`
	Link        string `json:"link,omitempty"`
}

// HasEventDate reports whether the record carries a structured date.
func (x *EventRecord) HasEventDate() bool {
	return len(x.EventDate) == 8
}
