package config

// EventPatterns holds the free-text phrase sets used by the events validity
// filter. The source publishes Spanish marketing copy, so exact phrase
// coverage is a moving target; these sets are configuration, not code.
type EventPatterns struct {
	// Recurring phrases mark an event as periodic ("todos los días",
	// "de lunes a viernes"). Matched case-insensitively as substrings.
	Recurring []string

	// RangeConnectors join the start and end of a date range in display
	// text ("15 de enero al 28 de febrero").
	RangeConnectors []string
}

// DefaultEventPatterns returns the phrase sets observed in the mall's feed.
func DefaultEventPatterns() *EventPatterns {
	return &EventPatterns{
		Recurring: []string{
			"todos los días",
			"todos los dias",
			"cada día",
			"cada dia",
			"de lunes a viernes",
			"lunes a viernes",
			"de lunes a domingo",
			"lunes a domingo",
			"todos los lunes",
			"todos los martes",
			"todos los miércoles",
			"todos los miercoles",
			"todos los jueves",
			"todos los viernes",
			"todos los sábados",
			"todos los sabados",
			"todos los domingos",
			"fines de semana",
			"permanente",
			"vigente",
		},
		RangeConnectors: []string{" al ", " hasta ", " - "},
	}
}

// Merge overlays non-empty fields of other onto a copy of x.
func (x *EventPatterns) Merge(other *EventPatterns) *EventPatterns {
	merged := &EventPatterns{
		Recurring:       x.Recurring,
		RangeConnectors: x.RangeConnectors,
	}
	if other == nil {
		return merged
	}
	if len(other.Recurring) > 0 {
		merged.Recurring = other.Recurring
	}
	if len(other.RangeConnectors) > 0 {
		merged.RangeConnectors = other.RangeConnectors
	}
	return merged
}
