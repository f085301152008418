package config

// Messages holds the canned user-facing replies. The bot speaks Chilean
// Spanish; operators can override any of these from the app config file.
type Messages struct {
	// RetrievalUnavailable is sent when the knowledge base cannot be built
	// or searched. Users never see raw errors.
	RetrievalUnavailable string

	// EmptyAnswer is sent when the LLM returns no text.
	EmptyAnswer string
}

// DefaultMessages returns the stock replies.
func DefaultMessages() *Messages {
	return &Messages{
		RetrievalUnavailable: "Lo siento, no puedo consultar la información de tiendas y restaurantes en este momento. Por favor, intenta de nuevo en unos minutos.",
		EmptyAnswer:          "Lo siento, no pude procesar tu pregunta en este momento. ¿Puedes intentarlo de nuevo?",
	}
}

// Merge overlays non-empty fields of other onto a copy of x.
func (x *Messages) Merge(other *Messages) *Messages {
	merged := &Messages{
		RetrievalUnavailable: x.RetrievalUnavailable,
		EmptyAnswer:          x.EmptyAnswer,
	}
	if other == nil {
		return merged
	}
	if other.RetrievalUnavailable != "" {
		merged.RetrievalUnavailable = other.RetrievalUnavailable
	}
	if other.EmptyAnswer != "" {
		merged.EmptyAnswer = other.EmptyAnswer
	}
	return merged
}
