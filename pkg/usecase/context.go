package usecase

import (
	"fmt"
	"strings"

	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
)

// FormatSearchResults renders scored knowledge-base documents as the
// Spanish context block the answer prompt consumes.
func FormatSearchResults(results []model.ScoredDocument) string {
	if len(results) == 0 {
		return "No se encontraron resultados relevantes."
	}

	var sb strings.Builder
	sb.WriteString("Información encontrada:\n\n")

	for i, result := range results {
		meta := result.Document.Metadata

		label := "🏪 Tienda"
		if meta[model.MetaCategory] == types.CategoryRestaurants.String() {
			label = "🍽️ Restaurante"
		}

		title := meta[model.MetaTitle]
		if title == "" {
			title = "Sin nombre"
		}

		fmt.Fprintf(&sb, "%d. [%s] **%s**\n", i+1, label, title)
		if v := meta[model.MetaType]; v != "" {
			fmt.Fprintf(&sb, "   Tipo: %s\n", v)
		}
		if v := meta[model.MetaFloor]; v != "" {
			fmt.Fprintf(&sb, "   Nivel/Piso: %s\n", v)
		}
		if v := meta[model.MetaPlace]; v != "" {
			fmt.Fprintf(&sb, "   Ubicación: %s\n", v)
		}
		if v := meta[model.MetaHours]; v != "" {
			fmt.Fprintf(&sb, "   Horario: %s\n", v)
		}
		if v := meta[model.MetaWeb]; v != "" {
			fmt.Fprintf(&sb, "   Web: %s\n", v)
		}
		if v := meta[model.MetaLink]; v != "" {
			fmt.Fprintf(&sb, "   Más info: %s\n", v)
		}
		if desc := truncateRunes(result.Document.Content, model.EventDescriptionLimit); desc != "" {
			fmt.Fprintf(&sb, "   Descripción: %s\n", desc)
		}
		fmt.Fprintf(&sb, "   Relevancia: %.1f%%\n\n", result.Similarity*100)
	}

	return sb.String()
}

// FormatEvents renders the current event list as one compact line per
// event, headed by the local date so the LLM can reason about "hoy" and
// "este fin de semana".
func FormatEvents(records []*model.EventRecord, now model.MallNow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fecha actual: %s (%s)\n", now.Readable, now.ISODate)

	if len(records) == 0 {
		sb.WriteString("No hay eventos próximos registrados.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Eventos vigentes (%d):\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(&sb, "[evt_%03d] %s", i+1, rec.Title)
		if rec.EventDate != "" {
			fmt.Fprintf(&sb, " | event_date:%s", rec.EventDate)
		}
		if rec.DateText != "" {
			fmt.Fprintf(&sb, " | fecha:%q", rec.DateText)
		}
		if rec.TimeText != "" {
			fmt.Fprintf(&sb, " | hora:%q", rec.TimeText)
		}
		if rec.Place != "" {
			fmt.Fprintf(&sb, " | lugar:%q", rec.Place)
		}
		if rec.Description != "" {
			fmt.Fprintf(&sb, " | desc:%q", truncateRunes(rec.Description, 100))
		}
		if rec.Organizer != "" {
			fmt.Fprintf(&sb, " | organiza:%q", rec.Organizer)
		}
		if rec.Link != "" {
			fmt.Fprintf(&sb, " | link:%s", rec.Link)
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
