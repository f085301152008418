package usecase

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/mut-digital/mutbot/pkg/domain/types"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
)

// Classification is the pipeline branch the classifier picked for a message.
type Classification struct {
	Route    types.Route
	Category types.Category
}

const classifySystemPrompt = `Eres el clasificador de consultas del asistente virtual del centro comercial MUT.
Tu única función es clasificar la consulta del usuario.

## Rutas:
- "vector": consultas sobre tiendas, restaurantes, comida, menús, compras, productos, ubicaciones de locales, horarios de locales
- "events": consultas sobre eventos, actividades, talleres, exposiciones, conciertos, ferias, clases
- "other": saludos, agradecimientos, o consultas no clasificables en las anteriores

## Categoría (solo para ruta "vector"):
- "restaurants": la consulta es sobre comida o locales gastronómicos
- "stores": la consulta es sobre retail, compras o productos
- "": no se puede acotar a una sola categoría`

type classifierResponse struct {
	Route    string `json:"route"`
	Category string `json:"category"`
}

// classifySchema constrains the classifier output to known routes.
func classifySchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "QueryClassification",
		Description: "Routing decision for one user query",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"route": {
				Type:        gollem.TypeString,
				Description: "Pipeline branch for the query",
				Enum:        []string{"vector", "events", "other"},
				Required:    true,
			},
			"category": {
				Type:        gollem.TypeString,
				Description: "Knowledge-base category, empty when not applicable",
				Enum:        []string{"restaurants", "stores", ""},
			},
		},
	}
}

// Classify routes a combined user message to a pipeline branch. A failed or
// unparseable classification degrades to RouteOther so the user still gets
// an answer.
func (x *UseCases) Classify(ctx context.Context, message string) Classification {
	fallback := Classification{Route: types.RouteOther}

	session, err := x.llm.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(classifySchema()),
		gollem.WithSessionSystemPrompt(classifySystemPrompt),
	)
	if err != nil {
		logging.From(ctx).Warn("failed to create classifier session", "error", err)
		return fallback
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(message))
	if err != nil || len(resp.Texts) == 0 {
		logging.From(ctx).Warn("classifier call failed", "error", err)
		return fallback
	}

	var parsed classifierResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		logging.From(ctx).Warn("failed to parse classifier response",
			"error", goerr.Wrap(err, "invalid JSON", goerr.V("response", resp.Texts[0])))
		return fallback
	}

	route := types.Route(parsed.Route)
	if err := route.Validate(); err != nil {
		return fallback
	}
	category := types.Category(parsed.Category)
	if err := category.Validate(); err != nil {
		category = types.CategoryAny
	}

	return Classification{Route: route, Category: category}
}
