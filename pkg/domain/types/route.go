package types

import "github.com/m-mizutani/goerr/v2"

// Route is the pipeline branch selected by the message classifier.
type Route string

const (
	// RouteVector answers from the store/restaurant knowledge base
	RouteVector Route = "vector"
	// RouteEvents answers from the upcoming-events feed
	RouteEvents Route = "events"
	// RouteOther answers without retrieval context
	RouteOther Route = "other"
)

// Validate checks if the Route is a known value
func (x Route) Validate() error {
	switch x {
	case RouteVector, RouteEvents, RouteOther:
		return nil
	}
	return goerr.New("unknown route", goerr.V("route", string(x)))
}

func (x Route) String() string {
	return string(x)
}
