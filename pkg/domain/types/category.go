package types

import "github.com/m-mizutani/goerr/v2"

// Category identifies a knowledge-base document category.
type Category string

const (
	// CategoryRestaurants covers restaurant and food court documents
	CategoryRestaurants Category = "restaurants"
	// CategoryStores covers retail store documents
	CategoryStores Category = "stores"
	// CategoryAny disables category filtering
	CategoryAny Category = ""
)

// AllCategories lists the categories loaded into the vector store, in the
// order they are fetched and assembled.
func AllCategories() []Category {
	return []Category{CategoryRestaurants, CategoryStores}
}

// Validate checks if the Category is a known value
func (x Category) Validate() error {
	switch x {
	case CategoryRestaurants, CategoryStores, CategoryAny:
		return nil
	}
	return goerr.New("unknown category", goerr.V("category", string(x)))
}

func (x Category) String() string {
	return string(x)
}
