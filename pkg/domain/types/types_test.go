package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mut-digital/mutbot/pkg/domain/types"
)

func TestCategoryValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		category types.Category
		wantErr  bool
	}{
		{name: "restaurants", category: types.CategoryRestaurants},
		{name: "stores", category: types.CategoryStores},
		{name: "empty means any", category: types.CategoryAny},
		{name: "unknown value", category: types.Category("cinemas"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if tt.wantErr {
				gt.Error(t, err)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestRouteValidate(t *testing.T) {
	t.Parallel()

	for _, route := range []types.Route{types.RouteVector, types.RouteEvents, types.RouteOther} {
		gt.NoError(t, route.Validate())
	}
	gt.Error(t, types.Route("weather").Validate())
	gt.Error(t, types.Route("").Validate())
}

func TestIDValidate(t *testing.T) {
	t.Parallel()

	gt.NoError(t, types.UserID("56912345678").Validate())
	gt.Error(t, types.UserID("").Validate())
	gt.NoError(t, types.MessageID("wamid.HBgLNTY5").Validate())
	gt.Error(t, types.MessageID("").Validate())
}
