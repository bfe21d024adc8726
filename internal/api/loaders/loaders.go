package loaders

import (
	"context"
	"net/http"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/somos/attraction/backend/internal/application/services"
	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/domain/providers"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Coordinate is a lookup key for the nearest stop loader
type Coordinate struct {
	Lat float64
	Lon float64
}

// Loaders contains the request-scoped dataloaders
type Loaders struct {
	NearestStopLoader *dataloader.Loader[Coordinate, *entities.Stop]
}

// NewLoaders creates a new instance of Loaders. Every batch of nearest stop
// lookups costs a single stop directory fetch.
func NewLoaders(planner providers.TripPlanner) *Loaders {
	return &Loaders{
		NearestStopLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []Coordinate) []*dataloader.Result[*entities.Stop] {
			results := make([]*dataloader.Result[*entities.Stop], len(keys))
			stops, err := planner.FetchStops(ctx)

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.Stop]{Error: err}
				} else {
					results[i] = &dataloader.Result[*entities.Stop]{Data: services.NearestStop(key.Lat, key.Lon, stops)}
				}
			}
			return results
		}),
	}
}

// For returns the loaders for a given context, or nil when none are attached
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(loadersKey).(*Loaders)
	return loaders
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches a fresh set of loaders to every request
func Middleware(planner providers.TripPlanner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(planner))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AnnotateNearestStops fills in NearestStop on every place that has
// coordinates. Lookup failures leave the annotation empty.
func AnnotateNearestStops(ctx context.Context, places []*entities.FavoritePlace) {
	loaders := For(ctx)
	if loaders == nil {
		return
	}

	thunks := make([]dataloader.Thunk[*entities.Stop], len(places))
	for i, place := range places {
		if place.HasLocation() {
			thunks[i] = loaders.NearestStopLoader.Load(ctx, Coordinate{Lat: *place.Lat, Lon: *place.Lon})
		}
	}

	for i, thunk := range thunks {
		if thunk == nil {
			continue
		}
		if stop, err := thunk(); err == nil {
			places[i].NearestStop = stop
		}
	}
}
