// Package catalog keeps the denormalized restaurant, cuisine and review structures
// consistent with each other.
//
// Redis only guarantees atomicity per structure. Each operation here issues its
// independent writes together and waits for all of them, even after one failed;
// independent reads stop at the first failure. Writes that depend on
// earlier results (the average after a rating increment) run strictly after. A
// failure aborts the operation and is returned as is. Writes that already landed
// are not rolled back; see [PartialWriteHook].
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jacentio/bites/internal/page"
	"github.com/jacentio/bites/store"
	"github.com/jacentio/bites/weather"
)

// PartialWriteHook is called when a multi-structure write failed after some of its
// structures may already have been written. It runs after the failure is known and
// cannot change the returned error.
type PartialWriteHook func(ctx context.Context, op, entityID string, err error)

// WeatherReader resolves cached or fresh weather for a restaurant.
type WeatherReader interface {
	Lookup(ctx context.Context, restaurantID string, locate weather.LocationFunc) ([]byte, error)
}

// Options configures a Service. Zero values take defaults.
type Options struct {
	// Weather serves Service.Weather. Nil makes weather lookups fail with ErrUpstream.
	Weather WeatherReader

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// NewID generates restaurant and review ids. Defaults to uuid.NewString.
	NewID func() string

	// Now stamps reviews. Defaults to time.Now.
	Now func() time.Time

	// OnPartialWrite defaults to logging a warning.
	OnPartialWrite PartialWriteHook
}

// Service implements the restaurant, cuisine and review operations.
type Service struct {
	store          *store.Store
	weather        WeatherReader
	logger         *slog.Logger
	newID          func() string
	now            func() time.Time
	onPartialWrite PartialWriteHook
}

// New creates a Service on an open store.
func New(s *store.Store, opts Options) *Service {
	svc := &Service{
		store:          s,
		weather:        opts.Weather,
		logger:         opts.Logger,
		newID:          opts.NewID,
		now:            opts.Now,
		onPartialWrite: opts.OnPartialWrite,
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.newID == nil {
		svc.newID = uuid.NewString
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.onPartialWrite == nil {
		svc.onPartialWrite = svc.logPartialWrite
	}
	return svc
}

func (s *Service) logPartialWrite(_ context.Context, op, entityID string, err error) {
	s.logger.Warn("partial write left in store",
		"op", op,
		"entityID", entityID,
		"error", err,
	)
}

// guard fails with ErrNotFound unless the restaurant's field map exists.
// The check is advisory: nothing stops a delete between the check and the write,
// but restaurants are never deleted.
func (s *Service) guard(ctx context.Context, restaurantID string) error {
	exists, err := s.store.Restaurants().Exists(ctx, restaurantID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: restaurant %s", ErrNotFound, restaurantID)
	}
	return nil
}

// CreateRestaurant stores a new restaurant, links it to its cuisines and ranks it at 0.
//
// All writes are issued at once and each runs to completion, so a failure of one does
// not cancel the others. If any fails the restaurant may be partially visible (for
// example ranked but without a field map); the partial write hook is called with the
// first error and nothing is compensated.
func (s *Service) CreateRestaurant(ctx context.Context, in NewRestaurant) (Restaurant, error) {
	id := s.newID()
	rec := store.Restaurant{ID: id, Name: in.Name, Location: in.Location}
	cuisines := uniqueSorted(in.Cuisines)

	var g errgroup.Group
	for _, c := range cuisines {
		g.Go(func() error { return s.store.Cuisines().Add(ctx, c) })
		g.Go(func() error { return s.store.Cuisines().AddRestaurant(ctx, c, id) })
		g.Go(func() error { return s.store.RestaurantCuisines().Add(ctx, id, c) })
	}
	g.Go(func() error { return s.store.Restaurants().Put(ctx, rec) })
	g.Go(func() error { return s.store.Ranking().Upsert(ctx, id, 0) })

	if err := g.Wait(); err != nil {
		s.onPartialWrite(ctx, "create restaurant", id, err)
		return Restaurant{}, err
	}

	s.logger.Info("restaurant created", "restaurantID", id, "cuisines", len(cuisines))
	return restaurantView(rec, cuisines), nil
}

// GetRestaurant returns the restaurant and counts the view.
// The returned view count includes this view.
func (s *Service) GetRestaurant(ctx context.Context, restaurantID string) (Restaurant, error) {
	if err := s.guard(ctx, restaurantID); err != nil {
		return Restaurant{}, err
	}

	var (
		views    int64
		rec      store.Restaurant
		found    bool
		cuisines []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = s.store.Restaurants().IncrViewCount(gctx, restaurantID, 1)
		return err
	})
	g.Go(func() (err error) {
		rec, found, err = s.store.Restaurants().Get(gctx, restaurantID)
		return err
	})
	g.Go(func() (err error) {
		cuisines, err = s.store.RestaurantCuisines().Members(gctx, restaurantID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Restaurant{}, err
	}
	if !found {
		return Restaurant{}, fmt.Errorf("%w: restaurant %s", ErrNotFound, restaurantID)
	}

	rec.ViewCount = views
	sort.Strings(cuisines)
	return restaurantView(rec, cuisines), nil
}

// ListRestaurants returns one window of restaurants, best rated first.
func (s *Service) ListRestaurants(ctx context.Context, w page.Window) ([]Restaurant, error) {
	start, end := w.Bounds()
	ids, err := s.store.Ranking().RangeDesc(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return s.restaurants(ctx, ids)
}

// ListCuisines returns every known cuisine name, sorted.
func (s *Service) ListCuisines(ctx context.Context) ([]string, error) {
	cuisines, err := s.store.Cuisines().All(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(cuisines)
	return cuisines, nil
}

// RestaurantsByCuisine returns the restaurants serving cuisine, sorted by name.
// An unknown cuisine yields an empty list.
func (s *Service) RestaurantsByCuisine(ctx context.Context, cuisine string) ([]Restaurant, error) {
	ids, err := s.store.Cuisines().Restaurants(ctx, cuisine)
	if err != nil {
		return nil, err
	}
	out, err := s.restaurants(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// restaurants loads the views of ids concurrently, keeping their order.
// Ids whose field map is gone are skipped.
func (s *Service) restaurants(ctx context.Context, ids []string) ([]Restaurant, error) {
	recs := make([]store.Restaurant, len(ids))
	found := make([]bool, len(ids))
	cuisines := make([][]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() (err error) {
			recs[i], found[i], err = s.store.Restaurants().Get(gctx, id)
			return err
		})
		g.Go(func() (err error) {
			cuisines[i], err = s.store.RestaurantCuisines().Members(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Restaurant, 0, len(ids))
	for i := range ids {
		if !found[i] {
			continue
		}
		sort.Strings(cuisines[i])
		out = append(out, restaurantView(recs[i], cuisines[i]))
	}
	return out, nil
}

// AddReview stores a review and folds its rating into the restaurant's average.
//
// The list push, the details write and the rating increment are issued together.
// Only once all three landed is the average recomputed from the post-increment sum
// and list length, then written to the field map and the ranking.
func (s *Service) AddReview(ctx context.Context, restaurantID string, in NewReview) (Review, error) {
	if err := s.guard(ctx, restaurantID); err != nil {
		return Review{}, err
	}

	rec := store.Review{
		ID:           s.newID(),
		RestaurantID: restaurantID,
		Rating:       in.Rating,
		Text:         in.Text,
		Timestamp:    s.now().UnixMilli(),
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := s.store.Reviews().PushFront(ctx, restaurantID, rec.ID)
		return err
	})
	g.Go(func() error { return s.store.Reviews().PutDetails(ctx, rec) })
	g.Go(func() error {
		_, err := s.store.Restaurants().IncrTotalStars(ctx, restaurantID, rec.Rating)
		return err
	})
	if err := g.Wait(); err != nil {
		s.onPartialWrite(ctx, "add review", rec.ID, err)
		return Review{}, err
	}

	avg, err := s.store.Ranking().Recompute(ctx, restaurantID)
	if err != nil {
		s.onPartialWrite(ctx, "add review", rec.ID, err)
		return Review{}, err
	}

	s.logger.Info("review added",
		"restaurantID", restaurantID,
		"reviewID", rec.ID,
		"avgStars", avg,
	)
	return reviewView(rec), nil
}

// ListReviews returns one window of the restaurant's reviews, most recent first.
func (s *Service) ListReviews(ctx context.Context, restaurantID string, w page.Window) ([]Review, error) {
	if err := s.guard(ctx, restaurantID); err != nil {
		return nil, err
	}

	start, end := w.Bounds()
	ids, err := s.store.Reviews().Range(ctx, restaurantID, start, end)
	if err != nil {
		return nil, err
	}

	recs := make([]store.Review, len(ids))
	found := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() (err error) {
			recs[i], found[i], err = s.store.Reviews().Details(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Review, 0, len(ids))
	for i := range ids {
		if found[i] {
			out = append(out, reviewView(recs[i]))
		}
	}
	return out, nil
}

// DeleteReview removes a review from the restaurant's list and deletes its details,
// then takes its rating out of the average. It returns the remaining review ids.
//
// The review counts as deleted if either structure still held it: a review left
// half-deleted by an earlier failure can be deleted again, and only a review gone
// from both structures is ErrNotFound. A review owned by another restaurant is
// ErrNotFound and left untouched.
func (s *Service) DeleteReview(ctx context.Context, restaurantID, reviewID string) ([]string, error) {
	if err := s.guard(ctx, restaurantID); err != nil {
		return nil, err
	}

	details, hasDetails, err := s.store.Reviews().Details(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if hasDetails && details.RestaurantID != restaurantID {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
	}

	var (
		removed, deleted int64
		g                errgroup.Group
	)
	g.Go(func() (err error) {
		removed, err = s.store.Reviews().Remove(ctx, restaurantID, reviewID)
		return err
	})
	g.Go(func() (err error) {
		deleted, err = s.store.Reviews().DeleteDetails(ctx, reviewID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.onPartialWrite(ctx, "delete review", reviewID, err)
		return nil, err
	}
	if removed == 0 && deleted == 0 {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
	}

	// Only the caller that actually deleted the details subtracts the rating,
	// so concurrent deletes of one review subtract it once.
	if deleted > 0 && hasDetails {
		if _, err := s.store.Restaurants().IncrTotalStars(ctx, restaurantID, -details.Rating); err != nil {
			s.onPartialWrite(ctx, "delete review", reviewID, err)
			return nil, err
		}
	}
	avg, err := s.store.Ranking().Recompute(ctx, restaurantID)
	if err != nil {
		s.onPartialWrite(ctx, "delete review", reviewID, err)
		return nil, err
	}

	remaining, err := s.store.Reviews().Range(ctx, restaurantID, 0, -1)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review deleted",
		"restaurantID", restaurantID,
		"reviewID", reviewID,
		"avgStars", avg,
	)
	return remaining, nil
}

// Weather returns the restaurant's weather JSON through the read-through cache.
func (s *Service) Weather(ctx context.Context, restaurantID string) ([]byte, error) {
	if err := s.guard(ctx, restaurantID); err != nil {
		return nil, err
	}
	if s.weather == nil {
		return nil, fmt.Errorf("%w: no weather source configured", ErrUpstream)
	}

	payload, err := s.weather.Lookup(ctx, restaurantID, func(ctx context.Context) (string, bool, error) {
		return s.store.Restaurants().Location(ctx, restaurantID)
	})
	if err != nil {
		if errors.Is(err, weather.ErrNoLocation) {
			return nil, fmt.Errorf("%w: coordinates of restaurant %s: %w", ErrNotFound, restaurantID, err)
		}
		return nil, err
	}
	return payload, nil
}

func uniqueSorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
