package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jacentio/bites/internal/keys"
)

// Store owns the Redis handle and hands out one adapter per entity kind.
type Store struct {
	client redis.UniversalClient
	config Config
	keys   keys.Space

	restaurants        *Restaurants
	restaurantCuisines *RestaurantCuisines
	cuisines           *Cuisines
	ranking            *Ranking
	reviews            *Reviews
	weather            *Weather
}

// New wraps an existing client. The caller keeps ownership of the client's lifecycle
// unless it calls Close on the returned Store.
func New(client redis.UniversalClient, config Config) *Store {
	config.validate()
	space := keys.Space(config.KeyPrefix)
	s := &Store{
		client: client,
		config: config,
		keys:   space,
	}
	s.restaurants = &Restaurants{client: client, keys: space}
	s.restaurantCuisines = &RestaurantCuisines{client: client, keys: space}
	s.cuisines = &Cuisines{client: client, keys: space}
	s.ranking = &Ranking{client: client, keys: space}
	s.reviews = &Reviews{client: client, keys: space}
	s.weather = &Weather{client: client, keys: space}
	return s
}

// Open connects to the Redis instance at config.URL and verifies it answers.
func Open(ctx context.Context, config Config) (*Store, error) {
	config.validate()
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, wrap("ping", opts.Addr, err)
	}
	return New(client, config), nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return wrap("ping", "", s.client.Ping(ctx).Err())
}

// Keys returns the key namespace of the store.
func (s *Store) Keys() keys.Space { return s.keys }

// Restaurants returns the restaurant field map adapter.
func (s *Store) Restaurants() *Restaurants { return s.restaurants }

// RestaurantCuisines returns the per-restaurant cuisine set adapter.
func (s *Store) RestaurantCuisines() *RestaurantCuisines { return s.restaurantCuisines }

// Cuisines returns the cuisine set adapter.
func (s *Store) Cuisines() *Cuisines { return s.cuisines }

// Ranking returns the rating sorted set adapter.
func (s *Store) Ranking() *Ranking { return s.ranking }

// Reviews returns the review list and review field map adapter.
func (s *Store) Reviews() *Reviews { return s.reviews }

// Weather returns the weather payload adapter.
func (s *Store) Weather() *Weather { return s.weather }

// --- Restaurants ---

// Restaurants operates on restaurant field maps.
type Restaurants struct {
	client redis.UniversalClient
	keys   keys.Space
}

// Exists reports whether the restaurant's field map exists.
func (r *Restaurants) Exists(ctx context.Context, id string) (bool, error) {
	key := r.keys.Restaurant(id)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, wrap("exists", key, err)
	}
	return n > 0, nil
}

// Get reads the whole field map. found is false when the map does not exist.
func (r *Restaurants) Get(ctx context.Context, id string) (rest Restaurant, found bool, err error) {
	key := r.keys.Restaurant(id)
	raw, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Restaurant{}, false, wrap("hgetall", key, err)
	}
	if len(raw) == 0 {
		return Restaurant{}, false, nil
	}
	rest, err = decodeRestaurant(raw)
	if err != nil {
		return Restaurant{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return rest, true, nil
}

// Put writes the creation fields of the restaurant.
func (r *Restaurants) Put(ctx context.Context, rest Restaurant) error {
	key := r.keys.Restaurant(rest.ID)
	return wrap("hset", key, r.client.HSet(ctx, key, rest.Fields()).Err())
}

// IncrViewCount adds by to the view counter and returns the new value.
func (r *Restaurants) IncrViewCount(ctx context.Context, id string, by int64) (int64, error) {
	key := r.keys.Restaurant(id)
	n, err := r.client.HIncrBy(ctx, key, FieldViewCount, by).Result()
	if err != nil {
		return 0, wrap("hincrby", key, err)
	}
	return n, nil
}

// IncrTotalStars adds by to the running rating sum and returns the new sum.
func (r *Restaurants) IncrTotalStars(ctx context.Context, id string, by float64) (float64, error) {
	key := r.keys.Restaurant(id)
	sum, err := r.client.HIncrByFloat(ctx, key, FieldTotalStars, by).Result()
	if err != nil {
		return 0, wrap("hincrbyfloat", key, err)
	}
	return sum, nil
}

// Location reads the "lng,lat" location field.
func (r *Restaurants) Location(ctx context.Context, id string) (string, bool, error) {
	key := r.keys.Restaurant(id)
	loc, err := r.client.HGet(ctx, key, FieldLocation).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("hget", key, err)
	}
	return loc, loc != "", nil
}

// --- Restaurant cuisines ---

// RestaurantCuisines operates on the cuisine set owned by each restaurant.
type RestaurantCuisines struct {
	client redis.UniversalClient
	keys   keys.Space
}

// Add adds cuisine to the restaurant's own cuisine set.
func (c *RestaurantCuisines) Add(ctx context.Context, restaurantID, cuisine string) error {
	key := c.keys.RestaurantCuisines(restaurantID)
	return wrap("sadd", key, c.client.SAdd(ctx, key, cuisine).Err())
}

// Members lists the restaurant's cuisines in no particular order.
func (c *RestaurantCuisines) Members(ctx context.Context, restaurantID string) ([]string, error) {
	key := c.keys.RestaurantCuisines(restaurantID)
	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, wrap("smembers", key, err)
	}
	return members, nil
}

// --- Cuisines ---

// Cuisines operates on the global cuisine set and the per-cuisine restaurant sets.
type Cuisines struct {
	client redis.UniversalClient
	keys   keys.Space
}

// Add registers a cuisine name in the global set.
func (c *Cuisines) Add(ctx context.Context, cuisine string) error {
	key := c.keys.Cuisines()
	return wrap("sadd", key, c.client.SAdd(ctx, key, cuisine).Err())
}

// All lists every known cuisine in no particular order.
func (c *Cuisines) All(ctx context.Context) ([]string, error) {
	key := c.keys.Cuisines()
	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, wrap("smembers", key, err)
	}
	return members, nil
}

// IsKnown reports whether cuisine is in the global set.
func (c *Cuisines) IsKnown(ctx context.Context, cuisine string) (bool, error) {
	key := c.keys.Cuisines()
	ok, err := c.client.SIsMember(ctx, key, cuisine).Result()
	if err != nil {
		return false, wrap("sismember", key, err)
	}
	return ok, nil
}

// AddRestaurant adds restaurantID to the cuisine's restaurant set.
func (c *Cuisines) AddRestaurant(ctx context.Context, cuisine, restaurantID string) error {
	key := c.keys.Cuisine(cuisine)
	return wrap("sadd", key, c.client.SAdd(ctx, key, restaurantID).Err())
}

// Restaurants lists the ids of restaurants serving cuisine.
func (c *Cuisines) Restaurants(ctx context.Context, cuisine string) ([]string, error) {
	key := c.keys.Cuisine(cuisine)
	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, wrap("smembers", key, err)
	}
	return members, nil
}

// --- Reviews ---

// Reviews operates on per-restaurant review lists and review field maps.
type Reviews struct {
	client redis.UniversalClient
	keys   keys.Space
}

// PushFront prepends reviewID to the restaurant's list and returns the new length.
func (r *Reviews) PushFront(ctx context.Context, restaurantID, reviewID string) (int64, error) {
	key := r.keys.Reviews(restaurantID)
	n, err := r.client.LPush(ctx, key, reviewID).Result()
	if err != nil {
		return 0, wrap("lpush", key, err)
	}
	return n, nil
}

// Range returns the review ids at list positions [start, end], inclusive.
func (r *Reviews) Range(ctx context.Context, restaurantID string, start, end int64) ([]string, error) {
	key := r.keys.Reviews(restaurantID)
	ids, err := r.client.LRange(ctx, key, start, end).Result()
	if err != nil {
		return nil, wrap("lrange", key, err)
	}
	return ids, nil
}

// Len returns the number of reviews in the restaurant's list.
func (r *Reviews) Len(ctx context.Context, restaurantID string) (int64, error) {
	key := r.keys.Reviews(restaurantID)
	n, err := r.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, wrap("llen", key, err)
	}
	return n, nil
}

// Remove deletes every occurrence of reviewID from the list and returns how many were removed.
func (r *Reviews) Remove(ctx context.Context, restaurantID, reviewID string) (int64, error) {
	key := r.keys.Reviews(restaurantID)
	n, err := r.client.LRem(ctx, key, 0, reviewID).Result()
	if err != nil {
		return 0, wrap("lrem", key, err)
	}
	return n, nil
}

// PutDetails writes the review's field map.
func (r *Reviews) PutDetails(ctx context.Context, review Review) error {
	key := r.keys.ReviewDetails(review.ID)
	return wrap("hset", key, r.client.HSet(ctx, key, review.Fields()).Err())
}

// Details reads the review's field map. found is false when it does not exist.
func (r *Reviews) Details(ctx context.Context, reviewID string) (review Review, found bool, err error) {
	key := r.keys.ReviewDetails(reviewID)
	raw, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Review{}, false, wrap("hgetall", key, err)
	}
	if len(raw) == 0 {
		return Review{}, false, nil
	}
	review, err = decodeReview(raw)
	if err != nil {
		return Review{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return review, true, nil
}

// Rating reads only the rating field of a review.
func (r *Reviews) Rating(ctx context.Context, reviewID string) (float64, bool, error) {
	key := r.keys.ReviewDetails(reviewID)
	v, err := r.client.HGet(ctx, key, FieldRating).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("hget", key, err)
	}
	rating, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s=%q", ErrInvalidField, FieldRating, v)
	}
	return rating, true, nil
}

// DeleteDetails removes the review's field map and returns the number of keys deleted.
func (r *Reviews) DeleteDetails(ctx context.Context, reviewID string) (int64, error) {
	key := r.keys.ReviewDetails(reviewID)
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return 0, wrap("del", key, err)
	}
	return n, nil
}

// --- Weather ---

// Weather operates on cached weather payloads.
type Weather struct {
	client redis.UniversalClient
	keys   keys.Space
}

// Get returns the cached payload. found is false when absent or expired.
func (w *Weather) Get(ctx context.Context, restaurantID string) (payload []byte, found bool, err error) {
	key := w.keys.Weather(restaurantID)
	payload, err = w.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("get", key, err)
	}
	return payload, true, nil
}

// Set stores payload, replacing any previous one, with the given expiry.
func (w *Weather) Set(ctx context.Context, restaurantID string, payload []byte, ttl time.Duration) error {
	key := w.keys.Weather(restaurantID)
	return wrap("set", key, w.client.Set(ctx, key, payload, ttl).Err())
}
