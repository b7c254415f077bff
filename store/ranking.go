package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/jacentio/bites/internal/keys"
)

// Ranking operates on the global sorted set of restaurants by average stars.
type Ranking struct {
	client redis.UniversalClient
	keys   keys.Space
}

// Upsert sets the restaurant's score, inserting it if absent.
func (r *Ranking) Upsert(ctx context.Context, restaurantID string, score float64) error {
	key := r.keys.RestaurantsByRating()
	return wrap("zadd", key, r.client.ZAdd(ctx, key, redis.Z{Score: score, Member: restaurantID}).Err())
}

// RangeDesc returns the restaurant ids at ranks [start, end], highest score first.
// Equal scores follow Redis' reverse lexicographic member order.
func (r *Ranking) RangeDesc(ctx context.Context, start, end int64) ([]string, error) {
	key := r.keys.RestaurantsByRating()
	ids, err := r.client.ZRevRange(ctx, key, start, end).Result()
	if err != nil {
		return nil, wrap("zrevrange", key, err)
	}
	return ids, nil
}

// Score returns the restaurant's ranking score. found is false when it is not ranked.
func (r *Ranking) Score(ctx context.Context, restaurantID string) (float64, bool, error) {
	key := r.keys.RestaurantsByRating()
	score, err := r.client.ZScore(ctx, key, restaurantID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("zscore", key, err)
	}
	return score, true, nil
}

// Count returns the number of ranked restaurants.
func (r *Ranking) Count(ctx context.Context) (int64, error) {
	key := r.keys.RestaurantsByRating()
	n, err := r.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, wrap("zcard", key, err)
	}
	return n, nil
}

// recomputeScript derives avgStars = round(totalStars/len(reviews), 1) and writes it to
// the field map and the ranking in one step. Rounding is half away from zero on the
// non-negative quotient; a sum below zero can only be float drift and counts as 0.
//
// KEYS: restaurant field map, review list, ranking.
// ARGV: totalStars field, avgStars field, restaurant id.
var recomputeScript = redis.NewScript(`
local raw = redis.call('HGET', KEYS[1], ARGV[1])
local sum = 0
if raw then sum = tonumber(raw) end
local count = redis.call('LLEN', KEYS[2])
local avg = 0
if count > 0 then
  local x = sum / count * 10
  if x < 0 then x = 0 end
  local r = math.floor(x)
  if x - r >= 0.5 then r = r + 1 end
  avg = r / 10
end
local s = tostring(avg)
redis.call('HSET', KEYS[1], ARGV[2], s)
redis.call('ZADD', KEYS[3], s, ARGV[3])
return s
`)

// Recompute reads the restaurant's rating sum and review count, derives the average
// and writes it to both the field map and the ranking.
//
// The read and both writes run as one script, so no other command interleaves: the
// written average always matches the (sum, count) pair at that instant, and whichever
// recompute runs last sees every increment that landed before it.
func (r *Ranking) Recompute(ctx context.Context, restaurantID string) (float64, error) {
	restaurantKey := r.keys.Restaurant(restaurantID)
	keys := []string{restaurantKey, r.keys.Reviews(restaurantID), r.keys.RestaurantsByRating()}

	raw, err := recomputeScript.Run(ctx, r.client, keys, FieldTotalStars, FieldAvgStars, restaurantID).Text()
	if err != nil {
		return 0, wrap("recompute", restaurantKey, err)
	}
	avg, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidField, FieldAvgStars, raw)
	}
	return avg, nil
}
