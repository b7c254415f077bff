// Package store provides the Redis data access layer for restaurants, cuisines,
// reviews and cached weather.
//
// One logical entity is spread over several physical structures. The store exposes
// one adapter per structure family and never combines them; keeping the structures
// consistent with each other is the caller's job.
//
// # Physical Layout
//
//	bites:restaurants:<id>           hash        id, name, location, viewCount, totalStars, avgStars
//	bites:restaurant_cuisines:<id>   set         cuisine names of the restaurant
//	bites:cuisine:<name>             set         restaurant ids serving the cuisine
//	bites:cuisines                   set         every known cuisine name
//	bites:restaurants_by_rating      sorted set  restaurant id scored by avgStars
//	bites:reviews:<restaurantId>     list        review ids, most recent first
//	bites:review_details:<reviewId>  hash        id, restaurantId, rating, text, timestamp
//	bites:weather:<restaurantId>     string      weather JSON, expires after one hour
//
// # Adapters
//
//   - [Store.Restaurants] - restaurant field maps and their counters
//   - [Store.RestaurantCuisines] - cuisine set owned by each restaurant
//   - [Store.Cuisines] - global cuisine set and per-cuisine restaurant sets
//   - [Store.Ranking] - rating sorted set, including [Ranking.Recompute]
//   - [Store.Reviews] - review lists and review field maps
//   - [Store.Weather] - expiring weather payloads
//
// # Lifecycle
//
// Use [Open] to connect with a URL, or [New] to wrap an existing client:
//
//	s, err := store.Open(ctx, store.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
// # Errors
//
// Every Redis failure is wrapped with [ErrFailure]. Absence is reported through a
// found flag, never as an error.
package store
