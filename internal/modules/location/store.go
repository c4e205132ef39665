// README: Nurse proximity index backed by Redis GEO and per-nurse hashes.
package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"nursecare/internal/geo"
	"nursecare/internal/types"
)

const (
	nurseGeoKey    = "location:nurses"
	nurseKeyPrefix = "location:nurse:%s"
	bucketPrefix   = "location:bucket:%s"
	// A nurse that stops reporting drops out of search after positionTTL.
	positionTTL = 15 * time.Minute
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// IndexNurse records p in the GEO set, the nurse's hash and the geohash
// bucket the nurse currently sits in.
func (s *Store) IndexNurse(ctx context.Context, p NursePosition) error {
	prev, err := s.redis.HGet(ctx, nurseKey(p.NurseID), "geohash").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reading previous geohash: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.GeoAdd(ctx, nurseGeoKey, &redis.GeoLocation{
		Name:      string(p.NurseID),
		Longitude: p.Point.Lng,
		Latitude:  p.Point.Lat,
	})
	pipe.HSet(ctx, nurseKey(p.NurseID), map[string]any{
		"lat":        strconv.FormatFloat(p.Point.Lat, 'f', -1, 64),
		"lng":        strconv.FormatFloat(p.Point.Lng, 'f', -1, 64),
		"geohash":    p.Geohash,
		"services":   strings.Join(p.Services, ","),
		"updated_at": p.UpdatedAt.UTC().Format(time.RFC3339),
	})
	pipe.Expire(ctx, nurseKey(p.NurseID), positionTTL)
	if prev != "" && prev != p.Geohash {
		pipe.SRem(ctx, bucketKey(prev), string(p.NurseID))
	}
	pipe.SAdd(ctx, bucketKey(p.Geohash), string(p.NurseID))
	pipe.Expire(ctx, bucketKey(p.Geohash), positionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) RemoveNurse(ctx context.Context, id types.ID) error {
	gh, err := s.redis.HGet(ctx, nurseKey(id), "geohash").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.redis.TxPipeline()
	pipe.ZRem(ctx, nurseGeoKey, string(id))
	pipe.Del(ctx, nurseKey(id))
	if gh != "" {
		pipe.SRem(ctx, bucketKey(gh), string(id))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// NearbyNurses returns indexed nurses within radiusKm of p, closest first.
// Members whose hash has expired are pruned from the GEO set on the way.
func (s *Store) NearbyNurses(ctx context.Context, p geo.Point, radiusKm float64, limit int) ([]NursePosition, error) {
	hits, err := s.redis.GeoSearchLocation(ctx, nurseGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(hits))
	for i, h := range hits {
		cmds[i] = pipe.HGetAll(ctx, nurseKey(types.ID(h.Name)))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	out := make([]NursePosition, 0, len(hits))
	var stale []any
	for i, h := range hits {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			stale = append(stale, h.Name)
			continue
		}
		out = append(out, positionFromHash(types.ID(h.Name), geo.Point{Lat: h.Latitude, Lng: h.Longitude}, fields))
	}
	if len(stale) > 0 {
		// Best effort; a failed prune is retried on the next search.
		_ = s.redis.ZRem(ctx, nurseGeoKey, stale...).Err()
	}
	return out, nil
}

// BucketMembers lists the nurses last seen inside a geohash cell.
func (s *Store) BucketMembers(ctx context.Context, geohash string) ([]types.ID, error) {
	members, err := s.redis.SMembers(ctx, bucketKey(geohash)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(members))
	for i, m := range members {
		ids[i] = types.ID(m)
	}
	return ids, nil
}

func positionFromHash(id types.ID, fallback geo.Point, fields map[string]string) NursePosition {
	p := NursePosition{NurseID: id, Point: fallback, Geohash: fields["geohash"]}
	if lat, err := strconv.ParseFloat(fields["lat"], 64); err == nil {
		p.Point.Lat = lat
	}
	if lng, err := strconv.ParseFloat(fields["lng"], 64); err == nil {
		p.Point.Lng = lng
	}
	if svc := fields["services"]; svc != "" {
		p.Services = strings.Split(svc, ",")
	}
	if ts, err := time.Parse(time.RFC3339, fields["updated_at"]); err == nil {
		p.UpdatedAt = ts
	}
	return p
}

func nurseKey(id types.ID) string {
	return fmt.Sprintf(nurseKeyPrefix, string(id))
}

func bucketKey(geohash string) string {
	return fmt.Sprintf(bucketPrefix, geohash)
}
