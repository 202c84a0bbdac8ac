package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the Storage driver for multi-instance deployments (REDIS_ADDR).
type Redis struct {
	rdb *redis.Client
	box *Box
}

func OpenRedis(addr string, box *Box) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb, box: box}, nil
}

type redisRecord struct {
	Token    string          `json:"token"`
	Identity json.RawMessage `json:"identity"`
	SavedAt  time.Time       `json:"savedAt"`
}

func (r *Redis) Get(ctx context.Context, key string) (*Record, error) {
	raw, err := r.rdb.Get(ctx, "session:"+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		_ = r.Delete(ctx, key)
		return nil, ErrNoSession
	}
	token, err := r.box.Open(rec.Token)
	if err != nil {
		_ = r.Delete(ctx, key)
		return nil, ErrNoSession
	}
	return &Record{Token: token, Identity: rec.Identity, SavedAt: rec.SavedAt}, nil
}

func (r *Redis) Put(ctx context.Context, key string, rec *Record) error {
	sealed, err := r.box.Seal(rec.Token)
	if err != nil {
		return err
	}
	savedAt := rec.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	raw, err := json.Marshal(redisRecord{Token: sealed, Identity: rec.Identity, SavedAt: savedAt})
	if err != nil {
		return err
	}
	// TTL keyed to the cookie expiry; redis expires the record itself.
	return r.rdb.Set(ctx, "session:"+key, raw, TTL).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, "session:"+key).Err()
}
