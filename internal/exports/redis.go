package exports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/arencloud/surveyboard/internal/errs"
	"github.com/arencloud/surveyboard/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "surveyboard:export:"
	redisIndexKey  = "surveyboard:exports"
)

// RedisStore keeps each job as a JSON value with a TTL plus a sorted-set
// index scored by creation time in microseconds.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func jobKey(progressID string) string { return redisKeyPrefix + progressID }

func (s *RedisStore) Save(ctx context.Context, job *models.ExportJob) error {
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	b, err := json.Marshal(job)
	if err != nil {
		return errs.Wrap(err, "encode export job")
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, jobKey(job.ProgressID), b, s.ttl)
		p.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(job.CreatedAt.UnixMicro()), Member: job.ProgressID})
		return nil
	})
	return errs.Wrap(err, "store export job")
}

func (s *RedisStore) Get(ctx context.Context, progressID string) (*models.ExportJob, error) {
	b, err := s.rdb.Get(ctx, jobKey(progressID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errs.Wrap(err, "get export job")
	}
	return decodeJob(b)
}

// decodeJob rejects records whose state is outside the known set.
func decodeJob(b []byte) (*models.ExportJob, error) {
	var job models.ExportJob
	if err := json.Unmarshal(b, &job); err != nil {
		return nil, errs.Wrap(err, "decode export job")
	}
	if _, err := ParseState(string(job.State)); err != nil {
		return nil, errs.Wrapf(err, "decode export job %s", job.ProgressID)
	}
	return &job, nil
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 100
	}
	ids, err := s.rdb.ZRevRange(ctx, redisIndexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errs.Wrap(err, "list export index")
	}
	if len(ids) == 0 {
		return []models.ExportJob{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = jobKey(id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errs.Wrap(err, "load export jobs")
	}
	out := make([]models.ExportJob, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // expired between index read and value read
		}
		if job, err := decodeJob([]byte(str)); err == nil {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (s *RedisStore) Update(ctx context.Context, job *models.ExportJob) error {
	job.UpdatedAt = time.Now()
	b, err := json.Marshal(job)
	if err != nil {
		return errs.Wrap(err, "encode export job")
	}
	return errs.Wrap(s.rdb.SetArgs(ctx, jobKey(job.ProgressID), b, redis.SetArgs{KeepTTL: true}).Err(), "update export job")
}

func (s *RedisStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	max := strconv.FormatInt(t.UnixMicro(), 10)
	ids, err := s.rdb.ZRangeByScore(ctx, redisIndexKey, &redis.ZRangeBy{Min: "-inf", Max: "(" + max}).Result()
	if err != nil {
		return 0, errs.Wrap(err, "scan export index")
	}
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = jobKey(id)
		members[i] = id
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		p.ZRem(ctx, redisIndexKey, members...)
		return nil
	})
	if err != nil {
		return 0, errs.Wrap(err, "prune export jobs")
	}
	return int64(len(ids)), nil
}
