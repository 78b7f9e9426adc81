package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL  = 24 * time.Hour
	recentLimit = 100
)

// Store keeps finished games in redis for a limited time, plus a
// recency index.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// OpenStore connects to REDIS_URL and pings it.
func OpenStore(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required for the archive store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStore(rdb, ttl), nil
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *Store) keyGame(gameID string) string { return "simchess:game:" + strings.TrimSpace(gameID) }
func (s *Store) keyRecent() string            { return "simchess:recent" }

// Archive saves g and indexes it by finish time.
func (s *Store) Archive(ctx context.Context, g Game) error {
	if strings.TrimSpace(g.GameID) == "" {
		return fmt.Errorf("archive: empty game id")
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.keyGame(g.GameID), raw, s.ttl).Err(); err != nil {
		return err
	}
	score := float64(g.FinishedAt.Unix())
	if err := s.rdb.ZAdd(ctx, s.keyRecent(), redis.Z{Score: score, Member: g.GameID}).Err(); err != nil {
		return err
	}
	_ = s.rdb.ZRemRangeByRank(ctx, s.keyRecent(), 0, -recentLimit-1).Err()
	return s.rdb.Expire(ctx, s.keyRecent(), s.ttl).Err()
}

// Load returns nil, nil when the game is unknown or expired.
func (s *Store) Load(ctx context.Context, gameID string) (*Game, error) {
	raw, err := s.rdb.Get(ctx, s.keyGame(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Recent lists up to n game ids, newest first. Expired entries are skipped.
func (s *Store) Recent(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		n = 10
	}
	ids, err := s.rdb.ZRevRange(ctx, s.keyRecent(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		exists, err := s.rdb.Exists(ctx, s.keyGame(id)).Result()
		if err != nil {
			return nil, err
		}
		if exists > 0 {
			out = append(out, id)
		}
	}
	return out, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
