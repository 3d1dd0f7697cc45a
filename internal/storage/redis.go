package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
)

type RedisConfig struct {
	// URL, when set, takes precedence over Addr/Password/DB.
	URL      string
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStorage stores each profile as a hash under <prefix><user id>.
type RedisStorage struct {
	rdb    *goredis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisStorage(ctx context.Context, config RedisConfig, logger *zap.Logger) (*RedisStorage, error) {
	prefix := config.Prefix
	if prefix == "" {
		prefix = "schoolbot:user:"
	}

	opts := &goredis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	}
	if config.URL != "" {
		parsed, err := goredis.ParseURL(config.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	opts.DialTimeout = 5 * time.Second

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis registry ready", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return &RedisStorage{rdb: rdb, prefix: prefix, logger: logger}, nil
}

func (s *RedisStorage) key(id string) string {
	return s.prefix + id
}

func (s *RedisStorage) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrUserNotFound
	}

	grade, err := strconv.Atoi(fields["grade"])
	if err != nil {
		return nil, fmt.Errorf("corrupt grade for user %s: %w", id, err)
	}
	classNumber, err := strconv.Atoi(fields["class_number"])
	if err != nil {
		return nil, fmt.Errorf("corrupt class_number for user %s: %w", id, err)
	}
	user := &models.UserProfile{ID: id, Grade: grade, ClassNumber: classNumber}
	if ts, err := strconv.ParseInt(fields["updated_at"], 10, 64); err == nil {
		user.UpdatedAt = time.Unix(ts, 0)
	}
	return user, nil
}

func (s *RedisStorage) UpsertUser(ctx context.Context, id string, grade, classNumber int) error {
	// HSET writes all fields in one command, so a profile is never half replaced.
	err := s.rdb.HSet(ctx, s.key(id),
		"grade", grade,
		"class_number", classNumber,
		"updated_at", time.Now().Unix(),
	).Err()
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStorage) Close() error {
	return s.rdb.Close()
}
