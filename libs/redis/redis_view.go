package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stardustagi/HelpDeskGPT/libs/logs"
	"go.uber.org/zap"
)

// Nil 键不存在
var Nil = redis.Nil

// RedisConfig 对应配置文件中的 [redis]
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

type RedisCmd interface {
	redis.Cmdable
}

// RedisCli 给业务层用的带前缀视图
type RedisCli interface {
	KeyPrefix() string
	NativeCmd() RedisCmd
	Get(ctx context.Context, key string) ([]byte, error)
	// Set expire 为空表示不过期，否则按 time.ParseDuration 解析
	Set(ctx context.Context, key string, value []byte, expire string) error
	SetNX(ctx context.Context, key string, value []byte, expire string) (bool, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, expire string) (bool, error)
}

type redisView struct {
	cmd    RedisCmd
	prefix string
	logger *zap.Logger
}

func NewRedisView(cmd RedisCmd, prefix string, logger *zap.Logger) RedisCli {
	if logger == nil {
		logger = logs.GetLogger("redis")
	}
	return &redisView{cmd: cmd, prefix: prefix, logger: logger}
}

// NewClient 按配置创建连接并包装成视图
func NewClient(cfg RedisConfig, logger *zap.Logger) RedisCli {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisView(client, cfg.Prefix, logger)
}

func (r *redisView) KeyPrefix() string {
	return r.prefix
}

func (r *redisView) NativeCmd() RedisCmd {
	return r.cmd
}

func (r *redisView) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func parseExpire(expire string) (time.Duration, error) {
	if expire == "" {
		return 0, nil
	}
	return time.ParseDuration(expire)
}

func (r *redisView) Get(ctx context.Context, key string) ([]byte, error) {
	return r.cmd.Get(ctx, r.key(key)).Bytes()
}

func (r *redisView) Set(ctx context.Context, key string, value []byte, expire string) error {
	d, err := parseExpire(expire)
	if err != nil {
		r.logger.Error("invalid expire", logs.String("key", key), logs.String("expire", expire), logs.ErrorInfo(err))
		return err
	}
	return r.cmd.Set(ctx, r.key(key), value, d).Err()
}

func (r *redisView) SetNX(ctx context.Context, key string, value []byte, expire string) (bool, error) {
	d, err := parseExpire(expire)
	if err != nil {
		return false, err
	}
	return r.cmd.SetNX(ctx, r.key(key), value, d).Result()
}

func (r *redisView) Del(ctx context.Context, keys ...string) (int64, error) {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	return r.cmd.Del(ctx, full...).Result()
}

func (r *redisView) Expire(ctx context.Context, key string, expire string) (bool, error) {
	d, err := parseExpire(expire)
	if err != nil {
		return false, err
	}
	return r.cmd.Expire(ctx, r.key(key), d).Result()
}
