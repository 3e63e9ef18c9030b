// Package cachetest 进程内 Redis 替身，供缓存适配器测试使用
package cachetest

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/p2pexchange/pkg/cache"
)

// Store 通过 go-redis Hook 拦截 GET/SET/DEL，不建立任何连接
type Store struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  map[string]time.Duration
}

// New 返回挂载了 Store 的缓存
func New() (*cache.RedisCache, *Store) {
	s := &Store{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(s)
	return cache.NewWithClient(client), s
}

// Has 键是否存在
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// Raw 键的原始值
func (s *Store) Raw(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

// TTL 最近一次 SET 的过期时间，0 表示不过期
func (s *Store) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttl[key]
}

// Keys 当前所有键
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// DialHook 拒绝拨号
func (s *Store) DialHook(redis.DialHook) redis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, fmt.Errorf("cachetest: dialing is disabled")
	}
}

func (s *Store) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		return s.process(cmd)
	}
}

func (s *Store) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			if err := s.process(cmd); err != nil && err != redis.Nil {
				return err
			}
		}
		return nil
	}
}

func (s *Store) process(cmd redis.Cmder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	args := cmd.Args()
	switch strings.ToLower(cmd.Name()) {
	case "get":
		val, ok := s.data[str(args[1])]
		if !ok {
			return redis.Nil
		}
		cmd.(*redis.StringCmd).SetVal(string(val))
	case "set":
		key := str(args[1])
		s.data[key] = []byte(str(args[2]))
		s.ttl[key] = expiry(args[3:])
		cmd.(*redis.StatusCmd).SetVal("OK")
	case "del":
		var n int64
		for _, a := range args[1:] {
			key := str(a)
			if _, ok := s.data[key]; ok {
				delete(s.data, key)
				delete(s.ttl, key)
				n++
			}
		}
		cmd.(*redis.IntCmd).SetVal(n)
	default:
		return fmt.Errorf("cachetest: unsupported command %q", cmd.Name())
	}
	return nil
}

func str(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func expiry(opts []interface{}) time.Duration {
	for i := 0; i+1 < len(opts); i++ {
		n, err := strconv.ParseInt(str(opts[i+1]), 10, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(str(opts[i])) {
		case "ex":
			return time.Duration(n) * time.Second
		case "px":
			return time.Duration(n) * time.Millisecond
		}
	}
	return 0
}
