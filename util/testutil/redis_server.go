package testutil

import (
	"github.com/alicebob/miniredis/v2"
)

// RedisServer is an in-process stand-in for the local state store.
type RedisServer struct {
	server *miniredis.Miniredis
}

func NewRedisServer() *RedisServer {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	return &RedisServer{
		server: server,
	}
}

func (s *RedisServer) Addr() string {
	return s.server.Addr()
}

// HSet writes a raw hash field directly, bypassing the StateClient.
// Tests use this to seed malformed records.
func (s *RedisServer) HSet(key, field, value string) {
	s.server.HSet(key, field, value)
}

func (s *RedisServer) Close() {
	s.server.Close()
}
