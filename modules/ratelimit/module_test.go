package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/example/url-shortener/domain/ratelimit"
)

func TestModule_Name(t *testing.T) {
	m := NewModule(ModuleConfig{}, newMockLogger())
	if m.Name() != "rate-limiter" {
		t.Errorf("Expected name rate-limiter, got %s", m.Name())
	}
}

func TestModule_Backends(t *testing.T) {
	tests := []struct {
		name    string
		config  ModuleConfig
		wantErr bool
		check   func(t *testing.T, l ratelimit.Limiter)
	}{
		{
			name:   "disabled",
			config: ModuleConfig{Limit: ratelimit.Config{Enabled: false}},
			check: func(t *testing.T, l ratelimit.Limiter) {
				if _, ok := l.(Disabled); !ok {
					t.Errorf("Expected Disabled limiter, got %T", l)
				}
			},
		},
		{
			name: "memory",
			config: ModuleConfig{
				Limit:           ratelimit.DefaultConfig(),
				JanitorInterval: time.Minute,
			},
			check: func(t *testing.T, l ratelimit.Limiter) {
				if _, ok := l.(*MemoryLimiter); !ok {
					t.Errorf("Expected *MemoryLimiter, got %T", l)
				}
			},
		},
		{
			name: "memory with invalid limit",
			config: ModuleConfig{
				Limit: ratelimit.Config{Enabled: true, MaxRequests: 0, Window: time.Minute},
			},
			wantErr: true,
		},
		{
			name: "unknown backend",
			config: ModuleConfig{
				Limit:   ratelimit.DefaultConfig(),
				Backend: "memcached",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModule(tt.config, newMockLogger())
			err := m.Start(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected Start to fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			defer m.Stop(context.Background())

			tt.check(t, m.Limiter())
			if m.GetMiddleware() == nil {
				t.Error("Expected middleware to be initialized")
			}

			status := m.Health(context.Background())
			if !status.Healthy {
				t.Errorf("Expected healthy module, got %q", status.Message)
			}
		})
	}
}

func TestModule_RedisUnavailable(t *testing.T) {
	m := NewModule(ModuleConfig{
		Limit:     ratelimit.DefaultConfig(),
		Backend:   BackendRedis,
		RedisAddr: "127.0.0.1:1",
	}, newMockLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := m.Start(ctx); err == nil {
		m.Stop(ctx)
		t.Fatal("Expected Start to fail without Redis")
	}
	if m.Health(ctx).Healthy {
		t.Error("Module without limiter should be unhealthy")
	}
}

func TestModule_Redis(t *testing.T) {
	newRedisClient(t)

	m := NewModule(ModuleConfig{
		Limit:     ratelimit.Config{Enabled: true, MaxRequests: 2, Window: time.Minute},
		Backend:   BackendRedis,
		RedisAddr: "localhost:6379",
		KeyPrefix: "test:ratelimit:module:",
	}, newMockLogger())

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.Stop(ctx)
	defer m.client.Del(ctx, "test:ratelimit:module:client", "test:ratelimit:module:client:counter")

	if _, ok := m.Limiter().(*SlidingWindowLimiter); !ok {
		t.Fatalf("Expected *SlidingWindowLimiter, got %T", m.Limiter())
	}
	if !m.Health(ctx).Healthy {
		t.Error("Expected healthy module")
	}
}
