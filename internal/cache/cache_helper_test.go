package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCacheHelperRoundTrip(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), "test:")

	type payload struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}

	if err := helper.Set(ctx, "item", payload{ID: 7, Name: "alpha"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "item", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != 7 || got.Name != "alpha" {
		t.Errorf("got %+v", got)
	}
}

func TestCacheHelperMiss(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), "test:")

	var dest struct{}
	if err := helper.Get(ctx, "absent", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("err = %v, want ErrCacheNotFound", err)
	}
	if _, err := helper.GetString(ctx, "absent"); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("GetString err = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperStrings(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), "session:")

	if err := helper.SetString(ctx, "token", "42", time.Hour); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	value, err := helper.GetString(ctx, "token")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if value != "42" {
		t.Errorf("value = %q, want 42", value)
	}

	if err := helper.Delete(ctx, "token"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := helper.GetString(ctx, "token"); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("err after delete = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperExists(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(newTestClient(t), "test:")

	if err := helper.SetString(ctx, "present", "x", time.Minute); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	exists, err := helper.Exists(ctx, "present")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("key should exist")
	}

	exists, err = helper.Exists(ctx, "absent")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("key should not exist")
	}
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	helper := NewCacheHelper(client, "question:")
	other := NewCacheHelper(client, "user:")

	for _, key := range []string{"list:1", "list:2", "detail:9"} {
		if err := helper.SetString(ctx, key, "v", time.Minute); err != nil {
			t.Fatalf("SetString: %v", err)
		}
	}
	if err := other.SetString(ctx, "list:1", "keep", time.Minute); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}

	if _, err := helper.GetString(ctx, "list:1"); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("list:1 should be invalidated, got %v", err)
	}
	if _, err := helper.GetString(ctx, "detail:9"); err != nil {
		t.Errorf("detail:9 should survive, got %v", err)
	}
	if _, err := other.GetString(ctx, "list:1"); err != nil {
		t.Errorf("other prefix should survive, got %v", err)
	}
}

func TestCacheHelperNilClient(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "test:")

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set with nil client should degrade silently, got %v", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete with nil client should degrade silently, got %v", err)
	}

	var dest struct{}
	if err := helper.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get err = %v, want ErrCacheNotAvailable", err)
	}
}

func TestCacheManagerHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy", func(t *testing.T) {
		manager := NewCacheManager(newTestClient(t))
		if err := manager.HealthCheck(ctx); err != nil {
			t.Errorf("HealthCheck: %v", err)
		}
	})

	t.Run("no client", func(t *testing.T) {
		manager := NewCacheManager(nil)
		if err := manager.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
			t.Errorf("err = %v, want ErrCacheNotAvailable", err)
		}
	})
}
