package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type testProfile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("starting miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return New(rdb, "profile:"), mr
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	want := testProfile{UserID: "alice", DisplayName: "Alice"}
	if err := c.Set(ctx, "alice", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got testProfile
	hit, err := c.Get(ctx, "alice", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() hit = false, want true")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got testProfile
	hit, err := c.Get(context.Background(), "nobody", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit = true for absent key, want false")
	}
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "alice", testProfile{UserID: "alice"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var got testProfile
	hit, err := c.Get(ctx, "alice", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit = true after Delete, want false")
	}
}

func TestCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "alice", testProfile{UserID: "alice"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	mr.FastForward(2 * time.Minute)

	var got testProfile
	hit, err := c.Get(ctx, "alice", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit = true after TTL elapsed, want false")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)

	mr.Set("profile:alice", "{not json")

	var got testProfile
	hit, err := c.Get(context.Background(), "alice", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("Get() hit = true for corrupt entry, want false")
	}
	if mr.Exists("profile:alice") {
		t.Error("corrupt entry should be evicted on read")
	}
}
