package cache

import (
	"context"
	"testing"
	"time"

	"github.com/oriys/polaris/internal/domain"
)

func testKey(user string, action domain.Action) Key {
	return Key{UserID: user, ResourceType: "doc", ResourceID: "doc1", Action: action}
}

func TestInMemoryCache_PutAndGet(t *testing.T) {
	c := NewInMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	key := testKey("alice", domain.ActionView)

	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put(ctx, key, domain.Allow())

	d, ok := c.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if !d.Allowed || d.Reason != "" {
		t.Fatalf("cached decision = %+v, want allow with empty reason", d)
	}
}

func TestInMemoryCache_Expiry(t *testing.T) {
	c := NewInMemoryCache(10 * time.Millisecond)
	defer c.Close()

	ctx := context.Background()
	key := testKey("alice", domain.ActionView)

	c.Put(ctx, key, domain.Deny("nope"))

	if _, ok := c.Get(ctx, key); !ok {
		t.Fatal("expected hit immediately after Put")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("expected miss after TTL elapsed")
	}
}

func TestInMemoryCache_SizeStableAcrossGets(t *testing.T) {
	c := NewInMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	key := testKey("alice", domain.ActionView)

	c.Put(ctx, key, domain.Allow())
	before := c.Size(ctx)

	for i := 0; i < 5; i++ {
		c.Get(ctx, key)
	}
	if after := c.Size(ctx); after != before {
		t.Fatalf("Size changed from %d to %d across repeated Gets", before, after)
	}

	// Re-putting the same key overwrites; it must not grow the cache.
	c.Put(ctx, key, domain.Allow())
	if after := c.Size(ctx); after != before {
		t.Fatalf("Size changed from %d to %d after re-Put of same key", before, after)
	}
}

func TestInMemoryCache_DistinctKeys(t *testing.T) {
	c := NewInMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	c.Put(ctx, testKey("alice", domain.ActionView), domain.Allow())
	c.Put(ctx, testKey("alice", domain.ActionEdit), domain.Deny("nope"))
	c.Put(ctx, testKey("bob", domain.ActionView), domain.Allow())

	if got := c.Size(ctx); got != 3 {
		t.Fatalf("Size = %d, want 3", got)
	}

	d, ok := c.Get(ctx, testKey("alice", domain.ActionEdit))
	if !ok || d.Allowed {
		t.Fatalf("Get(alice, edit) = %+v, %v; want cached denial", d, ok)
	}
}

func TestInMemoryCache_Clear(t *testing.T) {
	c := NewInMemoryCache(time.Minute)
	defer c.Close()

	ctx := context.Background()
	c.Put(ctx, testKey("alice", domain.ActionView), domain.Allow())
	c.Put(ctx, testKey("bob", domain.ActionView), domain.Allow())

	c.Clear(ctx)

	if got := c.Size(ctx); got != 0 {
		t.Fatalf("Size after Clear = %d, want 0", got)
	}
	if _, ok := c.Get(ctx, testKey("alice", domain.ActionView)); ok {
		t.Fatal("expected miss after Clear")
	}
}

func TestInMemoryCache_DefaultTTL(t *testing.T) {
	c := NewInMemoryCache(0)
	defer c.Close()

	if c.TTL() != DefaultTTL {
		t.Fatalf("TTL = %v, want DefaultTTL %v", c.TTL(), DefaultTTL)
	}
}
