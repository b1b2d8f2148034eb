package helper

import (
	"context"
	"fmt"
	"time"

	"lab_storage/config"

	"github.com/redis/go-redis/v9"
)

var layoutRedis *redis.Client

// LayoutLeaseTTL bounds how long a floor-plan edit session may hold the
// advisory lease without renewing it.
const LayoutLeaseTTL = 2 * time.Minute

func layoutRedisClient() *redis.Client {
	if layoutRedis == nil {
		addr := config.Config("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		layoutRedis = redis.NewClient(&redis.Options{Addr: addr})
	}
	return layoutRedis
}

func layoutLeaseKey(labId uint) string {
	return fmt.Sprintf("layout:lease:%d", labId)
}

// AcquireLayoutLease takes (or renews) the advisory edit lease for a
// laboratory's floor plan. It returns the current holder when someone
// else already holds it. The lease only warns concurrent editors; the
// batch save stays correct without it through shelf versions.
func AcquireLayoutLease(ctx context.Context, labId uint, holder string) (bool, string, error) {
	rdb := layoutRedisClient()
	key := layoutLeaseKey(labId)

	ok, err := rdb.SetNX(ctx, key, holder, LayoutLeaseTTL).Result()
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, holder, nil
	}

	current, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		// lease expired between SetNX and Get, retry once
		ok, err = rdb.SetNX(ctx, key, holder, LayoutLeaseTTL).Result()
		if err != nil {
			return false, "", err
		}
		return ok, holder, nil
	}
	if err != nil {
		return false, "", err
	}
	if current == holder {
		// renew
		if err := rdb.Expire(ctx, key, LayoutLeaseTTL).Err(); err != nil {
			return false, current, err
		}
		return true, holder, nil
	}
	return false, current, nil
}

// HoldsLayoutLease reports whether holder currently owns the lease.
func HoldsLayoutLease(ctx context.Context, labId uint, holder string) (bool, error) {
	current, err := layoutRedisClient().Get(ctx, layoutLeaseKey(labId)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return current == holder, nil
}

// ReleaseLayoutLease drops the lease if holder owns it.
func ReleaseLayoutLease(ctx context.Context, labId uint, holder string) error {
	rdb := layoutRedisClient()
	key := layoutLeaseKey(labId)
	current, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if current != holder {
		return nil
	}
	return rdb.Del(ctx, key).Err()
}
