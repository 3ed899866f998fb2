package binding

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "revix:binding:"

// Redis reads bindings from sets keyed prefix+account, one address per
// member.
type Redis struct {
	client redis.Cmdable
	prefix string
}

func NewRedis(client redis.Cmdable, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), nil
}

func (r *Redis) BoundAddresses(ctx context.Context, externalAccountID string) ([]common.Address, error) {
	members, err := r.client.SMembers(ctx, r.prefix+externalAccountID).Result()
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, len(members))
	for _, m := range members {
		if !common.IsHexAddress(m) {
			continue
		}
		out = append(out, common.HexToAddress(m))
	}
	return out, nil
}
