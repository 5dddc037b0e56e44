package gencache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/haircarepro/server/internal/domain/careplan"
)

// ValkeyStore caches raw generation payloads in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "genplan"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (careplan.RawPlan, bool, error) {
	if key == "" {
		return careplan.RawPlan{}, false, nil
	}
	cmd := s.client.B().Get().Key(s.planKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return careplan.RawPlan{}, false, nil
		}
		return careplan.RawPlan{}, false, err
	}
	var plan careplan.RawPlan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return careplan.RawPlan{}, false, err
	}
	return plan, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, key string, plan careplan.RawPlan, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.planKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) planKey(key string) string {
	return s.prefix + ":" + key
}

var _ careplan.Cache = (*ValkeyStore)(nil)
