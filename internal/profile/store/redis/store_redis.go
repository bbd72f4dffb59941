package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"profileguard/internal/profile/models"
	id "profileguard/pkg/domain"
	"profileguard/pkg/platform/sentinel"
)

// Keys share a hash tag so every key of one account lands in the same slot.
const keyPrefix = "profile:"

const (
	fieldPlanTier       = "plan_tier"
	fieldPurchasedSlots = "purchased_slots"
	fieldShape          = "shape"
)

// createIfAbsent runs the dedupe, the capacity check and the append
// atomically on the server.
//
// KEYS[1] account hash, KEYS[2] reference list, KEYS[3] normalized name set
// ARGV[1] normalized name, ARGV[2] encoded reference
var createIfAbsent = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[3], ARGV[1]) == 1 then
  return 'existing'
end
local slots = tonumber(redis.call('HGET', KEYS[1], 'purchased_slots') or '0') or 0
if slots < 0 then
  slots = 0
end
if redis.call('LLEN', KEYS[2]) >= 1 + slots then
  return 'limit_reached'
end
redis.call('RPUSH', KEYS[2], ARGV[2])
redis.call('SADD', KEYS[3], ARGV[1])
redis.call('HSETNX', KEYS[1], 'plan_tier', 'anonymous')
redis.call('HSET', KEYS[1], 'shape', 'collection')
return 'created'
`)

// RedisStore keeps each account as a hash for quota, a list of encoded
// references and a set of normalized names for the dedupe check.
type RedisStore struct {
	client *redis.Client
}

func New(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func accountKey(accountID id.AccountID) string {
	return keyPrefix + "{" + accountID.String() + "}:account"
}

func referencesKey(accountID id.AccountID) string {
	return keyPrefix + "{" + accountID.String() + "}:references"
}

func namesKey(accountID id.AccountID) string {
	return keyPrefix + "{" + accountID.String() + "}:names"
}

func (s *RedisStore) GetReferenceSet(ctx context.Context, accountID id.AccountID) (models.ReferenceSet, error) {
	var (
		shapeCmd *redis.StringCmd
		listCmd  *redis.StringSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		shapeCmd = pipe.HGet(ctx, accountKey(accountID), fieldShape)
		listCmd = pipe.LRange(ctx, referencesKey(accountID), 0, -1)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, wrapErr(err, "get reference set")
	}

	raw, err := listCmd.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, wrapErr(err, "list references")
	}
	refs := make([]models.IdentityReference, 0, len(raw))
	for _, item := range raw {
		var ref models.IdentityReference
		if err := json.Unmarshal([]byte(item), &ref); err != nil {
			return nil, fmt.Errorf("decode identity reference: %w", err)
		}
		refs = append(refs, ref)
	}

	shape, err := shapeCmd.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, wrapErr(err, "get reference shape")
	}
	return models.FromShape(models.SetKind(shape), refs), nil
}

func (s *RedisStore) GetQuotaInfo(ctx context.Context, accountID id.AccountID) (models.AccountQuotaInfo, error) {
	values, err := s.client.HMGet(ctx, accountKey(accountID), fieldPlanTier, fieldPurchasedSlots).Result()
	if err != nil {
		return models.AccountQuotaInfo{}, wrapErr(err, "get quota info")
	}

	info := models.DefaultQuotaInfo()
	if tier, ok := values[0].(string); ok {
		info.PlanTier = models.PlanTierFromStore(tier)
	}
	if slots, ok := values[1].(string); ok {
		if n, err := strconv.Atoi(slots); err == nil && n > 0 {
			info.PurchasedSlots = n
		}
	}
	return info, nil
}

func (s *RedisStore) CreateReferenceIfAbsent(ctx context.Context, accountID id.AccountID, ref models.IdentityReference) (models.CreateResult, error) {
	if ref.ID.IsNil() {
		ref.ID = id.NewReferenceID()
	}
	encoded, err := json.Marshal(ref)
	if err != nil {
		return models.CreateResult{}, fmt.Errorf("encode identity reference: %w", err)
	}

	keys := []string{accountKey(accountID), referencesKey(accountID), namesKey(accountID)}
	outcome, err := createIfAbsent.Run(ctx, s.client, keys, ref.NormalizedName(), string(encoded)).Text()
	if err != nil {
		return models.CreateResult{}, wrapErr(err, "create reference if absent")
	}

	switch outcome {
	case "created":
		return models.CreateResult{Created: true}, nil
	case "existing":
		return models.CreateResult{Existing: true}, nil
	case "limit_reached":
		return models.CreateResult{LimitReached: true}, nil
	default:
		return models.CreateResult{}, fmt.Errorf("create reference if absent: unexpected script result %q", outcome)
	}
}

// SetQuotaInfo replaces the plan and purchased slots of an account.
func (s *RedisStore) SetQuotaInfo(ctx context.Context, accountID id.AccountID, info models.AccountQuotaInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	err := s.client.HSet(ctx, accountKey(accountID),
		fieldPlanTier, info.PlanTier.String(),
		fieldPurchasedSlots, info.PurchasedSlots,
	).Err()
	if err != nil {
		return wrapErr(err, "set quota info")
	}
	return nil
}

func wrapErr(err error, op string) error {
	if errors.Is(err, redis.ErrClosed) || sentinel.IsConnectionFailure(err) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
