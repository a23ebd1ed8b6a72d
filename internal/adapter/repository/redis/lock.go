package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/parceldesk/ledger/internal/domain"
)

// releaseScript deletes the lock only when the caller still owns it,
// so a lock that expired and was re-acquired by someone else is never
// released from under them.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// AccountLocker implements usecase.AccountLocker on Redis SET NX. One
// lock per account serializes recalculations; the TTL bounds how long
// a crashed holder can block the account.
type AccountLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewAccountLocker creates a new AccountLocker.
func NewAccountLocker(client *redis.Client, ttl time.Duration) *AccountLocker {
	return &AccountLocker{
		client: client,
		prefix: "recalc:lock:",
		ttl:    ttl,
	}
}

// Acquire takes the account's lock. It returns
// domain.ErrRecalculationInProgress without blocking when the lock is
// already held.
func (l *AccountLocker) Acquire(ctx context.Context, accountID string) (func(context.Context) error, error) {
	key := l.prefix + accountID
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrRecalculationInProgress
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}

	return release, nil
}
