// Package trackingstore keeps live tracking sessions in Redis.
//
// Each active session is stored twice:
//
//	tracking:job:<job id>         JSON session document
//	tracking:cleaner:<cleaner id> id of the job the cleaner works on
//
// The cleaner key is the per-cleaner lock. Both keys are created together by a Lua
// script and share the same TTL, so an abandoned session frees its cleaner when it
// expires.
//
// The lock is held for the whole session, PAUSED included: a cleaner on a break cannot
// start another job until the paused one is completed or its session is deleted.
package trackingstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/tracking"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 24 * time.Hour

	maxModifyAttempts = 10
)

// claimScript returns 0 on success, 1 when the job already has a session and 2 when the
// cleaner holds a session for another job.
var claimScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 1
end
local holder = redis.call('GET', KEYS[2])
if holder and holder ~= ARGV[2] then
	return 2
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 0
`)

// releaseScript deletes the job key and the cleaner key, the latter only while it still
// points at this job.
var releaseScript = redis.NewScript(`
redis.call('DEL', KEYS[1])
if redis.call('GET', KEYS[2]) == ARGV[1] then
	redis.call('DEL', KEYS[2])
end
return 0
`)

// Store implements ports.TrackingStore.
type Store struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// New builds a store. A non-positive ttl falls back to DefaultTTL.
func New(rdb redis.UniversalClient, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func jobKey(id kernel.UUID) string {
	return "tracking:job:" + id.String()
}

func cleanerKey(id kernel.UUID) string {
	return "tracking:cleaner:" + id.String()
}

func (s *Store) Create(ctx context.Context, session *tracking.Session) error {
	payload, err := json.Marshal(fromDomain(session))
	if err != nil {
		return err
	}

	code, err := claimScript.Run(ctx, s.rdb,
		[]string{jobKey(session.JobID), cleanerKey(session.CleanerID)},
		payload, session.JobID.String(), s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("claim tracking session: %w", err)
	}

	switch code {
	case 0:
		return nil
	case 1:
		return tracking.ErrSessionExists
	case 2:
		return tracking.ErrCleanerBusy
	default:
		return fmt.Errorf("claim tracking session: unexpected result %d", code)
	}
}

func (s *Store) Get(ctx context.Context, jobID kernel.UUID) (*tracking.Session, error) {
	return read(ctx, s.rdb, jobKey(jobID))
}

// Modify runs fn inside a WATCH transaction on the job key. When another writer touches
// the key between the read and the write, the whole read-modify-write is retried.
func (s *Store) Modify(
	ctx context.Context,
	jobID kernel.UUID,
	fn func(*tracking.Session) error,
) (*tracking.Session, error) {
	key := jobKey(jobID)

	var result *tracking.Session
	txf := func(tx *redis.Tx) error {
		session, err := read(ctx, tx, key)
		if err != nil {
			return err
		}
		if err = fn(session); err != nil {
			return err
		}
		payload, err := json.Marshal(fromDomain(session))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, payload, redis.SetArgs{KeepTTL: true})
			return nil
		})
		if err == nil {
			result = session
		}
		return err
	}

	for attempt := 0; attempt < maxModifyAttempts; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("modify tracking session %s: too many concurrent updates", jobID)
}

func (s *Store) Delete(ctx context.Context, jobID kernel.UUID) error {
	session, err := s.Get(ctx, jobID)
	if errors.Is(err, tracking.ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return err
	}
	return releaseScript.Run(ctx, s.rdb,
		[]string{jobKey(jobID), cleanerKey(session.CleanerID)},
		jobID.String(),
	).Err()
}

// TTL reports the remaining lifetime of a job's session.
func (s *Store) TTL(ctx context.Context, jobID kernel.UUID) (time.Duration, error) {
	return s.rdb.PTTL(ctx, jobKey(jobID)).Result()
}

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func read(ctx context.Context, c getter, key string) (*tracking.Session, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, tracking.ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}

	var dto sessionDTO
	if err = json.Unmarshal(raw, &dto); err != nil {
		return nil, fmt.Errorf("decode tracking session %s: %w", key, err)
	}
	return dto.toDomain()
}
