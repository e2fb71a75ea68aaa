package goPin

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix       = "pinlock"
	attemptRecordVersionV1 = 1

	// attemptRecordTTL bounds how long a stale record can linger. It covers
	// the deepest table tier (24h) with room to spare.
	attemptRecordTTL = 48 * time.Hour
)

var errAttemptRedisUnavailable = errors.New("attempt store redis unavailable")

// RedisAttemptStore is an [AttemptStore] for shared kiosk/terminal
// deployments where several processes serve one operator profile. Records are
// TTL'd so abandoned profiles do not accumulate.
type RedisAttemptStore struct {
	redis redis.UniversalClient
	key   string
}

// NewRedisAttemptStore describes the newredisattemptstore operation and its observable behavior.
//
// NewRedisAttemptStore may return an error when input validation, dependency calls, or security checks fail.
// NewRedisAttemptStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisAttemptStore(client redis.UniversalClient, namespace string) *RedisAttemptStore {
	if namespace == "" {
		namespace = "default"
	}
	return &RedisAttemptStore{
		redis: client,
		key:   attemptKeyPrefix + ":" + namespace,
	}
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisAttemptStore) Load(ctx context.Context) (*AttemptRecord, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", errAttemptRedisUnavailable, err)
	}

	record, err := decodeAttemptRecord(data)
	if err != nil {
		// Unknown layout: treat as absent, same as the file store's corrupt-read path.
		return nil, nil
	}
	return record, nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisAttemptStore) Save(ctx context.Context, record *AttemptRecord) error {
	if record == nil {
		return s.Clear(ctx)
	}

	encoded, err := encodeAttemptRecord(record)
	if err != nil {
		return err
	}

	ttl := attemptRecordTTL
	if record.LockedUntil != nil {
		if until := time.Until(*record.LockedUntil) + time.Hour; until > ttl {
			ttl = until
		}
	}

	if err := s.redis.Set(ctx, s.key, encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errAttemptRedisUnavailable, err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisAttemptStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", errAttemptRedisUnavailable, err)
	}
	return nil
}

func encodeAttemptRecord(record *AttemptRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(attemptRecordVersionV1)

	if record.FailedAttempts < 0 {
		return nil, errors.New("attempt record failed count negative")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint32(record.FailedAttempts)); err != nil {
		return nil, err
	}

	if record.LockedUntil == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		if err := binary.Write(&buf, binary.BigEndian, record.LockedUntil.Unix()); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func decodeAttemptRecord(data []byte) (*AttemptRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != attemptRecordVersionV1 {
		return nil, errors.New("invalid attempt record version")
	}

	var failed uint32
	if err := binary.Read(reader, binary.BigEndian, &failed); err != nil {
		return nil, err
	}

	record := &AttemptRecord{FailedAttempts: int(failed)}

	hasLock, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if hasLock == 1 {
		var unix int64
		if err := binary.Read(reader, binary.BigEndian, &unix); err != nil {
			return nil, err
		}
		until := time.Unix(unix, 0)
		record.LockedUntil = &until
	}

	return record, nil
}
