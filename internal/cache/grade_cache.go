package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"studyassist/internal/ai"
)

// GradeCache memoizes freeform grading verdicts. Grading the same answer to
// the same question is deterministic enough that a cached verdict saves a
// full generation round trip.
type GradeCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewGradeCache(client *redisv9.Client, ttl time.Duration) *GradeCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GradeCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *GradeCache) Get(ctx context.Context, question, groundTruth, userAnswer string) (ai.GradeResult, bool, error) {
	raw, err := c.client.Get(ctx, c.key(question, groundTruth, userAnswer)).Result()
	if err == redisv9.Nil {
		return ai.GradeResult{}, false, nil
	}
	if err != nil {
		return ai.GradeResult{}, false, fmt.Errorf("redis get grade failed: %w", err)
	}

	var result ai.GradeResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return ai.GradeResult{}, false, fmt.Errorf("unmarshal cached grade failed: %w", err)
	}
	return result, true, nil
}

func (c *GradeCache) Set(ctx context.Context, question, groundTruth, userAnswer string, result ai.GradeResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal grade cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(question, groundTruth, userAnswer), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set grade failed: %w", err)
	}
	return nil
}

// key hashes the inputs; answers are user-supplied free text and would make
// for unbounded, unprintable redis keys otherwise.
func (c *GradeCache) key(question, groundTruth, userAnswer string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		strings.TrimSpace(strings.ToLower(question)),
		strings.TrimSpace(strings.ToLower(groundTruth)),
		strings.TrimSpace(strings.ToLower(userAnswer)),
	}, "\x00")))
	return "quiz:grade:" + hex.EncodeToString(sum[:])
}
