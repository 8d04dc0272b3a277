package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

const (
	codeKeyPrefix    = "codes/"
	revokedKeyPrefix = "revoked/"
)

// codeGrant is what an authorization code unlocks.
type codeGrant struct {
	SubjectID string    `json:"subject_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// revocation marks a token ID as revoked. A zero ExpiresAt means the token
// never expires.
type revocation struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// CodeStore keeps pending authorization codes, keyed by their hash, and
// revoked token IDs in a blob bucket. A file:// bucket lets the CLI redeem
// codes issued by another process and makes revocations survive restarts.
type CodeStore struct {
	bucket *blob.Bucket
	mu     sync.Mutex
}

// put stores a grant under codeHash.
func (s *CodeStore) put(ctx context.Context, codeHash string, grant codeGrant) error {
	data, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to encode authorization code: %w", err)
	}
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := s.bucket.WriteAll(ctx, codeKeyPrefix+codeHash, data, opts); err != nil {
		return fmt.Errorf("failed to store authorization code: %w", err)
	}
	return nil
}

// take removes and returns the grant stored under codeHash. ok is false when
// the code is unknown or was consumed concurrently.
func (s *CodeStore) take(ctx context.Context, codeHash string) (codeGrant, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := codeKeyPrefix + codeHash
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return codeGrant{}, false, nil
		}
		return codeGrant{}, false, fmt.Errorf("failed to read authorization code: %w", err)
	}

	if err := s.bucket.Delete(ctx, key); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return codeGrant{}, false, nil
		}
		return codeGrant{}, false, fmt.Errorf("failed to consume authorization code: %w", err)
	}

	var grant codeGrant
	if err := json.Unmarshal(data, &grant); err != nil {
		return codeGrant{}, false, fmt.Errorf("failed to decode authorization code: %w", err)
	}
	return grant, true, nil
}

// revoke records jti as revoked until expiresAt.
func (s *CodeStore) revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	data, err := json.Marshal(revocation{ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("failed to encode revocation: %w", err)
	}
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := s.bucket.WriteAll(ctx, revokedKeyPrefix+jti, data, opts); err != nil {
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	return nil
}

// revokedUntil returns the stored revocation for jti. ok is false when the
// token was never revoked.
func (s *CodeStore) revokedUntil(ctx context.Context, jti string) (time.Time, bool, error) {
	data, err := s.bucket.ReadAll(ctx, revokedKeyPrefix+jti)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to read revocation: %w", err)
	}

	var rec revocation
	if err := json.Unmarshal(data, &rec); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to decode revocation: %w", err)
	}
	return rec.ExpiresAt, true, nil
}

// dropRevocation deletes the record for jti. A missing record is not an error.
func (s *CodeStore) dropRevocation(ctx context.Context, jti string) error {
	if err := s.bucket.Delete(ctx, revokedKeyPrefix+jti); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("failed to delete revocation: %w", err)
	}
	return nil
}

// Close releases the bucket.
func (s *CodeStore) Close() error {
	return s.bucket.Close()
}

// NewCodeStore wraps an open bucket.
func NewCodeStore(bucket *blob.Bucket) *CodeStore {
	return &CodeStore{bucket: bucket}
}

// OpenCodeStore opens the bucket at bucketURL.
func OpenCodeStore(ctx context.Context, bucketURL string) (*CodeStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open code bucket: %w", err)
	}
	return NewCodeStore(bucket), nil
}
