// Package tokenstore persists the client session token in a gocloud.dev blob
// bucket, optionally encrypted with a secrets keeper.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	"github.com/allisson/roleguard/internal/access/domain"
)

// BlobTokenStore implements usecase.TokenStore on a blob bucket.
type BlobTokenStore struct {
	bucket *blob.Bucket
	keeper Keeper
	key    string
}

// Load returns the stored token, or ok=false when none is stored.
func (s *BlobTokenStore) Load(ctx context.Context) (string, bool, error) {
	data, err := s.bucket.ReadAll(ctx, s.key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read session token: %w", err)
	}

	if s.keeper != nil {
		data, err = s.keeper.Decrypt(ctx, data)
		if err != nil {
			return "", false, fmt.Errorf("failed to decrypt session token: %w", err)
		}
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Save overwrites the stored token.
func (s *BlobTokenStore) Save(ctx context.Context, token string) error {
	data := []byte(token)
	if s.keeper != nil {
		encrypted, err := s.keeper.Encrypt(ctx, data)
		if err != nil {
			return fmt.Errorf("failed to encrypt session token: %w", err)
		}
		data = encrypted
	}

	opts := &blob.WriterOptions{ContentType: "application/octet-stream"}
	if err := s.bucket.WriteAll(ctx, s.key, data, opts); err != nil {
		return fmt.Errorf("failed to write session token: %w", err)
	}
	return nil
}

// Delete removes the stored token. A missing token is not an error.
func (s *BlobTokenStore) Delete(ctx context.Context) error {
	if err := s.bucket.Delete(ctx, s.key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	return nil
}

// Close releases the bucket and the keeper.
func (s *BlobTokenStore) Close() error {
	var errs []error
	if s.keeper != nil {
		errs = append(errs, s.keeper.Close())
	}
	errs = append(errs, s.bucket.Close())
	return errors.Join(errs...)
}

// New wraps an open bucket. keeper may be nil for plaintext storage.
func New(bucket *blob.Bucket, keeper Keeper) *BlobTokenStore {
	return &BlobTokenStore{bucket: bucket, keeper: keeper, key: domain.TokenStorageKey}
}

// Open opens the bucket at bucketURL (mem://, file:///path, ...) and, when
// keeperURI is not empty, the keeper used to encrypt the token.
func Open(ctx context.Context, bucketURL, keeperURI string) (*BlobTokenStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open token bucket: %w", err)
	}

	var keeper Keeper
	if keeperURI != "" {
		keeper, err = OpenKeeper(ctx, keeperURI)
		if err != nil {
			_ = bucket.Close()
			return nil, err
		}
	}

	return New(bucket, keeper), nil
}
