package tokenstore

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Keeper drivers selectable through TOKEN_STORE_KEEPER_URI.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper encrypts the stored token at rest. *secrets.Keeper implements it.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// OpenKeeper opens a gocloud secrets keeper.
// Supports base64key://, hashivault://, awskms://, gcpkms:// and azurekeyvault://.
func OpenKeeper(ctx context.Context, keeperURI string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open token keeper: %w", err)
	}
	return keeper, nil
}
