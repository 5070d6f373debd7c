package obdb

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrCredentialValidation is returned when the connection check fails.
var ErrCredentialValidation = errors.New("failed to validate OceanBase credentials")

// ValidateCredentials checks the connection parameters by running SELECT 1.
// Incomplete configs are skipped: the host platform validates required fields
// separately, and a partially filled form should not produce a hard error.
func ValidateCredentials(ctx context.Context, cfg *Config, opts *Options) error {
	if !cfg.IsValid() {
		return nil
	}

	client, err := New(cfg, opts)
	if err != nil {
		return errors.WithSecondaryError(ErrCredentialValidation, err)
	}
	defer func() {
		_ = client.Close()
	}()

	_, err = client.Query(ctx, "SELECT 1")
	if err != nil {
		return errors.WithSecondaryError(ErrCredentialValidation, err)
	}
	return nil
}
