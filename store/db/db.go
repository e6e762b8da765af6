// Package db selects and constructs the blob store driver configured in
// the instance profile.
package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/internal/profile"
	"github.com/genesiss-tech/genesiss/store"
	"github.com/genesiss-tech/genesiss/store/db/postgres"
	"github.com/genesiss-tech/genesiss/store/db/s3"
	"github.com/genesiss-tech/genesiss/store/db/sqlite"
)

// NewDriver creates the storage driver named by profile.Driver.
func NewDriver(ctx context.Context, profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile.DSN)
	case "postgres":
		return postgres.NewDB(profile.DSN)
	case "s3":
		return s3.NewClient(ctx, profile.BlobBucket, profile.S3Region)
	default:
		return nil, errors.Errorf("unknown storage driver %q", profile.Driver)
	}
}
