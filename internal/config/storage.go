package config

import "fmt"

const (
	// StorageDriverFS stores uploads under Storage.LocalDir.
	StorageDriverFS = "fs"

	// StorageDriverS3 stores uploads in an S3 compatible bucket.
	StorageDriverS3 = "s3"
)

// Validate enforces the cross-field rules the struct tags cannot express.
func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageDriverFS:
		if c.LocalDir == "" {
			return fmt.Errorf("storage local_dir is required for the fs driver")
		}
	case StorageDriverS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("storage s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be one of: fs, s3)", c.Driver)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage max_upload_bytes must be positive")
	}

	return nil
}
