package checks

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"cryptogram-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// RequiredFolders lists the folders the diagnostics archive writes below its prefix.
var RequiredFolders = []string{"payloads", "reports"}

// folderKey returns the key of a folder marker, always ending in "/".
func folderKey(prefix, folder string) string {
	return path.Join(prefix, folder) + "/"
}

// CheckStructure returns a list of missing folders.
func CheckStructure(ctx context.Context, client storage.Client, bucket, prefix string) ([]string, error) {
	var missing []string

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	for _, folder := range RequiredFolders {
		opts := minio.ListObjectsOptions{
			Prefix:    folderKey(prefix, folder),
			Recursive: false,
			MaxKeys:   1,
		}

		found := false
		for obj := range client.ListObjects(ctx, bucket, opts) {
			found = obj.Err == nil
			break
		}

		if !found {
			missing = append(missing, folder)
		}
	}

	return missing, nil
}

// FixStructure creates marker objects for the missing folders.
func FixStructure(ctx context.Context, client storage.Client, bucket, prefix string, logger *zap.Logger, missing []string) error {
	for _, folder := range missing {
		key := folderKey(prefix, folder)
		_, err := client.PutObject(ctx, bucket, key, bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create folder", zap.String("folder", key), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", key))
	}
	return nil
}
