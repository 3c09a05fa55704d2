package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"atm-reconciler/core/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// objectPrefix groups archived runs inside the bucket.
const objectPrefix = "runs/"

// Archiver uploads processed stores and their backups to object storage
// after a run, keyed by run date, and prunes archives past retention.
type Archiver struct {
	client        storage.Client
	bucket        string
	retentionDays int
	logger        *zap.Logger
}

// New creates an Archiver. retentionDays <= 0 keeps archives forever.
func New(client storage.Client, bucket string, retentionDays int, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{
		client:        client,
		bucket:        bucket,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Store uploads the given files under runs/<date>/<runID>/. Missing paths
// are skipped silently so a run that produced no backup archives only the
// processed store.
func (a *Archiver) Store(ctx context.Context, runDate time.Time, runID string, paths ...string) error {
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("inspecting %s: %w", path, err)
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}

		key := fmt.Sprintf("%s%s/%s/%s", objectPrefix, runDate.Format("2006-01-02"), runID, filepath.Base(path))
		_, err = a.client.PutObject(ctx, a.bucket, key, f, info.Size(), minio.PutObjectOptions{
			ContentType: xlsxContentType,
		})
		f.Close()
		if err != nil {
			return fmt.Errorf("uploading %s: %w", key, err)
		}

		a.logger.Info("Run artifact archived",
			zap.String("bucket", a.bucket),
			zap.String("object", key),
			zap.Int64("size", info.Size()),
		)
	}
	return nil
}

// Prune removes archived objects older than the retention window and
// returns how many were removed.
func (a *Archiver) Prune(ctx context.Context) (int, error) {
	if a.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -a.retentionDays)

	removed := 0
	for object := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    objectPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return removed, fmt.Errorf("listing archive objects: %w", object.Err)
		}
		if !object.LastModified.Before(cutoff) {
			continue
		}
		if err := a.client.RemoveObject(ctx, a.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("removing %s: %w", object.Key, err)
		}
		removed++
	}

	if removed > 0 {
		a.logger.Info("Expired archives pruned",
			zap.Int("removed", removed),
			zap.Int("retention_days", a.retentionDays),
		)
	}
	return removed, nil
}

func (a *Archiver) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", a.bucket, err)
	}
	return nil
}
