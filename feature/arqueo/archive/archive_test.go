package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"atm-reconciler/core/storage/mocks"
)

func writeArtifact(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("workbook bytes"), 0o644))
	return path
}

func objectChannel(objects ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objects))
	for _, obj := range objects {
		ch <- obj
	}
	close(ch)
	return ch
}

func TestArchiverStore(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "arqueos").Return(true, nil)
	client.On("PutObject", mock.Anything, "arqueos",
		"runs/2025-11-28/run-1/gestion.xlsx",
		mock.Anything, int64(14), mock.Anything).Return(minio.UploadInfo{}, nil)
	client.On("PutObject", mock.Anything, "arqueos",
		"runs/2025-11-28/run-1/gestion.xlsx.backup",
		mock.Anything, int64(14), mock.Anything).Return(minio.UploadInfo{}, nil)

	a := New(client, "arqueos", 0, nil)
	runDate := time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC)

	storePath := writeArtifact(t, "gestion.xlsx")
	backupPath := writeArtifact(t, "gestion.xlsx.backup")

	err := a.Store(context.Background(), runDate, "run-1", storePath, backupPath)
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestArchiverStore_CreatesMissingBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "arqueos").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "arqueos", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "arqueos", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	a := New(client, "arqueos", 0, nil)
	err := a.Store(context.Background(), time.Now(), "run-1", writeArtifact(t, "gestion.xlsx"))
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestArchiverStore_SkipsMissingAndEmptyPaths(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "arqueos").Return(true, nil)

	a := New(client, "arqueos", 0, nil)
	err := a.Store(context.Background(), time.Now(), "run-1",
		"", filepath.Join(t.TempDir(), "never-written.xlsx"))
	require.NoError(t, err)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiverStore_UploadFailure(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "arqueos").Return(true, nil)
	client.On("PutObject", mock.Anything, "arqueos", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	a := New(client, "arqueos", 0, nil)
	err := a.Store(context.Background(), time.Now(), "run-1", writeArtifact(t, "gestion.xlsx"))
	assert.Error(t, err)
}

func TestArchiverPrune(t *testing.T) {
	old := minio.ObjectInfo{Key: "runs/2025-01-05/run-9/gestion.xlsx", LastModified: time.Now().AddDate(0, 0, -90)}
	fresh := minio.ObjectInfo{Key: "runs/2025-11-28/run-1/gestion.xlsx", LastModified: time.Now().AddDate(0, 0, -1)}

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "arqueos", mock.Anything).
		Return(objectChannel(old, fresh))
	client.On("RemoveObject", mock.Anything, "arqueos", old.Key, mock.Anything).Return(nil)

	a := New(client, "arqueos", 30, nil)
	removed, err := a.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	client.AssertNotCalled(t, "RemoveObject", mock.Anything, "arqueos", fresh.Key, mock.Anything)
}

func TestArchiverPrune_DisabledWithoutRetention(t *testing.T) {
	client := new(mocks.Client)

	a := New(client, "arqueos", 0, nil)
	removed, err := a.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiverPrune_ListFailure(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "arqueos", mock.Anything).
		Return(objectChannel(minio.ObjectInfo{Err: errors.New("bucket gone")}))

	a := New(client, "arqueos", 30, nil)
	_, err := a.Prune(context.Background())
	assert.Error(t, err)
}
