package checks

import (
	"context"
	"errors"
	"testing"

	"cryptogram-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestCheckStructure(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "diag").Return(false, nil)

		_, err := CheckStructure(context.Background(), mockClient, "diag", "diagnostics")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("Bucket Check Fails", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "diag").Return(false, errors.New("connection refused"))

		_, err := CheckStructure(context.Background(), mockClient, "diag", "diagnostics")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("All Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "diag").Return(true, nil)
		ch := make(chan minio.ObjectInfo)
		close(ch)
		mockClient.On("ListObjects", mock.Anything, "diag", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		missing, err := CheckStructure(context.Background(), mockClient, "diag", "diagnostics")
		assert.NoError(t, err)
		assert.Equal(t, RequiredFolders, missing)
	})

	t.Run("All Present", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "diag").Return(true, nil)

		for _, folder := range RequiredFolders {
			prefix := "diagnostics/" + folder + "/"
			ch := make(chan minio.ObjectInfo, 1)
			ch <- minio.ObjectInfo{Key: prefix}
			close(ch)
			mockClient.On("ListObjects", mock.Anything, "diag", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
				return opts.Prefix == prefix
			})).Return((<-chan minio.ObjectInfo)(ch))
		}

		missing, err := CheckStructure(context.Background(), mockClient, "diag", "diagnostics")
		assert.NoError(t, err)
		assert.Empty(t, missing)
	})
}

func TestFixStructure(t *testing.T) {
	logger := zap.NewNop()
	mockClient := new(mocks.Client)

	mockClient.On("PutObject", mock.Anything, "diag", "diagnostics/reports/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := FixStructure(context.Background(), mockClient, "diag", "diagnostics", logger, []string{"reports"})
	assert.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestFixStructure_NoPrefix(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "diag", "payloads/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, errors.New("denied"))

	err := FixStructure(context.Background(), mockClient, "diag", "", zap.NewNop(), []string{"payloads"})
	assert.ErrorContains(t, err, "denied")
}
