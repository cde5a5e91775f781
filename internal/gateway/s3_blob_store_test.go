package gateway

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockS3Client は S3PutObjectAPI のテスト用モック
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func TestUpload_PublicURL(t *testing.T) {
	client := new(MockS3Client)
	store := NewS3BlobStore(client, "event-posters", "us-east-1", "")
	image := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

	var uploaded []byte
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "event-posters" &&
			*in.Key == "event_evt-1.jpg" &&
			*in.ContentType == "image/jpeg"
	})).Run(func(args mock.Arguments) {
		body, err := io.ReadAll(args.Get(1).(*s3.PutObjectInput).Body)
		require.NoError(t, err)
		uploaded = body
	}).Return(&s3.PutObjectOutput{}, nil)

	url, err := store.Upload(context.Background(), "event_evt-1.jpg", image)
	require.NoError(t, err)
	assert.Equal(t, "https://event-posters.s3.us-east-1.amazonaws.com/event_evt-1.jpg", url)
	assert.Equal(t, image, uploaded)
	client.AssertExpectations(t)
}

func TestUpload_CustomEndpoint(t *testing.T) {
	client := new(MockS3Client)
	store := NewS3BlobStore(client, "event-posters", "us-east-1", "http://localhost:4566/")

	client.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)

	url, err := store.Upload(context.Background(), "event_evt-1.png", []byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566/event-posters/event_evt-1.png", url)
}

func TestUpload_APIError(t *testing.T) {
	client := new(MockS3Client)
	store := NewS3BlobStore(client, "event-posters", "us-east-1", "")

	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("AccessDenied"))

	_, err := store.Upload(context.Background(), "event_evt-1.jpg", []byte{0x01})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3へのアップロードに失敗しました")
}
