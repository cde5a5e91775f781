package gateway

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// S3PutObjectAPI ブロブストアが利用するS3クライアントの操作
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3BlobStore S3を使用したBlobStoreの実装。バケットは公開読み取りを前提とする
type S3BlobStore struct {
	client  S3PutObjectAPI
	bucket  string
	baseURL string
}

// NewS3BlobStore ポスター保存用のブロブストアを作成
//
// endpointが空の場合は仮想ホスト形式のS3公開URLを返す。
// ローカルのS3互換ストレージを使う場合はパス形式のURLになる。
func NewS3BlobStore(client S3PutObjectAPI, bucket, region, endpoint string) *S3BlobStore {
	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	if endpoint != "" {
		baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(endpoint, "/"), bucket)
	}
	return &S3BlobStore{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Upload データをアップロードし公開URLを返す
func (s *S3BlobStore) Upload(ctx context.Context, key string, data []byte) (string, error) {
	contentType := mimetype.Detect(data).String()

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("S3へのアップロードに失敗しました (key: %s): %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}
