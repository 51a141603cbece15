package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Options S3兼容对象存储的连接参数
type Options struct {
	Bucket        string
	Region        string
	Endpoint      string // 为空则用AWS默认地址，MinIO等自建服务需要填
	PublicBaseURL string // 为空时Upload返回对象key本身
}

// S3Storage 媒体文件（视频、封面、头像）的对象存储，只提供上传和删除
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

func NewS3Storage(ctx context.Context, opts Options) (*S3Storage, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if strings.TrimSpace(opts.Endpoint) != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Storage{
		client:   client,
		uploader: uploader,
		bucket:   opts.Bucket,
		baseURL:  strings.TrimSuffix(opts.PublicBaseURL, "/"),
	}, nil
}

// Upload 上传到配置的bucket，返回可公开访问的地址
func (s *S3Storage) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", fmt.Errorf("s3 storage: empty key")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   manager.ReadSeekCloser(r),
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	return s.LocationOf(key), nil
}

// Delete 按Upload返回的地址删除对象，对象不存在不算错误
func (s *S3Storage) Delete(ctx context.Context, location string) error {
	key := s.KeyOf(location)
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) LocationOf(key string) string {
	if s.baseURL == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}

// KeyOf 是LocationOf的逆运算
func (s *S3Storage) KeyOf(location string) string {
	if s.baseURL != "" {
		location = strings.TrimPrefix(location, s.baseURL)
	}
	return strings.TrimLeft(location, "/")
}
