package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	cfgpkg "civic-project-system/config"
	"civic-project-system/internal/global/sentry/tracing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3 兼容 AWS S3 与 MinIO 等兼容实现
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	cfg      cfgpkg.S3
}

func NewS3(ctx context.Context, c cfgpkg.S3) (*S3, error) {
	if c.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.UsePathStyle
	})
	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
		cfg:      c,
	}, nil
}

func (s *S3) Upload(ctx context.Context, name, contentType string, size int64, body io.Reader) (Blob, error) {
	key := newKey(s.cfg.Prefix, name)
	span, ctx := tracing.StartSpan(ctx, "storage.s3.upload", key)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	tracing.Finish(span, err)
	if err != nil {
		return Blob{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return Blob{Key: key, URL: s.URL(key), MimeType: contentType, Size: size, Name: name}, nil
}

// Delete S3 删除不存在的对象同样返回成功
func (s *S3) Delete(ctx context.Context, key string) error {
	if err := inPrefix(s.cfg.Prefix, key); err != nil {
		return err
	}
	span, ctx := tracing.StartSpan(ctx, "storage.s3.delete", key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		err = nil
	}
	tracing.Finish(span, err)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) Stat(ctx context.Context, key string) (Object, error) {
	if err := inPrefix(s.cfg.Prefix, key); err != nil {
		return Object{}, ErrNotFound
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, fmt.Errorf("stat %s: %w", key, err)
	}
	return Object{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

func (s *S3) List(ctx context.Context) ([]Object, error) {
	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	span, ctx := tracing.StartSpan(ctx, "storage.s3.list", prefix)
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	var objects []Object
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			tracing.Finish(span, err)
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, o := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.ToString(o.Key),
				Size:         aws.ToInt64(o.Size),
				LastModified: aws.ToTime(o.LastModified),
			})
		}
	}
	tracing.Finish(span, nil)
	return objects, nil
}

// Presign 生成 PUT 直传地址，前端上传后以 key 引用
func (s *S3) Presign(ctx context.Context, name, contentType string, expires time.Duration) (*PresignedUpload, error) {
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := newKey(s.cfg.Prefix, name)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignOptions) {
		o.Expires = expires
	})
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}
	out := &PresignedUpload{
		UploadURL: req.URL,
		Key:       key,
		URL:       s.URL(key),
		ExpiresAt: time.Now().Add(expires),
		Method:    req.Method,
		Headers:   map[string]string{"Content-Type": contentType},
	}
	for k, v := range req.SignedHeader {
		if len(v) > 0 {
			out.Headers[k] = v[0]
		}
	}
	return out, nil
}

// URL BaseURL 为空时退回 Endpoint，二者都为空时使用 AWS 虚拟主机风格地址
func (s *S3) URL(key string) string {
	base := s.cfg.BaseURL
	if base == "" && s.cfg.Endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
	if base == "" {
		base = s.cfg.Endpoint
	}
	if s.cfg.UsePathStyle {
		return joinURL(base, s.cfg.Bucket+"/"+key)
	}
	return joinURL(base, key)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
