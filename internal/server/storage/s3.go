package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config carries the connection settings for an S3-compatible backend.
type S3Config struct {
	AccessKey    string
	SecretKey    string
	Region       string
	BaseEndpoint string
	Bucket       string
	UsePathStyle bool
}

type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store is an ObjectStore over aws-sdk-go-v2. Build it once per process
// and share it; the underlying client is safe for concurrent use.
type S3Store struct {
	bucket  string
	client  objectAPI
	presign presignAPI
	now     func() time.Time
}

// NewS3Store loads the AWS config with static credentials and builds the
// S3 and presign clients.
func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
		o.UsePathStyle = c.UsePathStyle
	})

	return newS3Store(c.Bucket, client, s3.NewPresignClient(client)), nil
}

func newS3Store(bucket string, client objectAPI, presign presignAPI) *S3Store {
	return &S3Store{bucket: bucket, client: client, presign: presign, now: time.Now}
}

// PresignPut signs a PUT for exactly key. The content type and metadata are
// part of the signature, so the client must echo RequiredHeaders.
func (s *S3Store) PresignPut(ctx context.Context, key string, opts PutOptions) (*PresignedPut, error) {
	in := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Metadata: opts.Metadata,
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}

	issued := s.now()
	req, err := s.presign.PresignPutObject(ctx, in, s3.WithPresignExpires(opts.TTL))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w: %v", key, common.ErrStorageUnavailable, err)
	}

	return &PresignedPut{
		URL:             req.URL,
		ExpiresAt:       issued.Add(opts.TTL),
		RequiredHeaders: flattenHeaders(req.SignedHeader),
	}, nil
}

// Get reads the whole object into memory.
func (s *S3Store) Get(ctx context.Context, key string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify("get", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", key, common.ErrStorageUnavailable, err)
	}

	return &Object{Body: body, ContentType: aws.ToString(out.ContentType)}, nil
}

// Delete removes key. Deleting a missing key succeeds, as in S3.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		err = classify("delete", key, err)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func classify(op, key string, err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%s %s: %w", op, key, common.ErrorNotFound)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%s %s: %w", op, key, common.ErrorNotFound)
		}
	}

	return fmt.Errorf("%s %s: %w: %v", op, key, common.ErrStorageUnavailable, err)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if strings.EqualFold(k, "Host") || len(v) == 0 {
			continue
		}
		out[k] = strings.Join(v, ",")
	}
	return out
}
