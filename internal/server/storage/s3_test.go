package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/studyvault/internal/common"
)

type fakeObjectAPI struct {
	getOut *s3.GetObjectOutput
	getErr error
	delErr error

	gotGet *s3.GetObjectInput
	gotDel *s3.DeleteObjectInput
}

func (f *fakeObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotGet = in
	return f.getOut, f.getErr
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.gotDel = in
	return &s3.DeleteObjectOutput{}, f.delErr
}

type fakePresignAPI struct {
	req *v4.PresignedHTTPRequest
	err error

	gotIn      *s3.PutObjectInput
	gotExpires time.Duration
}

func (f *fakePresignAPI) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.gotIn = in
	var o s3.PresignOptions
	for _, fn := range optFns {
		fn(&o)
	}
	f.gotExpires = o.Expires
	return f.req, f.err
}

func fixedNow() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestS3Store_PresignPut(t *testing.T) {
	pre := &fakePresignAPI{req: &v4.PresignedHTTPRequest{
		URL:    "http://minio/bucket/sessions/s1/f1_a.pdf?X-Amz-Signature=abc",
		Method: http.MethodPut,
		SignedHeader: http.Header{
			"Host":                 {"minio"},
			"Content-Type":         {"application/pdf"},
			"X-Amz-Meta-Sessionid": {"s1"},
			"X-Amz-Meta-Fileid":    {"f1"},
			"X-Amz-Meta-Filename":  {"a.pdf"},
		},
	}}
	s := newS3Store("bucket", &fakeObjectAPI{}, pre)
	s.now = fixedNow

	got, err := s.PresignPut(context.Background(), "sessions/s1/f1_a.pdf", PutOptions{
		ContentType: "application/pdf",
		Metadata:    map[string]string{"sessionid": "s1", "fileid": "f1", "filename": "a.pdf"},
		TTL:         600 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "bucket", aws.ToString(pre.gotIn.Bucket))
	assert.Equal(t, "sessions/s1/f1_a.pdf", aws.ToString(pre.gotIn.Key))
	assert.Equal(t, "application/pdf", aws.ToString(pre.gotIn.ContentType))
	assert.Equal(t, "s1", pre.gotIn.Metadata["sessionid"])
	assert.Equal(t, 600*time.Second, pre.gotExpires)

	assert.Equal(t, pre.req.URL, got.URL)
	assert.Equal(t, fixedNow().Add(600*time.Second), got.ExpiresAt)
	assert.NotContains(t, got.RequiredHeaders, "Host")
	assert.Equal(t, "application/pdf", got.RequiredHeaders["Content-Type"])
	assert.Equal(t, "f1", got.RequiredHeaders["X-Amz-Meta-Fileid"])
}

func TestS3Store_PresignPut_Error(t *testing.T) {
	s := newS3Store("bucket", &fakeObjectAPI{}, &fakePresignAPI{err: errors.New("presign-put-fail")})

	_, err := s.PresignPut(context.Background(), "k", PutOptions{TTL: time.Minute})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "presign-put-fail")
}

func TestS3Store_Get(t *testing.T) {
	api := &fakeObjectAPI{getOut: &s3.GetObjectOutput{
		Body:        io.NopCloser(strings.NewReader("%PDF-1.7")),
		ContentType: aws.String("application/pdf"),
	}}
	s := newS3Store("bucket", api, &fakePresignAPI{})

	obj, err := s.Get(context.Background(), "sessions/s1/f1_a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), obj.Body)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, "sessions/s1/f1_a.pdf", aws.ToString(api.gotGet.Key))
}

func TestS3Store_Get_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "typed NoSuchKey", err: &types.NoSuchKey{}, want: common.ErrorNotFound},
		{name: "generic NotFound", err: &smithy.GenericAPIError{Code: "NotFound"}, want: common.ErrorNotFound},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, want: common.ErrStorageUnavailable},
		{name: "transport", err: errors.New("connection refused"), want: common.ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newS3Store("bucket", &fakeObjectAPI{getErr: tt.err}, &fakePresignAPI{})
			_, err := s.Get(context.Background(), "k")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestS3Store_Delete(t *testing.T) {
	api := &fakeObjectAPI{}
	s := newS3Store("bucket", api, &fakePresignAPI{})
	require.NoError(t, s.Delete(context.Background(), "k"))
	assert.Equal(t, "k", aws.ToString(api.gotDel.Key))

	s = newS3Store("bucket", &fakeObjectAPI{delErr: &types.NoSuchKey{}}, &fakePresignAPI{})
	assert.NoError(t, s.Delete(context.Background(), "k"), "missing key is not an error")

	s = newS3Store("bucket", &fakeObjectAPI{delErr: errors.New("boom")}, &fakePresignAPI{})
	assert.ErrorIs(t, s.Delete(context.Background(), "k"), common.ErrStorageUnavailable)
}

func TestNewS3Store_AppliesConfig(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	s, err := NewS3Store(context.Background(), S3Config{
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		Bucket:       "studyvault",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "studyvault", s.bucket)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewS3Store(context.Background(), S3Config{Bucket: "b"})
	assert.ErrorContains(t, err, "load-fail")
}
