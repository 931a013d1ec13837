package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_Put(t *testing.T) {
	fake := &fakeS3{}
	s := newS3Storage(fake, "boutique", "eu-west-3", "http://minio:9000", true)

	err := s.Put(context.Background(), "tenants/T1/products/a.png", strings.NewReader("img"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "boutique", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "tenants/T1/products/a.png", aws.ToString(fake.in.Key))
	assert.Equal(t, "image/png", aws.ToString(fake.in.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fake.in.ContentLength))
	assert.Equal(t, "img", fake.body)
}

func TestS3Storage_URL(t *testing.T) {
	path := newS3Storage(&fakeS3{}, "boutique", "eu-west-3", "http://minio:9000", true)
	assert.Equal(t, "http://minio:9000/boutique/k.png", path.URL("k.png"))
	assert.Empty(t, path.URL(""))

	vhost := newS3Storage(&fakeS3{}, "boutique", "eu-west-3", "", false)
	assert.Equal(t, "https://boutique.s3.eu-west-3.amazonaws.com/k.png", vhost.URL("k.png"))
}
