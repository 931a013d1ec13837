// Package storage almacenamiento de archivos compatible con S3 (AWS, MinIO).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/Boutique-api/internal/application/ports"
	"github.com/jhoicas/Boutique-api/pkg/config"
)

var _ ports.BlobStorage = (*S3Storage)(nil)

// putAPI subconjunto del cliente S3 que se usa (sustituible en tests).
type putAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage sube objetos y construye su URL pública.
type S3Storage struct {
	client    putAPI
	bucket    string
	baseURL   string
	pathStyle bool
}

// NewS3Storage crea el cliente con credenciales estáticas. Bucket vacío es un error:
// el llamador debe no construir storage cuando la subida está deshabilitada.
func NewS3Storage(ctx context.Context, cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage: bucket requerido")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: configuración aws: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("storage: endpoint inválido: %w", err)
		}
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return newS3Storage(client, cfg.Bucket, region, endpoint, cfg.UsePathStyle), nil
}

func newS3Storage(client putAPI, bucket, region, endpoint string, pathStyle bool) *S3Storage {
	base := endpoint
	if base == "" {
		base = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
	}
	return &S3Storage{client: client, bucket: bucket, baseURL: base, pathStyle: pathStyle}
}

// Put sube el cuerpo bajo key. size se pasa como ContentLength para evitar subir por trozos.
func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("storage: subir %s: %w", key, err)
	}
	return nil
}

// URL dirección pública del objeto; clave vacía devuelve "".
func (s *S3Storage) URL(key string) string {
	if key == "" {
		return ""
	}
	if s.pathStyle {
		return s.baseURL + "/" + s.bucket + "/" + key
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return s.baseURL + "/" + s.bucket + "/" + key
	}
	u.Host = s.bucket + "." + u.Host
	u.Path = "/" + key
	return u.String()
}
