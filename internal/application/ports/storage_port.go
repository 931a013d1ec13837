package ports

import (
	"context"
	"io"
)

// BlobStorage almacenamiento de archivos subidos (imágenes de producto, logos).
// Las entidades guardan solo la clave opaca.
type BlobStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(key string) string
}
