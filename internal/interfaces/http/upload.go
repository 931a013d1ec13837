package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Boutique-api/internal/application/usecase"
	"github.com/jhoicas/Boutique-api/internal/domain"
)

// withUpload abre el archivo multipart "file" y se lo pasa a fn; lo cierra al terminar.
func withUpload(c *fiber.Ctx, fn func(usecase.Upload) error) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidation(map[string]string{"file": "archivo requerido (multipart, campo file)"})
	}
	f, err := fh.Open()
	if err != nil {
		return domain.NewValidation(map[string]string{"file": "archivo ilegible"})
	}
	defer f.Close()
	return fn(usecase.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
}
