package handler

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

const (
	// uploadField is the multipart field every service reads the image from
	uploadField = "input"

	maxImageSize = 16 * 1024 * 1024 // 16MB
)

// readUpload extracts the image part of a multipart request. Format is not
// checked here; the decoder sniffs it.
func readUpload(c *fiber.Ctx) ([]byte, string, error) {
	file, err := c.FormFile(uploadField)
	if err != nil {
		return nil, "", domain.ErrMissingImage.WithError(err)
	}

	if file.Size == 0 {
		return nil, "", domain.ErrMissingImage.WithError(errors.New("empty upload"))
	}
	if file.Size > maxImageSize {
		return nil, "", domain.ErrBadRequest.WithError(errors.New("image too large"))
	}

	f, err := file.Open()
	if err != nil {
		return nil, "", domain.ErrMissingImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", domain.ErrMissingImage.WithError(err)
	}

	return data, file.Filename, nil
}

// formBool parses an optional boolean form field
func formBool(c *fiber.Ctx, key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(c.FormValue(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, validation(key + " must be true or false")
	}
	return v, nil
}

func formInt(c *fiber.Ctx, key string) (*int, error) {
	raw := strings.TrimSpace(c.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, validation(key + " must be an integer")
	}
	return &v, nil
}

func validation(msg string) *domain.AppError {
	return &domain.AppError{
		Code:       domain.ErrValidationFailed.Code,
		Message:    msg,
		StatusCode: domain.ErrValidationFailed.StatusCode,
	}
}

func parseJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	return nil
}
