package api

import (
	"io"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/quickai/quickai/internal/media"
	"github.com/quickai/quickai/internal/models"
)

func (s *Server) handleGenerateArticle(c *fiber.Ctx) error {
	var req models.GenerateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewError(models.KindInvalidInput, "Invalid request body"))
	}

	content, err := s.svc.GenerateArticle(c.Context(), currentUser(c), req.Prompt, req.Length)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ContentResponse{Success: true, Content: content})
}

func (s *Server) handleGenerateBlogTitle(c *fiber.Ctx) error {
	var req models.GenerateBlogTitleRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewError(models.KindInvalidInput, "Invalid request body"))
	}

	content, err := s.svc.GenerateBlogTitle(c.Context(), currentUser(c), req.Prompt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ContentResponse{Success: true, Content: content})
}

func (s *Server) handleGenerateImage(c *fiber.Ctx) error {
	var req models.GenerateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewError(models.KindInvalidInput, "Invalid request body"))
	}

	content, err := s.svc.GenerateImage(c.Context(), currentUser(c), req.Prompt, req.PublishValue())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ContentResponse{Success: true, Content: content})
}

func (s *Server) handleRemoveBackground(c *fiber.Ctx) error {
	source, cleanup, err := s.fileSource(c, "image", "Image file is required.")
	if err != nil {
		return respondError(c, err)
	}
	defer cleanup()

	content, err := s.svc.RemoveBackground(c.Context(), currentUser(c), source)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ContentResponse{Success: true, Content: content})
}

func (s *Server) handleRemoveObject(c *fiber.Ctx) error {
	source, cleanup, err := s.fileSource(c, "image", "Image file is required.")
	if err != nil {
		return respondError(c, err)
	}
	defer cleanup()

	content, err := s.svc.RemoveObject(c.Context(), currentUser(c), source, c.FormValue("object"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ContentResponse{Success: true, Content: content})
}

func (s *Server) handleReviewResume(c *fiber.Ctx) error {
	resume, err := s.fileBytes(c, "resume", "A valid PDF resume is required.")
	if err != nil {
		return respondError(c, err)
	}

	content, err := s.svc.ReviewResume(c.Context(), currentUser(c), resume)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.ContentResponse{Success: true, Content: content})
}

// fileBytes reads one multipart file fully into memory, bounded by the
// configured upload size.
func (s *Server) fileBytes(c *fiber.Ctx, field, missingMsg string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, models.NewError(models.KindInvalidInput, missingMsg)
	}
	if header.Size > s.cfg.Uploads.MaxSize {
		return nil, models.NewError(models.KindInvalidInput, "File exceeds the maximum upload size.")
	}

	file, err := header.Open()
	if err != nil {
		return nil, models.WrapError(models.KindInvalidInput, missingMsg, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, models.WrapError(models.KindInvalidInput, missingMsg, err)
	}
	return data, nil
}

// fileSource resolves a multipart file into a content source. Small files
// stay in memory; files above the spill threshold are staged to disk and
// handed over as a path. cleanup removes any staged file.
func (s *Server) fileSource(c *fiber.Ctx, field, missingMsg string) (media.Source, func(), error) {
	noop := func() {}

	data, err := s.fileBytes(c, field, missingMsg)
	if err != nil {
		return media.Source{}, noop, err
	}

	if s.staging != nil && int64(len(data)) > s.cfg.Uploads.SpillSize {
		header, _ := c.FormFile(field)
		pattern := "upload-*" + filepath.Ext(header.Filename)
		path, err := s.staging.Store(data, pattern)
		if err != nil {
			return media.Source{}, noop, models.WrapError(models.KindStorage, "Failed to stage upload", err)
		}
		// TTL sweep as a fallback in case the request aborts before cleanup.
		s.staging.CleanupAfter(path)
		return media.PathSource(path), func() { _ = s.staging.Delete(path) }, nil
	}
	return media.BytesSource(data), noop, nil
}
