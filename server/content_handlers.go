package server

import (
	"strings"
	"time"

	"tifblog/auth"
	"tifblog/cache"
	"tifblog/models"

	"github.com/gofiber/fiber/v2"
)

const (
	postsCacheKey = "posts:all"
	postsCacheTTL = 30 * time.Second
)

// ListPosts handles GET /publicaciones. Public: no auth, no guard.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	var posts []models.ContentItem
	err := cache.CacheAside(c.Context(), postsCacheKey, &posts, postsCacheTTL, func() error {
		var ferr error
		posts, ferr = s.content.ListPosts(c.Context())
		return ferr
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if posts == nil {
		posts = []models.ContentItem{}
	}

	return c.JSON(posts)
}

// GetPost handles GET /publicaciones/:id. Returns only the body text.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", c.Params("id")))
	}

	post, err := s.content.GetPost(c.Context(), uint(id))
	if err != nil {
		return s.respondContentError(c, err)
	}

	return c.JSON(fiber.Map{
		"body": post.Body,
	})
}

// CreatePost handles POST /publicaciones
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Body) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Body is required"))
	}

	post, err := s.content.CreatePost(c.Context(), userID, req.Body)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.Invalidate(c.Context(), postsCacheKey)

	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateComment handles POST /comentar/:postId. The parent post must exist;
// a comment is never attached to a missing or non-post parent.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := c.ParamsInt("postId")
	if err != nil || postID <= 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", c.Params("postId")))
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Body) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Body is required"))
	}

	comment, err := s.content.CreateComment(c.Context(), userID, req.Body, uint(postID))
	if err != nil {
		return s.respondContentError(c, err)
	}

	cache.Invalidate(c.Context(), postsCacheKey)

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// EditContent handles PUT /editar/:id. Only the author may edit, and only
// the body text changes.
func (s *Server) EditContent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Content", c.Params("id")))
	}

	item, err := s.content.GetByID(c.Context(), uint(id))
	if err != nil {
		return s.respondContentError(c, err)
	}

	if !auth.CanMutate(userID, item) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only edit your own content"))
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Body) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Body is required"))
	}

	updated, err := s.content.UpdateBody(c.Context(), item.ID, req.Body)
	if err != nil {
		return s.respondContentError(c, err)
	}

	cache.Invalidate(c.Context(), postsCacheKey)

	return c.JSON(updated)
}

// DeleteContent handles DELETE /eliminar/:id. Only the author may delete.
// Deleting a post takes all its comments with it in one transaction.
func (s *Server) DeleteContent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Content", c.Params("id")))
	}

	item, err := s.content.GetByID(c.Context(), uint(id))
	if err != nil {
		return s.respondContentError(c, err)
	}

	if !auth.CanMutate(userID, item) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own content"))
	}

	if err := s.content.DeleteCascade(c.Context(), item); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.Invalidate(c.Context(), postsCacheKey)

	return c.JSON(fiber.Map{
		"message": "Content deleted successfully",
	})
}

// respondContentError maps repository errors onto HTTP statuses.
func (s *Server) respondContentError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*models.AppError); ok {
		switch appErr.Code {
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case "STORAGE_ERROR":
			return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}
