package repository

import (
	"context"

	"tifblog/models"

	"gorm.io/gorm"
)

// ContentRepository defines the interface for post and comment data
// operations. Posts and comments live in one self-referential table.
type ContentRepository interface {
	CreatePost(ctx context.Context, authorID uint, body string) (*models.ContentItem, error)
	CreateComment(ctx context.Context, authorID uint, body string, parentPostID uint) (*models.ContentItem, error)
	ListPosts(ctx context.Context) ([]models.ContentItem, error)
	GetPost(ctx context.Context, id uint) (*models.ContentItem, error)
	GetByID(ctx context.Context, id uint) (*models.ContentItem, error)
	UpdateBody(ctx context.Context, id uint, body string) (*models.ContentItem, error)
	DeleteCascade(ctx context.Context, item *models.ContentItem) error
}

// contentRepository implements ContentRepository
type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) CreatePost(ctx context.Context, authorID uint, body string) (*models.ContentItem, error) {
	item := models.ContentItem{
		AuthorID: authorID,
		Kind:     models.KindPost,
		Body:     body,
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	r.db.WithContext(ctx).Preload("Author").First(&item, item.ID)
	return &item, nil
}

// CreateComment attaches a comment to an existing post. The parent must
// exist and be of kind post; a dangling parent reference is rejected as
// not found.
func (r *contentRepository) CreateComment(ctx context.Context, authorID uint, body string, parentPostID uint) (*models.ContentItem, error) {
	parent, err := r.GetByID(ctx, parentPostID)
	if err != nil {
		return nil, err
	}
	if !parent.IsPost() {
		return nil, models.NewNotFoundError("Post", parentPostID)
	}

	item := models.ContentItem{
		AuthorID: authorID,
		Kind:     models.KindComment,
		Body:     body,
		ParentID: &parent.ID,
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	r.db.WithContext(ctx).Preload("Author").First(&item, item.ID)
	return &item, nil
}

// ListPosts returns every post, newest first, with its comments eagerly
// loaded in stored order.
func (r *contentRepository) ListPosts(ctx context.Context) ([]models.ContentItem, error) {
	var posts []models.ContentItem
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("content_items.id ASC")
		}).
		Preload("Comments.Author").
		Where("kind = ?", models.KindPost).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return posts, nil
}

func (r *contentRepository) GetPost(ctx context.Context, id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("content_items.id ASC")
		}).
		Preload("Comments.Author").
		Where("kind = ?", models.KindPost).
		First(&item, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewStorageError(err)
	}
	return &item, nil
}

func (r *contentRepository) GetByID(ctx context.Context, id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Content", id)
		}
		return nil, models.NewStorageError(err)
	}
	return &item, nil
}

// UpdateBody replaces the body text of an item. Kind, author and creation
// timestamp are never touched.
func (r *contentRepository) UpdateBody(ctx context.Context, id uint, body string) (*models.ContentItem, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Where("id = ?", id).
		Update("body", body)
	if res.Error != nil {
		return nil, models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Content", id)
	}

	var item models.ContentItem
	if err := r.db.WithContext(ctx).Preload("Author").First(&item, id).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	return &item, nil
}

// DeleteCascade removes an item. Deleting a post also removes every comment
// attached to it, inside a single transaction: either the post and all its
// comments go, or nothing does. Deleting a comment removes only the comment.
func (r *contentRepository) DeleteCascade(ctx context.Context, item *models.ContentItem) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if item.IsPost() {
			if err := tx.Where("parent_id = ?", item.ID).Delete(&models.ContentItem{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.ContentItem{}, item.ID).Error
	})
	if err != nil {
		return models.NewStorageError(err)
	}
	return nil
}
