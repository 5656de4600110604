package models

import (
	"time"
)

// Content kinds. Posts and comments share one self-referential table,
// distinguished by this tag.
const (
	KindPost    = "post"
	KindComment = "comment"
)

// ContentItem is a post or a comment. A comment carries a ParentID pointing
// at its post; a post's ParentID is always nil. Comments hang off a post for
// cascade deletion, independent of who authored them.
type ContentItem struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	AuthorID  uint          `gorm:"not null;index" json:"author_id"`
	Author    User          `gorm:"foreignKey:AuthorID" json:"author"`
	Kind      string        `gorm:"not null;index" json:"kind"`
	Body      string        `gorm:"not null" json:"body"`
	ParentID  *uint         `gorm:"index" json:"parent_id,omitempty"`
	Comments  []ContentItem `gorm:"foreignKey:ParentID" json:"comments,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsPost reports whether the item is a top-level post.
func (c *ContentItem) IsPost() bool {
	return c.Kind == KindPost
}
