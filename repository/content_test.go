package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"tifblog/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email, name string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "hashed", Name: name}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func TestCreatePost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")

	post, err := repo.CreatePost(context.Background(), author.ID, "hello")
	require.NoError(t, err)

	assert.Equal(t, models.KindPost, post.Kind)
	assert.Equal(t, "hello", post.Body)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.Nil(t, post.ParentID)
	assert.Equal(t, "Alice", post.Author.Name)
}

func TestCreateComment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")

	post, err := repo.CreatePost(context.Background(), author.ID, "hello")
	require.NoError(t, err)

	comment, err := repo.CreateComment(context.Background(), author.ID, "world", post.ID)
	require.NoError(t, err)

	assert.Equal(t, models.KindComment, comment.Kind)
	require.NotNil(t, comment.ParentID)
	assert.Equal(t, post.ID, *comment.ParentID)
}

func TestCreateCommentMissingParent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")

	_, err := repo.CreateComment(context.Background(), author.ID, "orphan", 999)
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestCreateCommentOnCommentRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")
	ctx := context.Background()

	post, err := repo.CreatePost(ctx, author.ID, "hello")
	require.NoError(t, err)
	comment, err := repo.CreateComment(ctx, author.ID, "world", post.ID)
	require.NoError(t, err)

	// A comment can only hang off a post, never off another comment
	_, err = repo.CreateComment(ctx, author.ID, "grandchild", comment.ID)
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestListPostsOrderingAndNesting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")
	ctx := context.Background()

	first, err := repo.CreatePost(ctx, author.ID, "first")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := repo.CreatePost(ctx, author.ID, "second")
	require.NoError(t, err)

	c1, err := repo.CreateComment(ctx, author.ID, "one", first.ID)
	require.NoError(t, err)
	c2, err := repo.CreateComment(ctx, author.ID, "two", first.ID)
	require.NoError(t, err)

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Newest post first
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)

	// Comments only on their own post, in stored order
	assert.Empty(t, posts[0].Comments)
	require.Len(t, posts[1].Comments, 2)
	assert.Equal(t, c1.ID, posts[1].Comments[0].ID)
	assert.Equal(t, c2.ID, posts[1].Comments[1].ID)
	assert.Equal(t, "Alice", posts[1].Comments[0].Author.Name)
}

func TestGetPostExcludesComments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")
	ctx := context.Background()

	post, err := repo.CreatePost(ctx, author.ID, "hello")
	require.NoError(t, err)
	comment, err := repo.CreateComment(ctx, author.ID, "world", post.ID)
	require.NoError(t, err)

	// GetPost resolves posts only; a comment id is not found
	_, err = repo.GetPost(ctx, comment.ID)
	require.Error(t, err)

	got, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Body)
	require.Len(t, got.Comments, 1)
}

func TestUpdateBodyTouchesOnlyBody(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")
	ctx := context.Background()

	post, err := repo.CreatePost(ctx, author.ID, "hello")
	require.NoError(t, err)

	updated, err := repo.UpdateBody(ctx, post.ID, "edited")
	require.NoError(t, err)

	assert.Equal(t, "edited", updated.Body)
	assert.Equal(t, post.Kind, updated.Kind)
	assert.Equal(t, post.AuthorID, updated.AuthorID)
	assert.Equal(t, post.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func TestUpdateBodyMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)

	_, err := repo.UpdateBody(context.Background(), 999, "edited")
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestDeleteCascadeRemovesAllComments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")
	other := seedUser(t, db, "b@x.com", "Bob")
	ctx := context.Background()

	post, err := repo.CreatePost(ctx, author.ID, "hello")
	require.NoError(t, err)

	// Comments by several authors still cascade with the post
	for i, uid := range []uint{author.ID, other.ID, other.ID} {
		_, err := repo.CreateComment(ctx, uid, "comment", post.ID)
		require.NoError(t, err, "comment %d", i)
	}

	require.NoError(t, repo.DeleteCascade(ctx, post))

	var remaining int64
	require.NoError(t, db.Model(&models.ContentItem{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	var referencing int64
	require.NoError(t, db.Model(&models.ContentItem{}).Where("parent_id = ?", post.ID).Count(&referencing).Error)
	assert.Zero(t, referencing)
}

func TestDeleteCommentDoesNotCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")
	ctx := context.Background()

	post, err := repo.CreatePost(ctx, author.ID, "hello")
	require.NoError(t, err)
	doomed, err := repo.CreateComment(ctx, author.ID, "doomed", post.ID)
	require.NoError(t, err)
	kept, err := repo.CreateComment(ctx, author.ID, "kept", post.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCascade(ctx, doomed))

	got, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, kept.ID, got.Comments[0].ID)
}

func TestDeleteCascadeRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)
	author := seedUser(t, db, "a@x.com", "Alice")
	ctx := context.Background()

	post, err := repo.CreatePost(ctx, author.ID, "hello")
	require.NoError(t, err)
	commentCount := 3
	for i := 0; i < commentCount; i++ {
		_, err := repo.CreateComment(ctx, author.ID, "comment", post.ID)
		require.NoError(t, err)
	}

	// Fail the second delete statement of the cascade: the comments go
	// first, then the post delete blows up and everything must roll back.
	deletes := 0
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("forced_failure", func(tx *gorm.DB) {
		deletes++
		if deletes == 2 {
			tx.AddError(errors.New("forced mid-delete failure"))
		}
	}))
	defer db.Callback().Delete().Remove("forced_failure")

	err = repo.DeleteCascade(ctx, post)
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "STORAGE_ERROR", appErr.Code)

	// All N+1 items intact
	var remaining int64
	require.NoError(t, db.Model(&models.ContentItem{}).Count(&remaining).Error)
	assert.Equal(t, int64(commentCount+1), remaining)
}

func TestDeleteCascadeIssuesRollbackStatement(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	repo := NewContentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "content_items" WHERE parent_id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "content_items" WHERE "content_items"\."id" = \$1`).
		WithArgs(1).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	post := &models.ContentItem{ID: 1, Kind: models.KindPost}
	err = repo.DeleteCascade(context.Background(), post)
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
