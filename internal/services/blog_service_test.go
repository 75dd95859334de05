package services

import (
	"context"
	"testing"

	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlogService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(true)
	bs := NewBlogService(store, store, nil, discardLogger)
	author := userActor()

	blog, err := bs.CreateBlog(ctx, author, &models.Blog{
		Title:   "  Hiking   Aburi ",
		Content: "The botanical gardens are worth a morning.",
		Tags:    []string{"hiking", "Hiking", "gardens"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hiking Aburi", blog.Title)
	assert.Equal(t, []string{"hiking", "gardens"}, blog.Tags)
	assert.Equal(t, author.ID, blog.AuthorID)

	_, err = bs.CreateBlog(ctx, author, &models.Blog{Title: "Hi", Content: "short"})
	assert.Equal(t, models.ErrCodeInvalid, models.ErrorCodeOf(err))

	title := "Hiking Aburi hills"
	_, err = bs.UpdateBlog(ctx, userActor(), blog.ID, models.BlogUpdate{Title: &title})
	assert.Equal(t, models.ErrCodeForbidden, models.ErrorCodeOf(err))

	updated, err := bs.UpdateBlog(ctx, author, blog.ID, models.BlogUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	_, err = bs.UpdateBlog(ctx, author, blog.ID, models.BlogUpdate{})
	assert.Equal(t, models.ErrCodeInvalid, models.ErrorCodeOf(err))

	_, err = store.CreateComment(ctx, &models.Comment{ParentType: models.ParentBlog, ParentID: blog.ID, AuthorID: author.ID, Content: "edit: added photos"})
	require.NoError(t, err)

	require.NoError(t, bs.DeleteBlog(ctx, adminActor(), blog.ID))
	assert.Empty(t, store.comments)

	_, err = bs.GetBlog(ctx, blog.ID)
	assert.Equal(t, models.ErrCodeNotFound, models.ErrorCodeOf(err))
}

func TestBlogService_ListBlogs(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(true)
	bs := NewBlogService(store, store, nil, discardLogger)
	author := userActor()

	for _, title := range []string{"First trip", "Second trip"} {
		_, err := bs.CreateBlog(ctx, author, &models.Blog{Title: title, Content: "Notes from the road north."})
		require.NoError(t, err)
	}
	_, err := bs.CreateBlog(ctx, userActor(), &models.Blog{Title: "Elsewhere", Content: "Notes from the road south."})
	require.NoError(t, err)

	_, total, err := bs.ListBlogs(ctx, author.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, err = bs.ListBlogs(ctx, author.ID, -1, 10)
	assert.Equal(t, models.ErrCodeInvalid, models.ErrorCodeOf(err))
}
