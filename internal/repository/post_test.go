package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/postline/internal/db/dbtest"
	"github.com/templui/postline/internal/model"
)

// newTestRepository returns a repository whose clock advances one second per insert.
func newTestRepository(t *testing.T) *postRepository {
	t.Helper()

	repo := NewPostRepository(dbtest.New(t))
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func TestPostRepository_CreateAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	post := &model.Post{Title: "hello", Content: "first post"}
	require.NoError(t, repo.Create(ctx, post))

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, time.Date(2026, 1, 1, 12, 0, 1, 0, time.UTC), post.CreatedAt)

	got, err := repo.ByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, "first post", got.Content)
	assert.True(t, post.CreatedAt.Equal(got.CreatedAt))
}

func TestPostRepository_CreateMediaFields(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	post := &model.Post{
		Caption:  "sunset",
		URL:      "https://cdn.example.com/posts/abc.png",
		FileType: model.FileTypeImage,
		FileName: "abc.png",
	}
	require.NoError(t, repo.Create(ctx, post))

	got, err := repo.ByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "sunset", got.Caption)
	assert.Equal(t, "https://cdn.example.com/posts/abc.png", got.URL)
	assert.Equal(t, model.FileTypeImage, got.FileType)
	assert.Equal(t, "abc.png", got.FileName)
	assert.True(t, got.IsMedia())
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	var ids []string
	for _, title := range []string{"one", "two", "three", "four"} {
		post := &model.Post{Title: title}
		require.NoError(t, repo.Create(ctx, post))
		ids = append(ids, post.ID)
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"no limit", 0, []string{ids[3], ids[2], ids[1], ids[0]}},
		{"negative limit", -5, []string{ids[3], ids[2], ids[1], ids[0]}},
		{"limit two", 2, []string{ids[3], ids[2]}},
		{"limit above count", 10, []string{ids[3], ids[2], ids[1], ids[0]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.List(ctx, tt.limit)
			require.NoError(t, err)

			var got []string
			for _, p := range posts {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostRepository_ListTieBreaksOnID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &model.Post{Title: "same instant"}))
	}

	posts, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	for i := 1; i < len(posts); i++ {
		assert.Greater(t, posts[i-1].ID, posts[i].ID)
	}
}

func TestPostRepository_ListEmpty(t *testing.T) {
	repo := newTestRepository(t)

	posts, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_ByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.ByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	post := &model.Post{Title: "short lived"}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err := repo.ByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	err = repo.Delete(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostRepository_CancelledContext(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Create(ctx, &model.Post{Title: "never stored"})
	require.Error(t, err)

	posts, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
