package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/postline/internal/model"
)

var (
	ErrPostNotFound = errors.New("post not found")
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	List(ctx context.Context, limit int) ([]*model.Post, error)
	ByID(ctx context.Context, id string) (*model.Post, error)
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostRepository(db *sqlx.DB) *postRepository {
	return &postRepository{db: db, now: time.Now}
}

// Create assigns the post its ID and creation time, then inserts it.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	post.ID = uuid.New().String()
	post.CreatedAt = r.now().UTC()

	query := `INSERT INTO posts (id, title, content, caption, url, file_type, file_name, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.Caption,
		post.URL,
		post.FileType,
		post.FileName,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// List returns posts newest first. A limit <= 0 returns every post.
func (r *postRepository) List(ctx context.Context, limit int) ([]*model.Post, error) {
	posts := []*model.Post{}
	query := `SELECT * FROM posts ORDER BY created_at DESC, id DESC`

	var err error
	if limit > 0 {
		err = r.db.SelectContext(ctx, &posts, query+` LIMIT $1`, limit)
	} else {
		err = r.db.SelectContext(ctx, &posts, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return posts, nil
}

func (r *postRepository) ByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	query := `SELECT * FROM posts WHERE id = $1`

	err := r.db.GetContext(ctx, post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return post, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return ErrPostNotFound
	}

	return nil
}
