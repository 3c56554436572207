package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/postline/internal/metrics"
	"github.com/templui/postline/internal/model"
	"github.com/templui/postline/internal/repository"
	"github.com/templui/postline/internal/staging"
	"github.com/templui/postline/internal/storage"
	"github.com/templui/postline/internal/validation"
)

// TextInput is a post without media.
type TextInput struct {
	Title   string
	Content string
	Caption string
}

// MediaInput is an incoming file with its declared metadata.
type MediaInput struct {
	Caption     string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PostService runs the post lifecycle. It keeps no state between calls.
type PostService struct {
	posts    repository.PostRepository
	uploader storage.MediaUploader
	stager   *staging.Stager
}

func NewPostService(posts repository.PostRepository, uploader storage.MediaUploader, stager *staging.Stager) *PostService {
	return &PostService{
		posts:    posts,
		uploader: uploader,
		stager:   stager,
	}
}

// CreateText persists a post that has no attachment.
func (s *PostService) CreateText(ctx context.Context, in TextInput) (*model.Post, error) {
	if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.Caption) == "" {
		return nil, validation.NewFieldError("title", "title or caption is required")
	}

	post := &model.Post{
		Title:   in.Title,
		Content: in.Content,
		Caption: in.Caption,
	}

	err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	slog.Debug("text post created", "post_id", post.ID)
	return post, nil
}

// CreateMedia stages the file, uploads it and persists the post.
// The staged file is released on every path. If persistence fails after a
// successful upload the remote object is left in place and logged for
// reconciliation.
func (s *PostService) CreateMedia(ctx context.Context, in MediaInput) (post *model.Post, err error) {
	stage := metrics.StageReceived
	defer func() { metrics.RecordPipeline(stage, err) }()

	if in.Body == nil || in.Size <= 0 {
		return nil, validation.NewFieldError("file", "file is empty")
	}
	kind, err := validation.MediaKind(in.ContentType)
	if err != nil {
		return nil, err
	}

	stage = metrics.StageStaged
	start := time.Now()
	staged, err := s.stager.Stage(ctx, in.Body, path.Ext(in.FileName))
	if err != nil {
		return nil, &StagingError{Err: err}
	}
	defer func() {
		if relErr := staged.Release(); relErr != nil {
			slog.Warn("failed to release staged file", "path", staged.Path(), "error", relErr)
		}
	}()
	body, err := staged.Reader()
	if err != nil {
		return nil, &StagingError{Err: err}
	}
	metrics.ObserveStage(stage, start)
	slog.Debug("upload staged", "path", staged.Path(), "size", staged.Size())

	stage = metrics.StageUploaded
	start = time.Now()
	res, err := s.uploader.Upload(ctx, body, in.FileName, in.ContentType)
	if err != nil {
		status := 0
		var remote *storage.RemoteError
		if errors.As(err, &remote) {
			status = remote.Status
		}
		return nil, &UploadError{Status: status, Err: err}
	}
	if res == nil {
		return nil, &UploadError{Err: errors.New("empty upload result")}
	}
	if res.Status < 200 || res.Status > 299 {
		return nil, &UploadError{Status: res.Status, Err: fmt.Errorf("media store answered with status %d", res.Status)}
	}
	metrics.ObserveStage(stage, start)
	metrics.UploadedBytes.Add(float64(staged.Size()))

	stage = metrics.StagePersisted
	start = time.Now()
	post = &model.Post{
		Caption:  in.Caption,
		URL:      res.URL,
		FileType: kind,
		FileName: res.Name,
	}
	err = s.posts.Create(ctx, post)
	if err != nil {
		slog.Error("uploaded media orphaned, post not persisted",
			"key", res.Key,
			"url", res.URL,
			"error", err,
		)
		return nil, &PersistenceError{Err: err}
	}
	metrics.ObserveStage(stage, start)

	stage = metrics.StageCompleted
	slog.Info("media post created", "post_id", post.ID, "file_type", post.FileType, "key", res.Key)
	return post, nil
}

// List returns posts newest first; limit <= 0 means no cap.
func (s *PostService) List(ctx context.Context, limit int) ([]*model.Post, error) {
	posts, err := s.posts.List(ctx, limit)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.ByID(ctx, key)
	if errors.Is(err, repository.ErrPostNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return post, nil
}

// Delete removes a post permanently. Uploaded media is not removed.
func (s *PostService) Delete(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}

	post, err := s.posts.ByID(ctx, key)
	if errors.Is(err, repository.ErrPostNotFound) {
		return &NotFoundError{ID: id}
	}
	if err != nil {
		return &PersistenceError{Err: err}
	}

	err = s.posts.Delete(ctx, key)
	if errors.Is(err, repository.ErrPostNotFound) {
		return &NotFoundError{ID: id}
	}
	if err != nil {
		return &PersistenceError{Err: err}
	}

	if post.IsMedia() {
		// The object stays in the media store; log it for reconciliation.
		slog.Info("media post deleted, object retained", "post_id", key, "url", post.URL, "file_name", post.FileName)
	} else {
		slog.Info("post deleted", "post_id", key)
	}
	return nil
}

// parseID canonicalizes a post id; anything that is not a UUID cannot exist.
func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", &NotFoundError{ID: id}
	}
	return parsed.String(), nil
}
