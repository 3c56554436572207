package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/templui/postline/internal/config"
	"github.com/templui/postline/internal/ctxkeys"
	"github.com/templui/postline/internal/model"
	"github.com/templui/postline/internal/service"
	"github.com/templui/postline/internal/validation"
)

// multipart parts beyond this stay on disk while parsing
const multipartMemory = 8 << 20

type PostHandler struct {
	postService   *service.PostService
	maxUploadSize int64
	errors        errorWriter
}

func NewPostHandler(postService *service.PostService, cfg *config.Config) *PostHandler {
	return &PostHandler{
		postService:   postService,
		maxUploadSize: cfg.MaxUploadSize,
		errors:        errorWriter{debug: cfg.DebugErrors},
	}
}

// Create handles POST /posts with a JSON body
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "ValidationError", "Invalid request body")
		return
	}

	if err := validation.Struct(&req); err != nil {
		h.errors.handle(w, r, err)
		return
	}

	post, err := h.postService.CreateText(r.Context(), service.TextInput{
		Title:   req.Title,
		Content: req.Content,
		Caption: req.Caption,
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, post)
}

// List handles GET /posts?limit=N
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "ValidationError", "limit must be an integer")
			return
		}
		limit = n
	}

	posts, err := h.postService.List(r.Context(), limit)
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, model.ListPostsResponse{Posts: posts})
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.postService.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.errors.handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Upload handles POST /upload: multipart "file" plus optional "caption".
func (h *PostHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		// Leave room for the other form fields and multipart framing
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartMemory)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusBadRequest, "ValidationError",
				fmt.Sprintf("file too large: maximum size is %d MB", h.maxUploadSize/(1<<20)))
			return
		}
		WriteError(w, http.StatusBadRequest, "ValidationError", "Invalid multipart form")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "ValidationError", "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	req := model.UploadPostRequest{Caption: r.FormValue("caption")}
	if err := validation.Struct(&req); err != nil {
		h.errors.handle(w, r, err)
		return
	}

	if _, err := validation.ValidateMedia(header, h.maxUploadSize); err != nil {
		h.errors.handle(w, r, err)
		return
	}

	post, err := h.postService.CreateMedia(r.Context(), service.MediaInput{
		Caption:     req.Caption,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.errors.handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, post)
}

func logRequestError(r *http.Request, kind string, err error) {
	slog.Error("request failed",
		"request_id", ctxkeys.RequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"kind", kind,
		"error", err,
	)
}
