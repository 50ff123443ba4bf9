package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"productpulse-backend/internal/blog"
	"productpulse-backend/internal/middleware"
	"productpulse-backend/internal/models"

	"go.uber.org/zap"
)

type PostStore interface {
	List(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
}

type BlogHandler struct {
	posts PostStore
	log   *zap.Logger
	now   func() time.Time
}

func NewBlogHandler(posts PostStore, log *zap.Logger) *BlogHandler {
	return &BlogHandler{
		posts: posts,
		log:   log,
		now:   time.Now,
	}
}

// --- GET /blog/posts ---

func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.log.Error("failed to list posts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	q := r.URL.Query()
	posts = blog.Filter(posts, q.Get("q"), q.Get("category"))
	if q.Get("featured") == "true" {
		posts = blog.Featured(posts)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
		"count": len(posts),
	})
}

// --- GET /blog/categories ---

func (h *BlogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": blog.Categories,
	})
}

// --- POST /blog/posts (admin) ---

func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var draft blog.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := blog.NewPost(draft, h.now())
	if err != nil {
		if errors.Is(err, blog.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, "Please fill in all required fields")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.posts.Create(r.Context(), post); err != nil {
		h.log.Error("failed to create post", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save post")
		return
	}

	h.log.Info("blog post added",
		zap.String("post_id", post.ID.Hex()),
		zap.String("admin", middleware.GetAdminEmail(r.Context())),
	)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Blog post added successfully!",
		"post":    post,
	})
}
