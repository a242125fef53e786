package handlers

import (
	"context"
	"net/http"

	"bookstore/models"

	"github.com/umakantv/go-utils/cache"
)

// PageHandler renders the landing page
type PageHandler struct {
	cache cache.Cache
}

// NewPageHandler creates a new page handler
func NewPageHandler(cache cache.Cache) *PageHandler {
	return &PageHandler{cache: cache}
}

type indexData struct {
	User *models.Session
}

// Index handles GET / - personalized greeting for logged-in users, a
// log-in prompt for guests. Pure read of session state.
func (h *PageHandler) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logRequest(ctx, "info", "Rendering landing page")

	user, _ := CurrentUser(r, h.cache)
	renderPage(ctx, w, http.StatusOK, "index.html", indexData{User: user})
}
