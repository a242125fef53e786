package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// renderPage executes one of the embedded page templates. The status code
// is written up front, so template failures can only be logged.
func renderPage(ctx context.Context, w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		logRequest(ctx, "error", "Failed to render template", zap.String("template", name), zap.Error(err))
	}
}
