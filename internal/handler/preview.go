package handler

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gigsafe/internal/content"
	"gigsafe/internal/domain"
	"gigsafe/internal/meta"
)

var previewTemplate = template.Must(template.New("preview").Parse(`<!doctype html>
<html lang="{{.Post.Locale}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{.Head}}
</head>
<body>
<article>
<img src="{{.Post.FeatureImage}}" alt="">
<h1>{{.Post.Title}}</h1>
<p class="byline"><img src="{{.Post.Author.Image}}" alt="{{.Post.Author.Name}}" width="32" height="32"> {{.Post.Author.Name}} &middot; {{.Post.ReadTime}} min read</p>
{{- with .Post.Tags}}
<ul class="tags">{{range .}}<li>{{.}}</li>{{end}}</ul>
{{- end}}
<p>{{.Text}}</p>
</article>
</body>
</html>
`))

// Preview renders a post as a minimal HTML page carrying its head tags.
// The body is shown as plain text.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, err := h.content.GetPost(ctx, chi.URLParam(r, "locale"), chi.URLParam(r, "slug"))
	if err != nil {
		h.serviceError(w, r, "Failed to get post", err)
		return
	}
	m, err := h.content.PageMeta(ctx, post.Locale, post.Slug)
	if err != nil {
		h.serviceError(w, r, "Failed to build post metadata", err)
		return
	}

	head, err := meta.RenderTags(*m)
	if err != nil {
		h.serviceError(w, r, "Failed to render head tags", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = previewTemplate.Execute(w, struct {
		Post *domain.Post
		Head template.HTML
		Text string
	}{post, head, content.PlainText(post.Content)})
	if err != nil {
		h.logger.Warn("failed to render preview", zap.String("post", post.ID), zap.Error(err))
	}
}
