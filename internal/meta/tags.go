package meta

import (
	"bytes"
	"fmt"
	"html/template"

	"gigsafe/internal/domain"
)

var headTemplate = template.Must(template.New("head").Parse(
	`<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<link rel="canonical" href="{{.Canonical}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:type" content="{{.OGType}}">
<meta property="og:url" content="{{.Canonical}}">
<meta property="og:image" content="{{.OGImage}}">
{{- with .SiteName}}
<meta property="og:site_name" content="{{.}}">
{{- end}}
{{- with .Locale}}
<meta property="og:locale" content="{{.}}">
{{- end}}
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:image" content="{{.OGImage}}">
{{- with .JSONLD}}
<script type="application/ld+json">{{.}}</script>
{{- end}}
`))

// RenderTags renders the <head> tags of a page. Every value is escaped for
// its context, including the JSON-LD block.
func RenderTags(m domain.PageMeta) (template.HTML, error) {
	var buf bytes.Buffer
	if err := headTemplate.Execute(&buf, m); err != nil {
		return "", fmt.Errorf("render head tags: %w", err)
	}
	return template.HTML(buf.String()), nil
}
