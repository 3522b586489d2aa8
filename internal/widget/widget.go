package widget

// MIMEType is the MIME type agents expect for renderable widget templates.
const MIMEType = "text/html+skybridge"

// ContentWidget describes a renderable HTML fragment exposed as an MCP resource
// and referenced from tool results.
type ContentWidget struct {
	ID           string
	Title        string
	TemplateURI  string
	Invoking     string
	Invoked      string
	HTML         string
	Description  string
	WidgetDomain string
}

// Meta returns the openai/* metadata attached to tool descriptors and tool results.
func (w *ContentWidget) Meta() map[string]any {
	return map[string]any{
		"openai/outputTemplate":          w.TemplateURI,
		"openai/toolInvocation/invoking": w.Invoking,
		"openai/toolInvocation/invoked":  w.Invoked,
		"openai/widgetAccessible":        false,
		"openai/resultCanProduceWidget":  true,
	}
}

// ResourceMeta returns the metadata attached to the widget resource and its contents.
// The domain key is omitted when no widget domain is configured.
func (w *ContentWidget) ResourceMeta() map[string]any {
	meta := map[string]any{
		"openai/widgetDescription":   w.Description,
		"openai/widgetPrefersBorder": true,
	}
	if w.WidgetDomain != "" {
		meta["openai/widgetDomain"] = w.WidgetDomain
	}
	return meta
}

// Document wraps the widget HTML in an html element, the shape agents render.
func (w *ContentWidget) Document() string {
	return "<html>" + w.HTML + "</html>"
}

// WithHTML returns a copy of w carrying html.
func (w ContentWidget) WithHTML(html string) *ContentWidget {
	w.HTML = html
	return &w
}

// Content returns the widget backing the content (show_content) endpoint.
func Content(domain string) *ContentWidget {
	return &ContentWidget{
		ID:           "show_content",
		Title:        "Show Content",
		TemplateURI:  "ui://widget/content-template.html",
		Invoking:     "Loading content...",
		Invoked:      "Content loaded",
		Description:  "Displays the homepage content",
		WidgetDomain: domain,
	}
}

// ProductSearch returns the widget backing the product search endpoint.
func ProductSearch(domain string) *ContentWidget {
	return &ContentWidget{
		ID:           "search_products",
		Title:        "Versicherungsprodukte suchen",
		TemplateURI:  "ui://widget/product-search.html",
		Invoking:     "Suche Versicherungsprodukte...",
		Invoked:      "Versicherungsprodukte gefunden",
		Description:  "Zeigt passende Versicherungsprodukte als Liste an",
		WidgetDomain: domain,
	}
}
