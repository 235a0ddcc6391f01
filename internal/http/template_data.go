package httpx

import (
	"net/http"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/http/ui/viewmodel"
)

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a builder seeded with the layout for r.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(buildLayout(r, meta))}
}

// WithError sets a general error message shown above the form.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}

// buildLayout constructs shared layout metadata from the request state.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}
	if layout.PageTitle == "" {
		layout.PageTitle = meta.Title
	}

	if s := GetSessionFromContext(r.Context()); s != nil {
		layout.IsAuthenticated = true
		layout.IsManager = domainauth.HasAnyRole(s, domainauth.RoleManager, domainauth.RoleAdmin)
		layout.IsAdmin = domainauth.HasRole(s, domainauth.RoleAdmin)
		layout.User = &viewmodel.User{Name: s.Name, Email: s.Email, Role: string(s.Role)}
	}
	return layout
}

// basePageData flattens the layout into the map the templates read.
func basePageData(layout viewmodel.Layout) map[string]any {
	data := map[string]any{
		"Layout":          layout,
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"IsManager":       layout.IsManager,
		"IsAdmin":         layout.IsAdmin,
		"CartCount":       layout.CartCount,
		"Errors":          map[string]string{},
		"Form":            map[string]string{},
	}
	if layout.CSRFToken != "" {
		data["CSRFToken"] = layout.CSRFToken
	}
	if layout.User != nil {
		data["User"] = layout.User
	}
	return data
}
