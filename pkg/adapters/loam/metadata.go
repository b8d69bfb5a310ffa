package loam

// TemplateMetadata is the front matter of a template document.
type TemplateMetadata struct {
	// Name overrides the file-derived template name.
	Name string `json:"name" mapstructure:"name"`
	ID   string `json:"id" mapstructure:"id"`

	Description string `json:"description" mapstructure:"description"`

	// Layout, when present, turns the document into a nested layout with
	// these props; the body becomes the layout's content.
	Layout map[string]any `json:"layout,omitempty" mapstructure:"layout"`
}
