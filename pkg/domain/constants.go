package domain

// Reserved names understood by the layout controller.
const (
	// MainRegion is the region targeted when no region name is given.
	MainRegion = "main"

	// DefaultLayout is stored as the template name whenever the caller sets an
	// empty template. It resolves to the built-in layout that yields "main".
	DefaultLayout = "_defaultLayout"

	// DefaultMainRegion is the initial value of the main region. It resolves
	// to the content block the layout was rendered with.
	DefaultMainRegion = "_defaultMainRegion"

	// YieldTemplate is the pseudo-template rendered by the default layout.
	YieldTemplate = "yield"

	// LayoutTemplate is the name the nested layout component type is
	// registered under.
	LayoutTemplate = "Layout"
)
