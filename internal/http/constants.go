package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageHome        = "home"
	PageAbout       = "about"
	PageContact     = "contact"
	PageLogin       = "login"
	PageRegister    = "register"
	PageProducts    = "products"
	PageProduct     = "product"
	PageCart        = "cart"
	PageOrders      = "orders"
	PageOrder       = "order"
	PageManager     = "manager"
	PageProductForm = "product-form"
	PageAdmin       = "admin"
	PageLoading     = "loading"
	PageNotFound    = "not-found"
)

// Paths the handlers redirect to.
const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathCart     = "/cart"
	PathOrders   = "/orders"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
	StaticPathFromRoot   = "frontend/static"
)

// FormMode represents the mode of a form (create or edit).
type FormMode string

const (
	// FormModeEdit indicates the form is in edit mode.
	FormModeEdit FormMode = "edit"
	// FormModeCreate indicates the form is in create mode.
	FormModeCreate FormMode = "create"
)

// Notice types understood by the toast script.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

//nolint:gochecknoglobals // static read-only lookup for templates; avoids per-call allocations
var contentTemplates = map[string]string{
	PageHome:        "home-content",
	PageAbout:       "about-content",
	PageContact:     "contact-content",
	PageLogin:       "login-content",
	PageRegister:    "register-content",
	PageProducts:    "products-content",
	PageProduct:     "product-content",
	PageCart:        "cart-content",
	PageOrders:      "orders-content",
	PageOrder:       "order-content",
	PageManager:     "manager-content",
	PageProductForm: "product-form-content",
	PageAdmin:       "admin-content",
	PageLoading:     "loading-content",
	PageNotFound:    "not-found-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to home-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return "home-content"
}
