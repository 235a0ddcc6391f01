package viewmodel

// User represents the signed-in shopper exposed to templates.
type User struct {
	Name  string
	Email string
	Role  string
}

// Notice is a one-shot message rendered as a toast and an inline banner.
type Notice struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	IsManager       bool
	IsAdmin         bool
	CartCount       int
	User            *User
	Notices         []Notice
}

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}
