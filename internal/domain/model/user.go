//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// User is an account as listed in the admin console.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	Enabled   bool      `json:"enabled"`
	CreatedAt Timestamp `json:"createdAt"`
}

// CreateUserRequest is submitted by admins to add an account directly.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest carries shopper credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries the registration form fields the backend accepts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Token   string `json:"token"`
	Type    string `json:"type"`
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Statistics is the admin dashboard summary.
type Statistics struct {
	TotalUsers    int64  `json:"totalUsers"`
	TotalOrders   int64  `json:"totalOrders"`
	TotalProducts int64  `json:"totalProducts"`
	Message       string `json:"message"`
}
