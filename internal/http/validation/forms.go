package validation

import (
	"regexp"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
)

//nolint:gochecknoglobals // compiled once
var (
	emailRe         = regexp.MustCompile(`\S+@\S+\.\S+`)
	registerPhoneRe = regexp.MustCompile(`^\+?\d{8,15}$`)
	checkoutPhoneRe = regexp.MustCompile(`^[+]?[0-9\s\-()]{8,20}$`)
)

const (
	minPasswordLen = 6
	maxNameLen     = 100
	maxAddressLen  = 255
	maxNotesLen    = 500
	maxMessageLen  = 2000
	maxImageURLLen = 500
)

// Register validates the registration form.
func Register(name, email, phone, address, password, confirm string) map[string]string {
	return New().
		Validate("name", name, Required("Le nom", maxNameLen)).
		Validate("email", email, Required("L'email", maxNameLen), Pattern("L'email", emailRe)).
		Validate("phone", phone, Required("Le téléphone", 20), Pattern("Le téléphone", registerPhoneRe)).
		Validate("address", address, Required("L'adresse", maxAddressLen)).
		Validate("password", password, MinLen("Le mot de passe", minPasswordLen)).
		Validate("confirm_password", confirm, Equals("Les mots de passe ne correspondent pas.", password)).
		Errors()
}

// Login validates the sign-in form.
func Login(email, password string) map[string]string {
	return New().
		Validate("email", email, Required("L'email", maxNameLen)).
		Validate("password", password, Required("Le mot de passe", maxNameLen)).
		Errors()
}

// Checkout validates the checkout form. itemCount is the number of cart lines.
func Checkout(address, phone, notes string, itemCount int) map[string]string {
	fv := New().
		Validate("shipping_address", address, Required("L'adresse de livraison", maxAddressLen)).
		Validate("phone", phone, Required("Le téléphone", 20), Pattern("Le téléphone", checkoutPhoneRe)).
		Validate("notes", notes, Optional("Les remarques", maxNotesLen))
	if itemCount < 1 {
		fv.Fail("items", "Votre panier est vide.")
	}
	return fv.Errors()
}

// Product validates the manager product form.
func Product(name, category, price, stock, imageURL string) map[string]string {
	categories := make([]string, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		categories = append(categories, string(c))
	}
	return New().
		Validate("name", name, Required("Le nom", maxNameLen)).
		Validate("category", category, OneOf("La catégorie", categories)).
		Validate("price", price, PositiveDecimal("Le prix")).
		Validate("stock", stock, IntMin("Le stock", 0)).
		Validate("image_url", imageURL, HTTPURL("L'URL de l'image", maxImageURLLen)).
		Errors()
}

// NewUser validates the admin add-user form.
func NewUser(name, email, password, role string) map[string]string {
	return New().
		Validate("name", name, Required("Le nom", maxNameLen)).
		Validate("email", email, Required("L'email", maxNameLen), Pattern("L'email", emailRe)).
		Validate("password", password, MinLen("Le mot de passe", minPasswordLen)).
		Validate("role", role, OneOf("Le rôle", roleNames())).
		Errors()
}

// UserRole validates a role change.
func UserRole(role string) map[string]string {
	return New().Validate("role", role, OneOf("Le rôle", roleNames())).Errors()
}

// OrderStatus validates a status change.
func OrderStatus(status string) map[string]string {
	names := make([]string, 0, len(model.OrderStatuses()))
	for _, s := range model.OrderStatuses() {
		names = append(names, string(s))
	}
	return New().Validate("status", status, OneOf("Le statut", names)).Errors()
}

// Contact validates the contact form.
func Contact(name, email, subject, message string) map[string]string {
	return New().
		Validate("name", name, Required("Le nom", maxNameLen)).
		Validate("email", email, Required("L'email", maxNameLen), Pattern("L'email", emailRe)).
		Validate("subject", subject, Required("Le sujet", maxNameLen)).
		Validate("message", message, Required("Le message", maxMessageLen)).
		Errors()
}

func roleNames() []string {
	roles := []domainauth.Role{domainauth.RoleUser, domainauth.RoleManager, domainauth.RoleAdmin}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Wire())
	}
	return out
}
