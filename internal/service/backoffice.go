package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/target/parapharmacie-storefront/internal/domain/auth"
	"github.com/target/parapharmacie-storefront/internal/domain/model"
	apperrors "github.com/target/parapharmacie-storefront/internal/errors"
	"github.com/target/parapharmacie-storefront/internal/ports"
)

// catalogInvalidator drops cached catalog reads after product changes.
type catalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

// BackofficeServiceOptions groups dependencies for BackofficeService.
type BackofficeServiceOptions struct {
	Orders  ports.OrderAPI     // Required
	Manager ports.ManagerAPI   // Required
	Admin   ports.AdminAPI     // Required
	Catalog ports.CatalogAPI   // Required
	Cache   catalogInvalidator // Optional
	Logger  *slog.Logger
}

// BackofficeService backs the manager and admin consoles.
type BackofficeService struct {
	orders  ports.OrderAPI
	manager ports.ManagerAPI
	admin   ports.AdminAPI
	catalog ports.CatalogAPI
	cache   catalogInvalidator
	logger  *slog.Logger
}

// NewBackofficeService constructs a BackofficeService.
func NewBackofficeService(opts BackofficeServiceOptions) (*BackofficeService, error) {
	if opts.Orders == nil || opts.Manager == nil || opts.Admin == nil || opts.Catalog == nil {
		return nil, errors.New("orders, manager, admin and catalog APIs are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BackofficeService{
		orders:  opts.Orders,
		manager: opts.Manager,
		admin:   opts.Admin,
		catalog: opts.Catalog,
		cache:   opts.Cache,
		logger:  logger.With("component", "backoffice_service"),
	}, nil
}

// ManagerDashboard is everything the manager console shows at once.
type ManagerDashboard struct {
	Orders     []model.Order
	Products   []model.Product
	LowStock   []model.Product
	OutOfStock []model.Product
}

// ManagerDashboard loads the manager console lists concurrently.
func (s *BackofficeService) ManagerDashboard(ctx context.Context, sess *domainauth.Session) (*ManagerDashboard, error) {
	actx, err := s.staff(ctx, sess, domainauth.RoleManager, domainauth.RoleAdmin)
	if err != nil {
		return nil, err
	}

	var d ManagerDashboard
	g, gctx := errgroup.WithContext(actx)
	g.Go(func() error {
		var gerr error
		d.Orders, gerr = s.manager.ManagerOrders(gctx)
		return wrapLoad("orders", gerr)
	})
	g.Go(func() error {
		var gerr error
		d.Products, gerr = s.catalog.ListProducts(gctx)
		return wrapLoad("products", gerr)
	})
	g.Go(func() error {
		var gerr error
		d.LowStock, gerr = s.catalog.LowStock(gctx, model.LowStockThreshold)
		return wrapLoad("low stock", gerr)
	})
	g.Go(func() error {
		var gerr error
		d.OutOfStock, gerr = s.catalog.OutOfStock(gctx)
		return wrapLoad("out of stock", gerr)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// AdminDashboard is everything the admin console shows at once.
type AdminDashboard struct {
	Stats        model.Statistics
	Users        []model.User
	Products     []model.Product
	RecentOrders []model.Order
	// Orders is filtered by StatusFilter when set.
	Orders       []model.Order
	StatusFilter model.OrderStatus
}

// AdminDashboard loads the admin console lists concurrently.
func (s *BackofficeService) AdminDashboard(ctx context.Context, sess *domainauth.Session, status model.OrderStatus) (*AdminDashboard, error) {
	actx, err := s.staff(ctx, sess, domainauth.RoleAdmin)
	if err != nil {
		return nil, err
	}

	d := AdminDashboard{StatusFilter: status}
	g, gctx := errgroup.WithContext(actx)
	g.Go(func() error {
		var gerr error
		d.Stats, gerr = s.admin.Statistics(gctx)
		return wrapLoad("statistics", gerr)
	})
	g.Go(func() error {
		var gerr error
		d.Users, gerr = s.admin.ListUsers(gctx)
		return wrapLoad("users", gerr)
	})
	g.Go(func() error {
		var gerr error
		d.Products, gerr = s.catalog.ListProducts(gctx)
		return wrapLoad("products", gerr)
	})
	g.Go(func() error {
		var gerr error
		d.RecentOrders, gerr = s.orders.RecentOrders(gctx)
		return wrapLoad("recent orders", gerr)
	})
	g.Go(func() error {
		var gerr error
		if status != "" {
			d.Orders, gerr = s.orders.OrdersByStatus(gctx, status)
		} else {
			d.Orders, gerr = s.orders.AllOrders(gctx)
		}
		return wrapLoad("orders", gerr)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

func wrapLoad(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// SetOrderStatus moves an order to status. Admins go through the admin
// endpoint, managers through the manager endpoint.
func (s *BackofficeService) SetOrderStatus(ctx context.Context, sess *domainauth.Session, id int64, status model.OrderStatus) (model.Order, error) {
	actx, err := s.staff(ctx, sess, domainauth.RoleManager, domainauth.RoleAdmin)
	if err != nil {
		return model.Order{}, err
	}
	if _, ok := model.ParseOrderStatus(string(status)); !ok {
		return model.Order{}, apperrors.ValidationField("status", "Statut de commande invalide")
	}
	if domainauth.HasRole(sess, domainauth.RoleAdmin) {
		return s.orders.AdminUpdateStatus(actx, id, status)
	}
	return s.manager.ManagerUpdateStatus(actx, id, status)
}

// CreateProduct adds a product to the catalog.
func (s *BackofficeService) CreateProduct(ctx context.Context, sess *domainauth.Session, in model.ProductInput) (model.Product, error) {
	actx, err := s.staff(ctx, sess, domainauth.RoleManager, domainauth.RoleAdmin)
	if err != nil {
		return model.Product{}, err
	}
	p, err := s.manager.CreateProduct(actx, in)
	if err != nil {
		return model.Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// UpdateProduct edits a catalog product.
func (s *BackofficeService) UpdateProduct(ctx context.Context, sess *domainauth.Session, id int64, in model.ProductInput) (model.Product, error) {
	actx, err := s.staff(ctx, sess, domainauth.RoleManager, domainauth.RoleAdmin)
	if err != nil {
		return model.Product{}, err
	}
	p, err := s.manager.UpdateProduct(actx, id, in)
	if err != nil {
		return model.Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// UpdateStock sets the stock level of a product.
func (s *BackofficeService) UpdateStock(ctx context.Context, sess *domainauth.Session, id int64, stock int) (model.Product, error) {
	actx, err := s.staff(ctx, sess, domainauth.RoleManager, domainauth.RoleAdmin)
	if err != nil {
		return model.Product{}, err
	}
	if stock < 0 {
		return model.Product{}, apperrors.ValidationField("stock", "Le stock ne peut pas être négatif")
	}
	p, err := s.manager.UpdateStock(actx, id, stock)
	if err != nil {
		return model.Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// DeleteProduct removes a product. Admin only.
func (s *BackofficeService) DeleteProduct(ctx context.Context, sess *domainauth.Session, id int64) error {
	actx, err := s.staff(ctx, sess, domainauth.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.admin.DeleteProduct(actx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// CreateUser adds an account with the given role. Admin only.
func (s *BackofficeService) CreateUser(ctx context.Context, sess *domainauth.Session, req model.CreateUserRequest) (model.User, error) {
	actx, err := s.staff(ctx, sess, domainauth.RoleAdmin)
	if err != nil {
		return model.User{}, err
	}
	role := domainauth.Role(req.Role)
	if !role.Valid() {
		return model.User{}, apperrors.ValidationField("role", "Rôle invalide")
	}
	req.Role = role.Wire()
	return s.admin.CreateUser(actx, req)
}

// SetUserRole changes an account role. Admin only.
func (s *BackofficeService) SetUserRole(ctx context.Context, sess *domainauth.Session, id int64, role domainauth.Role) (model.User, error) {
	actx, err := s.staff(ctx, sess, domainauth.RoleAdmin)
	if err != nil {
		return model.User{}, err
	}
	if !role.Valid() {
		return model.User{}, apperrors.ValidationField("role", "Rôle invalide")
	}
	return s.admin.UpdateUserRole(actx, id, role.Wire())
}

// SetUserEnabled enables or disables an account. Admin only.
func (s *BackofficeService) SetUserEnabled(ctx context.Context, sess *domainauth.Session, id int64, enabled bool) (model.User, error) {
	actx, err := s.staff(ctx, sess, domainauth.RoleAdmin)
	if err != nil {
		return model.User{}, err
	}
	return s.admin.SetUserEnabled(actx, id, enabled)
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (s *BackofficeService) DeleteUser(ctx context.Context, sess *domainauth.Session, id int64) error {
	actx, err := s.staff(ctx, sess, domainauth.RoleAdmin)
	if err != nil {
		return err
	}
	if id == sess.UserID {
		return apperrors.Conflict("Vous ne pouvez pas supprimer votre propre compte")
	}
	return s.admin.DeleteUser(actx, id)
}

// staff attaches the token after checking the session role against roles.
func (s *BackofficeService) staff(ctx context.Context, sess *domainauth.Session, roles ...domainauth.Role) (context.Context, error) {
	actx, err := authed(ctx, sess)
	if err != nil {
		return ctx, err
	}
	if !domainauth.HasAnyRole(sess, roles...) {
		return ctx, apperrors.Forbidden("Accès refusé")
	}
	return actx, nil
}

func (s *BackofficeService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "catalog cache invalidation failed", "error", err)
	}
}
