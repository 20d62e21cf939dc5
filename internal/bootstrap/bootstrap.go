// Package bootstrap assembles the back office from configuration: the
// datastore, the identity provider, the photo disk and the services on top.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/sincro/backoffice/app/controllers"
	appgraphql "github.com/sincro/backoffice/app/graphql"
	"github.com/sincro/backoffice/app/routes"
	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/config"
	"github.com/sincro/backoffice/pkg/auth"
	"github.com/sincro/backoffice/pkg/cache"
	"github.com/sincro/backoffice/pkg/database"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/datastore/postgrest"
	"github.com/sincro/backoffice/pkg/datastore/sqlstore"
	"github.com/sincro/backoffice/pkg/identity"
	"github.com/sincro/backoffice/pkg/identity/gotrue"
	"github.com/sincro/backoffice/pkg/identity/local"
	"github.com/sincro/backoffice/pkg/logger"
	"github.com/sincro/backoffice/pkg/storage"
	"github.com/sincro/backoffice/pkg/tracing"
)

const serviceName = "backoffice"

// Deps are the external resources the services run on. Photos may be nil,
// in which case photo uploads fail with an internal error.
type Deps struct {
	DB       *gorm.DB
	Store    datastore.Store
	Identity identity.Provider
	Issuer   *auth.Issuer
	Photos   storage.Disk
}

// Services holds one instance of every action set.
type Services struct {
	Bookings        *services.BookingService
	Coupons         *services.CouponService
	Orders          *services.OrderService
	Categories      *services.CategoryService
	Products        *services.ProductService
	StoreCategories *services.StoreCategoryService
	Stores          *services.StoreService
	Inventory       *services.InventoryService
	Users           *services.UserService
}

// App is the assembled process.
type App struct {
	Deps
	Services Services

	closers []func(context.Context) error
}

// Build wires services over deps without touching the network.
func Build(d Deps) *App {
	return &App{
		Deps: d,
		Services: Services{
			Bookings:        services.NewBookingService(d.Store),
			Coupons:         services.NewCouponService(d.Store),
			Orders:          services.NewOrderService(d.Store),
			Categories:      services.NewCategoryService(d.Store),
			Products:        services.NewProductService(d.Store, d.Photos),
			StoreCategories: services.NewStoreCategoryService(d.Store),
			Stores:          services.NewStoreService(d.Store, d.Photos),
			Inventory:       services.NewInventoryService(d.Store),
			Users:           services.NewUserService(d.Identity, d.Store, d.Issuer),
		},
	}
}

// Controllers returns the HTTP handlers over a's services.
func (a *App) Controllers() routes.Controllers {
	s := a.Services
	return routes.Controllers{
		Bookings:        controllers.NewBookingController(s.Bookings),
		Coupons:         controllers.NewCouponController(s.Coupons),
		Orders:          controllers.NewOrderController(s.Orders),
		Categories:      controllers.NewCategoryController(s.Categories),
		Products:        controllers.NewProductController(s.Products),
		StoreCategories: controllers.NewStoreCategoryController(s.StoreCategories),
		Stores:          controllers.NewStoreController(s.Stores),
		Inventory:       controllers.NewInventoryController(s.Inventory),
		Users:           controllers.NewUserController(s.Users),
	}
}

// Graph returns the services the GraphQL schema reads from.
func (a *App) Graph() appgraphql.Services {
	s := a.Services
	return appgraphql.Services{
		Bookings:  s.Bookings,
		Coupons:   s.Coupons,
		Orders:    s.Orders,
		Products:  s.Products,
		Stores:    s.Stores,
		Inventory: s.Inventory,
		Users:     s.Users,
	}
}

// Close releases everything New opened.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Logging installs the process logger. With LOG_MONGO_URI set, records are
// also written to MongoDB; the returned func flushes that sink.
func Logging() (func(context.Context) error, error) {
	opts := logger.Options{Production: config.IsProduction()}
	closeFn := func(context.Context) error { return nil }

	if uri := config.LogMongoURI(); uri != "" {
		h, err := logger.NewMongoHandler(uri, config.LogMongoDB(), "logs", slog.LevelInfo)
		if err != nil {
			return nil, err
		}
		opts.Extra = append(opts.Extra, h)
		closeFn = func(context.Context) error {
			h.Close()
			return nil
		}
	}
	logger.Setup(opts)
	return closeFn, nil
}

// OpenDB connects to the SQL database. It fails for the hosted backend,
// which has no SQL connection.
func OpenDB() (*gorm.DB, error) {
	if config.DatabaseDriver() == "supabase" {
		return nil, errors.New("DB_DRIVER=supabase has no SQL connection; run migrations against the project database directly")
	}
	return database.Connect()
}

// New loads configuration and opens every dependency. Close undoes it.
func New(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var closers []func(context.Context) error
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i](context.Background())
		}
		return nil, err
	}

	closeLogs, err := Logging()
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeLogs)

	shutdownTracing, err := tracing.Setup(serviceName, config.JaegerEndpoint())
	if err != nil {
		return fail(fmt.Errorf("tracing: %w", err))
	}
	closers = append(closers, shutdownTracing)

	var d Deps
	if config.DatabaseDriver() == "supabase" {
		if config.SupabaseURL() == "" {
			return fail(errors.New("SUPABASE_URL is required when DB_DRIVER=supabase"))
		}
		d.Store = postgrest.New(config.SupabaseURL(), config.SupabaseServiceKey())
	} else {
		db, err := database.Connect()
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		d.DB = db
		d.Store = sqlstore.New(db)
	}

	provider, err := openIdentity(d.DB)
	if err != nil {
		return fail(err)
	}
	idCache, closeCache := openCache(ctx)
	closers = append(closers, closeCache)
	d.Identity = identity.NewCached(provider, idCache, config.IdentityCacheTTL())

	d.Issuer = auth.NewIssuer(config.JWTSecret(), config.JWTTTL())

	disk, err := storage.Open(ctx, config.StorageDefault())
	if err != nil {
		logger.Warn("photo storage unavailable; uploads disabled", "disk", config.StorageDefault(), "error", err)
	} else {
		d.Photos = disk
	}

	app := Build(d)
	app.closers = closers
	logger.Info("back office ready",
		"env", config.AppEnv(),
		"db", config.DatabaseDriver(),
		"identity", config.IdentityDriver(),
		"storage", config.StorageDefault(),
	)
	return app, nil
}

func openIdentity(db *gorm.DB) (identity.Provider, error) {
	switch config.IdentityDriver() {
	case "supabase":
		if config.SupabaseURL() == "" {
			return nil, errors.New("SUPABASE_URL is required when IDENTITY_DRIVER=supabase")
		}
		return gotrue.New(config.SupabaseURL(), config.SupabaseServiceKey(), config.SupabaseAnonKey()), nil
	default:
		if db == nil {
			return nil, errors.New("IDENTITY_DRIVER=local needs a SQL database; set IDENTITY_DRIVER=supabase")
		}
		return local.New(db), nil
	}
}

// openCache prefers Redis and falls back to process memory when it is
// unreachable.
func openCache(ctx context.Context) (cache.Store, func(context.Context) error) {
	rdb, err := cache.Dial(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("redis unavailable; using in-memory identity cache", "addr", config.RedisAddr(), "error", err)
		return cache.NewMemory(), func(context.Context) error { return nil }
	}
	return cache.NewRedis(rdb, serviceName+":"), func(context.Context) error { return rdb.Close() }
}
