package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"dukapos/m/domain"
	"dukapos/m/internal/repository"
	"dukapos/m/internal/session"
)

// Catalog is the product store the handlers work against.
type Catalog interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
}

// Ledger records and lists sales.
type Ledger interface {
	Create(ctx context.Context, order domain.SaleOrder) (*domain.Sale, error)
	List(ctx context.Context, filter repository.SaleFilter) ([]domain.Sale, error)
}

// Options bundles dependencies for HTTP handlers.
type Options struct {
	Catalog  Catalog
	Ledger   Ledger
	Admin    *session.Admin
	Sessions *session.Manager
	Logger   *zap.Logger
	// Location decides which calendar day a sale belongs to.
	Location *time.Location

	CookieName     string
	SecureCookie   bool
	CORSOrigins    []string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type Handler struct {
	catalog  Catalog
	ledger   Ledger
	admin    *session.Admin
	sessions *session.Manager
	log      *zap.Logger
	loc      *time.Location
	validate *validator.Validate

	cookieName     string
	secureCookie   bool
	corsOrigins    []string
	requestTimeout time.Duration
	maxBodyBytes   int64
}

// New constructs a Handler.
func New(opts Options) *Handler {
	h := &Handler{
		catalog:        opts.Catalog,
		ledger:         opts.Ledger,
		admin:          opts.Admin,
		sessions:       opts.Sessions,
		log:            opts.Logger,
		loc:            opts.Location,
		validate:       newValidator(),
		cookieName:     opts.CookieName,
		secureCookie:   opts.SecureCookie,
		corsOrigins:    opts.CORSOrigins,
		requestTimeout: opts.RequestTimeout,
		maxBodyBytes:   opts.MaxBodyBytes,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	if h.cookieName == "" {
		h.cookieName = "pos_session"
	}
	return h
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	// Without configured origins only same-origin pages can call the API.
	if len(h.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if h.requestTimeout > 0 {
		r.Use(middleware.Timeout(h.requestTimeout))
	}
	if h.maxBodyBytes > 0 {
		r.Use(h.limitBody)
	}

	r.Get("/health", h.health)
	r.Post("/admin-login", h.login)
	r.Post("/logout", h.logout)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/inventory", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id}", h.getProduct)
			r.Patch("/{id}", h.updateProduct)
		})

		pr.Post("/sale", h.createSale)

		pr.Route("/sales", func(r chi.Router) {
			r.Get("/", h.listSales)
			r.Get("/daily", h.dailySales)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
