package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/internal/api/http/handler"
	"github.com/Alijeyrad/mindcare_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/internal/service/auth"
	"github.com/Alijeyrad/mindcare_backend/internal/service/conversation"
	"github.com/Alijeyrad/mindcare_backend/internal/service/crisis"
	"github.com/Alijeyrad/mindcare_backend/internal/service/identity"
	"github.com/Alijeyrad/mindcare_backend/internal/service/invite"
	"github.com/Alijeyrad/mindcare_backend/internal/service/notification"
	"github.com/Alijeyrad/mindcare_backend/pkg/authorize"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Store           kv.Store
	Auth            authorize.IAuthorization
	Identity        identity.Gateway
	AccountSvc      account.Service
	AuthSvc         auth.Service
	InviteSvc       invite.Service
	CrisisSvc       crisis.Service
	ConversationSvc conversation.Service
	NotificationSvc notification.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.Identity, r.p.AccountSvc)
	publicKey := middleware.PublicAPIKey(r.p.Cfg.Authentication.PublicAPIKey)

	// Permission helper
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	psychologistH := handler.NewPsychologistHandler(r.p.AccountSvc, r.p.InviteSvc, r.p.CrisisSvc)
	patientH := handler.NewPatientHandler(r.p.AccountSvc, r.p.InviteSvc, r.p.CrisisSvc)
	crisisH := handler.NewCrisisHandler(r.p.CrisisSvc)
	chatH := handler.NewChatHandler(r.p.ConversationSvc)
	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)

	var api fiber.Router = app
	if base := r.p.Cfg.Server.BasePath; base != "" && base != "/" {
		api = app.Group(base)
	}

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, publicKey, authRequired)
	r.registerPsychologistRoutes(api, psychologistH, authRequired, requirePerm)
	r.registerPatientRoutes(api, patientH, publicKey, authRequired, requirePerm)
	r.registerCrisisRoutes(api, crisisH, authRequired, requirePerm)
	r.registerChatRoutes(api, chatH, authRequired, requirePerm)
	r.registerNotificationRoutes(api, notificationH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			return r.p.Store.Ping(ctx) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
