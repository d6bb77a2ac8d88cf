package http

import (
	"net/http"

	"github.com/go-account-api/internal/application/challenge"
	"github.com/go-account-api/internal/application/nationalid"
	"github.com/go-account-api/internal/application/passwordreset"
	"github.com/go-account-api/internal/application/session"
	"github.com/go-account-api/internal/application/signup"
	"github.com/go-account-api/internal/application/user"
	"github.com/go-account-api/internal/application/verification"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
	"github.com/go-account-api/internal/transport/http/handler"
	appmiddleware "github.com/go-account-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.Tokens)

	// 5 requests/second, burst of 10, on every public write endpoint.
	ipRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	perEmail := func(scope string) func(http.Handler) http.Handler {
		if deps.EmailLimiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return appmiddleware.EmailRateLimit(deps.EmailLimiter, scope)
	}

	challengeDeps := challenge.Deps{
		Store:  deps.ChallengeRepo,
		Tokens: deps.Tokens,
		TTL:    cfg.Challenge.CodeTTL,
	}
	verificationSvc := verification.NewService(verification.ServiceDeps{
		Challenges:    challenge.NewLifecycle(challengeDeps),
		Validator:     challenge.NewValidator(challengeDeps),
		Verifications: deps.VerificationRepo,
		Tokens:        deps.Tokens,
		Mailer:        deps.Mailer,
		CodeTTL:       cfg.Challenge.CodeTTL,
	})
	signupSvc := signup.NewService(signup.ServiceDeps{
		Users:         deps.UserRepo,
		Verifications: deps.VerificationRepo,
		Tokens:        deps.Tokens,
		Hasher:        deps.Hasher,
		Events:        deps.Events,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		UserRepo: deps.UserRepo,
		Tokens:   deps.Tokens,
		Hasher:   deps.Hasher,
		Admins:   deps.Admins,
	})
	resetSvc := passwordreset.NewService(passwordreset.ServiceDeps{
		Users:   deps.UserRepo,
		Resets:  deps.PasswordResetRepo,
		Hasher:  deps.Hasher,
		Admins:  deps.Admins,
		Mailer:  deps.Mailer,
		CodeTTL: cfg.Challenge.ResetCodeTTL,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo: deps.UserRepo,
		Images:   deps.Images,
	})
	nationalIDSvc := nationalid.NewService(nationalid.ServiceDeps{OCR: deps.OCR})

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(verificationSvc)
	signupH := handler.NewSignupHandler(signupSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	resetH := handler.NewPasswordResetHandler(resetSvc)
	userH := handler.NewUserHandler(userSvc)
	nationalIDH := handler.NewNationalIDHandler(nationalIDSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Route("/users", func(r chi.Router) {
			// ── Public routes (no auth) ──────────────────────────────────────
			r.With(ipRL.Limit, perEmail("send-code")).Post("/send-verification-code", verificationH.SendCode)
			r.With(ipRL.Limit).Post("/verify", verificationH.Verify)
			r.With(ipRL.Limit).Post("/signup", signupH.Signup)
			r.With(ipRL.Limit, perEmail("login")).Post("/login", sessionH.Login)
			r.Post("/refresh-token", sessionH.Refresh)
			r.With(ipRL.Limit, perEmail("request-reset")).Post("/request-reset-password", resetH.RequestReset)
			r.With(ipRL.Limit, perEmail("reset")).Post("/reset-password", resetH.Reset)
			r.With(ipRL.Limit).Post("/ocr/national-id", nationalIDH.Extract)

			// ── Authenticated routes ─────────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(authMw)

				r.Post("/signup-completion", userH.CompleteSignup)
				r.Get("/profile/{id}", userH.Get)
				r.Put("/profile", userH.Update)
				r.Delete("/profile", userH.DeleteSelf)
				r.Put("/profile/upload-image", userH.UploadImage)

				// Admin-only routes
				r.Group(func(r chi.Router) {
					r.Use(appmiddleware.RequireRole(domain.RoleAdmin))
					r.Delete("/{id}", userH.Delete)
				})
			})
		})
	})

	return r
}
