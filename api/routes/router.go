package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/discope/discope-backend/api/controllers"
	alertcontrollers "github.com/discope/discope-backend/api/controllers/alerts"
	bookingcontrollers "github.com/discope/discope-backend/api/controllers/bookings"
	contractcontrollers "github.com/discope/discope-backend/api/controllers/contracts"
	fundingcontrollers "github.com/discope/discope-backend/api/controllers/fundings"
	reconciliationcontrollers "github.com/discope/discope-backend/api/controllers/reconciliation"
	"github.com/discope/discope-backend/api/middleware"
	"github.com/discope/discope-backend/internal/alerts"
	"github.com/discope/discope-backend/internal/bookings"
	"github.com/discope/discope-backend/internal/contracts"
	"github.com/discope/discope-backend/internal/fundings"
	"github.com/discope/discope-backend/internal/reconciliation"
	"github.com/discope/discope-backend/internal/workflow"
	pkgAuth "github.com/discope/discope-backend/pkg/auth"
	"github.com/discope/discope-backend/pkg/config"
	"github.com/discope/discope-backend/pkg/db"
	"github.com/discope/discope-backend/pkg/logger"
	"github.com/discope/discope-backend/pkg/redis"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Bookings       bookings.Service
	Workflow       workflow.Service
	Fundings       fundings.Service
	Contracts      contracts.Service
	Reconciliation reconciliation.Service
	Alerts         alerts.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.API.CORSOrigins),
	)

	deps := map[string]db.Pinger{"db": dbP}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/public/ping", controllers.PublicPing())

	bookingStaff := middleware.RequireGroup(logg, pkgAuth.GroupBooking)
	financeStaff := middleware.RequireGroup(logg, pkgAuth.GroupFinance)
	anyStaff := middleware.RequireGroup(logg, pkgAuth.GroupBooking, pkgAuth.GroupFinance)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Use(middleware.RateLimit(redisClient, "commands", cfg.API.CommandRateLimit, cfg.API.CommandRateWindow, logg))
		}
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/bookings", func(r chi.Router) {
			r.With(bookingStaff).Post("/", bookingcontrollers.Create(svc.Bookings, logg))

			r.Route("/{bookingId}", func(r chi.Router) {
				r.With(anyStaff).Get("/", bookingcontrollers.Get(svc.Bookings, logg))
				r.With(anyStaff).Get("/fundings", fundingcontrollers.List(svc.Fundings, logg))
				r.With(anyStaff).Get("/contract", contractcontrollers.Latest(svc.Contracts, logg))
				r.With(financeStaff).Post("/fundings", fundingcontrollers.Add(svc.Fundings, logg))
				r.With(financeStaff).Post("/do-balance", bookingcontrollers.DoBalance(svc.Workflow, logg))

				r.Group(func(r chi.Router) {
					r.Use(bookingStaff)
					r.Patch("/", bookingcontrollers.Update(svc.Bookings, logg))
					r.Delete("/", bookingcontrollers.Delete(svc.Bookings, logg))
					r.Post("/do-refresh", bookingcontrollers.Refresh(svc.Bookings, logg))

					r.Post("/do-option", bookingcontrollers.DoOption(svc.Workflow, logg))
					r.Post("/do-confirm", bookingcontrollers.DoConfirm(svc.Workflow, logg))
					r.Post("/do-quote", bookingcontrollers.DoQuote(svc.Workflow, logg))
					r.Post("/do-checkin", bookingcontrollers.DoCheckIn(svc.Workflow, logg))
					r.Post("/do-checkout", bookingcontrollers.DoCheckOut(svc.Workflow, logg))
					r.Post("/do-invoice", bookingcontrollers.DoInvoice(svc.Workflow, logg))
					r.Post("/do-cancel", bookingcontrollers.DoCancel(svc.Workflow, logg))
					r.Post("/do-archive", bookingcontrollers.DoArchive(svc.Workflow, logg))

					r.Post("/groups", bookingcontrollers.CreateGroup(svc.Bookings, logg))
					r.Route("/groups/{groupId}", func(r chi.Router) {
						r.Patch("/", bookingcontrollers.UpdateGroup(svc.Bookings, logg))
						r.Delete("/", bookingcontrollers.DeleteGroup(svc.Bookings, logg))
						r.Put("/pack", bookingcontrollers.SetPack(svc.Bookings, logg))
						r.Delete("/pack", bookingcontrollers.RemovePack(svc.Bookings, logg))
						r.Put("/age-ranges/{ageRangeId}", bookingcontrollers.SetAgeRange(svc.Bookings, logg))
						r.Delete("/age-ranges/{ageRangeId}", bookingcontrollers.RemoveAgeRange(svc.Bookings, logg))
						r.Post("/lines", bookingcontrollers.AddLine(svc.Bookings, logg))
						r.Patch("/lines/{lineId}", bookingcontrollers.UpdateLine(svc.Bookings, logg))
						r.Delete("/lines/{lineId}", bookingcontrollers.DeleteLine(svc.Bookings, logg))
						r.Post("/adapters", bookingcontrollers.AddAdapter(svc.Bookings, logg))
						r.Delete("/adapters/{adapterId}", bookingcontrollers.RemoveAdapter(svc.Bookings, logg))
						r.Post("/accommodations/{accommodationId}/assignments", bookingcontrollers.AssignRentalUnit(svc.Bookings, logg))
						r.Delete("/assignments/{assignmentId}", bookingcontrollers.RemoveRentalUnitAssignment(svc.Bookings, logg))
						r.Put("/meal-preferences", bookingcontrollers.SetMealPreference(svc.Bookings, logg))
						r.Patch("/meals/{mealId}", bookingcontrollers.UpdateMeal(svc.Bookings, logg))
					})
				})
			})
		})

		r.Route("/contracts/{contractId}", func(r chi.Router) {
			r.Use(bookingStaff)
			r.Get("/", contractcontrollers.Get(svc.Contracts, logg))
			r.Post("/do-send", contractcontrollers.DoSend(svc.Contracts, logg))
			r.Post("/do-sign", contractcontrollers.DoSign(svc.Contracts, logg))
			r.Post("/do-lock", contractcontrollers.DoLock(svc.Contracts, logg))
			r.Post("/do-unlock", contractcontrollers.DoUnlock(svc.Contracts, logg))
			r.Post("/do-cancel", contractcontrollers.DoCancel(svc.Contracts, logg))
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Use(anyStaff)
			r.Get("/", alertcontrollers.List(svc.Alerts, logg))
			r.Post("/{alertId}/do-dismiss", alertcontrollers.Dismiss(svc.Alerts, logg))
		})

		r.Route("/fundings/{fundingId}", func(r chi.Router) {
			r.With(anyStaff).Get("/", fundingcontrollers.Get(svc.Fundings, logg))
			r.Group(func(r chi.Router) {
				r.Use(financeStaff)
				r.Delete("/", fundingcontrollers.Delete(svc.Fundings, logg))
				r.Post("/do-pay-append", fundingcontrollers.AppendPayment(svc.Fundings, logg))
				r.Post("/do-paid", fundingcontrollers.MarkPaid(svc.Fundings, logg))
				r.Post("/do-unpaid", fundingcontrollers.MarkUnpaid(svc.Fundings, logg))
				r.Post("/do-transfer", fundingcontrollers.TransferFunding(svc.Fundings, logg))
			})
		})

		r.Route("/payments/{paymentId}", func(r chi.Router) {
			r.Use(financeStaff)
			r.Delete("/", fundingcontrollers.RemovePayment(svc.Fundings, logg))
			r.Post("/do-transfer", fundingcontrollers.TransferPayment(svc.Fundings, logg))
		})

		r.Route("/bank-statements", func(r chi.Router) {
			r.Use(financeStaff)
			importLimit := func(next http.Handler) http.Handler { return next }
			if redisClient != nil {
				importLimit = middleware.RateLimit(redisClient, "statement-import", cfg.API.ImportRateLimit, cfg.API.ImportRateWindow, logg)
			}
			r.With(importLimit).Post("/", reconciliationcontrollers.ImportStatement(svc.Reconciliation, logg))
			r.Get("/{statementId}", reconciliationcontrollers.GetStatement(svc.Reconciliation, logg))
		})

		r.Route("/bank-statement-lines/{lineId}", func(r chi.Router) {
			r.Use(financeStaff)
			r.Post("/do-reconcile", reconciliationcontrollers.DoReconcile(svc.Reconciliation, logg))
			r.Post("/do-reconcile-manual", reconciliationcontrollers.DoReconcileManual(svc.Reconciliation, logg))
			r.Post("/do-ignore", reconciliationcontrollers.DoIgnore(svc.Reconciliation, logg))
		})
	})

	return r
}
