package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/handlers"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/calendar"
	infraRepo "github.com/BruksfildServices01/clinic-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/oauthstate"
	ucAppointment "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/appointment"
	ucSlot "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const oauthStateTTL = 10 * time.Minute

// Infra carries the process-wide collaborators built in main.
type Infra struct {
	Calendar domain.CalendarSync
	Guard    domain.SlotGuard
	Audit    *audit.Dispatcher
	Limiter  *middleware.RateLimiter
	Log      zerolog.Logger
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, infra Infra) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	repo := infraRepo.NewGormRepository(db)

	apDeps := ucAppointment.Deps{
		Repo:     repo,
		Calendar: infra.Calendar,
		Guard:    infra.Guard,
		Audit:    infra.Audit,
		Log:      infra.Log,
		Emails:   validators.EmailChecker{CheckDomain: cfg.EmailDomainCheck},
		DoctorID: cfg.DefaultDoctorID,
	}

	slotDeps := ucSlot.Deps{
		Repo:     repo,
		Audit:    infra.Audit,
		DoctorID: cfg.DefaultDoctorID,
		Timezone: cfg.Timezone,
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(apDeps)
	slotHandler := handlers.NewSlotHandler(slotDeps, infra.Log)
	agentHandler := handlers.NewAgentHandler(apDeps, slotDeps)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	healthHandler := handlers.NewHealthHandler(db)

	var flow handlers.OAuthFlow
	if cfg.GoogleOAuthConfigured() {
		flow = calendar.OAuthConfig(calendar.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURI:  cfg.GoogleRedirectURI,
		})
	}
	googleAuthHandler := handlers.NewGoogleAuthHandler(
		flow,
		oauthstate.NewSigner(cfg.JWTSecret, oauthStateTTL),
		infra.Log,
	)

	r.GET("/health", healthHandler.Liveness)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.API)

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		appointments := api.Group("/appointments")
		{
			appointments.GET("", appointmentHandler.List)
			appointments.POST("", appointmentHandler.Create)
			appointments.GET("/:id", appointmentHandler.Get)
			appointments.PUT("/:id", appointmentHandler.Update)
			appointments.DELETE("/:id", appointmentHandler.Delete)
			appointments.PATCH("/:id/cancel", appointmentHandler.Cancel)
		}

		// ------------------------------
		// SLOTS
		// ------------------------------
		slots := api.Group("/slots")
		{
			slots.GET("", slotHandler.List)
			slots.POST("", slotHandler.Create)
			slots.POST("/bulk", slotHandler.BulkCreate)
			slots.DELETE("/:id", slotHandler.Delete)
		}

		// ------------------------------
		// AGENT (LLM / voice)
		// ------------------------------
		llm := api.Group("/llm")
		if infra.Limiter != nil {
			llm.Use(middleware.RateLimit(infra.Limiter))
		}
		{
			llm.POST("/check-availability", agentHandler.CheckAvailability)
			llm.POST("/check-availability-range", agentHandler.CheckAvailabilityRange)
			llm.POST("/check-availability-next-days", agentHandler.CheckAvailabilityNextDays)
			llm.POST("/get-next-available", agentHandler.GetNextAvailable)
			llm.POST("/book-appointment", agentHandler.BookAppointment)
			llm.POST("/get-appointments", agentHandler.GetAppointments)
			llm.POST("/cancel-appointment", agentHandler.CancelAppointment)
			llm.POST("/reschedule-appointment", agentHandler.RescheduleAppointment)
		}

		// ------------------------------
		// GOOGLE OAUTH BOOTSTRAP
		// ------------------------------
		api.GET("/auth/google", googleAuthHandler.AuthURL)
		api.GET("/auth/google/callback", googleAuthHandler.Callback)

		api.GET("/audit-logs", auditLogsHandler.List)
	}
}
