package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harambee-coop/membership-backend/api/controllers"
	"github.com/harambee-coop/membership-backend/api/middleware"
	"github.com/harambee-coop/membership-backend/internal/announcements"
	"github.com/harambee-coop/membership-backend/internal/applications"
	"github.com/harambee-coop/membership-backend/internal/auth"
	"github.com/harambee-coop/membership-backend/internal/claims"
	"github.com/harambee-coop/membership-backend/internal/deductions"
	"github.com/harambee-coop/membership-backend/internal/meetings"
	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/internal/messages"
	"github.com/harambee-coop/membership-backend/internal/notifications"
	"github.com/harambee-coop/membership-backend/internal/payments"
	"github.com/harambee-coop/membership-backend/internal/reports"
	"github.com/harambee-coop/membership-backend/internal/shares"
	"github.com/harambee-coop/membership-backend/pkg/config"
	"github.com/harambee-coop/membership-backend/pkg/logger"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth          auth.Service
	Members       members.Service
	Shares        shares.Service
	Deductions    deductions.Service
	Notifications notifications.Service
	Claims        claims.Service
	Payments      payments.Service
	Applications  applications.Service
	Meetings      meetings.Service
	Announcements announcements.Service
	Messages      messages.Service
	Reports       reports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	r.Post("/api/v1/contact", controllers.ContactSubmit(svcs.Messages, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/members", func(r chi.Router) {
			r.Get("/me", controllers.MemberMe(svcs.Members, logg))
			r.Put("/me", controllers.MemberUpdateProfile(svcs.Members, logg))
			r.With(middleware.AdminOnly(logg)).Get("/", controllers.MemberList(svcs.Members, logg))
			r.With(middleware.AdminOnly(logg)).Get("/{memberId}", controllers.MemberDetail(svcs.Members, logg))
			r.With(middleware.AdminOnly(logg)).Post("/{memberId}/activate", controllers.MemberActivate(svcs.Members, logg))
			r.With(middleware.AdminOnly(logg)).Post("/{memberId}/deactivate", controllers.MemberDeactivate(svcs.Members, logg))
		})

		r.Route("/shares", func(r chi.Router) {
			r.Post("/", controllers.SharePurchase(svcs.Shares, logg))
			r.Get("/", controllers.ShareLedgerList(svcs.Shares, logg))
			r.Get("/balance", controllers.ShareBalance(svcs.Shares, logg))
			r.Post("/balance/refresh", controllers.ShareBalanceRefresh(svcs.Shares, logg))
			r.With(middleware.AdminOnly(logg)).Post("/{entryId}/review", controllers.ShareReview(svcs.Shares, logg))
		})

		r.Route("/deductions", func(r chi.Router) {
			r.Use(middleware.AdminOnly(logg))
			r.Post("/", controllers.DeductionRunAdHoc(svcs.Deductions, logg))
			r.Get("/", controllers.DeductionHistory(svcs.Deductions, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.NotificationUnreadCount(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(svcs.Notifications, logg))
		})

		r.Route("/claims", func(r chi.Router) {
			r.Post("/", controllers.ClaimSubmit(svcs.Claims, logg))
			r.Get("/", controllers.ClaimList(svcs.Claims, logg))
			r.With(middleware.AdminOnly(logg)).Post("/{claimId}/review", controllers.ClaimReview(svcs.Claims, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", controllers.PaymentSubmit(svcs.Payments, logg))
			r.Get("/", controllers.PaymentList(svcs.Payments, logg))
			r.With(middleware.AdminOnly(logg)).Post("/{paymentId}/review", controllers.PaymentReview(svcs.Payments, logg))
		})

		r.Route("/applications", func(r chi.Router) {
			r.Post("/", controllers.ApplicationSubmit(svcs.Applications, logg))
			r.Get("/", controllers.ApplicationList(svcs.Applications, logg))
			r.With(middleware.AdminOnly(logg)).Post("/{applicationId}/review", controllers.ApplicationReview(svcs.Applications, logg))
		})

		r.Route("/meetings", func(r chi.Router) {
			r.Get("/", controllers.MeetingList(svcs.Meetings, logg))
			r.Get("/{meetingId}", controllers.MeetingDetail(svcs.Meetings, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly(logg))
				r.Post("/", controllers.MeetingCreate(svcs.Meetings, logg))
				r.Put("/{meetingId}", controllers.MeetingUpdate(svcs.Meetings, logg))
				r.Delete("/{meetingId}", controllers.MeetingDelete(svcs.Meetings, logg))
			})
		})

		r.Route("/announcements", func(r chi.Router) {
			r.Get("/", controllers.AnnouncementList(svcs.Announcements, logg))
			r.Get("/{announcementId}", controllers.AnnouncementDetail(svcs.Announcements, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly(logg))
				r.Post("/", controllers.AnnouncementCreate(svcs.Announcements, logg))
				r.Put("/{announcementId}", controllers.AnnouncementUpdate(svcs.Announcements, logg))
				r.Delete("/{announcementId}", controllers.AnnouncementDelete(svcs.Announcements, logg))
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", controllers.MessageSend(svcs.Messages, logg))
			r.Get("/inbox", controllers.MessageInbox(svcs.Messages, logg))
			r.Get("/sent", controllers.MessageSent(svcs.Messages, logg))
			r.Get("/unread-count", controllers.MessageUnreadCount(svcs.Messages, logg))
			r.Post("/{messageId}/read", controllers.MessageMarkRead(svcs.Messages, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminOnly(logg))
			r.Get("/reports/summary", controllers.ReportSummary(svcs.Reports, logg))
			r.Get("/contact", controllers.ContactList(svcs.Messages, logg))
			r.Post("/contact/{contactId}/read", controllers.ContactMarkRead(svcs.Messages, logg))
		})
	})

	return r
}
