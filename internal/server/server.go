package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"anoa.com/learnhub/internal/config"
	"anoa.com/learnhub/internal/jobs"
	"anoa.com/learnhub/internal/middleware"
	"anoa.com/learnhub/internal/search"
	"anoa.com/learnhub/pkg/mailer"
	"anoa.com/learnhub/pkg/storage"
	"anoa.com/learnhub/pkg/validator"

	activityHttp "anoa.com/learnhub/internal/modules/activity/delivery/http"
	activityRepo "anoa.com/learnhub/internal/modules/activity/repository"
	activityService "anoa.com/learnhub/internal/modules/activity/service"

	adminHttp "anoa.com/learnhub/internal/modules/admin/delivery/http"
	adminService "anoa.com/learnhub/internal/modules/admin/service"

	attachmentHttp "anoa.com/learnhub/internal/modules/attachment/delivery/http"
	attachmentRepo "anoa.com/learnhub/internal/modules/attachment/repository"
	attachmentService "anoa.com/learnhub/internal/modules/attachment/service"

	certificateHttp "anoa.com/learnhub/internal/modules/certificate/delivery/http"
	certificateRepo "anoa.com/learnhub/internal/modules/certificate/repository"
	certificateService "anoa.com/learnhub/internal/modules/certificate/service"

	courseHttp "anoa.com/learnhub/internal/modules/course/delivery/http"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	courseService "anoa.com/learnhub/internal/modules/course/service"

	dashboardHttp "anoa.com/learnhub/internal/modules/dashboard/delivery/http"
	dashboardService "anoa.com/learnhub/internal/modules/dashboard/service"

	discussionHttp "anoa.com/learnhub/internal/modules/discussion/delivery/http"
	discussionRepo "anoa.com/learnhub/internal/modules/discussion/repository"
	discussionService "anoa.com/learnhub/internal/modules/discussion/service"

	enrollmentHttp "anoa.com/learnhub/internal/modules/enrollment/delivery/http"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	enrollmentService "anoa.com/learnhub/internal/modules/enrollment/service"

	lessonHttp "anoa.com/learnhub/internal/modules/lesson/delivery/http"
	lessonRepo "anoa.com/learnhub/internal/modules/lesson/repository"
	lessonService "anoa.com/learnhub/internal/modules/lesson/service"

	notiHttp "anoa.com/learnhub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/learnhub/internal/modules/notification/repository"
	notifService "anoa.com/learnhub/internal/modules/notification/service"

	paymentHttp "anoa.com/learnhub/internal/modules/payment/delivery/http"
	paymentRepo "anoa.com/learnhub/internal/modules/payment/repository"
	paymentService "anoa.com/learnhub/internal/modules/payment/service"

	quizHttp "anoa.com/learnhub/internal/modules/quiz/delivery/http"
	quizGenerator "anoa.com/learnhub/internal/modules/quiz/generator"
	quizRepo "anoa.com/learnhub/internal/modules/quiz/repository"
	quizService "anoa.com/learnhub/internal/modules/quiz/service"

	userHttp "anoa.com/learnhub/internal/modules/user/delivery/http"
	userRepo "anoa.com/learnhub/internal/modules/user/repository"
	userService "anoa.com/learnhub/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const uploadsPrefix = "/uploads"

type handlers struct {
	auth         *userHttp.AuthHandler
	profile      *userHttp.ProfileHandler
	admin        *adminHttp.AdminHandler
	activity     *activityHttp.ActivityHandler
	course       *courseHttp.CourseHandler
	lesson       *lessonHttp.LessonHandler
	enrollment   *enrollmentHttp.EnrollmentHandler
	quiz         *quizHttp.QuizHandler
	certificate  *certificateHttp.CertificateHandler
	payment      *paymentHttp.PaymentHandler
	notification *notiHttp.NotificationHandler
	discussion   *discussionHttp.DiscussionHandler
	attachment   *attachmentHttp.AttachmentHandler
	dashboard    *dashboardHttp.DashboardHandler
}

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *jobs.Scheduler
	closers     []func()
}

// NewServer wires every module. Redis, Meilisearch, Cloudinary, SendGrid and Gemini are
// optional; the features behind them degrade when they are not configured.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if err := validator.Register(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
		scheduler:   jobs.NewScheduler(),
	}

	fileStorage, err := newFileStorage(cfg)
	if err != nil {
		return nil, err
	}

	var courseIndex search.CourseIndex
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		courseIndex = search.NewMeiliCourseIndex(meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey)))
	} else {
		log.Println("⚠️ MEILISEARCH_HOST not set, course search falls back to the database")
	}

	var mail mailer.Mailer
	if cfg.SendGridAPIKey != "" {
		mail = mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailSender)
	} else {
		mail = mailer.NewLogMailer()
	}

	var generator quizGenerator.QuizGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := quizGenerator.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("⚠️ Quiz generator disabled: %v", err)
		} else {
			generator = gemini
			s.closers = append(s.closers, gemini.Close)
		}
	}

	// Repositories
	users := userRepo.NewUserRepository(db)
	activities := activityRepo.NewActivityRepository(db)
	courses := courseRepo.NewCourseRepository(db)
	lessons := lessonRepo.NewLessonRepository(db)
	enrollments := enrollmentRepo.NewEnrollmentRepository(db)
	quizzes := quizRepo.NewQuizRepository(db)
	certificates := certificateRepo.NewCertificateRepository(db)
	payments := paymentRepo.NewPaymentRepository(db)
	notifications := notifRepo.NewNotificationRepository(db)
	discussions := discussionRepo.NewDiscussionRepository(db)
	attachments := attachmentRepo.NewAttachmentRepository(db)

	// Services
	tokens := userService.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	activitySvc := activityService.NewActivityService(activities)
	notificationSvc := notifService.NewNotificationService(notifications, redisClient)
	userMailer := notifService.NewUserMailer(users, mail)

	authSvc := userService.NewAuthService(users, tokens, cfg)
	profileSvc := userService.NewProfileService(users, fileStorage)
	adminSvc := adminService.NewAdminService(users, fileStorage, activitySvc)

	views := courseService.NewViewCounter(redisClient, courses)
	courseSvc := courseService.NewCourseService(courses, users, courseIndex, views, fileStorage, activitySvc)
	lessonSvc := lessonService.NewLessonService(lessons, courses, enrollments, attachments, activitySvc)
	enrollmentSvc := enrollmentService.NewEnrollmentService(enrollments, courses, lessons, notificationSvc, userMailer, activitySvc)
	quizSvc := quizService.NewQuizService(quizzes, lessons, courses, enrollments, enrollmentSvc, generator)
	certificateSvc := certificateService.NewCertificateService(certificates, courses, enrollments, notificationSvc, userMailer, activitySvc)
	paymentSvc := paymentService.NewPaymentService(payments, courses, enrollments, enrollmentSvc, notificationSvc, activitySvc, cfg.PaymentWebhookSecret, cfg.PaymentIntentTTL)
	discussionSvc := discussionService.NewDiscussionService(discussions, courses, lessons, enrollments, notificationSvc, activitySvc, redisClient, discussionService.RateLimits{
		Global:     cfg.RateLimitGlobal,
		Discussion: cfg.RateLimitDiscussion,
	})
	attachmentSvc := attachmentService.NewAttachmentService(attachments, fileStorage, activitySvc)
	dashboardSvc := dashboardService.NewDashboardService(users, courses, enrollments, certificates, payments)

	// Scheduled jobs
	for _, job := range []jobs.Job{
		jobs.NewAttachmentCleanup(attachmentSvc, cfg.CleanupSchedule),
		jobs.NewViewSync(views, cfg.ViewSyncSchedule),
		jobs.NewPaymentExpiry(paymentSvc, cfg.PaymentSchedule),
	} {
		if err := s.scheduler.Register(job); err != nil {
			return nil, err
		}
	}

	h := handlers{
		auth:         userHttp.NewAuthHandler(authSvc),
		profile:      userHttp.NewProfileHandler(profileSvc),
		admin:        adminHttp.NewAdminHandler(adminSvc),
		activity:     activityHttp.NewActivityHandler(activitySvc),
		course:       courseHttp.NewCourseHandler(courseSvc),
		lesson:       lessonHttp.NewLessonHandler(lessonSvc),
		enrollment:   enrollmentHttp.NewEnrollmentHandler(enrollmentSvc),
		quiz:         quizHttp.NewQuizHandler(quizSvc),
		certificate:  certificateHttp.NewCertificateHandler(certificateSvc),
		payment:      paymentHttp.NewPaymentHandler(paymentSvc),
		notification: notiHttp.NewNotificationHandler(notificationSvc, redisClient, originChecker(cfg.AllowedOrigins)),
		discussion:   discussionHttp.NewDiscussionHandler(discussionSvc),
		attachment:   attachmentHttp.NewAttachmentHandler(attachmentSvc),
		dashboard:    dashboardHttp.NewDashboardHandler(dashboardSvc),
	}

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health"},
	}))

	if cfg.CloudinaryURL == "" && cfg.CloudinaryCloudName == "" {
		router.Static(uploadsPrefix, cfg.LocalUploadDir)
	}

	authMiddleware := middleware.NewAuthMiddleware(users, tokens)
	registerRoutes(router, authMiddleware, redisClient, h)

	s.engine = router
	return s, nil
}

func newFileStorage(cfg *config.Config) (storage.FileStorage, error) {
	if cfg.CloudinaryURL != "" || cfg.CloudinaryCloudName != "" {
		return storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryUploadFolder)
	}
	log.Printf("📁 Cloudinary not configured, storing uploads in %s", cfg.LocalUploadDir)
	return storage.NewLocalStorage(cfg.LocalUploadDir, uploadsPrefix)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the scheduler and serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 LearnHub API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log.Println("🛑 Shutting down server...")
	err := srv.Shutdown(shutdownCtx)
	s.shutdown(shutdownCtx)
	return err
}

func (s *Server) shutdown(ctx context.Context) {
	s.scheduler.Stop(ctx)
	s.Close()
}

// Scheduler exposes the registered jobs so they can be run outside the API process.
func (s *Server) Scheduler() *jobs.Scheduler {
	return s.scheduler
}

// Close releases the external clients opened by NewServer.
func (s *Server) Close() {
	for _, closeFn := range s.closers {
		closeFn()
	}
	s.closers = nil
}

func splitOrigins(allowed string) []string {
	var origins []string
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

func setupCORS(router *gin.Engine, allowed string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(allowed),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// originChecker allows websocket upgrades from the CORS origins and from clients that send
// no Origin header.
func originChecker(allowed string) func(r *http.Request) bool {
	origins := splitOrigins(allowed)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == origin {
				return true
			}
		}
		return false
	}
}
