package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kanasu-ecd/kanasu-go-api/internal/config"
	"github.com/kanasu-ecd/kanasu-go-api/internal/database"
	"github.com/kanasu-ecd/kanasu-go-api/internal/handler"
	"github.com/kanasu-ecd/kanasu-go-api/internal/middleware"
	"github.com/kanasu-ecd/kanasu-go-api/internal/models"
	"github.com/kanasu-ecd/kanasu-go-api/internal/otp"
	"github.com/kanasu-ecd/kanasu-go-api/internal/repository"
	"github.com/kanasu-ecd/kanasu-go-api/internal/router"
	"github.com/kanasu-ecd/kanasu-go-api/internal/service"
	cloud "github.com/kanasu-ecd/kanasu-go-api/pkg/cloudinary"
	"github.com/kanasu-ecd/kanasu-go-api/pkg/sms"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Anganwadi{},
		&models.Cohort{},
		&models.Teacher{},
		&models.Student{},
		&models.Topic{},
		&models.Question{},
		&models.AssessmentSession{},
		&models.AnganwadiAssessment{},
		&models.StudentSubmission{},
		&models.StudentResponse{},
		&models.StudentResponseScore{},
		&models.Evaluation{},
		&models.CsvImport{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var smsSender service.SMSSender
	if cfg.SMSAuthKey != "" {
		client, err := sms.New(sms.Config{
			AuthKey:    cfg.SMSAuthKey,
			SenderID:   cfg.SMSSenderID,
			TemplateID: cfg.SMSTemplateID,
			BaseURL:    cfg.SMSBaseURL,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create sms client: %v", err)
		}
		smsSender = client
	} else if cfg.IsProduction() {
		log.Fatal("sms auth key must be configured in production")
	} else {
		logger.Warn().Msg("sms sender not configured, otp codes are only echoed in responses")
	}

	otpStore := otp.NewRedisStore(redisClient, "otp", cfg.OTPTTL)

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	anganwadiRepo := repository.NewAnganwadiRepository(db)
	cohortRepo := repository.NewCohortRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	csvImportRepo := repository.NewCsvImportRepository(db)

	authService := service.NewAuthService(userRepo, validate, logger, cfg.JWTSecret, cfg.AdminTokenTTL)
	teacherAuthService := service.NewTeacherAuthService(teacherRepo, studentRepo, assessmentRepo, otpStore, smsSender, validate, logger, cfg.JWTSecret, cfg.TeacherTokenTTL, cfg.IsProduction())
	anganwadiService := service.NewAnganwadiService(anganwadiRepo, teacherRepo, studentRepo, validate, logger)
	teacherService := service.NewTeacherService(teacherRepo, anganwadiRepo, cohortRepo, validate, logger)
	cohortService := service.NewCohortService(cohortRepo, teacherRepo, assessmentRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, anganwadiRepo, validate, logger)
	topicService := service.NewTopicService(topicRepo, uploader, validate, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, anganwadiRepo, studentRepo, teacherRepo, topicRepo, validate, logger)
	responseService := service.NewResponseService(responseRepo, evaluationRepo, validate, logger)
	scoringService := service.NewScoringService(responseRepo, topicRepo, validate, logger)
	rankingService := service.NewRankingService(teacherRepo, responseRepo, assessmentRepo, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, responseRepo, uploader, validate, logger)
	csvImportService := service.NewCsvImportService(csvImportRepo, studentRepo, anganwadiRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, logger),
		TeacherAuthHandler: handler.NewTeacherAuthHandler(teacherAuthService, logger),
		AnganwadiHandler:   handler.NewAnganwadiHandler(anganwadiService, logger),
		TeacherHandler:     handler.NewTeacherHandler(teacherService, logger),
		CohortHandler:      handler.NewCohortHandler(cohortService, rankingService, logger),
		StudentHandler:     handler.NewStudentHandler(studentService, csvImportService, logger),
		TopicHandler:       handler.NewTopicHandler(topicService, logger),
		AssessmentHandler:  handler.NewAssessmentHandler(assessmentService, logger),
		ResponseHandler:    handler.NewResponseHandler(responseService, scoringService, logger),
		EvaluationHandler:  handler.NewEvaluationHandler(evaluationService, responseService, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
