package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/attendancebackend/config"
	"github.com/camden-git/attendancebackend/database"
	"github.com/camden-git/attendancebackend/handlers"
	"github.com/camden-git/attendancebackend/media"
	"github.com/camden-git/attendancebackend/models"
	"github.com/camden-git/attendancebackend/realtime"
	"github.com/camden-git/attendancebackend/repository"
	"github.com/camden-git/attendancebackend/services"
	"github.com/camden-git/attendancebackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatalf("FATAL: JWT_SECRET must be set")
	}

	storagePaths := []string{cfg.SnapshotsPath, cfg.ExportsPath, cfg.DatasetPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	gormDB, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(gormDB); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	studentRepo := repository.NewStudentRepository(gormDB)
	attendanceRepo := repository.NewAttendanceRepository(gormDB)
	alertRepo := repository.NewAlertRepository(gormDB)
	exportRepo := repository.NewExportJobRepository(gormDB)
	operatorRepo := repository.NewOperatorRepository(gormDB)

	bootstrapOperator(cfg, operatorRepo)

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeSnapshot: filepath.Base(cfg.SnapshotsPath),
		media.AssetTypeExport:   filepath.Base(cfg.ExportsPath),
		media.AssetTypeDataset:  filepath.Base(cfg.DatasetPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore)

	hub := realtime.NewHub()
	go hub.Run()

	ledger := services.NewAttendanceLedger(attendanceRepo)
	alertSink := services.NewAlertRecorder(mediaProcessor, alertRepo)
	sessionService := services.NewSessionService(cfg, studentRepo, ledger, alertSink, hub)
	reviewService := services.NewAlertReviewService(alertRepo, studentRepo, attendanceRepo)

	log.Printf("Initializing export worker pool (Workers: %d, Queue Size: %d)...", cfg.NumExportWorkers, cfg.ExportQueueSize)
	exportProcessor := workers.NewExportProcessor(sqlDB, exportRepo, mediaProcessor, cfg.ExportQueueSize, cfg.NumExportWorkers)
	defer exportProcessor.Stop()

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing snapshots in: %s", cfg.SnapshotsPath)
	log.Printf("Recognition model: %s (threshold %.1f)", cfg.ModelPath, cfg.ConfidenceThreshold)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	authHandler := handlers.NewAuthHandler(operatorRepo, cfg.JWTSecret)
	studentHandler := handlers.NewStudentHandler(studentRepo)
	attendanceHandler := handlers.NewAttendanceHandler(sqlDB)
	alertHandler := handlers.NewAlertHandler(alertRepo, reviewService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	exportHandler := handlers.NewExportHandler(exportRepo, exportProcessor)

	withAuth := func(h http.HandlerFunc) http.Handler {
		return handlers.AuthMiddleware(operatorRepo, []byte(cfg.JWTSecret), h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Method("GET", "/auth/me", withAuth(authHandler.CurrentOperator))

		r.Route("/students", func(r chi.Router) {
			r.Method("POST", "/", withAuth(studentHandler.CreateStudent))
			r.Get("/", studentHandler.ListStudents)
			r.Route("/{student_id}", func(r chi.Router) {
				r.Get("/", studentHandler.GetStudent)
				r.Method("PUT", "/", withAuth(studentHandler.UpdateStudent))
				r.Method("DELETE", "/", withAuth(studentHandler.DeleteStudent))
				r.Get("/attendance", studentHandler.ListStudentAttendance(attendanceRepo))
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.GetDailyReport)
			r.Get("/summary", attendanceHandler.GetDaySummary)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", alertHandler.ListAlerts)
			r.Route("/{alert_id}", func(r chi.Router) {
				r.Get("/", alertHandler.GetAlert)
				r.Method("POST", "/approve", withAuth(alertHandler.ApproveAlert))
				r.Method("POST", "/reject", withAuth(alertHandler.RejectAlert))
			})
		})

		r.Route("/session", func(r chi.Router) {
			r.Method("POST", "/start", withAuth(sessionHandler.StartSession))
			r.Method("POST", "/stop", withAuth(sessionHandler.StopSession))
			r.Get("/status", sessionHandler.SessionStatus)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Method("POST", "/", withAuth(exportHandler.CreateExport))
			r.Get("/", exportHandler.ListExports)
			r.Get("/{job_id}", exportHandler.GetExport)
		})

		r.Get("/ws", hub.ServeWS)

		snapshotSubDir := filepath.Base(cfg.SnapshotsPath)
		r.Get(fmt.Sprintf("/%s/*", snapshotSubDir), handlers.AssetServer(cfg.MediaStoragePath, snapshotSubDir))
		log.Printf("Registered snapshot server at /%s/*", snapshotSubDir)

		exportSubDir := filepath.Base(cfg.ExportsPath)
		r.Get(fmt.Sprintf("/%s/*", exportSubDir), handlers.AssetServer(cfg.MediaStoragePath, exportSubDir))
		log.Printf("Registered export server at /%s/*", exportSubDir)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// bootstrapOperator creates the initial dashboard account from the
// environment when the operators table is empty.
func bootstrapOperator(cfg config.Config, operatorRepo repository.OperatorRepositoryInterface) {
	count, err := operatorRepo.Count()
	if err != nil {
		log.Fatalf("FATAL: Failed to count operators: %v", err)
	}
	if count > 0 {
		return
	}
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		log.Println("WARNING: No operators exist and no bootstrap credentials configured; authenticated endpoints are unusable")
		return
	}

	operator := &models.Operator{Username: cfg.BootstrapUsername}
	if err := operator.SetPassword(cfg.BootstrapPassword); err != nil {
		log.Fatalf("FATAL: Failed to hash bootstrap operator password: %v", err)
	}
	if err := operatorRepo.Create(operator); err != nil {
		log.Fatalf("FATAL: Failed to create bootstrap operator: %v", err)
	}
	log.Printf("Created bootstrap operator '%s'", cfg.BootstrapUsername)
}
