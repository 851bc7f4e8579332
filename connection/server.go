package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"larre/config"
	dashboardcontroller "larre/controller/dashboard"
	filecontroller "larre/controller/file"
	notecontroller "larre/controller/note"
	settingscontroller "larre/controller/settings"
	sharecontroller "larre/controller/share"
	taskcontroller "larre/controller/task"
	"larre/dto"
	"larre/logger"
	"larre/middleware"
	"larre/model"
	"larre/services"
)

// Deps is everything the router serves. QuickShare is nil when no Firebase
// project is configured.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	Tasks      *services.TaskBoard
	Notes      *services.NoteBook
	Files      *services.FileCabinet
	Settings   *services.Settings
	QuickShare *services.QuickShare
	Verifier   middleware.TokenVerifier
	Registry   *prometheus.Registry
	// Background is the context queued Quick-Share batches run under.
	Background context.Context
}

func NewRouter(d Deps) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))
	router.Use(cors.New(corsConfig(d.Config.Security.CORSAllowedOrigins)))

	if d.Config.Metrics.Enabled && d.Registry != nil {
		router.Use(middleware.NewHTTPMetrics(d.Registry).Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})
	router.GET("/health", func(c *gin.Context) {
		health := gin.H{"status": "ok", "quickShare": d.QuickShare != nil}
		if d.QuickShare != nil {
			health["quickShareLoading"] = d.QuickShare.Feed().Loading()
		}
		c.JSON(http.StatusOK, health)
	})

	limiter := middleware.NewClientLimiter(d.Config.Security.UploadRateLimit, d.Config.Security.UploadRateBurst)
	uploadGuard := middleware.RateLimit(limiter)

	api := router.Group("/api", middleware.AccessTokenMiddleware(d.Verifier))

	var feed *services.Feed
	if d.QuickShare != nil {
		feed = d.QuickShare.Feed()
		sharecontroller.ShareController(api, d.QuickShare, sharecontroller.Options{
			Background: d.Background,
			MaxBytes:   d.Config.Security.MaxUploadBytes,
			Logger:     d.Logger,
			Upload:     []gin.HandlerFunc{uploadGuard},
		})
	} else {
		sharecontroller.DisabledController(api)
	}

	taskcontroller.TaskController(api, d.Tasks)
	notecontroller.NoteController(api, d.Notes)
	filecontroller.FileController(api, d.Files, d.Config.Security.MaxUploadBytes, uploadGuard)
	settingscontroller.SettingsController(api, d.Settings)
	dashboardcontroller.DashboardController(api, &services.Overview{
		Tasks: d.Tasks,
		Notes: d.Notes,
		Files: d.Files,
		Share: feed,
	})

	return router, nil
}

func corsConfig(origins string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "Sec-CH-UA-Platform")
	if origins == "" || origins == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	return cfg
}

// StartServer wires the application from cfg and serves until ctx is
// cancelled, then shuts down within the configured timeout.
func StartServer(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	prefs, err := OpenPreferences(cfg.Preferences.Path)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer prefs.Close()

	settings, err := services.LoadSettings(ctx, prefs)
	if err != nil {
		return err
	}
	settingsLog := log.WithComponent("settings")
	settings.OnChange(func(p model.Preferences) {
		settingsLog.Infow("Preferences changed", "dark", p.Dark, "sidebar_collapsed", p.SidebarCollapsed)
	})

	blobs, err := NewLocalStorage(cfg.Files.Dir)
	if err != nil {
		return fmt.Errorf("open file storage: %w", err)
	}

	deps := Deps{
		Config:     cfg,
		Logger:     log,
		Tasks:      services.NewTaskBoard(),
		Notes:      services.NewNoteBook(),
		Files:      services.NewFileCabinet(blobs, nil),
		Settings:   settings,
		Registry:   registry,
		// queued uploads finish during shutdown; QuickShare.Stop waits for them
		Background: context.WithoutCancel(ctx),
	}

	var fb *Firebase
	if cfg.QuickShareEnabled() {
		fb, err = FBConnection(ctx, *cfg)
		if err != nil {
			return err
		}
		defer fb.Close()
		log.Infow("Firebase connection successful", "project", cfg.Firebase.ProjectID, "bucket", cfg.Storage.Bucket)

		qs := services.NewQuickShare(
			NewShareCollection(fb.Firestore, cfg.Firebase.Collection),
			NewShareCollection(fb.Firestore, cfg.Firebase.Collection),
			NewShareBucket(fb.Bucket, fb.BucketName(), cfg.Storage.ChunkSize),
			log,
			services.WithMetrics(services.NewMetrics(registry)),
		)
		qs.Start(ctx)
		defer qs.Stop()
		deps.QuickShare = qs
	} else {
		log.Warnw("Quick Share disabled: firebase.project_id or storage.bucket not set")
	}

	var tokens *services.TokenService
	if cfg.Auth.Mode == "hmac" {
		tokens = services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpiresIn)
	}
	firebaseAuth := firebaseAuthClient(fb)
	deps.Verifier, err = middleware.NewVerifier(cfg.Auth.Mode, firebaseAuth, tokens)
	if err != nil {
		return err
	}

	router, err := NewRouter(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("Starting server", "addr", srv.Addr, "environment", cfg.App.Environment)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Infow("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
