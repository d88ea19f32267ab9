package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"digikul/internal/attendance"
	"digikul/internal/auth"
	"digikul/internal/camera"
	"digikul/internal/cloudinary"
	"digikul/internal/config"
	"digikul/internal/faceclient"
	"digikul/internal/handler"
	"digikul/internal/ledger"
	"digikul/internal/logging"
	"digikul/internal/photos"
	"digikul/internal/resources"
	"digikul/internal/session"
	"digikul/internal/store"
	"digikul/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(logging.Options{Production: cfg.Production(), Level: cfg.LogLevel, Path: cfg.LogPath})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, log *zap.Logger) error {
	ctx := context.Background()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	log.Info("database ready", zap.String("dialect", string(db.Dialect)))

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	var revoked auth.Revocations = auth.NewSQLRevocations(db.Client)
	if redisClient != nil {
		revoked = auth.NewRedisRevocations(redisClient.Client, "")
		log.Info("session revocations in redis", zap.String("addr", cfg.RedisAddr))
	}
	tokens := auth.NewTokens(cfg.JWTIssuer, cfg.JWTSigningKey, cfg.SessionTTL, revoked)

	userRepo := user.NewRepository(db.Client)
	users := user.NewService(userRepo, log)
	if err := users.Seed(ctx, cfg.SeedAdminUsername, cfg.SeedAdminPassword, user.RoleAdmin); err != nil {
		return err
	}
	if err := users.Seed(ctx, cfg.SeedStudentUsername, cfg.SeedStudentPassword, user.RoleStudent); err != nil {
		return err
	}

	local, err := photos.NewLocal(cfg.DataDir)
	if err != nil {
		return err
	}
	var photoStore attendance.PhotoStore = local
	if cfg.CloudinaryURL != "" {
		cdn, err := cloudinary.New(cfg.CloudinaryURL, "digikul")
		if err != nil {
			log.Warn("cloudinary disabled", zap.Error(err))
		} else {
			photoStore = photos.NewCloud(cdn)
			log.Info("photos stored in cloudinary")
		}
	}

	face := faceclient.New(cfg.FaceServiceURL, cfg.FaceSkip)
	if cfg.FaceSkip {
		log.Warn("face detection in skip mode, any non-empty frame counts as a face")
	}

	var cam *camera.Snapshot
	if cfg.CameraURL != "" {
		cam = camera.NewSnapshot(cfg.CameraURL)
	}

	created, err := resources.EnsureReferenceDoc(cfg.ReferenceDocPath())
	if err != nil {
		log.Warn("reference document unavailable", zap.Error(err))
	} else if created {
		log.Info("reference document created", zap.String("path", cfg.ReferenceDocPath()))
	}

	attRepo := attendance.NewRepository(db.Client)
	h := handler.New(handler.Deps{
		Users:        users,
		Sessions:     session.NewController(userRepo),
		Tokens:       tokens,
		Recorder:     attendance.NewRecorder(userRepo, attRepo, photoStore, face, cfg.MaxFrames, log),
		Attendance:   attRepo,
		Ledger:       ledger.NewService(ledger.NewRepository(db.Client), log),
		Photos:       local,
		Camera:       cam,
		DB:           db,
		Redis:        redisClient,
		Face:         face,
		ReferenceDoc: cfg.ReferenceDocPath(),
		Log:          log,
	})
	r := handler.NewRouter(h, handler.RouterConfig{
		RateLimitPerMin:      cfg.RateLimitPerMin,
		LoginRateLimitPerMin: cfg.LoginRateLimitPerMin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // a camera scan polls up to MaxFrames snapshots
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
	return nil
}
