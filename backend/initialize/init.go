package initialize

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"filepower/backend/app/controllers"
	"filepower/backend/app/db"
	jwtutil "filepower/backend/app/jwt"
	"filepower/backend/app/middleware"
	"filepower/backend/app/models"
	"filepower/backend/app/repo"
	"filepower/backend/app/services"
	"filepower/backend/app/storage"
	"filepower/backend/config"
	"filepower/backend/global"
	"filepower/backend/router"
	"filepower/lockout"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Bucket   *storage.Bucket
	Router   http.Handler
	Users    *services.UserService
	Folders  *services.FolderService
	Files    *services.FileService
	Activity *services.ActivityService
	Guard    *lockout.Guard
	Signer   *jwtutil.Signer
}

// Build loads the config at path and wires the application. A non-empty path
// is also watched so the log level follows edits.
func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	app, err := BuildWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := config.Watch(configPath, func(next *config.Config) {
		lvl := SetLogLevel(next.Log.Level)
		global.Logger.Info().Stringer("level", lvl).Msg("config changed")
	}); err != nil {
		global.Logger.Warn().Err(err).Msg("config watch disabled")
	}
	return app, nil
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.Connect(db.Config{
		Driver:   cfg.DB.Driver,
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Pass,
		DBName:   cfg.DB.Name,
		Path:     cfg.DB.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return gdb, nil
}

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func BuildWithConfig(cfg *config.Config) (*App, error) {
	SetLogLevel(cfg.Log.Level)

	gdb, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	store, rdb := lockoutStore(cfg.Redis)
	guard := lockout.New(store, cfg.Lockout.MaxAttempts, cfg.Lockout.Cooldown)

	bucket, err := storage.Open(cfg.Storage.URI)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	// Repos and services
	userRepo := repo.NewUserRepository(gdb)
	folderRepo := repo.NewFolderRepository(gdb)
	fileRepo := repo.NewFileRepository(gdb)
	logRepo := repo.NewFileLogRepository(gdb)

	userSvc := services.NewUserService(userRepo)
	activitySvc := services.NewActivityService(logRepo, userRepo)
	folderSvc := services.NewFolderService(folderRepo, fileRepo, bucket, activitySvc)
	fileSvc := services.NewFileService(fileRepo, folderSvc, bucket, activitySvc, cfg.Storage.MaxUploadBytes)
	if err := userSvc.EnsureAdmin(cfg.Admin.Email, cfg.Admin.Password); err != nil {
		global.Logger.Warn().Err(err).Str("email", cfg.Admin.Email).Msg("ensure admin")
	}

	// Controllers
	signer := jwtutil.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpMin)*time.Minute)
	mw := &middleware.Auth{Signer: signer}
	h := router.NewRouter(router.Controllers{
		HTTP:     controllers.NewHTTPController(gdb),
		Auth:     controllers.NewAuthController(userSvc, signer, guard),
		Admin:    controllers.NewAdminController(userSvc),
		FileTree: controllers.NewFileTreeController(folderSvc, fileSvc),
		Activity: controllers.NewActivityController(activitySvc),
	}, mw, cfg.HTTP.AllowedOrigins)

	global.Logger.Info().
		Str("db", cfg.DB.Driver).
		Str("storage", bucket.URI()).
		Bool("redis", rdb != nil).
		Msg("backend ready")

	return &App{
		Cfg:      cfg,
		DB:       gdb,
		Redis:    rdb,
		Bucket:   bucket,
		Router:   h,
		Users:    userSvc,
		Folders:  folderSvc,
		Files:    fileSvc,
		Activity: activitySvc,
		Guard:    guard,
		Signer:   signer,
	}, nil
}

// lockoutStore keeps login failures in redis when it is configured and
// answers, otherwise in process memory.
func lockoutStore(cfg config.Redis) (lockout.Store, *redis.Client) {
	if cfg.Addr == "" {
		return lockout.NewMemoryStore(), nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		global.Logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unavailable, lockout kept in memory")
		_ = rdb.Close()
		return lockout.NewMemoryStore(), nil
	}
	return lockout.NewRedisStore(rdb), rdb
}

// Close releases the connections held by the app.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
