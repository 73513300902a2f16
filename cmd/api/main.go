package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"photodrop/internal/config"
	"photodrop/internal/database"
	"photodrop/internal/domain"
	"photodrop/internal/middleware"
	"photodrop/internal/modules/auth"
	"photodrop/internal/modules/event"
	"photodrop/internal/modules/ingest"
	"photodrop/internal/modules/live"
	"photodrop/internal/modules/media"
	"photodrop/internal/modules/storagestat"
	jwtsvc "photodrop/internal/pkg/jwt"
	"photodrop/internal/repository"
	"photodrop/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(&domain.Event{}, &domain.Upload{}, &domain.AdminUser{}); err != nil {
		log.Fatal(err)
	}

	store := storage.New(cfg.StoragePath)
	if err := store.Init(); err != nil {
		log.Fatal(err)
	}

	eventRepo := repository.NewEventRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := live.NewHub()
	defer hub.Close()

	ingestService := ingest.NewService(uploadRepo, store, live.NewNotifier(hub))
	ingestHandler := ingest.NewHandler(eventRepo, ingestService)

	eventService := event.NewService(eventRepo, uploadRepo, store)
	eventHandler := event.NewHandler(eventService)

	mediaService := media.NewService(uploadRepo, eventRepo, store)
	mediaHandler := media.NewHandler(mediaService)

	authService := auth.NewService(adminRepo, j)
	authHandler := auth.NewHandler(authService)

	liveHandler := live.NewHandler(hub)
	storageHandler := storagestat.NewHandler(cfg.StoragePath)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.ErrorLogger(), middleware.CORS())

	api := r.Group("/api")
	{
		// guest surface: ingest and the public event lookups
		ingestHandler.RegisterRoutes(api)
		eventHandler.RegisterPublicRoutes(api.Group("/p"))

		v1 := api.Group("/v1")
		{
			authHandler.RegisterRoutes(v1)

			admin := v1.Group("/admin")
			admin.Use(middleware.AdminAuth(j))
			{
				eventHandler.RegisterRoutes(admin)
				mediaHandler.RegisterRoutes(admin)
				liveHandler.RegisterRoutes(admin)
				storageHandler.RegisterRoutes(admin)
			}
		}
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
