package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bounty-board-system/config"
	"bounty-board-system/handlers"
	"bounty-board-system/middleware"
	"bounty-board-system/models"
	"bounty-board-system/services"
	"bounty-board-system/store"
	"bounty-board-system/utils"
	"bounty-board-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := config.Load()

	app := fiber.New()

	// 🔐 GLOBAL: Gateway auth first, everything behind it
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsList := strings.Split(cfg.Server.AllowedOrigins, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Optional Postgres: settlement ledger plus the verified-identity mirror.
	// The JSON collections stay authoritative either way.
	var db *gorm.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		if err := db.AutoMigrate(
			&models.SettlementRecord{},
			&models.VerifiedIdentity{},
		); err != nil {
			log.Fatal("failed to migrate database:", err)
		}
		log.Println("✅ Database connected (settlement ledger + identity mirror)")
	} else {
		log.Println("⚠️  DATABASE_URL not set, running without ledger/mirror")
	}

	bountyStore := store.NewBountyStore(cfg.Data.BountiesFile)
	tribeStore := store.NewTribeStore(cfg.Data.TribesFile)

	var gate services.IdentityGate
	if cfg.Identity.URL != "" {
		gate = services.NewIdentityServiceGate(cfg.Identity.URL, cfg.Identity.Token, db)
	}

	var settler services.Settler
	if cfg.Settlement.URL != "" {
		settler = services.NewSettlementClient(cfg.Settlement.URL, cfg.Settlement.Token)
	} else {
		log.Println("⚠️  SETTLEMENT_SERVICE_URL not set, rewards recorded off-chain only")
	}
	distributor := services.NewRewardDistributor(settler, cfg.Settlement.Network)
	ledger := services.NewLedgerService(db)

	bountyService := services.NewBountyService(bountyStore, tribeStore, cfg.Policy, gate, distributor, ledger)

	handlers.SetupBountyRoutes(app, bountyService)
	handlers.SetupTribeRoutes(app, bountyService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bountyService.StartReconciler()

	if cfg.Identity.URL != "" && db != nil {
		identityClient := workers.NewIdentitySyncClient(cfg.Identity.URL, cfg.Identity.Token, db)
		go workers.PollIdentities(ctx, identityClient, time.Duration(cfg.Identity.SyncInterval)*time.Second)
	}

	if cfg.Backup.Enabled {
		if err := utils.InitR2(); err != nil {
			log.Printf("❌ Failed to initialize R2 client, backups disabled: %v", err)
		} else {
			services.StartSnapshotBackups(
				cfg.Data.BountiesFile,
				cfg.Data.TribesFile,
				cfg.Backup.Prefix,
				time.Duration(cfg.Backup.Interval)*time.Minute,
			)
		}
	}

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Server.Port)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
