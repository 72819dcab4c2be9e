package main

import (
	"context"
	"log"

	"ask-engine-be/internal/bootstrap"
	"ask-engine-be/internal/config"
	"ask-engine-be/internal/server"
	"ask-engine-be/internal/tracer"
	"ask-engine-be/pkg/database"
	"ask-engine-be/pkg/secrets"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := connectDatabase(cfg)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Analytics Consumer...")
		if err := container.AnalyticsConsumer.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}

// connectDatabase prefers a direct DSN; otherwise credentials are pulled
// from the secret store.
func connectDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Connection != "" {
		return database.NewGormDBFromDSN(cfg.Database.Connection)
	}

	provider, err := secrets.NewAwsProvider(context.Background(), cfg.Aws.Region)
	if err != nil {
		return nil, err
	}
	creds, err := provider.DatabaseCredentials(context.Background(), cfg.Database.SecretId)
	if err != nil {
		return nil, err
	}
	return database.NewGormDBFromCredentials(creds, cfg.Database.SSLMode)
}
