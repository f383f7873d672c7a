package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"realty-api/internal/core/config"
	"realty-api/internal/core/database"
	"realty-api/internal/core/logger"
	mongorepo "realty-api/internal/repo/mongo"
	"realty-api/internal/seed"
)

func main() {
	reset := flag.Bool("reset", false, "drop users and listings before seeding")
	password := flag.String("password", "test12345", "password for every seeded account")
	admin := flag.String("admin", "", "also create an admin account with this email")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.Mongo.Database)

	if *reset {
		for _, name := range []string{"users", "listings"} {
			if err := db.Collection(name).Drop(ctx); err != nil {
				log.Fatal("drop collection", zap.String("collection", name), zap.Error(err))
			}
		}
		log.Warn("existing users and listings dropped")
	}
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("ensure indexes", zap.Error(err))
	}

	r := mongorepo.New(db)
	res, err := seed.Run(ctx, r.Users, r.Listings, seed.Options{Password: *password, AdminEmail: *admin}, log)
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	for _, u := range res.Users {
		log.Info("account", zap.String("email", u.Email), zap.String("role", u.Role))
	}
	log.Info("seed completed", zap.Int("listings", res.Listings))
}
