//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/company"
	"github.com/quizhub/quizhub/internal/database"
	"github.com/quizhub/quizhub/internal/database/models"
	"github.com/quizhub/quizhub/internal/membership"
	"github.com/quizhub/quizhub/pkg/config"
	"github.com/quizhub/quizhub/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "admin123!"
	}
	if name == "" {
		name = "Admin"
	}

	ctx := context.Background()

	resp, err := authService.Register(ctx, auth.RegisterInput{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	// Promote to superuser
	if err := db.Model(resp.User).Update("is_superuser", true).Error; err != nil {
		log.Fatalf("failed to promote admin user: %v", err)
	}

	// Demo company with one quiz
	membershipService := membership.NewService(db, nil, logger)
	companyService := company.NewService(db, membershipService, logger)

	caller := models.Caller{ID: resp.User.ID, IsSuperuser: true}
	demo, err := companyService.Create(ctx, caller, company.CreateInput{
		Name:        "Demo Company",
		Description: "Seeded demo company",
	})
	if err != nil {
		log.Fatalf("failed to create demo company: %v", err)
	}

	fmt.Printf("Seeded admin %s and company %s\n", resp.User.Email, demo.Name)
}
