package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"mentor-ai-be/internal/constant"
	"mentor-ai-be/internal/pkg/logger"
	"mentor-ai-be/internal/repository/unitofwork"
	"mentor-ai-be/internal/service"
	"mentor-ai-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Provisions a message quota for one user, standing in for the billing
// service in local environments.
func main() {
	userFlag := flag.String("user", "", "user id to provision")
	planFlag := flag.String("plan", constant.PlanStandard, "plan slug (mini, standard, premium)")
	maxFlag := flag.Int("max", 0, "message limit; 0 uses the plan allowance")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	userId, err := uuid.Parse(*userFlag)
	if err != nil {
		color.Red("Error: -user must be a UUID: %v", err)
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	quotaService := service.NewQuotaService(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	allowance, err := quotaService.Upsert(ctx, userId, *planFlag, *maxFlag, time.Time{})
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	color.Green("Provisioned %s: %d messages (period ends %s)", allowance.Plan, allowance.MaxMessages, allowance.PeriodEnd.Format(time.RFC3339))
}
