package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"incomify/database"
	"incomify/internal/models"
	"log"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func init() {
	// Load .env file from project root
	if err := godotenv.Load(); err != nil {
		// Try loading from parent directory (in case running from cmd/seed/)
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found: %v", err)
		}
	}
}

func main() {
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	numRecords := seedCmd.Int("records", 100, "Number of sample prediction records to create")
	numSessions := seedCmd.Int("sessions", 10, "Number of distinct sessions to spread records across")

	clearCmd := flag.NewFlagSet("clear", flag.ExitOnError)

	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		seedCmd.Parse(os.Args[2:])
		database.ConnectDatabase()
		if err := database.MigrateDatabase(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		log.Printf("Seeding %d prediction records across %d sessions...", *numRecords, *numSessions)
		if err := seedRecords(*numRecords, *numSessions); err != nil {
			log.Fatalf("Error seeding records: %v", err)
		}
		log.Println("Seeding completed successfully")

	case "clear":
		clearCmd.Parse(os.Args[2:])
		database.ConnectDatabase()

		log.Println("Clearing all prediction records...")
		if err := database.DB.Unscoped().Where("1 = 1").Delete(&models.PredictionRecord{}).Error; err != nil {
			log.Fatalf("Error clearing records: %v", err)
		}
		log.Println("All prediction records cleared")

	case "stats":
		database.ConnectDatabase()

		var total, whatIf int64
		if err := database.DB.Model(&models.PredictionRecord{}).Count(&total).Error; err != nil {
			log.Fatalf("Error getting stats: %v", err)
		}
		database.DB.Model(&models.PredictionRecord{}).Where("is_what_if = ?", true).Count(&whatIf)

		log.Printf("Prediction records: %d total, %d what-if", total, whatIf)

	case "help":
		printHelp()

	default:
		fmt.Printf("Unknown subcommand: %s\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func seedRecords(count, sessions int) error {
	if sessions < 1 {
		sessions = 1
	}

	sessionIDs := make([]string, sessions)
	for i := range sessionIDs {
		sessionIDs[i] = uuid.NewString()
	}

	topFeatures, _ := json.Marshal([]string{"Region", "Total Food Expenditure", "Education Expenditure"})

	for i := 0; i < count; i++ {
		std := 8000 + rand.Float64()*12000
		record := &models.PredictionRecord{
			SessionID:            sessionIDs[i%sessions],
			Region:               models.Regions[rand.Intn(len(models.Regions))],
			TotalFoodExpenditure: float64(40000 + rand.Intn(200000)),
			EducationExpenditure: float64(rand.Intn(60000)),
			HouseFloorArea:       20 + rand.Float64()*180,
			NumberOfAppliances:   rand.Intn(15),
			PredictedIncome:      float64(80000 + rand.Intn(900000)),
			PredictionStd:        &std,
			TopFeatures:          string(topFeatures),
			IsWhatIf:             i%5 == 0,
		}

		if err := database.DB.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create record %d: %w", i, err)
		}
	}

	return nil
}

func printHelp() {
	fmt.Println("Database utility tool for Incomify")
	fmt.Println("\nUsage:")
	fmt.Println("  db-tool COMMAND [OPTIONS]")
	fmt.Println("\nCommands:")
	fmt.Println("  seed         Create sample prediction records")
	fmt.Println("               Options:")
	fmt.Println("                 --records=N    Number of records to create (default: 100)")
	fmt.Println("                 --sessions=N   Number of distinct sessions (default: 10)")
	fmt.Println("")
	fmt.Println("  clear        Delete all prediction records")
	fmt.Println("  stats        Show prediction record counts")
	fmt.Println("  help         Show this help message")
	fmt.Println("")
	fmt.Println("Environment variables:")
	fmt.Println("  DB_HOST      Database host")
	fmt.Println("  DB_PORT      Database port")
	fmt.Println("  DB_USER      Database user")
	fmt.Println("  DB_PASSWORD  Database password")
	fmt.Println("  DB_NAME      Database name")
	fmt.Println("  DB_SSLMODE   Database SSL mode")
}
