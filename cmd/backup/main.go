package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kidslearning/internal/config"
	"kidslearning/internal/database"
	"kidslearning/internal/repository"
	"kidslearning/internal/service"
	"kidslearning/internal/snapshot"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	clearCmd := flag.NewFlagSet("clear", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: kids-learning-progress-YYYY-MM-DD.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")

	// Clear flags
	clearYes := clearCmd.Bool("yes", false, "Skip the confirmation prompt")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	var dbStore snapshot.KeyValueStore
	if cfg.StoreBackend == snapshot.BackendDatabase || cfg.StoreBackend == "" {
		// Initialize database
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		// Run migrations to ensure schema is up to date
		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		dbStore = repository.NewKeyValueRepository(db)
	}

	kv, err := snapshot.OpenBackend(cfg.StoreBackend, cfg.SnapshotPath, dbStore)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}

	progressService, err := service.NewProgressService(snapshot.NewStore(kv), nil, nil, time.Now)
	if err != nil {
		log.Fatalf("Failed to load learner state: %v", err)
	}

	// Create backup service
	backupService := service.NewBackupService(progressService)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(backupService, *importInput)

	case "clear":
		clearCmd.Parse(os.Args[2:])
		handleClear(progressService, *clearYes)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(backupService *service.BackupService, outputPath string) {
	// Generate default filename if not provided
	if outputPath == "" {
		outputPath = service.ExportFilename(time.Now())
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	log.Printf("Exporting progress to: %s", outputPath)
	if err := backupService.Export(outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	// Get file size
	fileInfo, _ := os.Stat(outputPath)
	log.Printf("Export complete! File size: %.2f KB", float64(fileInfo.Size())/1024)
}

func handleImport(backupService *service.BackupService, inputPath string) {
	// Check if file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	log.Printf("Importing progress from: %s", inputPath)
	if err := backupService.Import(inputPath); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println("Import complete!")
}

func handleClear(progressService *service.ProgressService, skipPrompt bool) {
	confirmed := skipPrompt
	if !confirmed {
		fmt.Print("WARNING: This will delete the profile and all progress. There is no undo. Type 'yes' to confirm: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		confirmed = strings.TrimSpace(answer) == "yes"
	}

	if err := progressService.ClearAllData(confirmed); err != nil {
		if !confirmed {
			log.Println("Clear cancelled")
			return
		}
		log.Fatalf("Clear failed: %v", err)
	}

	log.Println("All learner data cleared")
}

func printUsage() {
	fmt.Println("Kids Learning Progress Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export the profile and progress to a JSON file")
	fmt.Println("  backup import [options]    Replace the profile and progress from a JSON file")
	fmt.Println("  backup clear [options]     Delete the profile and all progress")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: kids-learning-progress-YYYY-MM-DD.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println()
	fmt.Println("Clear Options:")
	fmt.Println("  -yes              Skip the confirmation prompt (WARNING: destructive)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  backup export")
	fmt.Println("  backup export -output mybackup.json")
	fmt.Println("  backup import -input kids-learning-progress-2024-09-02.json")
	fmt.Println("  backup clear")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  STORE_BACKEND    Where learner state lives: database, file or memory (default: database)")
	fmt.Println("  SNAPSHOT_PATH    JSON store path for the file backend")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./kidslearning.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
