// cmd/tools/directory-updater/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lending-workers/internal/common/config"
	"lending-workers/internal/common/database"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/lenders"
	"lending-workers/pkg/registry"
)

var directoryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	invalidateCmd := flag.NewFlagSet("invalidate-cache", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Lender ID (e.g., velocity-cu)")
	name := addCmd.String("name", "", "Lender display name")
	minLoan := addCmd.Float64("minLoan", 0, "Minimum loan amount")
	maxLoan := addCmd.Float64("maxLoan", 0, "Maximum loan amount")
	minAPR := addCmd.Float64("minApr", 0, "Minimum APR (percent)")
	maxAPR := addCmd.Float64("maxApr", 0, "Maximum APR (percent)")
	states := addCmd.String("states", "", "Comma-separated state codes (e.g., CA,NY,TX)")
	contactEmail := addCmd.String("contactEmail", "", "Lender contact email for exports")
	addCmd.StringVar(&directoryPath, "path", "configs/lender-directory.json", "Path to directory file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Lender ID to update")
	field := updateCmd.String("field", "", "Field to update (name, minLoan, maxLoan, minApr, maxApr, states, contactEmail)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&directoryPath, "path", "configs/lender-directory.json", "Path to directory file")

	// Validate command flags
	validateCmd.StringVar(&directoryPath, "path", "configs/lender-directory.json", "Path to directory file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *name == "" || *states == "" {
			fmt.Println("Error: id, name, and states are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		entry := registry.LenderEntry{
			ID:              *idAdd,
			Name:            *name,
			MinLoan:         *minLoan,
			MaxLoan:         *maxLoan,
			MinAPR:          *minAPR,
			MaxAPR:          *maxAPR,
			SupportedStates: splitStates(*states),
			ContactEmail:    *contactEmail,
		}
		if err := addLender(&entry); err != nil {
			fmt.Printf("Error adding lender: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added lender: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateLender(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating lender: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated lender %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		file, err := loadDirectory()
		if err != nil {
			fmt.Printf("Directory validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Directory validation passed. Found %d lenders.\n", len(file.Lenders))

	case "invalidate-cache":
		invalidateCmd.Parse(os.Args[2:])
		if err := invalidateCache(); err != nil {
			fmt.Printf("Error invalidating cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Lender directory cache invalidated.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func splitStates(raw string) []string {
	parts := strings.Split(raw, ",")
	states := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			states = append(states, s)
		}
	}
	return states
}

func loadDirectory() (*registry.File, error) {
	raw, err := os.ReadFile(directoryPath)
	if err != nil {
		return nil, err
	}
	return registry.Parse(raw)
}

func addLender(entry *registry.LenderEntry) error {
	file, err := loadDirectory()
	if err != nil {
		if os.IsNotExist(err) {
			file = &registry.File{Version: 1, Lenders: []registry.LenderEntry{}}
		} else {
			return fmt.Errorf("failed to load directory: %w", err)
		}
	}

	for _, existing := range file.Lenders {
		if existing.ID == entry.ID {
			return fmt.Errorf("lender with ID %s already exists", entry.ID)
		}
	}

	file.Lenders = append(file.Lenders, *entry)
	if err := file.Validate(); err != nil {
		return err
	}
	return saveDirectory(file)
}

func updateLender(id, field, value string) error {
	file, err := loadDirectory()
	if err != nil {
		return fmt.Errorf("failed to load directory: %w", err)
	}

	found := false
	for i := range file.Lenders {
		if file.Lenders[i].ID != id {
			continue
		}
		found = true
		switch field {
		case "name":
			file.Lenders[i].Name = value
		case "contactEmail":
			file.Lenders[i].ContactEmail = value
		case "states":
			file.Lenders[i].SupportedStates = splitStates(value)
		case "minLoan", "maxLoan", "minApr", "maxApr":
			amount, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid %s value: %w", field, err)
			}
			switch field {
			case "minLoan":
				file.Lenders[i].MinLoan = amount
			case "maxLoan":
				file.Lenders[i].MaxLoan = amount
			case "minApr":
				file.Lenders[i].MinAPR = amount
			case "maxApr":
				file.Lenders[i].MaxAPR = amount
			}
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("lender with ID %s not found", id)
	}

	if err := file.Validate(); err != nil {
		return err
	}
	return saveDirectory(file)
}

// invalidateCache drops the Redis snapshot so the worker fleet picks up a
// rewritten directory before the TTL expires.
func invalidateCache() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	redis, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redis.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redis.Ping(ctx); err != nil {
		return err
	}

	cached := lenders.NewCachedSource(
		lenders.NewFileSource(cfg.Lenders.DirectoryPath),
		redis.Client,
		time.Duration(cfg.Lenders.CacheTTLSec)*time.Second,
		logger.NewNoOpLogger(),
	)
	return cached.Invalidate(ctx)
}

// saveDirectory round-trips through Parse so a hand-edit that slipped in
// never gets rewritten as valid.
func saveDirectory(file *registry.File) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal directory: %w", err)
	}
	if _, err := registry.Parse(data); err != nil {
		return err
	}

	dir := filepath.Dir(directoryPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(directoryPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write directory file: %w", err)
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: directory-updater <command> [flags]

Commands:
  add               Add a new lender to the directory
  update            Update an existing lender's field
  validate          Validate the directory file
  invalidate-cache  Drop the Redis directory snapshot
  help              Show this help message

Examples:
  directory-updater add -id velocity-cu -name "Velocity Credit Union" -minLoan 80000 -maxLoan 300000 -minApr 4.49 -maxApr 9.99 -states CA,TX -contactEmail loans@velocitycu.example.com
  directory-updater update -id velocity-cu -field maxApr -value 10.49
  directory-updater validate -path configs/lender-directory.json
  directory-updater invalidate-cache

Use 'directory-updater <command> -h' for more information about a command.`)
}
