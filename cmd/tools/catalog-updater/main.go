// cmd/tools/catalog-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"assessment-workers/internal/models"
	"assessment-workers/pkg/catalog"
)

var catalogPath = "configs/use-case-catalog.json"

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Use case ID (e.g., demand-forecasting)")
	title := addCmd.String("title", "", "Title (e.g., Prediccion de demanda)")
	description := addCmd.String("description", "", "Description")
	industry := addCmd.String("industry", "", "Industry (e.g., retail)")
	impact := addCmd.String("impact", "medium", "Impact (low, medium, high)")
	complexity := addCmd.String("complexity", "medium", "Complexity (low, medium, high)")
	aiType := addCmd.String("aiType", "", "AI type (e.g., machine-learning, nlp, computer-vision)")
	dataReqs := addCmd.String("dataRequirements", "", "Data requirements")
	requiredMaturity := addCmd.Float64("requiredMaturity", 0, "Required maturity (1.0-5.0, 0 = engine default)")
	addCmd.StringVar(&catalogPath, "path", catalogPath, "Path to catalog file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Use case ID to update")
	field := updateCmd.String("field", "", "Field to update (title, description, industry, impact, complexity, aiType, dataRequirements, requiredMaturity)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&catalogPath, "path", catalogPath, "Path to catalog file")

	// Validate command flags
	validateCmd.StringVar(&catalogPath, "path", catalogPath, "Path to catalog file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *title == "" || *description == "" {
			fmt.Println("Error: id, title, and description are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		useCase := models.UseCase{
			ID:               *idAdd,
			Title:            *title,
			Description:      *description,
			Industry:         *industry,
			Impact:           *impact,
			Complexity:       *complexity,
			AIType:           *aiType,
			DataRequirements: *dataReqs,
			RequiredMaturity: *requiredMaturity,
		}
		if err := addUseCase(&useCase); err != nil {
			fmt.Printf("Error adding use case: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added use case: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateUseCase(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating use case: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated use case %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(); err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Catalog validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addUseCase(useCase *models.UseCase) error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		// If file doesn't exist, create a new catalog
		if os.IsNotExist(err) {
			cat = &catalog.Catalog{
				Version:  "1.0.0",
				UseCases: []models.UseCase{},
			}
		} else {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	if cat.Find(useCase.ID) != nil {
		return fmt.Errorf("use case with ID %s already exists", useCase.ID)
	}

	cat.UseCases = append(cat.UseCases, *useCase)
	cat.LastUpdated = time.Now().Format(time.RFC3339)

	return saveCatalog(cat)
}

func updateUseCase(id, field, value string) error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	useCase := cat.Find(id)
	if useCase == nil {
		return fmt.Errorf("use case with ID %s not found", id)
	}

	switch field {
	case "title":
		useCase.Title = value
	case "description":
		useCase.Description = value
	case "industry":
		useCase.Industry = value
	case "impact":
		useCase.Impact = value
	case "complexity":
		useCase.Complexity = value
	case "aiType":
		useCase.AIType = value
	case "dataRequirements":
		useCase.DataRequirements = value
	case "requiredMaturity":
		maturity, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid requiredMaturity value: %w", err)
		}
		useCase.RequiredMaturity = maturity
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	cat.LastUpdated = time.Now().Format(time.RFC3339)
	return saveCatalog(cat)
}

func validateCatalog() error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if len(cat.UseCases) == 0 {
		return fmt.Errorf("catalog contains no use cases")
	}

	if errs := cat.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("  - %v\n", e)
		}
		return fmt.Errorf("%d validation error(s)", len(errs))
	}

	fmt.Printf("Found %d use cases.\n", len(cat.UseCases))
	return nil
}

// saveCatalog writes the catalog, creating the directory when needed.
func saveCatalog(cat *catalog.Catalog) error {
	dir := filepath.Dir(catalogPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return cat.Save(catalogPath)
}

func help() {
	fmt.Println(`catalog-updater maintains configs/use-case-catalog.json.

Usage:
  catalog-updater add -id <id> -title <title> -description <text> [-industry <name>] [-impact low|medium|high] [-complexity low|medium|high] [-aiType <type>] [-dataRequirements <text>] [-requiredMaturity <1.0-5.0>]
  catalog-updater update -id <id> -field <field> -value <value>
  catalog-updater validate [-path <file>]
  catalog-updater help`)
}
