// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"assessment-workers/internal/models"
)

// Load reads the use-case catalog from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	err = json.Unmarshal(data, &cat)
	return &cat, err
}

// Save writes the catalog back to disk, pretty-printed so the file
// stays reviewable in version control.
func (c *Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Find returns the use case with the given id, or nil.
func (c *Catalog) Find(id string) *models.UseCase {
	for i := range c.UseCases {
		if c.UseCases[i].ID == id {
			return &c.UseCases[i]
		}
	}
	return nil
}

// Validate checks catalog entries for missing fields, duplicate ids,
// and out-of-range values.
func (c *Catalog) Validate() []error {
	var errs []error
	seen := make(map[string]bool)

	for i, uc := range c.UseCases {
		if uc.ID == "" {
			errs = append(errs, fmt.Errorf("entry %d: id is required", i))
			continue
		}
		if seen[uc.ID] {
			errs = append(errs, fmt.Errorf("entry %d: duplicate id %q", i, uc.ID))
		}
		seen[uc.ID] = true

		if uc.Title == "" {
			errs = append(errs, fmt.Errorf("%s: title is required", uc.ID))
		}
		if uc.Description == "" {
			errs = append(errs, fmt.Errorf("%s: description is required", uc.ID))
		}
		if !validLevel(uc.Impact) {
			errs = append(errs, fmt.Errorf("%s: impact must be low, medium, or high (got %q)", uc.ID, uc.Impact))
		}
		if !validLevel(uc.Complexity) {
			errs = append(errs, fmt.Errorf("%s: complexity must be low, medium, or high (got %q)", uc.ID, uc.Complexity))
		}
		if uc.RequiredMaturity != 0 && (uc.RequiredMaturity < 1.0 || uc.RequiredMaturity > 5.0) {
			errs = append(errs, fmt.Errorf("%s: requiredMaturity must be between 1.0 and 5.0 (got %.1f)", uc.ID, uc.RequiredMaturity))
		}
	}

	return errs
}

func validLevel(level string) bool {
	switch level {
	case models.LevelLow, models.LevelMedium, models.LevelHigh:
		return true
	}
	return false
}
