// pkg/catalog/schema.go
package catalog

import "assessment-workers/internal/models"

// Catalog is the on-disk format of configs/use-case-catalog.json.
type Catalog struct {
	Version     string           `json:"version"`
	LastUpdated string           `json:"lastUpdated"`
	UseCases    []models.UseCase `json:"useCases"`
}
