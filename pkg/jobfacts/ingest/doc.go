package ingest

import (
	"fmt"
	"strings"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/internalerr"
)

// Document is one job posting as delivered by the source. Title and Body
// may contain HTML markup; Location and ContractType are optional
// structured fields (empty means absent).
type Document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	Location     string `json:"location,omitempty"`
	ContractType string `json:"contract_type,omitempty"`
}

// Validate checks if the document has required fields
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("document %q: title is required: %w", d.ID, internalerr.ErrInvalidDocument)
	}
	return nil
}

// HasLocation reports whether the explicit location field is set.
func (d *Document) HasLocation() bool {
	return strings.TrimSpace(d.Location) != ""
}

// HasContractType reports whether the explicit contract type field is set.
func (d *Document) HasContractType() bool {
	return strings.TrimSpace(d.ContractType) != ""
}
