// Package dataset reads the companies dataset and shapes its records into
// points ready for layout.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"companymap/internal/models"
)

// ErrEmpty is returned when the dataset contains no JSON document.
var ErrEmpty = errors.New("dataset: empty document")

// envelope is the object form of the dataset: {"companies": [...]}.
type envelope struct {
	Companies []models.Company `json:"companies"`
}

// Decode reads a dataset from r. Both a bare JSON array of companies and an
// object with a "companies" array are accepted.
func Decode(r io.Reader) ([]models.Company, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmpty
	}

	if raw[0] == '{' {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("failed to decode dataset object: %w", err)
		}
		return env.Companies, nil
	}

	var companies []models.Company
	if err := json.Unmarshal(raw, &companies); err != nil {
		return nil, fmt.Errorf("failed to decode dataset array: %w", err)
	}
	return companies, nil
}

// LoadFile decodes the dataset stored at path.
func LoadFile(path string) ([]models.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
