package main

import (
	"path/filepath"
	"strings"

	"companymap/internal/keys"
)

// datasetKey derives the object key from the input file name.
func datasetKey(input string) string {
	base := filepath.Base(input)
	return keys.Dataset(strings.TrimSuffix(base, filepath.Ext(base)))
}
