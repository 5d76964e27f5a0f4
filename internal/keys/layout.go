package keys

import (
	"fmt"
	"strings"
)

const layoutPrefix = "layouts"

// LatestLayout is the key the most recent layout is always written to.
const LatestLayout = layoutPrefix + "/latest.json"

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// Layout returns the archive key for the layout with the given ID.
func Layout(id string) string {
	return fmt.Sprintf("%s/%s.json", layoutPrefix, sanitizeKey(id))
}

// Dataset returns the canonical key for a named companies dataset.
func Dataset(name string) string {
	return fmt.Sprintf("datasets/%s.json", sanitizeKey(name))
}
