package domain

import (
	"strings"
	"time"
)

// Category is a user-defined label stored under users/{uid}/categories
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryKey maps a category name to its registry key. Names that differ
// only by case or surrounding space share one key.
func CategoryKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(key, "/", "_")
}
