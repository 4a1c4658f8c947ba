package db

import (
	"github.com/searchcraftinc/searchcraft-connect/internal/db/migrations"
)

// SchemaVersion returns the number of migration files for the given dialect
// directory, which equals the current schema version.
func SchemaVersion(dir string) int {
	entries, err := migrations.FS.ReadDir(dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			count++
		}
	}

	return count
}
