package storage

import (
	"fmt"

	"jeevan/pkg/platform/sentinel"
)

// ErrNotFound keeps storage-specific misses consistent across the in-memory
// and SQLite implementations.
var ErrNotFound = fmt.Errorf("record %w", sentinel.ErrNotFound)
