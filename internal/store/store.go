package store

import (
	"github.com/ppiankov/lexnav/internal/model"
)

// Store is the process-wide single-slot holder of the most recent completed
// traversal result. Writes are last-writer-wins; Latest returns nil (no
// error) when the slot is empty. The slot is the only mutable state shared
// between runs and it is deliberately not a session cache.
type Store interface {
	PutLatest(result *model.TraversalResult) error
	Latest() (*model.TraversalResult, error)
	Clear() error
}
