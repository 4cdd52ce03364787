// Package store persists per-entity mood snapshots. The engine treats a nil
// load result as a fresh entity and a failed save as recoverable.
package store

// #region imports
import (
	"context"

	"github.com/danielpatrickdp/disposition-engine/internal/mood"
)

// #endregion

// #region store-interface

// Store is the persistence contract for entity state. Load returns
// (nil, nil) for an unseen entity id.
type Store interface {
	Load(ctx context.Context, entityID string) (*mood.EntityState, error)
	Save(ctx context.Context, st *mood.EntityState) error
}

// #endregion store-interface
