package vectorDB

import (
	"context"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

// SessionIndex is the per-session chunk store. Writes into one session are
// serialized by the implementation (striped lock keyed by session name);
// reads are unrestricted and may observe a partially indexed session while an
// ingest is still running.
type SessionIndex interface {
	Add(ctx context.Context, session string, chunks []commonModels.Chunk) error
	Search(ctx context.Context, session string, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error)
	Delete(ctx context.Context, session string, filter commonModels.DeleteFilter) error

	// DropSession removes the session's whole collection. Used by the session
	// delete cascade.
	DropSession(ctx context.Context, session string) error
}
