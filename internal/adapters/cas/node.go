package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/forge/internal/core/ports"
)

// NodeID is the unique identifier for the step cache Graft node.
const NodeID graft.ID = "adapter.step_cache"

func init() {
	graft.Register(graft.Node[ports.StepCache]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StepCache, error) {
			return NewStore(), nil
		},
	})
}
