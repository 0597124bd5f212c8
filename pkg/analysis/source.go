package analysis

import (
	"context"

	"github.com/ritzau/normlap/pkg/edgelist"
)

// Source supplies the edge list of one comparison input
type Source interface {
	// Name describes the source in reports (a path, or "request")
	Name() string

	// Load returns the edges. It should respect the context for cancellation.
	Load(ctx context.Context) ([][2]string, error)
}

// FileSource reads an edge-list file on every Load, so a watched file
// is picked up fresh on each run
type FileSource string

func (f FileSource) Name() string { return string(f) }

func (f FileSource) Load(ctx context.Context) ([][2]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return edgelist.Read(string(f))
}

// Edges is an in-memory source, e.g. from an API request
type Edges struct {
	Label string
	Pairs [][2]string
}

func (e Edges) Name() string { return e.Label }

func (e Edges) Load(context.Context) ([][2]string, error) { return e.Pairs, nil }
