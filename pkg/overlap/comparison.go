// Package overlap compares two networks: it counts their shared edges and
// places that count between a negative benchmark (independent random graphs
// with the same degrees) and a positive benchmark (subnetworks of a common
// pool with the same degrees).
package overlap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/network"
)

var (
	ErrNegativeNotComputed = errors.New("negative benchmark not computed")
	ErrPositiveNotComputed = errors.New("positive benchmark not computed")
	ErrUnknownDirection    = errors.New("unknown direction")
)

// DefaultNegativeParams tune the degree model when no parameters are given
var DefaultNegativeParams = maxent.TuneParams{
	ItersStart:    100,
	ChangeLimit:   1,
	IterSpacing:   1000,
	MaxIterations: 5000,
}

// DefaultPositiveParams tune the subnetwork model when no parameters are given
var DefaultPositiveParams = maxent.TuneParams{
	ItersStart:    1000,
	ChangeLimit:   1,
	IterSpacing:   1000,
	MaxIterations: 20000,
}

// DefaultInstanceIterations is the fixed fit length used for sampling instances
const DefaultInstanceIterations = 1000

// Direction names which network supplies the degree sequence
type Direction int

const (
	// AToB fits network A and measures against B
	AToB Direction = iota
	// BToA fits network B and measures against A
	BToA
)

func (d Direction) String() string {
	switch d {
	case AToB:
		return "a->b"
	case BToA:
		return "b->a"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// MarshalText encodes the direction by name
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes "a->b" or "b->a"
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "a->b":
		*d = AToB
	case "b->a":
		*d = BToA
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDirection, text)
	}
	return nil
}

type options struct {
	sigmaFloor float64
}

// Option configures a Comparison
type Option func(*options)

// WithSigmaFloor treats any sigma at or below floor as undefined in z-scores,
// p-values and closest-fit selection. The default floor 0 only rejects 0.
func WithSigmaFloor(floor float64) Option {
	return func(o *options) {
		o.sigmaFloor = floor
	}
}

// Comparison holds two networks in a shared node-id space together with the
// pool their subnetworks are drawn from
type Comparison[N comparable] struct {
	index *network.Index[N]
	a     []network.Edge
	b     []network.Edge
	pool  []network.Edge

	neighborsA network.NeighborMap
	neighborsB network.NeighborMap

	observed int
	opts     options

	mu       sync.Mutex
	negative *BenchmarkResult
	positive *BenchmarkResult
}

// New indexes the nodes of a, b and pool in that order and counts the
// observed overlap. A nil pool defaults to the union of a and b.
func New[N comparable](edgesA, edgesB, pool [][2]N, opts ...Option) *Comparison[N] {
	c := &Comparison[N]{
		index: network.NewIndex[N](),
	}
	for _, opt := range opts {
		opt(&c.opts)
	}

	c.a = c.index.Edges(edgesA)
	c.b = c.index.Edges(edgesB)
	if pool != nil {
		c.pool = network.Union(c.index.Edges(pool))
	} else {
		c.pool = network.Union(c.a, c.b)
	}

	c.neighborsA = network.FromEdges(c.a)
	c.neighborsB = network.FromEdges(c.b)
	c.observed = network.CountOverlap(c.a, c.b)

	return c
}

// Observed is the number of distinct edges shared by both networks
func (c *Comparison[N]) Observed() int {
	return c.observed
}

// Nodes is the number of distinct nodes across a, b and the pool
func (c *Comparison[N]) Nodes() int {
	return c.index.Len()
}

// Summaries describes the two networks and the pool
func (c *Comparison[N]) Summaries() (a, b, pool network.Summary) {
	return network.Summarize(c.a), network.Summarize(c.b), network.Summarize(c.pool)
}

func (c *Comparison[N]) reference(d Direction) ([]network.Edge, network.NeighborMap, error) {
	switch d {
	case AToB:
		return c.a, c.neighborsA, nil
	case BToA:
		return c.b, c.neighborsB, nil
	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownDirection, int(d))
	}
}
