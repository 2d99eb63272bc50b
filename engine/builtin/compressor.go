package builtin

import (
	"fmt"

	"github.com/arloliu/zlframe/engine"
)

// compressor is a graph container: a set of profiles keyed by graph ID,
// with one selected as the starting graph. The generic graph is always
// registered under engine.GraphGeneric.
type compressor struct {
	graphs   map[engine.GraphID]*profile
	selected *profile
	nextID   engine.GraphID
	freed    bool
}

var _ engine.Compressor = (*compressor)(nil)

func newCompressor() *compressor {
	return &compressor{
		graphs: map[engine.GraphID]*profile{
			engine.GraphGeneric: genericProfile(),
		},
		nextID: engine.GraphGeneric + 1,
	}
}

// SetupProfile installs a compiled profile blob as a new graph.
func (c *compressor) SetupProfile(compiled []byte) (engine.GraphID, error) {
	if c.freed {
		return 0, fmt.Errorf("compressor used after free")
	}

	p, err := parseProfile(compiled)
	if err != nil {
		return 0, fmt.Errorf("setup profile: %w", err)
	}

	id := c.nextID
	c.nextID++
	c.graphs[id] = p

	return id, nil
}

// SelectStartingGraph selects the graph compression starts from.
func (c *compressor) SelectStartingGraph(id engine.GraphID) error {
	if c.freed {
		return fmt.Errorf("compressor used after free")
	}

	p, ok := c.graphs[id]
	if !ok {
		return fmt.Errorf("unknown graph id %d", id)
	}
	c.selected = p

	return nil
}

// startingProfile returns the selected profile, or an error when no
// starting graph has been selected or the compressor was freed. Contexts
// referencing this compressor call it on every compression.
func (c *compressor) startingProfile() (*profile, error) {
	if c.freed {
		return nil, fmt.Errorf("compressor used after free")
	}
	if c.selected == nil {
		return nil, fmt.Errorf("no starting graph selected")
	}

	return c.selected, nil
}

func (c *compressor) Free() {
	c.freed = true
	c.graphs = nil
	c.selected = nil
}
