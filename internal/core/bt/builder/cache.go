package builder

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/arenabot/internal/core/bt"
)

// Cache keeps one built prototype per distinct tree source and hands out
// clones, so many agents running the same source parse it once.
type Cache struct {
	reg *Registry

	mu    sync.Mutex
	trees map[uint64]*bt.Tree
}

func NewCache(reg *Registry) *Cache {
	return &Cache{reg: reg, trees: make(map[uint64]*bt.Tree)}
}

// Fingerprint identifies a tree source by its name extension and contents.
func Fingerprint(name string, data []byte) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(formatOf(name))
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(data)
	return d.Sum64()
}

// Get returns a fresh clone of the tree built from data. Build errors are
// not cached.
func (c *Cache) Get(name string, data []byte) (*bt.Tree, error) {
	key := Fingerprint(name, data)

	c.mu.Lock()
	proto, ok := c.trees[key]
	c.mu.Unlock()
	if ok {
		return proto.Clone(), nil
	}

	proto, err := Load(name, data, c.reg)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if existing, ok := c.trees[key]; ok {
		proto = existing
	} else {
		c.trees[key] = proto
	}
	c.mu.Unlock()
	return proto.Clone(), nil
}

// Len is the number of cached prototypes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.trees)
}
