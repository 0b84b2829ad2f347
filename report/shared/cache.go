// Package shared caches the layout of elements reused across
// several rendering contexts (repeated headers, subreport instances,
// preview contexts), and reports the contexts in which the same
// element is laid out differently.
//
// Entries are keyed by the element identity and a hash of the context
// state. Dirty tracking is explicit: an entry is reused only if the
// fingerprint of the element instance is unchanged and it has not been
// invalidated.
package shared

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	pr "github.com/benoitkugler/reportlayout/css/properties"
	"github.com/benoitkugler/reportlayout/config"
	"github.com/benoitkugler/reportlayout/logger"
	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/report/conflict"
	"github.com/benoitkugler/reportlayout/report/layout"
	"github.com/benoitkugler/reportlayout/report/tree"
	"github.com/benoitkugler/reportlayout/utils"
	"golang.org/x/sync/singleflight"
)

type Unit = bo.Unit

// ContextState is the part of a rendering context which
// influences the layout of an element.
type ContextState struct {
	ID     string            // name of the context
	Zoom   float64           // viewport factor
	Page   layout.PageGeometry
	Fields map[string]string // bound field values
}

// Hash returns the cache key of the state.
func (s ContextState) Hash() uint64 {
	h := utils.NewHasher()
	h.WriteString(s.ID, strconv.FormatFloat(s.Zoom, 'g', -1, 64), s.Page.String())
	h.WriteMap(s.Fields)
	return h.Sum64()
}

// Instantiator returns the element instance used in a context,
// for instance a subreport with its bound values.
type Instantiator func(identity string, state ContextState) (*tree.Element, error)

// LayoutFunc lays out an element instance.
type LayoutFunc func(ctx context.Context, element *tree.Element, state ContextState) (*bo.Box, error)

// entry is never modified once stored.
type entry struct {
	state       ContextState
	fingerprint uint64
	box         *bo.Box
	version     uint64 // version of the identity when the layout started
}

type bucket struct {
	lock     sync.Mutex
	entries  map[string]map[uint64]entry // identity -> state hash
	versions map[string]uint64           // bumped by Invalidate
}

// lookup returns the entry for ([identity], [hash]), if any, whether it is
// still valid and the current version of [identity].
func (b *bucket) lookup(identity string, hash uint64) (e entry, found, valid bool, version uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()
	version = b.versions[identity]
	e, found = b.entries[identity][hash]
	return e, found, found && e.version == version, version
}

// Cache is safe for concurrent use. Unrelated identities
// are spread over independent buckets.
type Cache struct {
	buckets []*bucket
	group   singleflight.Group

	instantiate Instantiator
	layout      LayoutFunc

	detection    bool
	epsilon      Unit
	sharedStyles []pr.KnownProp

	metrics *Metrics
}

// NewCache returns an empty cache. Unknown style keys in
// [cfg.SharedStyles] are an error.
func NewCache(cfg config.CacheConfig, layoutCfg config.LayoutConfig, instantiate Instantiator, fn LayoutFunc) (*Cache, error) {
	n := cfg.Buckets
	if n <= 0 {
		n = 1
	}
	c := &Cache{
		buckets:     make([]*bucket, n),
		instantiate: instantiate,
		layout:      fn,
		detection:   layoutCfg.ConflictDetection,
		epsilon:     Unit(layoutCfg.Epsilon),
	}
	for i := range c.buckets {
		c.buckets[i] = &bucket{entries: make(map[string]map[uint64]entry), versions: make(map[string]uint64)}
	}
	for _, name := range cfg.SharedStyles {
		key := pr.PropsFromNames(name)
		if key == 0 {
			return nil, fmt.Errorf("unknown shared style %q", name)
		}
		c.sharedStyles = append(c.sharedStyles, key)
	}
	return c, nil
}

// SetMetrics enables the prometheus collectors.
func (c *Cache) SetMetrics(m *Metrics) { c.metrics = m }

func (c *Cache) bucket(identity string) *bucket {
	return c.buckets[utils.Hash(identity)%uint64(len(c.buckets))]
}

// LayoutShared returns the layout of the element [identity] in the context [state],
// computing it if needed, and the conflicts with the layouts of the same element
// in the other contexts. Conflicts are only reported when detection is enabled.
func (c *Cache) LayoutShared(ctx context.Context, identity string, state ContextState) (*bo.Box, []conflict.Record, error) {
	element, err := c.instantiate(identity, state)
	if err != nil {
		return nil, nil, fmt.Errorf("instantiating shared element %s: %w", identity, err)
	}
	fingerprint := element.Fingerprint()
	hash := state.Hash()
	b := c.bucket(identity)

	e, found, valid, version := b.lookup(identity, hash)

	var box *bo.Box
	if valid && e.fingerprint == fingerprint {
		c.metrics.lookup("hit")
		box = e.box
	} else {
		if found {
			c.metrics.lookup("stale")
		} else {
			c.metrics.lookup("miss")
		}
		key := fmt.Sprintf("%s\x00%x\x00%x\x00%d", identity, hash, fingerprint, version)
		v, err, _ := c.group.Do(key, func() (interface{}, error) {
			start := time.Now()
			box, err := c.layout(ctx, element, state)
			if err != nil {
				return nil, err
			}
			c.metrics.observe(time.Since(start).Seconds())
			b.lock.Lock()
			defer b.lock.Unlock()
			if b.entries[identity] == nil {
				b.entries[identity] = make(map[uint64]entry)
			}
			// invalidated while laying out: the entry is stored stale
			b.entries[identity][hash] = entry{state: state, fingerprint: fingerprint, box: box, version: version}
			return box, nil
		})
		if err != nil {
			return nil, nil, err
		}
		box = v.(*bo.Box)
	}

	if !c.detection {
		return box, nil, nil
	}
	records := c.compare(b, identity, hash, state, box)
	c.metrics.conflict(len(records))
	for _, r := range records {
		logger.ProgressLogger.Debugf("shared layout: %s", r)
	}
	return box, records, nil
}

// Invalidate marks every cached layout of [identity] as stale,
// including the ones being computed.
func (c *Cache) Invalidate(identity string) {
	b := c.bucket(identity)
	b.lock.Lock()
	defer b.lock.Unlock()
	b.versions[identity]++
}

// Len returns the number of valid entries.
func (c *Cache) Len() int {
	n := 0
	for _, b := range c.buckets {
		b.lock.Lock()
		for identity, states := range b.entries {
			for _, e := range states {
				if e.version == b.versions[identity] {
					n++
				}
			}
		}
		b.lock.Unlock()
	}
	return n
}

// compare checks [box] against the valid layouts of [identity] in the other contexts,
// visited in a deterministic order.
func (c *Cache) compare(b *bucket, identity string, hash uint64, state ContextState, box *bo.Box) []conflict.Record {
	b.lock.Lock()
	var others []entry
	version := b.versions[identity]
	for h, e := range b.entries[identity] {
		if h != hash && e.version == version {
			others = append(others, e)
		}
	}
	b.lock.Unlock()
	sort.Slice(others, func(i, j int) bool { return others[i].state.ID < others[j].state.ID })

	var records []conflict.Record
	for _, other := range others {
		cmp := comparison{cache: c, first: other.state.ID, second: state.ID}
		cmp.boxes(other.box, box)
		records = append(records, cmp.records...)
	}
	return records
}

type comparison struct {
	cache         *Cache
	first, second string // contexts
	records       []conflict.Record
}

func (cmp *comparison) add(kind conflict.Kind, a, b *bo.Box, detailA, detailB string) {
	cmp.records = append(cmp.records, conflict.Record{
		First:    conflict.Location{Context: cmp.first, Element: a.ID(), Detail: detailA},
		Second:   conflict.Location{Context: cmp.second, Element: b.ID(), Detail: detailB},
		Kind:     kind,
		Severity: conflict.Informational,
	})
}

func geometry(box *bo.Box) string {
	return fmt.Sprintf("%s at (%s, %s), size %sx%s", box.Kind, box.X, box.Y, box.Width, box.Height)
}

func (cmp *comparison) near(u, v Unit) bool { return utils.Abs64(int64(u-v)) <= int64(cmp.cache.epsilon) }

// boxes walks the two trees in parallel.
func (cmp *comparison) boxes(a, b *bo.Box) {
	if a.Kind != b.Kind || !cmp.near(a.X, b.X) || !cmp.near(a.Y, b.Y) ||
		!cmp.near(a.Width, b.Width) || !cmp.near(a.Height, b.Height) {
		cmp.add(conflict.Geometry, a, b, geometry(a), geometry(b))
	}
	if a.Style != nil && b.Style != nil {
		for _, key := range cmp.cache.sharedStyles {
			va, vb := a.Style.Properties[key], b.Style.Properties[key]
			if va != vb {
				cmp.add(conflict.Style, a, b, fmt.Sprintf("%s: %v", key, va), fmt.Sprintf("%s: %v", key, vb))
			}
		}
	}
	cmp.lists(a, b, a.Children, b.Children, "children")
	cmp.lists(a, b, a.Marginals, b.Marginals, "repeated bands")
}

func (cmp *comparison) lists(a, b *bo.Box, la, lb []*bo.Box, what string) {
	if len(la) != len(lb) {
		cmp.add(conflict.Geometry, a, b, fmt.Sprintf("%d %s", len(la), what), fmt.Sprintf("%d %s", len(lb), what))
		return
	}
	for i := range la {
		cmp.boxes(la[i], lb[i])
	}
}
