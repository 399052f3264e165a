// Package registry keeps an ordered, name-indexed set of mounted ringfs
// instances so one process can own several disjoint partitions.
//
// Grounded on cannyls-go's lumpindex.LumpIndex: a github.com/google/btree
// tree keyed by a Less-implementing item, narrowed here from a byte-range
// index to a simple name -> *ringfs.Instance map that also needs ordered
// enumeration (for the CLI's list command and the HTTP server's
// /partitions endpoint).
package registry

import (
	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/flashring/ringfs/ringfs"
)

// Registry maps partition names to mounted instances and is not safe for
// concurrent use. It is never a package global: callers (and tests) each
// own an independent set of partitions.
type Registry struct {
	tree *btree.BTree
}

type entry struct {
	name     string
	instance *ringfs.Instance
}

func (e entry) Less(than btree.Item) bool {
	return e.name < than.(entry).name
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{tree: btree.New(32)}
}

// Register adds inst under name, replacing any prior instance registered
// under the same name.
func (r *Registry) Register(name string, inst *ringfs.Instance) {
	r.tree.ReplaceOrInsert(entry{name: name, instance: inst})
}

// Unregister removes name from the registry, if present.
func (r *Registry) Unregister(name string) {
	r.tree.Delete(entry{name: name})
}

// Get returns the instance registered under name.
func (r *Registry) Get(name string) (*ringfs.Instance, error) {
	item := r.tree.Get(entry{name: name})
	if item == nil {
		return nil, errors.Errorf("registry: no partition named %q", name)
	}
	return item.(entry).instance, nil
}

// Names returns every registered partition name in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.tree.Len())
	r.tree.Ascend(func(i btree.Item) bool {
		names = append(names, i.(entry).name)
		return true
	})
	return names
}

// Len returns how many partitions are registered.
func (r *Registry) Len() int {
	return r.tree.Len()
}
