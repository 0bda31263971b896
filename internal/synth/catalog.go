// catalog.go - the process-wide registry mapping catalog name to constructor

package synth

import "fmt"

// Constructor builds a fresh module instance sized for cfg.
type Constructor func(cfg AudioConfig) Module

var catalogOrder []string
var catalogCtors = map[string]Constructor{}

// registerCatalog appends name to the catalog in enumeration order. Called
// once per catalog entry from catalog_init.go, so CatalogNames always
// enumerates the catalog in a stable order.
func registerCatalog(name string, ctor Constructor) {
	if _, exists := catalogCtors[name]; exists {
		panic(fmt.Sprintf("synthrack: duplicate catalog entry %q", name))
	}
	catalogOrder = append(catalogOrder, name)
	catalogCtors[name] = ctor
}

// CatalogNames returns the catalog entries in their declared order.
func CatalogNames() []string {
	out := make([]string, len(catalogOrder))
	copy(out, catalogOrder)
	return out
}

// NewFromCatalog constructs a module by catalog name.
func NewFromCatalog(name string, cfg AudioConfig) (Module, error) {
	ctor, ok := catalogCtors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchCatalogEntry, name)
	}
	return ctor(cfg), nil
}
