package frontends

import (
	"context"

	"github.com/symgraphhq/symgraph/internal/decl"
)

// FrontEnd parses source files for a specific language into typed
// declaration units, and supplies the type resolver the indexer uses for
// that language's hints.
type FrontEnd interface {
	// Name returns the front end identifier (e.g. "typescript").
	Name() string
	// Detect returns true if this front end supports the given repository.
	Detect(repoPath string) (bool, error)
	// Parse reads the given files and returns one declaration unit per
	// parsed file, plus the source text of every file it read.
	Parse(ctx context.Context, repoPath string, files []string) ([]decl.Unit, decl.FileSources, error)
	// Resolver returns the type-resolution context for this language.
	Resolver() decl.TypeResolver
}

// Registry holds registered front ends.
type Registry struct {
	frontends []FrontEnd
}

// NewRegistry creates a new front-end registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a front end to the registry.
func (r *Registry) Register(f FrontEnd) {
	r.frontends = append(r.frontends, f)
}

// Get returns the front end with the given name, or nil if not found.
func (r *Registry) Get(name string) FrontEnd {
	for _, f := range r.frontends {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// All returns all registered front ends.
func (r *Registry) All() []FrontEnd {
	return r.frontends
}
