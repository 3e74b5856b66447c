package indexer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/symgraphhq/symgraph/internal/decl"
	"github.com/symgraphhq/symgraph/internal/facts"
)

// Indexer emits the fact graph for typed declaration trees. One Indexer
// serves a whole run: the store accumulates across units so declarations
// referenced from many files intern once.
type Indexer struct {
	store *facts.Store
	types decl.TypeResolver
	src   decl.SourceMap
	log   *zap.Logger

	// run-level override bookkeeping, flushed by EmitOverrides
	containers     map[string]*containerInfo
	containerOrder []string
}

// containerInfo records what EmitOverrides needs about a visited container:
// its identity, kind, declared method names, and the names of the containers
// it inherits from.
type containerInfo struct {
	declID  facts.ID
	kind    decl.ContainerKind
	methods []string
	parents []string
}

// New creates an Indexer bound to a store and its external collaborators.
func New(store *facts.Store, types decl.TypeResolver, src decl.SourceMap, log *zap.Logger) *Indexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Indexer{
		store:      store,
		types:      types,
		src:        src,
		log:        log,
		containers: make(map[string]*containerInfo),
	}
}

// Store returns the underlying fact store.
func (ix *Indexer) Store() *facts.Store {
	return ix.store
}

// unitState accumulates the per-file data the aggregate facts need:
// declarations made in the file and every identity reference with the spans
// that produced it.
type unitState struct {
	path      string
	decls     []facts.ID
	xrefOrder []facts.ID
	xrefs     map[facts.ID][]facts.SpanSpec
}

func newUnitState(path string) *unitState {
	return &unitState{path: path, xrefs: make(map[facts.ID][]facts.SpanSpec)}
}

func (u *unitState) addDecl(id facts.ID) {
	u.decls = append(u.decls, id)
}

func (u *unitState) addXRef(id facts.ID, span facts.SpanSpec) {
	if _, seen := u.xrefs[id]; !seen {
		u.xrefOrder = append(u.xrefOrder, id)
	}
	u.xrefs[id] = append(u.xrefs[id], span)
}

// IndexUnit walks one file's declarations in declared order and emits all
// per-declaration facts, then the file aggregates. The unit's path must be
// absolute.
func (ix *Indexer) IndexUnit(unit *decl.Unit) error {
	u := newUnitState(unit.Path)

	for i := range unit.Containers {
		if err := ix.indexContainer(&unit.Containers[i], u); err != nil {
			return fmt.Errorf("indexing container %s: %w", unit.Containers[i].QualifiedName(), err)
		}
	}
	for i := range unit.Enums {
		if err := ix.indexEnum(&unit.Enums[i], u); err != nil {
			return fmt.Errorf("indexing enum %s: %w", unit.Enums[i].Name, err)
		}
	}
	for i := range unit.Functions {
		if err := ix.indexFunction(&unit.Functions[i], u); err != nil {
			return fmt.Errorf("indexing function %s: %w", unit.Functions[i].Name, err)
		}
	}
	for i := range unit.Typedefs {
		if err := ix.indexTypedef(&unit.Typedefs[i], u); err != nil {
			return fmt.Errorf("indexing typedef %s: %w", unit.Typedefs[i].Name, err)
		}
	}
	for i := range unit.GlobalConsts {
		if err := ix.indexGlobalConst(&unit.GlobalConsts[i], u); err != nil {
			return fmt.Errorf("indexing global const %s: %w", unit.GlobalConsts[i].Name, err)
		}
	}
	for _, occ := range unit.Occurrences {
		if err := ix.indexOccurrence(occ, u); err != nil {
			return fmt.Errorf("indexing occurrence %s: %w", occ.MethodName, err)
		}
	}

	return ix.emitFileAggregates(u)
}

// namespaceFact interns the namespace declaration for ns. The global
// namespace (empty name) emits nothing.
func (ix *Indexer) namespaceFact(ns string) error {
	qn := namespaceQName(ns)
	if qn == nil {
		return nil
	}
	_, err := ix.store.Add(facts.NamespaceDeclaration, facts.NamespaceDeclarationKey{Name: *qn})
	return err
}

// containerDecl lazily interns a container declaration by qualified name.
// This is how forward references resolve: a parent mentioned before (or
// without) its own definition still gets a stable identity.
func (ix *Indexer) containerDecl(pred facts.Predicate, fqName string) (facts.ID, error) {
	ns, base := splitQualified(fqName)
	return ix.store.Add(pred, facts.ContainerDeclarationKey{Name: qualifiedName(ns, base)})
}

// parentDecl interns a declaration for a name referenced in an inheritance
// clause, stripping type-argument syntax, and records the cross-reference.
func (ix *Indexer) parentDecl(pred facts.Predicate, ref decl.ParentRef, u *unitState) (facts.ID, error) {
	id, err := ix.containerDecl(pred, stripTypeArgs(ref.Name))
	if err != nil {
		return 0, err
	}
	u.addXRef(id, spanSpec(ref.Span))
	return id, nil
}

// parentDecls interns declarations for a whole clause, preserving declared
// order.
func (ix *Indexer) parentDecls(pred facts.Predicate, parents []decl.ParentRef, u *unitState) ([]facts.ID, error) {
	ids := make([]facts.ID, 0, len(parents))
	for _, p := range parents {
		id, err := ix.parentDecl(pred, p, u)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// recordContainer feeds the run-level override table.
func (ix *Indexer) recordContainer(fqName string, info *containerInfo) {
	if _, seen := ix.containers[fqName]; !seen {
		ix.containerOrder = append(ix.containerOrder, fqName)
	}
	ix.containers[fqName] = info
}

// EmitOverrides emits MethodOverrides edges for every method declared in a
// visited container that shadows a same-named method in one of its visited
// parents. Call after all units of the run have been indexed; the edge only
// needs container identities and kinds, never the method definitions.
func (ix *Indexer) EmitOverrides() error {
	for _, name := range ix.containerOrder {
		derived := ix.containers[name]
		for _, parentName := range derived.parents {
			base, ok := ix.containers[parentName]
			if !ok {
				continue
			}
			for _, method := range derived.methods {
				if !hasMethod(base, method) {
					continue
				}
				key := facts.MethodOverridesKey{
					Name: method,
					Derived: facts.ContainerRef{
						Container: facts.NewRef(derived.declID),
						Kind:      derived.kind.String(),
					},
					Base: facts.ContainerRef{
						Container: facts.NewRef(base.declID),
						Kind:      base.kind.String(),
					},
				}
				if _, err := ix.store.Add(facts.MethodOverrides, key); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func hasMethod(info *containerInfo, name string) bool {
	for _, m := range info.methods {
		if m == name {
			return true
		}
	}
	return false
}

// indexOccurrence emits a MethodOccurrence fact for one use site. The
// className field is present only when the receiver's class is statically
// known; an unknown receiver omits the field entirely.
func (ix *Indexer) indexOccurrence(occ decl.Occurrence, u *unitState) error {
	key := facts.MethodOccurrenceKey{Name: occ.MethodName}
	if occ.ClassName != "" {
		cls := occ.ClassName
		key.ClassName = &cls
	}
	id, err := ix.store.Add(facts.MethodOccurrence, key)
	if err != nil {
		return err
	}
	u.addXRef(id, spanSpec(occ.Span))
	return nil
}
