package indexer

import (
	"github.com/symgraphhq/symgraph/internal/decl"
	"github.com/symgraphhq/symgraph/internal/facts"
)

// memberDecl interns a member declaration under its owning container. The
// declaration is requested per distinct (name, container) pair so a member
// can be referenced before its definition is visited.
func (ix *Indexer) memberDecl(pred facts.Predicate, name string, containerID facts.ID, kind decl.ContainerKind) (facts.ID, error) {
	return ix.store.Add(pred, facts.MemberDeclarationKey{
		Name:          name,
		Container:     facts.NewRef(containerID),
		ContainerKind: kind.String(),
	})
}

// literal slices the value expression's source text and strips one layer of
// quoting. A nil span or missing source entry yields an empty literal
// rather than failing the unit.
func (ix *Indexer) literal(path string, span *decl.Span) string {
	if span == nil {
		return ""
	}
	text, ok := ix.src.Lookup(path, *span)
	if !ok {
		return ""
	}
	return stripQuotes(text)
}

func (ix *Indexer) propertyFacts(containerID facts.ID, kind decl.ContainerKind, path string, p *decl.Property, u *unitState) (facts.ID, error) {
	declID, err := ix.memberDecl(facts.PropertyDeclaration, p.Name, containerID, kind)
	if err != nil {
		return 0, err
	}
	key := facts.PropertyDefinitionKey{
		Declaration: facts.NewRef(declID),
		Visibility:  p.Visibility.String(),
		IsAbstract:  p.IsAbstract,
		IsFinal:     p.IsFinal,
		IsStatic:    p.IsStatic,
		Type:        resolveHint(ix.types, p.Type),
		Attributes:  attributeSpecs(ix.src, path, p.Attributes),
	}
	if _, err := ix.store.Add(facts.PropertyDefinition, key); err != nil {
		return 0, err
	}
	if err := ix.emitLocations(declID, path, p.NameSpan, p.DocSpan, p.Span); err != nil {
		return 0, err
	}
	u.addDecl(declID)
	return declID, nil
}

func (ix *Indexer) methodFacts(containerID facts.ID, kind decl.ContainerKind, path string, m *decl.Method, u *unitState) (facts.ID, error) {
	declID, err := ix.memberDecl(facts.MethodDeclaration, m.Name, containerID, kind)
	if err != nil {
		return 0, err
	}
	key := facts.MethodDefinitionKey{
		Declaration: facts.NewRef(declID),
		Signature:   signatureSpec(ix.types, m.Signature),
		Visibility:  m.Visibility.String(),
		IsAbstract:  m.IsAbstract,
		IsFinal:     m.IsFinal,
		IsStatic:    m.IsStatic,
		TypeParams:  typeParamSpecs(ix.types, m.TypeParams),
		Attributes:  attributeSpecs(ix.src, path, m.Attributes),
	}
	if _, err := ix.store.Add(facts.MethodDefinition, key); err != nil {
		return 0, err
	}
	if err := ix.emitLocations(declID, path, m.NameSpan, m.DocSpan, m.Span); err != nil {
		return 0, err
	}
	u.addDecl(declID)
	return declID, nil
}

func (ix *Indexer) classConstFacts(containerID facts.ID, kind decl.ContainerKind, path string, c *decl.ClassConst, u *unitState) (facts.ID, error) {
	declID, err := ix.memberDecl(facts.ClassConstDeclaration, c.Name, containerID, kind)
	if err != nil {
		return 0, err
	}
	key := facts.ClassConstDefinitionKey{
		Declaration: facts.NewRef(declID),
		Type:        resolveHint(ix.types, c.Type),
		Value:       ix.literal(path, c.Value),
	}
	if _, err := ix.store.Add(facts.ClassConstDefinition, key); err != nil {
		return 0, err
	}
	if err := ix.emitLocations(declID, path, c.NameSpan, c.DocSpan, c.Span); err != nil {
		return 0, err
	}
	u.addDecl(declID)
	return declID, nil
}

// typeConstType picks the definition's type field: the concrete type, the
// non-abstract half of a partially abstract constant, or an abstract
// constant's default. A fully abstract constant with no default has none.
// An abstract default never populates the value field.
func typeConstType(types decl.TypeResolver, tc *decl.TypeConst) *string {
	switch tc.Kind {
	case decl.TypeConstAbstract:
		return resolveHint(types, tc.Default)
	default:
		return resolveHint(types, tc.Type)
	}
}

func (ix *Indexer) typeConstFacts(containerID facts.ID, kind decl.ContainerKind, path string, tc *decl.TypeConst, u *unitState) (facts.ID, error) {
	declID, err := ix.memberDecl(facts.TypeConstDeclaration, tc.Name, containerID, kind)
	if err != nil {
		return 0, err
	}
	key := facts.TypeConstDefinitionKey{
		Declaration: facts.NewRef(declID),
		Kind:        tc.Kind.String(),
		Type:        typeConstType(ix.types, tc),
		Attributes:  attributeSpecs(ix.src, path, tc.Attributes),
	}
	if _, err := ix.store.Add(facts.TypeConstDefinition, key); err != nil {
		return 0, err
	}
	if err := ix.emitLocations(declID, path, tc.NameSpan, tc.DocSpan, tc.Span); err != nil {
		return 0, err
	}
	u.addDecl(declID)
	return declID, nil
}

func (ix *Indexer) enumeratorFacts(enumID facts.ID, path string, e *decl.Enumerator, u *unitState) (facts.ID, error) {
	id, err := ix.store.Add(facts.Enumerator, facts.EnumeratorKey{
		Name:        e.Name,
		Enumeration: facts.NewRef(enumID),
	})
	if err != nil {
		return 0, err
	}
	if err := ix.emitLocations(id, path, e.NameSpan, e.DocSpan, e.Span); err != nil {
		return 0, err
	}
	u.addDecl(id)
	return id, nil
}
