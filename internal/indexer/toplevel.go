package indexer

import (
	"github.com/symgraphhq/symgraph/internal/decl"
	"github.com/symgraphhq/symgraph/internal/facts"
)

// indexEnum emits declaration, enumerator, and definition facts for one
// enum. Includes edges use the same lazy-declaration mechanism as container
// parents.
func (ix *Indexer) indexEnum(e *decl.Enum, u *unitState) error {
	if err := ix.namespaceFact(e.Namespace); err != nil {
		return err
	}
	declID, err := ix.store.Add(facts.EnumDeclaration, facts.ContainerDeclarationKey{
		Name: qualifiedName(e.Namespace, e.Name),
	})
	if err != nil {
		return err
	}

	enumerators := make([]facts.ID, 0, len(e.Enumerators))
	for i := range e.Enumerators {
		id, err := ix.enumeratorFacts(declID, u.path, &e.Enumerators[i], u)
		if err != nil {
			return err
		}
		enumerators = append(enumerators, id)
	}

	includes, err := ix.parentDecls(facts.EnumDeclaration, e.Includes, u)
	if err != nil {
		return err
	}

	key := facts.EnumDefinitionKey{
		Declaration:    facts.NewRef(declID),
		EnumBase:       resolveBase(ix.types, e.Base),
		EnumConstraint: resolveHint(ix.types, e.Constraint),
		IsEnumClass:    e.IsEnumClass,
		Enumerators:    refs(enumerators),
		Includes:       refs(includes),
		Attributes:     attributeSpecs(ix.src, u.path, e.Attributes),
	}
	if _, err := ix.store.Add(facts.EnumDefinition, key); err != nil {
		return err
	}

	if err := ix.emitLocations(declID, u.path, e.NameSpan, e.DocSpan, e.Span); err != nil {
		return err
	}
	u.addDecl(declID)
	return nil
}

// indexFunction emits declaration and definition facts for a free function.
func (ix *Indexer) indexFunction(f *decl.Function, u *unitState) error {
	if err := ix.namespaceFact(f.Namespace); err != nil {
		return err
	}
	declID, err := ix.store.Add(facts.FunctionDeclaration, facts.ContainerDeclarationKey{
		Name: qualifiedName(f.Namespace, f.Name),
	})
	if err != nil {
		return err
	}
	key := facts.FunctionDefinitionKey{
		Declaration: facts.NewRef(declID),
		Signature:   signatureSpec(ix.types, f.Signature),
		TypeParams:  typeParamSpecs(ix.types, f.TypeParams),
		Attributes:  attributeSpecs(ix.src, u.path, f.Attributes),
	}
	if _, err := ix.store.Add(facts.FunctionDefinition, key); err != nil {
		return err
	}
	if err := ix.emitLocations(declID, u.path, f.NameSpan, f.DocSpan, f.Span); err != nil {
		return err
	}
	u.addDecl(declID)
	return nil
}

// indexTypedef emits declaration and definition facts for a type alias.
// Transparent and internal aliases report isTransparent; opaque ones do not.
func (ix *Indexer) indexTypedef(t *decl.Typedef, u *unitState) error {
	if err := ix.namespaceFact(t.Namespace); err != nil {
		return err
	}
	declID, err := ix.store.Add(facts.TypedefDeclaration, facts.ContainerDeclarationKey{
		Name: qualifiedName(t.Namespace, t.Name),
	})
	if err != nil {
		return err
	}
	key := facts.TypedefDefinitionKey{
		Declaration:   facts.NewRef(declID),
		IsTransparent: t.Transparency == decl.Transparent || t.Transparency == decl.OpaqueInternal,
		Type:          resolveHint(ix.types, t.Type),
		TypeParams:    typeParamSpecs(ix.types, t.TypeParams),
		Attributes:    attributeSpecs(ix.src, u.path, t.Attributes),
	}
	if _, err := ix.store.Add(facts.TypedefDefinition, key); err != nil {
		return err
	}
	if err := ix.emitLocations(declID, u.path, t.NameSpan, t.DocSpan, t.Span); err != nil {
		return err
	}
	u.addDecl(declID)
	return nil
}

// indexGlobalConst emits declaration and definition facts for a file-level
// constant. The literal value follows the same slice-and-unquote rule as
// class constants.
func (ix *Indexer) indexGlobalConst(g *decl.GlobalConst, u *unitState) error {
	if err := ix.namespaceFact(g.Namespace); err != nil {
		return err
	}
	declID, err := ix.store.Add(facts.GlobalConstDeclaration, facts.ContainerDeclarationKey{
		Name: qualifiedName(g.Namespace, g.Name),
	})
	if err != nil {
		return err
	}
	key := facts.GlobalConstDefinitionKey{
		Declaration: facts.NewRef(declID),
		Type:        resolveHint(ix.types, g.Type),
		Value:       ix.literal(u.path, g.Value),
	}
	if _, err := ix.store.Add(facts.GlobalConstDefinition, key); err != nil {
		return err
	}
	if err := ix.emitLocations(declID, u.path, g.NameSpan, g.DocSpan, g.Span); err != nil {
		return err
	}
	u.addDecl(declID)
	return nil
}
