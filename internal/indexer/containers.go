package indexer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/symgraphhq/symgraph/internal/decl"
	"github.com/symgraphhq/symgraph/internal/facts"
)

func declPredicate(kind decl.ContainerKind) facts.Predicate {
	switch kind {
	case decl.KindInterface:
		return facts.InterfaceDeclaration
	case decl.KindTrait:
		return facts.TraitDeclaration
	case decl.KindEnum:
		return facts.EnumDeclaration
	default:
		return facts.ClassDeclaration
	}
}

// indexContainer emits the declaration, member, parent, and definition
// facts for one class, interface, or trait.
func (ix *Indexer) indexContainer(c *decl.Container, u *unitState) error {
	if err := ix.namespaceFact(c.Namespace); err != nil {
		return err
	}

	declID, err := ix.store.Add(declPredicate(c.Kind), facts.ContainerDeclarationKey{
		Name: qualifiedName(c.Namespace, c.Name),
	})
	if err != nil {
		return err
	}

	members, methodNames, err := ix.memberFacts(declID, c, u)
	if err != nil {
		return err
	}

	// Require clauses split by their declared kind tag. Each referenced name
	// gets a lazy declaration so the graph can point at containers this unit
	// never defines.
	var requireExtends, requireImplements []facts.ID
	for _, req := range c.Requires {
		switch req.Kind {
		case decl.RequireImplements:
			id, err := ix.parentDecl(facts.InterfaceDeclaration, req.Name, u)
			if err != nil {
				return err
			}
			requireImplements = append(requireImplements, id)
		default:
			id, err := ix.parentDecl(facts.ClassDeclaration, req.Name, u)
			if err != nil {
				return err
			}
			requireExtends = append(requireExtends, id)
		}
	}

	attrs := attributeSpecs(ix.src, u.path, c.Attributes)
	typeParams := typeParamSpecs(ix.types, c.TypeParams)

	switch c.Kind {
	case decl.KindInterface:
		extends, err := ix.parentDecls(facts.InterfaceDeclaration, c.Extends, u)
		if err != nil {
			return err
		}
		key := facts.InterfaceDefinitionKey{
			Declaration:    facts.NewRef(declID),
			Members:        refs(members),
			Extends:        refs(extends),
			RequireExtends: refs(requireExtends),
			Attributes:     attrs,
			TypeParams:     typeParams,
		}
		if _, err := ix.store.Add(facts.InterfaceDefinition, key); err != nil {
			return err
		}

	case decl.KindTrait:
		implements, err := ix.parentDecls(facts.InterfaceDeclaration, c.Implements, u)
		if err != nil {
			return err
		}
		uses, err := ix.parentDecls(facts.TraitDeclaration, c.Uses, u)
		if err != nil {
			return err
		}
		key := facts.TraitDefinitionKey{
			Declaration:       facts.NewRef(declID),
			Members:           refs(members),
			Implements:        refs(implements),
			Uses:              refs(uses),
			RequireExtends:    refs(requireExtends),
			RequireImplements: refs(requireImplements),
			Attributes:        attrs,
			TypeParams:        typeParams,
		}
		if _, err := ix.store.Add(facts.TraitDefinition, key); err != nil {
			return err
		}

	case decl.KindClass:
		implements, err := ix.parentDecls(facts.InterfaceDeclaration, c.Implements, u)
		if err != nil {
			return err
		}
		uses, err := ix.parentDecls(facts.TraitDeclaration, c.Uses, u)
		if err != nil {
			return err
		}
		extends, err := ix.classExtends(c, u)
		if err != nil {
			return err
		}
		key := facts.ClassDefinitionKey{
			Declaration:       facts.NewRef(declID),
			IsAbstract:        c.IsAbstract,
			IsFinal:           c.IsFinal,
			Members:           refs(members),
			Extends:           extends,
			Implements:        refs(implements),
			Uses:              refs(uses),
			RequireExtends:    refs(requireExtends),
			RequireImplements: refs(requireImplements),
			Attributes:        attrs,
			TypeParams:        typeParams,
		}
		if _, err := ix.store.Add(facts.ClassDefinition, key); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unexpected container kind %s", c.Kind)
	}

	if err := ix.emitLocations(declID, u.path, c.NameSpan, c.DocSpan, c.Span); err != nil {
		return err
	}
	u.addDecl(declID)

	ix.recordContainer(c.QualifiedName(), &containerInfo{
		declID:  declID,
		kind:    c.Kind,
		methods: methodNames,
		parents: parentNames(c),
	})
	return nil
}

// memberFacts builds declaration/definition pairs for every member declared
// directly on the container, in declared order. Inherited and used members
// are not re-emitted here.
func (ix *Indexer) memberFacts(declID facts.ID, c *decl.Container, u *unitState) (members []facts.ID, methodNames []string, err error) {
	for i := range c.Properties {
		id, err := ix.propertyFacts(declID, c.Kind, u.path, &c.Properties[i], u)
		if err != nil {
			return nil, nil, err
		}
		members = append(members, id)
	}
	for i := range c.Methods {
		id, err := ix.methodFacts(declID, c.Kind, u.path, &c.Methods[i], u)
		if err != nil {
			return nil, nil, err
		}
		members = append(members, id)
		methodNames = append(methodNames, c.Methods[i].Name)
	}
	for i := range c.ClassConsts {
		id, err := ix.classConstFacts(declID, c.Kind, u.path, &c.ClassConsts[i], u)
		if err != nil {
			return nil, nil, err
		}
		members = append(members, id)
	}
	for i := range c.TypeConsts {
		id, err := ix.typeConstFacts(declID, c.Kind, u.path, &c.TypeConsts[i], u)
		if err != nil {
			return nil, nil, err
		}
		members = append(members, id)
	}
	return members, methodNames, nil
}

// classExtends applies the single-inheritance rule baked into the schema:
// zero parents and the field is absent, exactly one and it is a single
// identity reference, more than one and the edge is dropped with a warning
// while the rest of the definition is still emitted.
func (ix *Indexer) classExtends(c *decl.Container, u *unitState) (*facts.Ref, error) {
	switch len(c.Extends) {
	case 0:
		return nil, nil
	case 1:
		id, err := ix.parentDecl(facts.ClassDeclaration, c.Extends[0], u)
		if err != nil {
			return nil, err
		}
		ref := facts.NewRef(id)
		return &ref, nil
	default:
		ix.log.Warn("class declares multiple parents, omitting extends edge",
			zap.String("class", c.QualifiedName()),
			zap.Int("parents", len(c.Extends)))
		return nil, nil
	}
}

// parentNames lists the stripped, qualified names of every container this
// one inherits from, for override-edge computation.
func parentNames(c *decl.Container) []string {
	names := make([]string, 0, len(c.Extends)+len(c.Implements)+len(c.Uses))
	for _, p := range c.Extends {
		names = append(names, stripTypeArgs(p.Name))
	}
	for _, p := range c.Implements {
		names = append(names, stripTypeArgs(p.Name))
	}
	for _, p := range c.Uses {
		names = append(names, stripTypeArgs(p.Name))
	}
	return names
}
