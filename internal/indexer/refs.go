// Package indexer walks typed declaration trees and emits the deduplicated
// fact graph describing them. Builders thread every fact through the store
// so each semantically distinct fact is interned exactly once per run.
package indexer

import (
	"strings"

	"github.com/symgraphhq/symgraph/internal/decl"
	"github.com/symgraphhq/symgraph/internal/facts"
)

// namespaceQName nests a backslash-separated namespace path innermost-first.
// Returns nil for the global namespace.
func namespaceQName(ns string) *facts.NamespaceQName {
	ns = strings.Trim(ns, "\\")
	if ns == "" {
		return nil
	}
	parts := strings.Split(ns, "\\")
	var qn *facts.NamespaceQName
	for _, part := range parts {
		qn = &facts.NamespaceQName{Name: part, Parent: qn}
	}
	return qn
}

// qualifiedName builds the QName record for a name declared in ns.
func qualifiedName(ns, name string) facts.QName {
	return facts.QName{Name: name, Namespace: namespaceQName(ns)}
}

// splitQualified splits a possibly fully qualified name ("Foo\Bar\Baz")
// into its namespace and base name.
func splitQualified(name string) (ns, base string) {
	name = strings.TrimPrefix(name, "\\")
	idx := strings.LastIndex(name, "\\")
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

// stripTypeArgs removes type-argument syntax from a parent name:
// "Base<T, U>" becomes "Base".
func stripTypeArgs(name string) string {
	if idx := strings.IndexByte(name, '<'); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}

// stripQuotes removes exactly one layer of a matching enclosing quote pair.
// Unquoted slices pass through unchanged.
func stripQuotes(literal string) string {
	if len(literal) < 2 {
		return literal
	}
	first, last := literal[0], literal[len(literal)-1]
	if first == last && (first == '"' || first == '\'' || first == '`') {
		return literal[1 : len(literal)-1]
	}
	return literal
}

// spanSpec converts a decl span into its key representation.
func spanSpec(s decl.Span) facts.SpanSpec {
	return facts.SpanSpec{Start: s.Start, Length: s.Length}
}

// resolveHint resolves an optional type hint. A nil hint or a failed
// resolution yields nil, and the corresponding key field is omitted.
func resolveHint(types decl.TypeResolver, hint *decl.TypeHint) *string {
	if hint == nil {
		return nil
	}
	resolved, ok := types.Resolve(*hint)
	if !ok {
		return nil
	}
	return &resolved
}

// resolveBase resolves a required type hint, falling back to the raw hint
// text when the resolver has no answer.
func resolveBase(types decl.TypeResolver, hint decl.TypeHint) string {
	if resolved, ok := types.Resolve(hint); ok {
		return resolved
	}
	return string(hint)
}

// attributeSpecs builds the attribute list for a declaration, slicing each
// argument literal out of the owning file's source. A missing source entry
// yields an empty literal.
func attributeSpecs(src decl.SourceMap, path string, attrs []decl.Attribute) []facts.AttributeSpec {
	specs := make([]facts.AttributeSpec, 0, len(attrs))
	for _, a := range attrs {
		args := make([]string, 0, len(a.Args))
		for _, span := range a.Args {
			text, _ := src.Lookup(path, span)
			args = append(args, stripQuotes(text))
		}
		specs = append(specs, facts.AttributeSpec{Name: a.Name, Args: args})
	}
	return specs
}

// typeParamSpecs builds type-parameter descriptions.
func typeParamSpecs(types decl.TypeResolver, tps []decl.TypeParam) []facts.TypeParamSpec {
	specs := make([]facts.TypeParamSpec, 0, len(tps))
	for _, tp := range tps {
		constraints := make([]facts.ConstraintSpec, 0, len(tp.Constraints))
		for _, c := range tp.Constraints {
			constraints = append(constraints, facts.ConstraintSpec{
				Kind: c.Kind.String(),
				Type: resolveBase(types, c.Type),
			})
		}
		specs = append(specs, facts.TypeParamSpec{
			Name:        tp.Name,
			Variance:    tp.Variance.String(),
			Constraints: constraints,
		})
	}
	return specs
}

// signatureSpec builds a function or method signature description.
func signatureSpec(types decl.TypeResolver, sig decl.Signature) facts.SignatureSpec {
	params := make([]facts.ParamSpec, 0, len(sig.Params))
	for _, p := range sig.Params {
		params = append(params, facts.ParamSpec{
			Name:       p.Name,
			Type:       resolveHint(types, p.Type),
			IsInout:    p.IsInout,
			IsVariadic: p.IsVariadic,
		})
	}
	return facts.SignatureSpec{
		Params:  params,
		Returns: resolveHint(types, sig.Returns),
	}
}

// refs converts a list of identities into key references.
func refs(ids []facts.ID) []facts.Ref {
	out := make([]facts.Ref, 0, len(ids))
	for _, id := range ids {
		out = append(out, facts.NewRef(id))
	}
	return out
}
