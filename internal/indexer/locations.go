package indexer

import (
	"github.com/symgraphhq/symgraph/internal/decl"
	"github.com/symgraphhq/symgraph/internal/facts"
)

// emitLocations binds a declaration identity to its source file: the name
// span as the location, the doc-comment span when present, and the full
// definition span. All three facts share one shape and differ only by
// predicate.
func (ix *Indexer) emitLocations(declID facts.ID, path string, nameSpan decl.Span, docSpan *decl.Span, fullSpan decl.Span) error {
	loc := facts.DeclarationLocationKey{
		Declaration: facts.NewRef(declID),
		File:        path,
		Span:        spanSpec(nameSpan),
	}
	if _, err := ix.store.Add(facts.DeclarationLocation, loc); err != nil {
		return err
	}
	if docSpan != nil {
		comment := facts.DeclarationLocationKey{
			Declaration: facts.NewRef(declID),
			File:        path,
			Span:        spanSpec(*docSpan),
		}
		if _, err := ix.store.Add(facts.DeclarationComment, comment); err != nil {
			return err
		}
	}
	span := facts.DeclarationLocationKey{
		Declaration: facts.NewRef(declID),
		File:        path,
		Span:        spanSpec(fullSpan),
	}
	if _, err := ix.store.Add(facts.DeclarationSpan, span); err != nil {
		return err
	}
	return nil
}

// emitFileAggregates builds the whole-file facts once every per-declaration
// fact for the unit exists: the line table, the cross-reference table, and
// the declaration list.
func (ix *Indexer) emitFileAggregates(u *unitState) error {
	if src, ok := ix.src.File(u.path); ok {
		if _, err := ix.store.Add(facts.FileLines, fileLinesKey(u.path, src)); err != nil {
			return err
		}
	}

	xrefs := make([]facts.XRefSpec, 0, len(u.xrefOrder))
	for _, target := range u.xrefOrder {
		xrefs = append(xrefs, facts.XRefSpec{
			Target: facts.NewRef(target),
			Spans:  u.xrefs[target],
		})
	}
	if _, err := ix.store.Add(facts.FileXRefs, facts.FileXRefsKey{
		File:  u.path,
		XRefs: xrefs,
	}); err != nil {
		return err
	}

	if _, err := ix.store.Add(facts.FileDeclarations, facts.FileDeclarationsKey{
		File:         u.path,
		Declarations: refs(u.decls),
	}); err != nil {
		return err
	}
	return nil
}

// fileLinesKey converts raw source bytes into the line table: per-line byte
// lengths (terminator included), whether the file ends in a newline, and
// whether any byte is a tab or non-ASCII. The flags let a consumer map
// line/column positions back to byte offsets without re-reading the file.
func fileLinesKey(path string, src []byte) facts.FileLinesKey {
	lengths := []uint32{}
	hasUnicodeOrTabs := false
	lineStart := 0
	for i, b := range src {
		if b == '\t' || b >= 0x80 {
			hasUnicodeOrTabs = true
		}
		if b == '\n' {
			lengths = append(lengths, uint32(i-lineStart+1))
			lineStart = i + 1
		}
	}
	endsInNewline := len(src) > 0 && src[len(src)-1] == '\n'
	if lineStart < len(src) {
		lengths = append(lengths, uint32(len(src)-lineStart))
	}
	return facts.FileLinesKey{
		File:             path,
		Lengths:          lengths,
		EndsInNewline:    endsInNewline,
		HasUnicodeOrTabs: hasUnicodeOrTabs,
	}
}
