package decl

// TypeResolver turns a type hint into a canonical type description.
// The second result is false when the hint cannot be resolved; callers omit
// the corresponding output field rather than failing.
type TypeResolver interface {
	Resolve(hint TypeHint) (string, bool)
}

// SourceMap provides read access to the raw text of the files under
// extraction. Lookup slices a byte span out of a file; File returns the
// whole content. Both report false for unknown paths or out-of-range spans.
type SourceMap interface {
	Lookup(path string, span Span) (string, bool)
	File(path string) ([]byte, bool)
}

// FileSources is a SourceMap backed by an in-memory map of absolute file
// path to content.
type FileSources map[string][]byte

func (fs FileSources) Lookup(path string, span Span) (string, bool) {
	src, ok := fs[path]
	if !ok {
		return "", false
	}
	end := uint64(span.Start) + uint64(span.Length)
	if end > uint64(len(src)) {
		return "", false
	}
	return string(src[span.Start:end]), true
}

func (fs FileSources) File(path string) ([]byte, bool) {
	src, ok := fs[path]
	return src, ok
}

// ResolverFunc adapts a function to the TypeResolver interface.
type ResolverFunc func(hint TypeHint) (string, bool)

func (f ResolverFunc) Resolve(hint TypeHint) (string, bool) {
	return f(hint)
}
