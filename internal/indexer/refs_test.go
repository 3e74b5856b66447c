package indexer

import (
	"testing"

	"github.com/symgraphhq/symgraph/internal/decl"
	"github.com/symgraphhq/symgraph/internal/facts"
)

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{"`hello`", "hello"},
		{`42`, "42"},
		{`"`, `"`},
		{``, ``},
		{`"unterminated`, `"unterminated`},
		{`'mismatched"`, `'mismatched"`},
		// Only one layer comes off.
		{`""nested""`, `"nested"`},
		{`"it's"`, "it's"},
	}
	for _, tt := range tests {
		if got := stripQuotes(tt.in); got != tt.want {
			t.Errorf("stripQuotes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripTypeArgs(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Base", "Base"},
		{"Base<T>", "Base"},
		{"Base<T, U>", "Base"},
		{"Map<string, Vec<int>>", "Map"},
		{"  Spaced <T>", "Spaced"},
	}
	for _, tt := range tests {
		if got := stripTypeArgs(tt.in); got != tt.want {
			t.Errorf("stripTypeArgs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNamespaceQName_Nesting(t *testing.T) {
	if got := namespaceQName(""); got != nil {
		t.Errorf("global namespace should produce nil, got %+v", got)
	}
	if got := namespaceQName("\\"); got != nil {
		t.Errorf("bare separator should produce nil, got %+v", got)
	}

	qn := namespaceQName("Outer\\Inner")
	if qn == nil {
		t.Fatal("namespaceQName(Outer\\Inner) = nil")
	}
	// Innermost component first, parent chain walking outward.
	if qn.Name != "Inner" {
		t.Errorf("innermost = %q, want Inner", qn.Name)
	}
	if qn.Parent == nil || qn.Parent.Name != "Outer" {
		t.Fatalf("parent = %+v, want Outer", qn.Parent)
	}
	if qn.Parent.Parent != nil {
		t.Errorf("Outer should have no parent, got %+v", qn.Parent.Parent)
	}
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		in       string
		wantNS   string
		wantBase string
	}{
		{"Foo", "", "Foo"},
		{"\\Foo", "", "Foo"},
		{"A\\B", "A", "B"},
		{"A\\B\\C", "A\\B", "C"},
		{"\\A\\B\\C", "A\\B", "C"},
	}
	for _, tt := range tests {
		ns, base := splitQualified(tt.in)
		if ns != tt.wantNS || base != tt.wantBase {
			t.Errorf("splitQualified(%q) = (%q, %q), want (%q, %q)",
				tt.in, ns, base, tt.wantNS, tt.wantBase)
		}
	}
}

func TestQualifiedName(t *testing.T) {
	qn := qualifiedName("", "Foo")
	if qn.Name != "Foo" || qn.Namespace != nil {
		t.Errorf("global qualifiedName = %+v, want bare Foo", qn)
	}

	qn = qualifiedName("NS", "Foo")
	if qn.Namespace == nil || qn.Namespace.Name != "NS" {
		t.Errorf("qualifiedName(NS, Foo).Namespace = %+v, want NS", qn.Namespace)
	}
}

func TestResolveHint(t *testing.T) {
	resolver := decl.ResolverFunc(func(h decl.TypeHint) (string, bool) {
		if h == "known" {
			return "resolved", true
		}
		return "", false
	})

	if got := resolveHint(resolver, nil); got != nil {
		t.Errorf("nil hint should resolve to nil, got %q", *got)
	}
	known := decl.TypeHint("known")
	if got := resolveHint(resolver, &known); got == nil || *got != "resolved" {
		t.Errorf("resolveHint(known) = %v, want resolved", got)
	}
	unknown := decl.TypeHint("unknown")
	if got := resolveHint(resolver, &unknown); got != nil {
		t.Errorf("unresolvable hint should yield nil, got %q", *got)
	}
}

func TestResolveBase_FallsBackToRawHint(t *testing.T) {
	resolver := decl.ResolverFunc(func(h decl.TypeHint) (string, bool) {
		return "", false
	})
	if got := resolveBase(resolver, "int"); got != "int" {
		t.Errorf("resolveBase fallback = %q, want int", got)
	}
}

func TestAttributeSpecs_SlicesArgLiterals(t *testing.T) {
	src := decl.FileSources{
		"/repo/a.ts": []byte(`@Route("users", 42)`),
	}
	attrs := []decl.Attribute{
		{Name: "Route", Args: []decl.Span{
			{Start: 7, Length: 7},  // "users"
			{Start: 16, Length: 2}, // 42
		}},
		{Name: "NoSource", Args: []decl.Span{{Start: 0, Length: 5}}},
	}

	specs := attributeSpecs(src, "/repo/a.ts", attrs)
	if len(specs) != 2 {
		t.Fatalf("got %d specs, want 2", len(specs))
	}
	if specs[0].Name != "Route" || len(specs[0].Args) != 2 {
		t.Fatalf("spec[0] = %+v", specs[0])
	}
	if specs[0].Args[0] != "users" {
		t.Errorf("arg[0] = %q, want users (quotes stripped)", specs[0].Args[0])
	}
	if specs[0].Args[1] != "42" {
		t.Errorf("arg[1] = %q, want 42", specs[0].Args[1])
	}

	// Out-of-range span in a known file yields an empty literal.
	missing := attributeSpecs(src, "/repo/missing.ts", attrs[:1])
	if missing[0].Args[0] != "" {
		t.Errorf("missing source arg = %q, want empty", missing[0].Args[0])
	}
}

func TestSignatureSpec(t *testing.T) {
	resolver := decl.ResolverFunc(func(h decl.TypeHint) (string, bool) {
		return string(h), true
	})
	str := decl.TypeHint("string")
	ret := decl.TypeHint("void")
	sig := signatureSpec(resolver, decl.Signature{
		Params: []decl.Param{
			{Name: "a", Type: &str},
			{Name: "rest", IsVariadic: true},
		},
		Returns: &ret,
	})

	if len(sig.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(sig.Params))
	}
	if sig.Params[0].Type == nil || *sig.Params[0].Type != "string" {
		t.Errorf("param[0].Type = %v, want string", sig.Params[0].Type)
	}
	if sig.Params[1].Type != nil {
		t.Errorf("untyped param should have no type, got %q", *sig.Params[1].Type)
	}
	if !sig.Params[1].IsVariadic {
		t.Error("variadic flag lost")
	}
	if sig.Returns == nil || *sig.Returns != "void" {
		t.Errorf("returns = %v, want void", sig.Returns)
	}
}

func TestRefs(t *testing.T) {
	got := refs([]facts.ID{3, 1, 2})
	if len(got) != 3 || got[0].ID != 3 || got[1].ID != 1 || got[2].ID != 2 {
		t.Errorf("refs preserved neither length nor order: %v", got)
	}
	if got := refs(nil); len(got) != 0 {
		t.Errorf("refs(nil) = %v, want empty", got)
	}
}
