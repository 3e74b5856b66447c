package facts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// --- helpers ---

func mustAdd(t *testing.T, s *Store, p Predicate, key any) ID {
	t.Helper()
	id, err := s.Add(p, key)
	if err != nil {
		t.Fatalf("Add(%s): %v", p, err)
	}
	return id
}

func classDecl(name string) ContainerDeclarationKey {
	return ContainerDeclarationKey{Name: QName{Name: name}}
}

// --- interning ---

func TestAdd_AssignsSequentialIDs(t *testing.T) {
	s := NewStore()
	a := mustAdd(t, s, ClassDeclaration, classDecl("A"))
	b := mustAdd(t, s, ClassDeclaration, classDecl("B"))
	c := mustAdd(t, s, InterfaceDeclaration, classDecl("I"))

	if a != 1 || b != 2 || c != 3 {
		t.Errorf("ids = %d, %d, %d, want 1, 2, 3", a, b, c)
	}
	if s.Count() != 3 {
		t.Errorf("Count() = %d, want 3", s.Count())
	}
}

func TestAdd_IdenticalKeyReturnsSameID(t *testing.T) {
	s := NewStore()
	a := mustAdd(t, s, ClassDeclaration, classDecl("Foo"))
	b := mustAdd(t, s, ClassDeclaration, classDecl("Foo"))

	if a != b {
		t.Errorf("re-adding identical key: got id %d, want %d", b, a)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1 (no duplicate fact)", s.Count())
	}
}

func TestAdd_SameKeyDifferentPredicateIsDistinct(t *testing.T) {
	s := NewStore()
	a := mustAdd(t, s, ClassDeclaration, classDecl("Foo"))
	b := mustAdd(t, s, InterfaceDeclaration, classDecl("Foo"))

	if a == b {
		t.Error("same key under different predicates should have distinct ids")
	}
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
}

func TestAdd_NestedNamespaceKeyInterns(t *testing.T) {
	s := NewStore()
	key := ContainerDeclarationKey{Name: QName{
		Name: "Bar",
		Namespace: &NamespaceQName{
			Name:   "Inner",
			Parent: &NamespaceQName{Name: "Outer"},
		},
	}}
	a := mustAdd(t, s, ClassDeclaration, key)
	b := mustAdd(t, s, ClassDeclaration, key)
	if a != b {
		t.Errorf("nested key re-added: got %d, want %d", b, a)
	}
}

func TestAdd_IDsMonotonicAcrossPredicates(t *testing.T) {
	s := NewStore()
	var prev ID
	for i, p := range []Predicate{
		NamespaceDeclaration, ClassDeclaration, FunctionDeclaration,
		EnumDeclaration, GlobalConstDeclaration,
	} {
		id := mustAdd(t, s, p, map[string]any{"name": fmt.Sprintf("n%d", i)})
		if id <= prev {
			t.Fatalf("id %d for %s not greater than previous %d", id, p, prev)
		}
		prev = id
	}
}

// --- lookup ---

func TestByPredicate(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, ClassDeclaration, classDecl("A"))
	mustAdd(t, s, ClassDeclaration, classDecl("B"))
	mustAdd(t, s, FunctionDeclaration, ContainerDeclarationKey{Name: QName{Name: "f"}})

	if got := s.ByPredicate(ClassDeclaration); len(got) != 2 {
		t.Errorf("ByPredicate(ClassDeclaration) = %d facts, want 2", len(got))
	}
	if got := s.ByPredicate(TraitDeclaration); len(got) != 0 {
		t.Errorf("ByPredicate(TraitDeclaration) = %d facts, want 0", len(got))
	}
}

func TestFactByID(t *testing.T) {
	s := NewStore()
	id := mustAdd(t, s, ClassDeclaration, classDecl("A"))

	f, ok := s.FactByID(id)
	if !ok {
		t.Fatal("FactByID returned not found for a known id")
	}
	if f.Predicate != ClassDeclaration {
		t.Errorf("predicate = %s, want ClassDeclaration", f.Predicate)
	}
	if _, ok := s.FactByID(999); ok {
		t.Error("FactByID(999) should not be found")
	}
}

func TestFindDeclarations(t *testing.T) {
	s := NewStore()
	clsID := mustAdd(t, s, ClassDeclaration, classDecl("Widget"))
	mustAdd(t, s, MethodDeclaration, MemberDeclarationKey{
		Name: "render", Container: NewRef(clsID), ContainerKind: "class",
	})
	mustAdd(t, s, FunctionDeclaration, ContainerDeclarationKey{Name: QName{Name: "render"}})

	if got := s.FindDeclarations("Widget"); len(got) != 1 {
		t.Errorf("FindDeclarations(Widget) = %d, want 1", len(got))
	}
	// Flat member name and nested qname name both match.
	if got := s.FindDeclarations("render"); len(got) != 2 {
		t.Errorf("FindDeclarations(render) = %d, want 2", len(got))
	}
	if got := s.FindDeclarations("nothing"); len(got) != 0 {
		t.Errorf("FindDeclarations(nothing) = %d, want 0", len(got))
	}
}

// --- grouping and serialization ---

func TestBatches_GroupsByPredicate(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, ClassDeclaration, classDecl("A"))
	mustAdd(t, s, FunctionDeclaration, ContainerDeclarationKey{Name: QName{Name: "f"}})
	mustAdd(t, s, ClassDeclaration, classDecl("B"))

	batches := s.Batches()
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	// Batches come out in predicate order.
	if batches[0].Predicate.String() != "ClassDeclaration" {
		t.Errorf("first batch = %s, want ClassDeclaration", batches[0].Predicate)
	}
	if len(batches[0].Facts) != 2 {
		t.Errorf("ClassDeclaration batch has %d facts, want 2", len(batches[0].Facts))
	}
	if batches[1].Predicate.String() != "FunctionDeclaration" || len(batches[1].Facts) != 1 {
		t.Errorf("second batch = %s (%d facts), want FunctionDeclaration (1)",
			batches[1].Predicate, len(batches[1].Facts))
	}
}

func TestWriteJSON_FactShape(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, ClassDeclaration, classDecl("A"))

	var buf bytes.Buffer
	if err := s.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc []struct {
		Predicate string `json:"predicate"`
		Facts     []struct {
			ID  int64           `json:"id"`
			Key json.RawMessage `json:"key"`
		} `json:"facts"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc) != 1 || doc[0].Predicate != "ClassDeclaration" {
		t.Fatalf("unexpected document shape: %s", buf.String())
	}
	if doc[0].Facts[0].ID != 1 {
		t.Errorf("fact id = %d, want 1", doc[0].Facts[0].ID)
	}
	if !strings.Contains(string(doc[0].Facts[0].Key), `"name":"A"`) {
		t.Errorf("fact key missing name: %s", doc[0].Facts[0].Key)
	}
}

func TestJSONL_RoundTrip(t *testing.T) {
	original := NewStore()
	clsID := mustAdd(t, original, ClassDeclaration, classDecl("A"))
	mustAdd(t, original, MethodDeclaration, MemberDeclarationKey{
		Name: "f", Container: NewRef(clsID), ContainerKind: "class",
	})

	var buf bytes.Buffer
	if err := original.WriteJSONL(&buf); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}

	restored := NewStore()
	if err := restored.ReadJSONL(&buf); err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}

	if restored.Count() != original.Count() {
		t.Fatalf("count mismatch: got %d, want %d", restored.Count(), original.Count())
	}
	for i, o := range original.All() {
		r := restored.All()[i]
		if o.ID != r.ID || o.Predicate != r.Predicate {
			t.Errorf("fact[%d]: got id=%d pred=%s, want id=%d pred=%s",
				i, r.ID, r.Predicate, o.ID, o.Predicate)
		}
		if !bytes.Equal(o.Key, r.Key) {
			t.Errorf("fact[%d] key mismatch: %s vs %s", i, o.Key, r.Key)
		}
	}

	// New ids after restore continue past the loaded ones.
	id := mustAdd(t, restored, ClassDeclaration, classDecl("B"))
	if id != 3 {
		t.Errorf("post-restore id = %d, want 3", id)
	}
}

func TestJSONL_SkipsEmptyLines(t *testing.T) {
	s := NewStore()
	input := `{"id":1,"predicate":"ClassDeclaration","key":{"name":{"name":"A"}}}

{"id":2,"predicate":"FunctionDeclaration","key":{"name":{"name":"f"}}}

`
	if err := s.ReadJSONL(strings.NewReader(input)); err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if s.Count() != 2 {
		t.Errorf("count = %d, want 2 (empty lines should be skipped)", s.Count())
	}
}

func TestClear_ResetsIDCounter(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, ClassDeclaration, classDecl("A"))
	mustAdd(t, s, ClassDeclaration, classDecl("B"))

	s.Clear()

	if s.Count() != 0 {
		t.Errorf("post-clear Count() = %d, want 0", s.Count())
	}
	if got := s.ByPredicate(ClassDeclaration); len(got) != 0 {
		t.Errorf("post-clear ByPredicate = %d, want 0", len(got))
	}
	id := mustAdd(t, s, ClassDeclaration, classDecl("C"))
	if id != 1 {
		t.Errorf("post-clear id = %d, want 1", id)
	}
}

func TestConcurrentAdds(t *testing.T) {
	s := NewStore()
	const n = 100
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Add(ClassDeclaration, classDecl(fmt.Sprintf("C%d", i)))
		}(i)
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.All()
			_ = s.Count()
			_ = s.ByPredicate(ClassDeclaration)
		}()
	}
	wg.Wait()

	if got := s.Count(); got != n {
		t.Errorf("after concurrent adds: Count() = %d, want %d", got, n)
	}
	seen := make(map[ID]bool)
	for _, f := range s.All() {
		if seen[f.ID] {
			t.Fatalf("duplicate id %d", f.ID)
		}
		seen[f.ID] = true
	}
}
