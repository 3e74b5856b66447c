package facts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Store is the content-addressed interning table for facts. Adding a key that
// was already interned under the same predicate returns the existing identity
// and leaves the emission list untouched; a new key is assigned the next
// identity and appended. The store is the single owner of all graph state:
// it is passed by reference through every builder and never copied.
type Store struct {
	mu     sync.RWMutex
	nextID ID
	facts  []Fact

	byKey  map[Predicate]map[string]ID // canonical key bytes -> id
	byID   map[ID]int                  // id -> index into facts
	byPred map[Predicate][]int         // predicate -> indices into facts

	// Graph provides reference traversal over interned facts
	graph *Graph
}

// NewStore creates an empty fact store. Identities start at 1.
func NewStore() *Store {
	return &Store{
		nextID: 1,
		byKey:  make(map[Predicate]map[string]ID),
		byID:   make(map[ID]int),
		byPred: make(map[Predicate][]int),
	}
}

// Add interns a fact. The key is canonicalized by JSON encoding; for a
// canonically equal key under the same predicate the previously assigned
// identity is returned and nothing is emitted.
func (s *Store) Add(p Predicate, key any) (ID, error) {
	raw, err := json.Marshal(key)
	if err != nil {
		return 0, fmt.Errorf("encoding %s key: %w", p, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.byKey[p]
	if table == nil {
		table = make(map[string]ID)
		s.byKey[p] = table
	}
	if id, ok := table[string(raw)]; ok {
		return id, nil
	}

	id := s.nextID
	s.nextID++
	idx := len(s.facts)
	s.facts = append(s.facts, Fact{ID: id, Predicate: p, Key: raw})
	table[string(raw)] = id
	s.byID[id] = idx
	s.byPred[p] = append(s.byPred[p], idx)
	return id, nil
}

// Count returns the number of interned facts.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

// All returns all facts in emission order.
func (s *Store) All() []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Fact, len(s.facts))
	copy(result, s.facts)
	return result
}

// ByPredicate returns all facts of the given predicate in emission order.
func (s *Store) ByPredicate(p Predicate) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	indices := s.byPred[p]
	result := make([]Fact, 0, len(indices))
	for _, idx := range indices {
		result = append(result, s.facts[idx])
	}
	return result
}

// FactByID returns the fact with the given identity.
func (s *Store) FactByID(id ID) (Fact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return Fact{}, false
	}
	return s.facts[idx], true
}

// FindDeclarations returns every declaration fact whose base name equals
// name, across all declaration predicates. Qualified-name keys match on
// their base name; member keys match on the member name.
func (s *Store) FindDeclarations(name string) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []Fact
	for _, f := range s.facts {
		if !f.Predicate.IsDeclaration() {
			continue
		}
		if keyName(f.Key) == name {
			result = append(result, f)
		}
	}
	return result
}

// keyName extracts the base name out of a declaration key, which is either
// a plain string ("name": "f") or a qualified-name object ("name": {"name": ...}).
func keyName(raw json.RawMessage) string {
	var probe struct {
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Name == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(probe.Name, &s); err == nil {
		return s
	}
	var nested struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(probe.Name, &nested); err == nil {
		return nested.Name
	}
	return ""
}

// Clear removes all facts and resets the identity counter.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = 1
	s.facts = nil
	s.byKey = make(map[Predicate]map[string]ID)
	s.byID = make(map[ID]int)
	s.byPred = make(map[Predicate][]int)
	s.graph = nil
}

// BuildGraph constructs the reference-traversal index from the current
// facts. Call this after a run completes.
func (s *Store) BuildGraph() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = NewGraph(s.facts)
}

// Graph returns the current reference index, or nil if BuildGraph has not
// been called.
func (s *Store) Graph() *Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Batch groups one predicate's facts for the JSON document output.
type Batch struct {
	Predicate Predicate   `json:"predicate"`
	Facts     []batchFact `json:"facts"`
}

type batchFact struct {
	ID  ID              `json:"id"`
	Key json.RawMessage `json:"key"`
}

// Batches returns the whole graph grouped by predicate, in schema order.
// Predicates with no facts are skipped.
func (s *Store) Batches() []Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var batches []Batch
	for _, p := range Predicates() {
		indices := s.byPred[p]
		if len(indices) == 0 {
			continue
		}
		b := Batch{Predicate: p, Facts: make([]batchFact, 0, len(indices))}
		for _, idx := range indices {
			f := s.facts[idx]
			b.Facts = append(b.Facts, batchFact{ID: f.ID, Key: f.Key})
		}
		batches = append(batches, b)
	}
	return batches
}

// WriteJSON writes the graph as one JSON document grouped by predicate.
func (s *Store) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Batches()); err != nil {
		return fmt.Errorf("encoding fact batches: %w", err)
	}
	return nil
}

// WriteJSONL writes all facts as a flat JSONL stream in emission order.
func (s *Store) WriteJSONL(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enc := json.NewEncoder(w)
	for _, f := range s.facts {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encoding fact %d: %w", f.ID, err)
		}
	}
	return nil
}

// WriteJSONFile writes the grouped JSON document to the given path.
func (s *Store) WriteJSONFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := s.WriteJSON(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteJSONLFile writes the flat JSONL stream to the given path.
func (s *Store) WriteJSONLFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := s.WriteJSONL(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadJSONL reads facts from a JSONL stream and re-interns them, preserving
// their identities. Used to reload a previously written graph.
func (s *Store) ReadJSONL(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	// Allow large lines
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var f Fact
		if err := json.Unmarshal(line, &f); err != nil {
			return fmt.Errorf("decoding fact: %w", err)
		}
		s.restore(f)
	}
	return scanner.Err()
}

// ReadJSONLFile reads facts from a JSONL file and re-interns them.
func (s *Store) ReadJSONLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return s.ReadJSONL(f)
}

func (s *Store) restore(f Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.byKey[f.Predicate]
	if table == nil {
		table = make(map[string]ID)
		s.byKey[f.Predicate] = table
	}
	if _, ok := table[string(f.Key)]; ok {
		return
	}
	idx := len(s.facts)
	s.facts = append(s.facts, f)
	table[string(f.Key)] = f.ID
	s.byID[f.ID] = idx
	s.byPred[f.Predicate] = append(s.byPred[f.Predicate], idx)
	if f.ID >= s.nextID {
		s.nextID = f.ID + 1
	}
}
