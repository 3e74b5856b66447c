package facts

import "fmt"

// Predicate is the kind/schema tag of a fact. The set is closed: every fact
// in the graph carries exactly one of these, and downstream consumers switch
// exhaustively over them.
type Predicate int

const (
	// Declarations: minimal identity-establishing records.
	NamespaceDeclaration Predicate = iota
	ClassDeclaration
	InterfaceDeclaration
	TraitDeclaration
	EnumDeclaration
	FunctionDeclaration
	TypedefDeclaration
	GlobalConstDeclaration
	PropertyDeclaration
	ClassConstDeclaration
	TypeConstDeclaration
	MethodDeclaration

	// Definitions: full-detail records referencing a declaration.
	ClassDefinition
	InterfaceDefinition
	TraitDefinition
	EnumDefinition
	Enumerator
	FunctionDefinition
	TypedefDefinition
	GlobalConstDefinition
	PropertyDefinition
	ClassConstDefinition
	TypeConstDefinition
	MethodDefinition

	// Edges.
	MethodOverrides
	MethodOccurrence

	// Locations and per-file aggregates.
	DeclarationLocation
	DeclarationComment
	DeclarationSpan
	FileLines
	FileXRefs
	FileDeclarations

	numPredicates
)

var predicateNames = [numPredicates]string{
	NamespaceDeclaration:   "NamespaceDeclaration",
	ClassDeclaration:       "ClassDeclaration",
	InterfaceDeclaration:   "InterfaceDeclaration",
	TraitDeclaration:       "TraitDeclaration",
	EnumDeclaration:        "EnumDeclaration",
	FunctionDeclaration:    "FunctionDeclaration",
	TypedefDeclaration:     "TypedefDeclaration",
	GlobalConstDeclaration: "GlobalConstDeclaration",
	PropertyDeclaration:    "PropertyDeclaration",
	ClassConstDeclaration:  "ClassConstDeclaration",
	TypeConstDeclaration:   "TypeConstDeclaration",
	MethodDeclaration:      "MethodDeclaration",
	ClassDefinition:        "ClassDefinition",
	InterfaceDefinition:    "InterfaceDefinition",
	TraitDefinition:        "TraitDefinition",
	EnumDefinition:         "EnumDefinition",
	Enumerator:             "Enumerator",
	FunctionDefinition:     "FunctionDefinition",
	TypedefDefinition:      "TypedefDefinition",
	GlobalConstDefinition:  "GlobalConstDefinition",
	PropertyDefinition:     "PropertyDefinition",
	ClassConstDefinition:   "ClassConstDefinition",
	TypeConstDefinition:    "TypeConstDefinition",
	MethodDefinition:       "MethodDefinition",
	MethodOverrides:        "MethodOverrides",
	MethodOccurrence:       "MethodOccurrence",
	DeclarationLocation:    "DeclarationLocation",
	DeclarationComment:     "DeclarationComment",
	DeclarationSpan:        "DeclarationSpan",
	FileLines:              "FileLines",
	FileXRefs:              "FileXRefs",
	FileDeclarations:       "FileDeclarations",
}

func (p Predicate) String() string {
	if p < 0 || p >= numPredicates {
		return fmt.Sprintf("Predicate(%d)", int(p))
	}
	return predicateNames[p]
}

// MarshalText renders the predicate as its schema name in JSON output.
func (p Predicate) MarshalText() ([]byte, error) {
	if p < 0 || p >= numPredicates {
		return nil, fmt.Errorf("unknown predicate %d", int(p))
	}
	return []byte(predicateNames[p]), nil
}

// UnmarshalText parses a predicate schema name.
func (p *Predicate) UnmarshalText(text []byte) error {
	parsed, ok := ParsePredicate(string(text))
	if !ok {
		return fmt.Errorf("unknown predicate %q", text)
	}
	*p = parsed
	return nil
}

// ParsePredicate maps a schema name back to its Predicate.
func ParsePredicate(name string) (Predicate, bool) {
	for i, n := range predicateNames {
		if n == name {
			return Predicate(i), true
		}
	}
	return 0, false
}

// Predicates returns all predicates in schema order.
func Predicates() []Predicate {
	all := make([]Predicate, numPredicates)
	for i := range all {
		all[i] = Predicate(i)
	}
	return all
}

// IsDeclaration reports whether p is one of the declaration predicates.
func (p Predicate) IsDeclaration() bool {
	return p >= NamespaceDeclaration && p <= MethodDeclaration
}

// IsDefinition reports whether p is one of the definition predicates.
func (p Predicate) IsDefinition() bool {
	return p >= ClassDefinition && p <= MethodDefinition
}
