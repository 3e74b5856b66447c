package facts

// Key shapes, one per predicate. Struct field order fixes the canonical JSON
// encoding, so two keys are equal exactly when their marshaled bytes are.
// Fields representing "not applicable" are pointers with omitempty: they are
// absent from the JSON object, never null.

// NamespaceQName is a namespace path, innermost component first.
type NamespaceQName struct {
	Name   string          `json:"name"`
	Parent *NamespaceQName `json:"parent,omitempty"`
}

// QName is a qualified name: base name plus optional namespace.
type QName struct {
	Name      string          `json:"name"`
	Namespace *NamespaceQName `json:"namespace_,omitempty"`
}

// SpanSpec is a byte span in a fact key.
type SpanSpec struct {
	Start  uint32 `json:"start"`
	Length uint32 `json:"length"`
}

// AttributeSpec is one user attribute: name plus argument literals.
type AttributeSpec struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// ConstraintSpec bounds a type parameter.
type ConstraintSpec struct {
	Kind string `json:"kind"`
	Type string `json:"type"`
}

// TypeParamSpec describes one generic parameter.
type TypeParamSpec struct {
	Name        string           `json:"name"`
	Variance    string           `json:"variance"`
	Constraints []ConstraintSpec `json:"constraints"`
}

// ParamSpec is one signature parameter.
type ParamSpec struct {
	Name       string  `json:"name"`
	Type       *string `json:"type,omitempty"`
	IsInout    bool    `json:"isInout,omitempty"`
	IsVariadic bool    `json:"isVariadic,omitempty"`
}

// SignatureSpec is an ordered parameter list plus optional return type.
type SignatureSpec struct {
	Params  []ParamSpec `json:"params"`
	Returns *string     `json:"returns,omitempty"`
}

// NamespaceDeclarationKey identifies a non-global namespace.
type NamespaceDeclarationKey struct {
	Name NamespaceQName `json:"name"`
}

// ContainerDeclarationKey identifies a class, interface, trait, enum,
// function, typedef, or global constant by qualified name.
type ContainerDeclarationKey struct {
	Name QName `json:"name"`
}

// MemberDeclarationKey identifies a member by name within its owning
// container.
type MemberDeclarationKey struct {
	Name          string `json:"name"`
	Container     Ref    `json:"container"`
	ContainerKind string `json:"containerKind"`
}

// ClassDefinitionKey is the full-detail record for a class.
type ClassDefinitionKey struct {
	Declaration       Ref             `json:"declaration"`
	IsAbstract        bool            `json:"isAbstract"`
	IsFinal           bool            `json:"isFinal"`
	Members           []Ref           `json:"members"`
	Extends           *Ref            `json:"extends_,omitempty"`
	Implements        []Ref           `json:"implements_"`
	Uses              []Ref           `json:"uses"`
	RequireExtends    []Ref           `json:"requireExtends"`
	RequireImplements []Ref           `json:"requireImplements"`
	Attributes        []AttributeSpec `json:"attributes"`
	TypeParams        []TypeParamSpec `json:"typeParams"`
}

// InterfaceDefinitionKey is the full-detail record for an interface.
type InterfaceDefinitionKey struct {
	Declaration    Ref             `json:"declaration"`
	Members        []Ref           `json:"members"`
	Extends        []Ref           `json:"extends_"`
	RequireExtends []Ref           `json:"requireExtends"`
	Attributes     []AttributeSpec `json:"attributes"`
	TypeParams     []TypeParamSpec `json:"typeParams"`
}

// TraitDefinitionKey is the full-detail record for a trait.
type TraitDefinitionKey struct {
	Declaration       Ref             `json:"declaration"`
	Members           []Ref           `json:"members"`
	Implements        []Ref           `json:"implements_"`
	Uses              []Ref           `json:"uses"`
	RequireExtends    []Ref           `json:"requireExtends"`
	RequireImplements []Ref           `json:"requireImplements"`
	Attributes        []AttributeSpec `json:"attributes"`
	TypeParams        []TypeParamSpec `json:"typeParams"`
}

// EnumDefinitionKey is the full-detail record for an enum.
type EnumDefinitionKey struct {
	Declaration    Ref             `json:"declaration"`
	EnumBase       string          `json:"enumBase"`
	EnumConstraint *string         `json:"enumConstraint,omitempty"`
	IsEnumClass    bool            `json:"isEnumClass"`
	Enumerators    []Ref           `json:"enumerators"`
	Includes       []Ref           `json:"includes"`
	Attributes     []AttributeSpec `json:"attributes"`
}

// EnumeratorKey is one enum case, owned by its enumeration.
type EnumeratorKey struct {
	Name        string `json:"name"`
	Enumeration Ref    `json:"enumeration"`
}

// FunctionDefinitionKey is the full-detail record for a free function.
type FunctionDefinitionKey struct {
	Declaration Ref             `json:"declaration"`
	Signature   SignatureSpec   `json:"signature"`
	TypeParams  []TypeParamSpec `json:"typeParams"`
	Attributes  []AttributeSpec `json:"attributes"`
}

// TypedefDefinitionKey is the full-detail record for a type alias.
type TypedefDefinitionKey struct {
	Declaration   Ref             `json:"declaration"`
	IsTransparent bool            `json:"isTransparent"`
	Type          *string         `json:"type,omitempty"`
	TypeParams    []TypeParamSpec `json:"typeParams"`
	Attributes    []AttributeSpec `json:"attributes"`
}

// GlobalConstDefinitionKey is the full-detail record for a global constant.
type GlobalConstDefinitionKey struct {
	Declaration Ref     `json:"declaration"`
	Type        *string `json:"type,omitempty"`
	Value       string  `json:"value"`
}

// PropertyDefinitionKey is the full-detail record for a property.
type PropertyDefinitionKey struct {
	Declaration Ref             `json:"declaration"`
	Visibility  string          `json:"visibility"`
	IsAbstract  bool            `json:"isAbstract"`
	IsFinal     bool            `json:"isFinal"`
	IsStatic    bool            `json:"isStatic"`
	Type        *string         `json:"type,omitempty"`
	Attributes  []AttributeSpec `json:"attributes"`
}

// MethodDefinitionKey is the full-detail record for a method.
type MethodDefinitionKey struct {
	Declaration Ref             `json:"declaration"`
	Signature   SignatureSpec   `json:"signature"`
	Visibility  string          `json:"visibility"`
	IsAbstract  bool            `json:"isAbstract"`
	IsFinal     bool            `json:"isFinal"`
	IsStatic    bool            `json:"isStatic"`
	TypeParams  []TypeParamSpec `json:"typeParams"`
	Attributes  []AttributeSpec `json:"attributes"`
}

// ClassConstDefinitionKey is the full-detail record for a class constant.
// Value is the source literal with one layer of quoting stripped.
type ClassConstDefinitionKey struct {
	Declaration Ref     `json:"declaration"`
	Type        *string `json:"type,omitempty"`
	Value       string  `json:"value"`
}

// TypeConstDefinitionKey is the full-detail record for a type constant.
// Type is absent for a fully abstract constant with no default.
type TypeConstDefinitionKey struct {
	Declaration Ref             `json:"declaration"`
	Kind        string          `json:"kind"`
	Type        *string         `json:"type,omitempty"`
	Attributes  []AttributeSpec `json:"attributes"`
}

// ContainerRef pairs a container declaration identity with its kind, for
// edges that must not force either side's definition to exist.
type ContainerRef struct {
	Container Ref    `json:"container"`
	Kind      string `json:"kind"`
}

// MethodOverridesKey records that a method in the derived container
// overrides the same-named method in the base container.
type MethodOverridesKey struct {
	Name    string       `json:"name"`
	Derived ContainerRef `json:"derived"`
	Base    ContainerRef `json:"base"`
}

// MethodOccurrenceKey records a method use site. ClassName is present only
// when the receiver's class is statically known.
type MethodOccurrenceKey struct {
	Name      string  `json:"name"`
	ClassName *string `json:"className,omitempty"`
}

// DeclarationLocationKey binds a declaration or definition identity to a
// file and byte span. The same shape serves DeclarationLocation,
// DeclarationComment, and DeclarationSpan.
type DeclarationLocationKey struct {
	Declaration Ref      `json:"declaration"`
	File        string   `json:"file"`
	Span        SpanSpec `json:"span"`
}

// FileLinesKey carries the per-file line table. Lengths are the byte
// lengths of each line including its terminator; the flags let a consumer
// map line/column positions back to byte offsets without the file.
type FileLinesKey struct {
	File             string   `json:"file"`
	Lengths          []uint32 `json:"lengths"`
	EndsInNewline    bool     `json:"endsInNewline"`
	HasUnicodeOrTabs bool     `json:"hasUnicodeOrTabs"`
}

// XRefSpec is one cross-reference: a target identity and every span in the
// file that references it.
type XRefSpec struct {
	Target Ref        `json:"target"`
	Spans  []SpanSpec `json:"spans"`
}

// FileXRefsKey is the per-file cross-reference table.
type FileXRefsKey struct {
	File  string     `json:"file"`
	XRefs []XRefSpec `json:"xrefs"`
}

// FileDeclarationsKey lists every declaration made in a file.
type FileDeclarationsKey struct {
	File         string `json:"file"`
	Declarations []Ref  `json:"declarations"`
}
