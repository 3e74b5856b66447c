// Package decl defines the typed declaration tree consumed by the indexer,
// together with the collaborator interfaces a language front end must supply
// (type resolution and source-text lookup). The indexer never parses source
// itself; it only walks these values.
package decl

// Span is a byte range within a source file.
type Span struct {
	Start  uint32 `json:"start"`
	Length uint32 `json:"length"`
}

// TypeHint is an unresolved type reference as written in source.
// Hints are opaque to the indexer; a TypeResolver turns them into
// canonical type descriptions.
type TypeHint string

// Visibility of a member.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
	Internal
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Private:
		return "private"
	case Internal:
		return "internal"
	default:
		return "public"
	}
}

// ContainerKind distinguishes the member-owning constructs.
type ContainerKind int

const (
	KindClass ContainerKind = iota
	KindInterface
	KindTrait
	KindEnum
)

func (k ContainerKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	case KindEnum:
		return "enum"
	default:
		return "class"
	}
}

// Variance of a type parameter.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "covariant"
	case Contravariant:
		return "contravariant"
	default:
		return "invariant"
	}
}

// ConstraintKind tags a type-parameter constraint.
type ConstraintKind int

const (
	ConstraintAs ConstraintKind = iota
	ConstraintSuper
)

func (k ConstraintKind) String() string {
	if k == ConstraintSuper {
		return "super"
	}
	return "as"
}

// Constraint bounds a type parameter.
type Constraint struct {
	Kind ConstraintKind
	Type TypeHint
}

// TypeParam is a generic parameter on a container, function, or typedef.
type TypeParam struct {
	Name        string
	Variance    Variance
	Constraints []Constraint
}

// Attribute is a user attribute attached to a declaration. Args are byte
// spans of the argument literals; the indexer slices them from source.
type Attribute struct {
	Name string
	Args []Span
}

// Param is one parameter in a function or method signature.
type Param struct {
	Name       string
	Type       *TypeHint
	IsInout    bool
	IsVariadic bool
}

// Signature is an ordered parameter list plus an optional return hint.
type Signature struct {
	Params  []Param
	Returns *TypeHint
}

// ParentRef names a container referenced in an inheritance clause. The name
// may carry type-argument syntax ("Base<T>"), which the indexer strips.
type ParentRef struct {
	Name string
	Span Span
}

// RequireKind splits require clauses into their two flavors.
type RequireKind int

const (
	RequireExtends RequireKind = iota
	RequireImplements
)

// Require is a require-extends or require-implements clause.
type Require struct {
	Kind RequireKind
	Name ParentRef
}

// Property declared directly on a container.
type Property struct {
	Name       string
	Visibility Visibility
	IsAbstract bool
	IsFinal    bool
	IsStatic   bool
	Type       *TypeHint
	Attributes []Attribute
	NameSpan   Span
	DocSpan    *Span
	Span       Span
}

// Method declared directly on a container.
type Method struct {
	Name       string
	Visibility Visibility
	IsAbstract bool
	IsFinal    bool
	IsStatic   bool
	Signature  Signature
	TypeParams []TypeParam
	Attributes []Attribute
	NameSpan   Span
	DocSpan    *Span
	Span       Span
}

// ClassConst is a class constant. Value is the byte span of the value
// expression, nil for an abstract constant.
type ClassConst struct {
	Name       string
	Type       *TypeHint
	Value      *Span
	NameSpan   Span
	DocSpan    *Span
	Span       Span
}

// TypeConstKind classifies a type constant.
type TypeConstKind int

const (
	TypeConstConcrete TypeConstKind = iota
	TypeConstAbstract
	TypeConstPartial
)

func (k TypeConstKind) String() string {
	switch k {
	case TypeConstAbstract:
		return "abstract"
	case TypeConstPartial:
		return "partiallyAbstract"
	default:
		return "concrete"
	}
}

// TypeConst is a type constant. Type holds the concrete type (or the
// non-abstract half of a partially abstract constant); Default holds an
// abstract constant's default, when present.
type TypeConst struct {
	Name       string
	Kind       TypeConstKind
	Type       *TypeHint
	Default    *TypeHint
	Attributes []Attribute
	NameSpan   Span
	DocSpan    *Span
	Span       Span
}

// Enumerator is one case of an enum. Value is the byte span of the assigned
// value expression, nil for value-less enum-class cases.
type Enumerator struct {
	Name     string
	Value    *Span
	NameSpan Span
	DocSpan  *Span
	Span     Span
}

// Container is a class, interface, or trait declaration.
type Container struct {
	Kind        ContainerKind
	Name        string
	Namespace   string
	IsAbstract  bool
	IsFinal     bool
	Extends     []ParentRef
	Implements  []ParentRef
	Uses        []ParentRef
	Requires    []Require
	Properties  []Property
	Methods     []Method
	ClassConsts []ClassConst
	TypeConsts  []TypeConst
	Attributes  []Attribute
	TypeParams  []TypeParam
	NameSpan    Span
	DocSpan     *Span
	Span        Span
}

// QualifiedName joins namespace and base name for display and logging.
func (c *Container) QualifiedName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "\\" + c.Name
}

// Enum is an enum declaration.
type Enum struct {
	Name        string
	Namespace   string
	Base        TypeHint
	Constraint  *TypeHint
	IsEnumClass bool
	Enumerators []Enumerator
	Includes    []ParentRef
	Attributes  []Attribute
	NameSpan    Span
	DocSpan     *Span
	Span        Span
}

// Function is a free function declaration.
type Function struct {
	Name       string
	Namespace  string
	Signature  Signature
	TypeParams []TypeParam
	Attributes []Attribute
	NameSpan   Span
	DocSpan    *Span
	Span       Span
}

// Transparency of a typedef.
type Transparency int

const (
	Transparent Transparency = iota
	Opaque
	OpaqueInternal
)

// Typedef is a type alias declaration.
type Typedef struct {
	Name         string
	Namespace    string
	Transparency Transparency
	Type         *TypeHint
	TypeParams   []TypeParam
	Attributes   []Attribute
	NameSpan     Span
	DocSpan      *Span
	Span         Span
}

// GlobalConst is a file-level constant declaration.
type GlobalConst struct {
	Name      string
	Namespace string
	Type      *TypeHint
	Value     *Span
	NameSpan  Span
	DocSpan   *Span
	Span      Span
}

// Occurrence is a method use site. ClassName is the receiver's class when
// statically known, empty otherwise.
type Occurrence struct {
	MethodName string
	ClassName  string
	Span       Span
}

// Unit holds all declarations of one source file, in declared order.
// Path is absolute.
type Unit struct {
	Path         string
	Containers   []Container
	Enums        []Enum
	Functions    []Function
	Typedefs     []Typedef
	GlobalConsts []GlobalConst
	Occurrences  []Occurrence
}
