// Package tsfrontend parses TypeScript/TSX sources with tree-sitter into
// the typed declaration units the indexer consumes. TS namespaces map onto
// backslash-separated namespace paths; decorators map onto attributes.
package tsfrontend

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/symgraphhq/symgraph/internal/decl"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// TSFrontEnd parses TypeScript/TSX source code using tree-sitter.
type TSFrontEnd struct {
	log *zap.Logger
}

// New creates a new TSFrontEnd.
func New(log *zap.Logger) *TSFrontEnd {
	if log == nil {
		log = zap.NewNop()
	}
	return &TSFrontEnd{log: log}
}

func (e *TSFrontEnd) Name() string {
	return "typescript"
}

// Resolver returns the TypeScript hint resolver: annotation text with
// whitespace collapsed is already canonical for this front end.
func (e *TSFrontEnd) Resolver() decl.TypeResolver {
	return decl.ResolverFunc(func(hint decl.TypeHint) (string, bool) {
		text := strings.Join(strings.Fields(string(hint)), " ")
		if text == "" {
			return "", false
		}
		return text, true
	})
}

// Detect returns true if the repository contains tsconfig.json or a
// package.json with TypeScript dependencies.
func (e *TSFrontEnd) Detect(repoPath string) (bool, error) {
	if _, err := os.Stat(filepath.Join(repoPath, "tsconfig.json")); err == nil {
		return true, nil
	}

	data, err := os.ReadFile(filepath.Join(repoPath, "package.json"))
	if err != nil {
		return false, nil
	}
	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false, nil
	}
	for _, key := range []string{"dependencies", "devDependencies"} {
		if deps, ok := pkg[key].(map[string]any); ok {
			if _, ok := deps["typescript"]; ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// Parse reads TypeScript/TSX files and returns one declaration unit per
// parsed file. Unit paths are absolute.
func (e *TSFrontEnd) Parse(ctx context.Context, repoPath string, files []string) ([]decl.Unit, decl.FileSources, error) {
	var units []decl.Unit
	sources := make(decl.FileSources)

	for _, relFile := range files {
		select {
		case <-ctx.Done():
			return units, sources, ctx.Err()
		default:
		}

		if !isTypeScriptFile(relFile) {
			continue
		}

		absFile := filepath.Join(repoPath, relFile)
		src, err := os.ReadFile(absFile)
		if err != nil {
			e.log.Warn("skipping unreadable file", zap.String("file", relFile), zap.Error(err))
			continue
		}

		units = append(units, e.parseFile(src, absFile))
		sources[absFile] = src
	}

	return units, sources, nil
}

func (e *TSFrontEnd) parseFile(src []byte, absFile string) decl.Unit {
	lang := typescript.LanguageTypescript()
	if strings.HasSuffix(absFile, ".tsx") {
		lang = typescript.LanguageTSX()
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(sitter.NewLanguage(lang))

	tree := parser.Parse(src, nil)
	defer tree.Close()

	unit := decl.Unit{Path: absFile}
	root := tree.RootNode()
	e.collectStatements(root, src, "", &unit)
	e.collectOccurrences(root, src, "", &unit)
	return unit
}

// collectStatements walks a statement list, descending into namespaces.
func (e *TSFrontEnd) collectStatements(node *sitter.Node, src []byte, ns string, unit *decl.Unit) {
	for i := range node.ChildCount() {
		e.collectStatement(node.Child(i), src, ns, unit)
	}
}

func (e *TSFrontEnd) collectStatement(node *sitter.Node, src []byte, ns string, unit *decl.Unit) {
	switch node.Kind() {
	case "export_statement":
		for i := range node.ChildCount() {
			e.collectStatement(node.Child(i), src, ns, unit)
		}

	case "internal_module", "module":
		name := node.ChildByFieldName("name")
		body := node.ChildByFieldName("body")
		if name == nil || body == nil {
			return
		}
		// "namespace A.B" nests into namespace path A\B
		nested := joinNamespace(ns, strings.ReplaceAll(nodeText(name, src), ".", "\\"))
		e.collectStatements(body, src, nested, unit)

	case "class_declaration", "abstract_class_declaration":
		unit.Containers = append(unit.Containers, e.classDecl(node, src, ns))

	case "interface_declaration":
		unit.Containers = append(unit.Containers, e.interfaceDecl(node, src, ns))

	case "enum_declaration":
		unit.Enums = append(unit.Enums, e.enumDecl(node, src, ns))

	case "type_alias_declaration":
		unit.Typedefs = append(unit.Typedefs, e.typedefDecl(node, src, ns))

	case "function_declaration":
		unit.Functions = append(unit.Functions, e.functionDecl(node, src, ns))

	case "lexical_declaration":
		// Only const bindings become global constants.
		if findChildByKind(node, "const") == nil && !strings.HasPrefix(nodeText(node, src), "const") {
			return
		}
		for i := range node.ChildCount() {
			d := node.Child(i)
			if d.Kind() != "variable_declarator" {
				continue
			}
			name := d.ChildByFieldName("name")
			if name == nil || name.Kind() != "identifier" {
				continue
			}
			gc := decl.GlobalConst{
				Name:      nodeText(name, src),
				Namespace: ns,
				Type:      annotationHint(d, src),
				NameSpan:  span(name),
				DocSpan:   docSpan(node),
				Span:      span(node),
			}
			if value := d.ChildByFieldName("value"); value != nil {
				v := span(value)
				gc.Value = &v
			}
			unit.GlobalConsts = append(unit.GlobalConsts, gc)
		}
	}
}

func (e *TSFrontEnd) classDecl(node *sitter.Node, src []byte, ns string) decl.Container {
	c := decl.Container{
		Kind:       decl.KindClass,
		Namespace:  ns,
		IsAbstract: node.Kind() == "abstract_class_declaration",
		Attributes: decorators(node, src),
		DocSpan:    docSpan(node),
		Span:       span(node),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		c.Name = nodeText(name, src)
		c.NameSpan = span(name)
	}
	c.TypeParams = typeParams(node, src)

	for i := range node.ChildCount() {
		child := node.Child(i)
		if child.Kind() != "class_heritage" {
			continue
		}
		for j := range child.ChildCount() {
			clause := child.Child(j)
			switch clause.Kind() {
			case "extends_clause":
				for k := range clause.NamedChildCount() {
					t := clause.NamedChild(k)
					if t.Kind() == "type_arguments" {
						continue
					}
					c.Extends = append(c.Extends, parentRef(t, src))
				}
			case "implements_clause":
				for k := range clause.NamedChildCount() {
					c.Implements = append(c.Implements, parentRef(clause.NamedChild(k), src))
				}
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		e.classBody(body, src, &c)
	}
	return c
}

func (e *TSFrontEnd) classBody(body *sitter.Node, src []byte, c *decl.Container) {
	for i := range body.ChildCount() {
		member := body.Child(i)
		switch member.Kind() {
		case "method_definition", "abstract_method_signature", "method_signature":
			name := member.ChildByFieldName("name")
			if name == nil {
				continue
			}
			methodName := nodeText(name, src)
			if strings.HasPrefix(methodName, "#") {
				continue
			}
			m := decl.Method{
				Name:       methodName,
				Visibility: accessibility(member, src),
				IsAbstract: member.Kind() == "abstract_method_signature",
				IsStatic:   hasChildKind(member, "static"),
				Signature:  signature(member, src),
				TypeParams: typeParams(member, src),
				Attributes: decorators(member, src),
				NameSpan:   span(name),
				DocSpan:    docSpan(member),
				Span:       span(member),
			}
			c.Methods = append(c.Methods, m)

		case "public_field_definition", "property_signature":
			name := member.ChildByFieldName("name")
			if name == nil {
				continue
			}
			propName := nodeText(name, src)
			if strings.HasPrefix(propName, "#") {
				continue
			}
			p := decl.Property{
				Name:       propName,
				Visibility: accessibility(member, src),
				IsStatic:   hasChildKind(member, "static"),
				Type:       annotationHint(member, src),
				Attributes: decorators(member, src),
				NameSpan:   span(name),
				DocSpan:    docSpan(member),
				Span:       span(member),
			}
			// readonly static fields with initializers behave as constants
			if hasChildKind(member, "readonly") && hasChildKind(member, "static") {
				cc := decl.ClassConst{
					Name:     propName,
					Type:     p.Type,
					NameSpan: p.NameSpan,
					DocSpan:  p.DocSpan,
					Span:     p.Span,
				}
				if value := member.ChildByFieldName("value"); value != nil {
					v := span(value)
					cc.Value = &v
				}
				c.ClassConsts = append(c.ClassConsts, cc)
				continue
			}
			c.Properties = append(c.Properties, p)
		}
	}
}

func (e *TSFrontEnd) interfaceDecl(node *sitter.Node, src []byte, ns string) decl.Container {
	c := decl.Container{
		Kind:      decl.KindInterface,
		Namespace: ns,
		DocSpan:   docSpan(node),
		Span:      span(node),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		c.Name = nodeText(name, src)
		c.NameSpan = span(name)
	}
	c.TypeParams = typeParams(node, src)

	for i := range node.ChildCount() {
		clause := node.Child(i)
		if clause.Kind() != "extends_type_clause" {
			continue
		}
		for j := range clause.NamedChildCount() {
			c.Extends = append(c.Extends, parentRef(clause.NamedChild(j), src))
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		e.classBody(body, src, &c)
	}
	return c
}

func (e *TSFrontEnd) enumDecl(node *sitter.Node, src []byte, ns string) decl.Enum {
	en := decl.Enum{
		Namespace: ns,
		Base:      "number",
		DocSpan:   docSpan(node),
		Span:      span(node),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		en.Name = nodeText(name, src)
		en.NameSpan = span(name)
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return en
	}
	for i := range body.ChildCount() {
		member := body.Child(i)
		switch member.Kind() {
		case "property_identifier":
			en.Enumerators = append(en.Enumerators, decl.Enumerator{
				Name:     nodeText(member, src),
				NameSpan: span(member),
				DocSpan:  docSpan(member),
				Span:     span(member),
			})
		case "enum_assignment":
			name := member.ChildByFieldName("name")
			if name == nil {
				continue
			}
			er := decl.Enumerator{
				Name:     nodeText(name, src),
				NameSpan: span(name),
				DocSpan:  docSpan(member),
				Span:     span(member),
			}
			if value := member.ChildByFieldName("value"); value != nil {
				v := span(value)
				er.Value = &v
				if value.Kind() == "string" {
					en.Base = "string"
				}
			}
			en.Enumerators = append(en.Enumerators, er)
		}
	}
	return en
}

func (e *TSFrontEnd) typedefDecl(node *sitter.Node, src []byte, ns string) decl.Typedef {
	t := decl.Typedef{
		Namespace:    ns,
		Transparency: decl.Transparent,
		DocSpan:      docSpan(node),
		Span:         span(node),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		t.Name = nodeText(name, src)
		t.NameSpan = span(name)
	}
	t.TypeParams = typeParams(node, src)
	if value := node.ChildByFieldName("value"); value != nil {
		hint := decl.TypeHint(nodeText(value, src))
		t.Type = &hint
	}
	return t
}

func (e *TSFrontEnd) functionDecl(node *sitter.Node, src []byte, ns string) decl.Function {
	f := decl.Function{
		Namespace:  ns,
		Signature:  signature(node, src),
		TypeParams: typeParams(node, src),
		DocSpan:    docSpan(node),
		Span:       span(node),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		f.Name = nodeText(name, src)
		f.NameSpan = span(name)
	}
	return f
}

// collectOccurrences records method call sites. The receiver class is known
// only for this-calls, where it is the enclosing class.
func (e *TSFrontEnd) collectOccurrences(node *sitter.Node, src []byte, enclosingClass string, unit *decl.Unit) {
	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			enclosingClass = nodeText(name, src)
		}
	case "call_expression":
		if fn := node.ChildByFieldName("function"); fn != nil && fn.Kind() == "member_expression" {
			property := fn.ChildByFieldName("property")
			object := fn.ChildByFieldName("object")
			if property != nil && object != nil {
				occ := decl.Occurrence{
					MethodName: nodeText(property, src),
					Span:       span(property),
				}
				if object.Kind() == "this" {
					occ.ClassName = enclosingClass
				}
				if occ.MethodName != "" {
					unit.Occurrences = append(unit.Occurrences, occ)
				}
			}
		}
	}
	for i := range node.ChildCount() {
		e.collectOccurrences(node.Child(i), src, enclosingClass, unit)
	}
}

// --- tree helpers ---

func span(node *sitter.Node) decl.Span {
	return decl.Span{
		Start:  uint32(node.StartByte()),
		Length: uint32(node.EndByte() - node.StartByte()),
	}
}

func parentRef(node *sitter.Node, src []byte) decl.ParentRef {
	return decl.ParentRef{Name: nodeText(node, src), Span: span(node)}
}

// docSpan returns the span of the doc comment immediately preceding node.
func docSpan(node *sitter.Node) *decl.Span {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return nil
	}
	s := span(prev)
	return &s
}

// accessibility maps a TS accessibility modifier onto member visibility.
func accessibility(member *sitter.Node, src []byte) decl.Visibility {
	for i := range member.ChildCount() {
		child := member.Child(i)
		if child.Kind() == "accessibility_modifier" {
			switch nodeText(child, src) {
			case "private":
				return decl.Private
			case "protected":
				return decl.Protected
			}
		}
	}
	return decl.Public
}

// annotationHint extracts the type annotation following a name, if any.
func annotationHint(node *sitter.Node, src []byte) *decl.TypeHint {
	ann := findChildByKind(node, "type_annotation")
	if ann == nil {
		return nil
	}
	text := strings.TrimSpace(strings.TrimPrefix(nodeText(ann, src), ":"))
	if text == "" {
		return nil
	}
	hint := decl.TypeHint(text)
	return &hint
}

// signature extracts the parameter list and return annotation of a function
// or method node.
func signature(node *sitter.Node, src []byte) decl.Signature {
	var sig decl.Signature
	params := node.ChildByFieldName("parameters")
	if params != nil {
		for i := range params.ChildCount() {
			p := params.Child(i)
			switch p.Kind() {
			case "required_parameter", "optional_parameter", "rest_parameter":
				param := decl.Param{
					Type:       annotationHint(p, src),
					IsVariadic: p.Kind() == "rest_parameter",
				}
				if pattern := p.ChildByFieldName("pattern"); pattern != nil {
					param.Name = strings.TrimPrefix(nodeText(pattern, src), "...")
				}
				sig.Params = append(sig.Params, param)
			}
		}
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		text := strings.TrimSpace(strings.TrimPrefix(nodeText(ret, src), ":"))
		if text != "" {
			hint := decl.TypeHint(text)
			sig.Returns = &hint
		}
	} else if ann := annotationNotInParams(node); ann != nil {
		text := strings.TrimSpace(strings.TrimPrefix(nodeText(ann, src), ":"))
		if text != "" {
			hint := decl.TypeHint(text)
			sig.Returns = &hint
		}
	}
	return sig
}

// annotationNotInParams finds a direct type_annotation child, which on a
// function node is the return annotation.
func annotationNotInParams(node *sitter.Node) *sitter.Node {
	return findChildByKind(node, "type_annotation")
}

// typeParams extracts generic parameters. TS type parameters have "extends"
// constraints and in/out variance modifiers.
func typeParams(node *sitter.Node, src []byte) []decl.TypeParam {
	tps := node.ChildByFieldName("type_parameters")
	if tps == nil {
		return nil
	}
	var result []decl.TypeParam
	for i := range tps.ChildCount() {
		p := tps.Child(i)
		if p.Kind() != "type_parameter" {
			continue
		}
		tp := decl.TypeParam{}
		if name := p.ChildByFieldName("name"); name != nil {
			tp.Name = nodeText(name, src)
		}
		text := nodeText(p, src)
		if strings.HasPrefix(text, "out ") {
			tp.Variance = decl.Covariant
		} else if strings.HasPrefix(text, "in ") {
			tp.Variance = decl.Contravariant
		}
		if constraint := p.ChildByFieldName("constraint"); constraint != nil {
			bound := strings.TrimSpace(strings.TrimPrefix(nodeText(constraint, src), "extends"))
			tp.Constraints = append(tp.Constraints, decl.Constraint{
				Kind: decl.ConstraintAs,
				Type: decl.TypeHint(bound),
			})
		}
		result = append(result, tp)
	}
	return result
}

// decorators maps TS decorators onto user attributes. Call arguments become
// argument literal spans.
func decorators(node *sitter.Node, src []byte) []decl.Attribute {
	var attrs []decl.Attribute
	for i := range node.ChildCount() {
		child := node.Child(i)
		if child.Kind() != "decorator" {
			continue
		}
		var attr decl.Attribute
		for j := range child.NamedChildCount() {
			expr := child.NamedChild(j)
			switch expr.Kind() {
			case "identifier":
				attr.Name = nodeText(expr, src)
			case "call_expression":
				if fn := expr.ChildByFieldName("function"); fn != nil {
					attr.Name = nodeText(fn, src)
				}
				if args := expr.ChildByFieldName("arguments"); args != nil {
					for k := range args.NamedChildCount() {
						attr.Args = append(attr.Args, span(args.NamedChild(k)))
					}
				}
			}
		}
		if attr.Name != "" {
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

func joinNamespace(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "\\" + name
}

func hasChildKind(node *sitter.Node, kind string) bool {
	return findChildByKind(node, kind) != nil
}

func isTypeScriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ts" || ext == ".tsx"
}

func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	for i := range node.ChildCount() {
		child := node.Child(i)
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

func nodeText(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}
