package tsfrontend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/symgraphhq/symgraph/internal/decl"
)

// --- helpers ---

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func parseOne(t *testing.T, source string) decl.Unit {
	t.Helper()
	dir := setupProject(t, map[string]string{"main.ts": source})

	fe := New(nil)
	units, sources, err := fe.Parse(context.Background(), dir, []string{"main.ts"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if _, ok := sources[units[0].Path]; !ok {
		t.Fatal("source map missing the parsed file")
	}
	return units[0]
}

func sourceSlice(t *testing.T, source string, s decl.Span) string {
	t.Helper()
	end := s.Start + s.Length
	if int(end) > len(source) {
		t.Fatalf("span %+v out of range for source of %d bytes", s, len(source))
	}
	return source[s.Start:end]
}

// --- detection ---

func TestDetect(t *testing.T) {
	fe := New(nil)

	withTsconfig := setupProject(t, nil)
	if found, _ := fe.Detect(withTsconfig); !found {
		t.Error("tsconfig.json should be detected")
	}

	withDep := t.TempDir()
	pkg := `{"devDependencies": {"typescript": "^5.0.0"}}`
	if err := os.WriteFile(filepath.Join(withDep, "package.json"), []byte(pkg), 0o644); err != nil {
		t.Fatal(err)
	}
	if found, _ := fe.Detect(withDep); !found {
		t.Error("typescript devDependency should be detected")
	}

	if found, _ := fe.Detect(t.TempDir()); found {
		t.Error("empty dir should not be detected")
	}
}

func TestParse_SkipsNonTypeScriptFiles(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"main.ts":   "class A {}",
		"readme.md": "# hi",
		"app.go":    "package app",
	})
	fe := New(nil)
	units, _, err := fe.Parse(context.Background(), dir, []string{"main.ts", "readme.md", "app.go"})
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 {
		t.Errorf("got %d units, want 1 (only main.ts)", len(units))
	}
}

// --- classes ---

func TestParse_Class(t *testing.T) {
	source := `export class UserService extends BaseService implements Service {
  private repo: UserRepo;

  find(id: string): User {
    return this.repo.load(id);
  }
}`
	unit := parseOne(t, source)
	if len(unit.Containers) != 1 {
		t.Fatalf("containers = %d, want 1", len(unit.Containers))
	}
	c := unit.Containers[0]
	if c.Name != "UserService" || c.Kind != decl.KindClass {
		t.Fatalf("container = %q kind %v", c.Name, c.Kind)
	}
	if c.IsAbstract {
		t.Error("plain class should not be abstract")
	}
	if sourceSlice(t, source, c.NameSpan) != "UserService" {
		t.Errorf("name span covers %q", sourceSlice(t, source, c.NameSpan))
	}

	if len(c.Extends) != 1 || c.Extends[0].Name != "BaseService" {
		t.Errorf("extends = %+v", c.Extends)
	}
	if len(c.Implements) != 1 || c.Implements[0].Name != "Service" {
		t.Errorf("implements = %+v", c.Implements)
	}

	if len(c.Properties) != 1 {
		t.Fatalf("properties = %d, want 1", len(c.Properties))
	}
	p := c.Properties[0]
	if p.Name != "repo" || p.Visibility != decl.Private {
		t.Errorf("property = %q visibility %v", p.Name, p.Visibility)
	}
	if p.Type == nil || *p.Type != "UserRepo" {
		t.Errorf("property type = %v, want UserRepo", p.Type)
	}

	if len(c.Methods) != 1 {
		t.Fatalf("methods = %d, want 1", len(c.Methods))
	}
	m := c.Methods[0]
	if m.Name != "find" || m.Visibility != decl.Public {
		t.Errorf("method = %q visibility %v", m.Name, m.Visibility)
	}
	if len(m.Signature.Params) != 1 || m.Signature.Params[0].Name != "id" {
		t.Errorf("params = %+v", m.Signature.Params)
	}
	if m.Signature.Params[0].Type == nil || *m.Signature.Params[0].Type != "string" {
		t.Errorf("param type = %v, want string", m.Signature.Params[0].Type)
	}
	if m.Signature.Returns == nil || *m.Signature.Returns != "User" {
		t.Errorf("returns = %v, want User", m.Signature.Returns)
	}
}

func TestParse_AbstractClassAndMembers(t *testing.T) {
	source := `abstract class Shape {
  abstract area(): number;
  static readonly VERSION = "1.0";
  static counter = 0;
  #secret = 1;
}`
	unit := parseOne(t, source)
	c := unit.Containers[0]
	if !c.IsAbstract {
		t.Error("abstract class not flagged")
	}
	if len(c.Methods) != 1 || !c.Methods[0].IsAbstract {
		t.Errorf("methods = %+v, want one abstract area", c.Methods)
	}

	// static readonly with an initializer is a class constant.
	if len(c.ClassConsts) != 1 || c.ClassConsts[0].Name != "VERSION" {
		t.Fatalf("class consts = %+v", c.ClassConsts)
	}
	if c.ClassConsts[0].Value == nil {
		t.Fatal("VERSION value span missing")
	}
	if got := sourceSlice(t, source, *c.ClassConsts[0].Value); got != `"1.0"` {
		t.Errorf("VERSION value = %q", got)
	}

	// plain static stays a property; #-private members are skipped.
	if len(c.Properties) != 1 || c.Properties[0].Name != "counter" || !c.Properties[0].IsStatic {
		t.Errorf("properties = %+v, want static counter only", c.Properties)
	}
}

func TestParse_Decorators(t *testing.T) {
	source := `@Injectable()
@Route("users", 10)
class Controller {}`
	unit := parseOne(t, source)
	c := unit.Containers[0]
	if len(c.Attributes) != 2 {
		t.Fatalf("attributes = %+v, want 2", c.Attributes)
	}
	if c.Attributes[0].Name != "Injectable" || len(c.Attributes[0].Args) != 0 {
		t.Errorf("attr[0] = %+v", c.Attributes[0])
	}
	if c.Attributes[1].Name != "Route" || len(c.Attributes[1].Args) != 2 {
		t.Fatalf("attr[1] = %+v", c.Attributes[1])
	}
	if got := sourceSlice(t, source, c.Attributes[1].Args[0]); got != `"users"` {
		t.Errorf("arg[0] span = %q", got)
	}
	if got := sourceSlice(t, source, c.Attributes[1].Args[1]); got != "10" {
		t.Errorf("arg[1] span = %q", got)
	}
}

func TestParse_DocComment(t *testing.T) {
	source := `/** Loads users. */
class Loader {}`
	unit := parseOne(t, source)
	c := unit.Containers[0]
	if c.DocSpan == nil {
		t.Fatal("doc span missing")
	}
	if got := sourceSlice(t, source, *c.DocSpan); got != "/** Loads users. */" {
		t.Errorf("doc span = %q", got)
	}
}

// --- interfaces, enums, typedefs, functions ---

func TestParse_Interface(t *testing.T) {
	source := `interface Shape extends Drawable, Serializable {
  area(): number;
  name: string;
}`
	unit := parseOne(t, source)
	c := unit.Containers[0]
	if c.Kind != decl.KindInterface || c.Name != "Shape" {
		t.Fatalf("container = %+v", c)
	}
	if len(c.Extends) != 2 || c.Extends[0].Name != "Drawable" || c.Extends[1].Name != "Serializable" {
		t.Errorf("extends = %+v, want declared order", c.Extends)
	}
	if len(c.Methods) != 1 || c.Methods[0].Name != "area" {
		t.Errorf("methods = %+v", c.Methods)
	}
	if len(c.Properties) != 1 || c.Properties[0].Name != "name" {
		t.Errorf("properties = %+v", c.Properties)
	}
}

func TestParse_Enums(t *testing.T) {
	numeric := parseOne(t, `enum Direction { Up, Down }`)
	if len(numeric.Enums) != 1 {
		t.Fatalf("enums = %d, want 1", len(numeric.Enums))
	}
	e := numeric.Enums[0]
	if e.Name != "Direction" || e.Base != "number" {
		t.Errorf("enum = %q base %q, want Direction/number", e.Name, e.Base)
	}
	if len(e.Enumerators) != 2 || e.Enumerators[0].Name != "Up" {
		t.Errorf("enumerators = %+v", e.Enumerators)
	}
	if e.Enumerators[0].Value != nil {
		t.Error("value-less enumerator should have no value span")
	}

	source := `enum Color { Red = "red", Blue = "blue" }`
	stringy := parseOne(t, source)
	se := stringy.Enums[0]
	if se.Base != "string" {
		t.Errorf("string enum base = %q, want string", se.Base)
	}
	if se.Enumerators[0].Value == nil {
		t.Fatal("assigned enumerator missing value span")
	}
	if got := sourceSlice(t, source, *se.Enumerators[0].Value); got != `"red"` {
		t.Errorf("value span = %q", got)
	}
}

func TestParse_TypeAliasAndFunction(t *testing.T) {
	unit := parseOne(t, `export type UserID = string;

export function greet(name: string, ...rest: string[]): void {}
`)
	if len(unit.Typedefs) != 1 {
		t.Fatalf("typedefs = %d, want 1", len(unit.Typedefs))
	}
	td := unit.Typedefs[0]
	if td.Name != "UserID" || td.Transparency != decl.Transparent {
		t.Errorf("typedef = %+v", td)
	}
	if td.Type == nil || *td.Type != "string" {
		t.Errorf("typedef type = %v, want string", td.Type)
	}

	if len(unit.Functions) != 1 {
		t.Fatalf("functions = %d, want 1", len(unit.Functions))
	}
	f := unit.Functions[0]
	if f.Name != "greet" {
		t.Errorf("function = %q", f.Name)
	}
	if len(f.Signature.Params) != 2 {
		t.Fatalf("params = %+v", f.Signature.Params)
	}
	if f.Signature.Params[1].Name != "rest" || !f.Signature.Params[1].IsVariadic {
		t.Errorf("rest param = %+v", f.Signature.Params[1])
	}
	if f.Signature.Returns == nil || *f.Signature.Returns != "void" {
		t.Errorf("returns = %v, want void", f.Signature.Returns)
	}
}

func TestParse_GlobalConsts(t *testing.T) {
	source := `const MAX_USERS: number = 100;
let mutable = 1;
`
	unit := parseOne(t, source)
	if len(unit.GlobalConsts) != 1 {
		t.Fatalf("global consts = %+v, want only MAX_USERS", unit.GlobalConsts)
	}
	gc := unit.GlobalConsts[0]
	if gc.Name != "MAX_USERS" {
		t.Errorf("name = %q", gc.Name)
	}
	if gc.Type == nil || *gc.Type != "number" {
		t.Errorf("type = %v, want number", gc.Type)
	}
	if gc.Value == nil {
		t.Fatal("value span missing")
	}
	if got := sourceSlice(t, source, *gc.Value); got != "100" {
		t.Errorf("value = %q", got)
	}
}

// --- namespaces ---

func TestParse_Namespaces(t *testing.T) {
	unit := parseOne(t, `namespace App.Models {
  export class User {}
}
class Global {}
`)
	if len(unit.Containers) != 2 {
		t.Fatalf("containers = %d, want 2", len(unit.Containers))
	}
	var user, global *decl.Container
	for i := range unit.Containers {
		switch unit.Containers[i].Name {
		case "User":
			user = &unit.Containers[i]
		case "Global":
			global = &unit.Containers[i]
		}
	}
	if user == nil || user.Namespace != "App\\Models" {
		t.Errorf("User namespace = %+v, want App\\Models", user)
	}
	if global == nil || global.Namespace != "" {
		t.Errorf("Global namespace = %+v, want global", global)
	}
}

// --- generics ---

func TestParse_TypeParams(t *testing.T) {
	unit := parseOne(t, `class Box<out T extends Item, U> {}`)
	c := unit.Containers[0]
	if len(c.TypeParams) != 2 {
		t.Fatalf("type params = %+v, want 2", c.TypeParams)
	}
	tp := c.TypeParams[0]
	if tp.Name != "T" || tp.Variance != decl.Covariant {
		t.Errorf("T = %+v, want covariant", tp)
	}
	if len(tp.Constraints) != 1 || tp.Constraints[0].Type != "Item" {
		t.Errorf("T constraints = %+v, want extends Item", tp.Constraints)
	}
	if c.TypeParams[1].Name != "U" || c.TypeParams[1].Variance != decl.Invariant {
		t.Errorf("U = %+v, want invariant", c.TypeParams[1])
	}
}

// --- occurrences ---

func TestParse_Occurrences(t *testing.T) {
	unit := parseOne(t, `class Mailer {
  deliver() {
    this.render();
  }
}
client.send();
`)
	if len(unit.Occurrences) != 2 {
		t.Fatalf("occurrences = %+v, want 2", unit.Occurrences)
	}
	byName := map[string]decl.Occurrence{}
	for _, o := range unit.Occurrences {
		byName[o.MethodName] = o
	}
	if got := byName["render"].ClassName; got != "Mailer" {
		t.Errorf("this-call class = %q, want Mailer", got)
	}
	if got := byName["send"].ClassName; got != "" {
		t.Errorf("free call class = %q, want unknown", got)
	}
}

// --- resolver ---

func TestResolver_CollapsesWhitespace(t *testing.T) {
	r := New(nil).Resolver()
	got, ok := r.Resolve("Map<string,\n  number>")
	if !ok || got != "Map<string, number>" {
		t.Errorf("Resolve = %q ok=%v", got, ok)
	}
	if _, ok := r.Resolve("   "); ok {
		t.Error("blank hint should not resolve")
	}
}
