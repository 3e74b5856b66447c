package server

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/symgraphhq/symgraph/internal/config"
	"github.com/symgraphhq/symgraph/internal/engine"
	"github.com/symgraphhq/symgraph/internal/facts"
)

func newTestServer(t *testing.T) (*Server, *facts.Store) {
	t.Helper()
	cfg := config.Default()
	eng := engine.New(cfg, nil)
	srv, err := New(eng, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, eng.Store()
}

func TestNew(t *testing.T) {
	srv, _ := newTestServer(t)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestLocationFor(t *testing.T) {
	srv, store := newTestServer(t)

	clsID, err := store.Add(facts.ClassDeclaration, facts.ContainerDeclarationKey{
		Name: facts.QName{Name: "Widget"},
	})
	if err != nil {
		t.Fatal(err)
	}
	otherID, err := store.Add(facts.ClassDeclaration, facts.ContainerDeclarationKey{
		Name: facts.QName{Name: "Other"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Add(facts.DeclarationLocation, facts.DeclarationLocationKey{
		Declaration: facts.NewRef(clsID),
		File:        "/repo/widget.ts",
		Span:        facts.SpanSpec{Start: 6, Length: 6},
	}); err != nil {
		t.Fatal(err)
	}

	loc := srv.locationFor(clsID)
	if loc == nil {
		t.Fatal("location not found")
	}
	if loc.File != "/repo/widget.ts" || loc.Span.Start != 6 {
		t.Errorf("location = %+v", loc)
	}

	if got := srv.locationFor(otherID); got != nil {
		t.Errorf("declaration without location should yield nil, got %+v", got)
	}
}

func TestResultHelpers(t *testing.T) {
	ok := textResult("fine")
	if ok.IsError {
		t.Error("textResult must not set IsError")
	}
	if text, isText := ok.Content[0].(*mcp.TextContent); !isText || text.Text != "fine" {
		t.Errorf("content = %+v", ok.Content[0])
	}

	bad := errorResult("broken")
	if !bad.IsError {
		t.Error("errorResult must set IsError")
	}
	if text, isText := bad.Content[0].(*mcp.TextContent); !isText || text.Text != "broken" {
		t.Errorf("content = %+v", bad.Content[0])
	}
}
