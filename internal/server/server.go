package server

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/symgraphhq/symgraph/internal/config"
	"github.com/symgraphhq/symgraph/internal/engine"
	"github.com/symgraphhq/symgraph/internal/facts"
)

// Server wraps the MCP server and connects it to the index engine, exposing
// the fact graph to code-navigation consumers.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	cfg *config.Config
	log *zap.Logger
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		eng: eng,
		cfg: cfg,
		log: log.Named("server"),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "symgraph",
		Version: "0.1.0",
	}, nil)
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// registerResources adds MCP resources for index artifacts.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         "symgraph://index/facts",
		Name:        "Fact Graph",
		Description: "The full declaration fact graph grouped by predicate",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		content, err := s.eng.GetArtifact("facts.json")
		if err != nil {
			return nil, fmt.Errorf("no index available: %w (run generate_index first)", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, Text: string(content), MIMEType: "application/json"},
			},
		}, nil
	})

	s.mcp.AddResource(&mcp.Resource{
		URI:         "symgraph://index/meta",
		Name:        "Index Metadata",
		Description: "Metadata about the last index generation run",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		content, err := s.eng.GetArtifact("index.meta.json")
		if err != nil {
			return nil, fmt.Errorf("no index available: %w (run generate_index first)", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, Text: string(content), MIMEType: "application/json"},
			},
		}, nil
	})
}

// generateIndexArgs are the arguments for the generate_index tool.
type generateIndexArgs struct {
	RepoPath string `json:"repo_path,omitempty" jsonschema:"Path to the repository to index. Defaults to the configured repo path."`
}

// queryFactsArgs are the arguments for the query_facts tool.
type queryFactsArgs struct {
	Predicate string `json:"predicate,omitempty" jsonschema:"Filter by predicate name, e.g. ClassDeclaration or MethodOverrides"`
	Name      string `json:"name,omitempty" jsonschema:"Filter declaration facts by exact base name"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of facts to return (default 100)"`
}

// findDeclarationArgs are the arguments for the find_declaration tool.
type findDeclarationArgs struct {
	Name string `json:"name" jsonschema:"required,Base name of the declaration to find"`
}

// methodOverridesArgs are the arguments for the method_overrides tool.
type methodOverridesArgs struct {
	Name string `json:"name" jsonschema:"required,Method name to look up override edges for"`
}

// fileDeclarationsArgs are the arguments for the file_declarations tool.
type fileDeclarationsArgs struct {
	File string `json:"file" jsonschema:"required,Absolute path of the file"`
}

// referencesArgs are the arguments for the references tool.
type referencesArgs struct {
	ID int64 `json:"id" jsonschema:"required,Fact identity to find referencing facts for"`
}

// registerTools adds MCP tools for index generation and graph querying.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "generate_index",
		Description: "Index a repository: parse its source, extract the declaration fact graph, and write the artifacts.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args generateIndexArgs) (*mcp.CallToolResult, any, error) {
		repoPath := args.RepoPath
		if repoPath == "" {
			repoPath = s.cfg.Repo
		}
		absRepo, err := filepath.Abs(repoPath)
		if err != nil {
			return errorResult(fmt.Sprintf("invalid repo path: %v", err)), nil, nil
		}

		meta, err := s.eng.GenerateIndex(ctx, absRepo)
		if err != nil {
			return errorResult(fmt.Sprintf("index generation failed: %v", err)), nil, nil
		}
		if err := s.eng.WriteArtifacts(absRepo); err != nil {
			s.log.Warn("failed to write artifacts", zap.Error(err))
		}

		summary := fmt.Sprintf(
			"Index generated successfully.\n\n"+
				"- Repository: %s\n"+
				"- Facts: %d\n"+
				"- Front ends: %v\n"+
				"- Duration: %s\n\n"+
				"Use the symgraph://index/facts resource to read the graph.",
			meta.RepoPath, meta.FactCount, meta.FrontEnds, meta.Duration)

		return textResult(summary), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_facts",
		Description: "Query the fact graph by predicate and declaration name. Returns matching facts as JSON.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args queryFactsArgs) (*mcp.CallToolResult, any, error) {
		store := s.eng.Store()
		if store.Count() == 0 {
			return errorResult("No facts available. Run generate_index first."), nil, nil
		}

		var results []facts.Fact
		switch {
		case args.Predicate != "" && args.Name != "":
			pred, ok := facts.ParsePredicate(args.Predicate)
			if !ok {
				return errorResult(fmt.Sprintf("unknown predicate %q", args.Predicate)), nil, nil
			}
			for _, f := range store.FindDeclarations(args.Name) {
				if f.Predicate == pred {
					results = append(results, f)
				}
			}
		case args.Predicate != "":
			pred, ok := facts.ParsePredicate(args.Predicate)
			if !ok {
				return errorResult(fmt.Sprintf("unknown predicate %q", args.Predicate)), nil, nil
			}
			results = store.ByPredicate(pred)
		case args.Name != "":
			results = store.FindDeclarations(args.Name)
		default:
			results = store.All()
		}

		limit := args.Limit
		if limit <= 0 {
			limit = 100
		}
		truncated := false
		if len(results) > limit {
			results = results[:limit]
			truncated = true
		}

		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
		}
		text := string(data)
		if truncated {
			text += fmt.Sprintf("\n\n... (showing %d results, refine your query)", limit)
		}
		return textResult(text), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_declaration",
		Description: "Find declarations by base name, together with their source locations. The backbone of go-to-definition.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args findDeclarationArgs) (*mcp.CallToolResult, any, error) {
		store := s.eng.Store()
		if store.Count() == 0 {
			return errorResult("No facts available. Run generate_index first."), nil, nil
		}
		if args.Name == "" {
			return errorResult("name is required"), nil, nil
		}

		decls := store.FindDeclarations(args.Name)
		if len(decls) == 0 {
			return errorResult(fmt.Sprintf("no declarations named %q", args.Name)), nil, nil
		}

		type hit struct {
			Declaration facts.Fact                     `json:"declaration"`
			Location    *facts.DeclarationLocationKey `json:"location,omitempty"`
		}
		var hits []hit
		for _, d := range decls {
			hits = append(hits, hit{Declaration: d, Location: s.locationFor(d.ID)})
		}
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
		}
		return textResult(string(data)), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "method_overrides",
		Description: "List override edges for a method name: which containers override which base containers.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args methodOverridesArgs) (*mcp.CallToolResult, any, error) {
		store := s.eng.Store()
		if store.Count() == 0 {
			return errorResult("No facts available. Run generate_index first."), nil, nil
		}

		var edges []facts.MethodOverridesKey
		for _, f := range store.ByPredicate(facts.MethodOverrides) {
			var key facts.MethodOverridesKey
			if err := json.Unmarshal(f.Key, &key); err != nil {
				continue
			}
			if args.Name == "" || key.Name == args.Name {
				edges = append(edges, key)
			}
		}
		if len(edges) == 0 {
			return errorResult(fmt.Sprintf("no override edges for %q", args.Name)), nil, nil
		}
		data, err := json.MarshalIndent(edges, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
		}
		return textResult(string(data)), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "file_declarations",
		Description: "List every declaration made in a file.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args fileDeclarationsArgs) (*mcp.CallToolResult, any, error) {
		store := s.eng.Store()
		if store.Count() == 0 {
			return errorResult("No facts available. Run generate_index first."), nil, nil
		}

		for _, f := range store.ByPredicate(facts.FileDeclarations) {
			var key facts.FileDeclarationsKey
			if err := json.Unmarshal(f.Key, &key); err != nil {
				continue
			}
			if key.File != args.File {
				continue
			}
			var decls []facts.Fact
			for _, ref := range key.Declarations {
				if fact, ok := store.FactByID(ref.ID); ok {
					decls = append(decls, fact)
				}
			}
			data, err := json.MarshalIndent(decls, "", "  ")
			if err != nil {
				return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
			}
			return textResult(string(data)), nil, nil
		}
		return errorResult(fmt.Sprintf("no declarations recorded for %q", args.File)), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "references",
		Description: "List all facts whose keys reference the given fact identity.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args referencesArgs) (*mcp.CallToolResult, any, error) {
		store := s.eng.Store()
		graph := store.Graph()
		if graph == nil {
			return errorResult("No index available. Run generate_index first."), nil, nil
		}

		var referrers []facts.Fact
		for _, id := range graph.ReferencedBy(facts.ID(args.ID)) {
			if f, ok := store.FactByID(id); ok {
				referrers = append(referrers, f)
			}
		}
		if len(referrers) == 0 {
			return errorResult(fmt.Sprintf("no facts reference id %d", args.ID)), nil, nil
		}
		data, err := json.MarshalIndent(referrers, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
		}
		return textResult(string(data)), nil, nil
	})
}

// locationFor returns the DeclarationLocation key for a declaration
// identity, or nil when none was emitted.
func (s *Server) locationFor(id facts.ID) *facts.DeclarationLocationKey {
	for _, f := range s.eng.Store().ByPredicate(facts.DeclarationLocation) {
		var key facts.DeclarationLocationKey
		if err := json.Unmarshal(f.Key, &key); err != nil {
			continue
		}
		if key.Declaration.ID == id {
			return &key
		}
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
