package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/symgraphhq/symgraph/internal/config"
	"github.com/symgraphhq/symgraph/internal/facts"
	"github.com/symgraphhq/symgraph/internal/frontends"
	"github.com/symgraphhq/symgraph/internal/indexer"
)

// Meta describes one index generation run.
type Meta struct {
	RepoPath    string     `json:"repo_path"`
	GeneratedAt string     `json:"generated_at"`
	Duration    string     `json:"duration"`
	FrontEnds   []string   `json:"frontends"`
	FileHashes  []FileHash `json:"file_hashes,omitempty"`
	FactCount   int        `json:"fact_count"`
}

// FileHash tracks a file's content hash for incremental updates.
type FileHash struct {
	Path    string `json:"path"`
	Hash    string `json:"hash"`
	ModTime string `json:"mod_time"`
}

// Engine orchestrates index generation: walk the repository, run detected
// front ends, feed their declaration units through the indexer, and write
// the fact graph.
type Engine struct {
	cfg       *config.Config
	frontends *frontends.Registry
	store     *facts.Store
	meta      *Meta
	log       *zap.Logger

	prevHashes map[string]string // file -> sha256 hash from previous run
}

// New creates a new Engine with the given config. Front ends must be
// registered after creation.
func New(cfg *config.Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		frontends: frontends.NewRegistry(),
		store:     facts.NewStore(),
		log:       log.Named("engine"),
	}
}

// RegisterFrontEnd adds a front end to the engine.
func (e *Engine) RegisterFrontEnd(f frontends.FrontEnd) {
	e.frontends.Register(f)
}

// Store returns the fact store.
func (e *Engine) Store() *facts.Store {
	return e.store
}

// Meta returns the last run's metadata, or nil.
func (e *Engine) Meta() *Meta {
	return e.meta
}

// SetMeta installs run metadata, used when reloading a previous index.
func (e *Engine) SetMeta(m *Meta) {
	e.meta = m
}

// Config returns the engine config.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// GenerateIndex runs the full pipeline for one repository.
func (e *Engine) GenerateIndex(ctx context.Context, repoPath string) (*Meta, error) {
	start := time.Now()

	if repoPath == "" {
		repoPath = e.cfg.Repo
	}
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolving repo path: %w", err)
	}

	e.loadPreviousHashes(absRepo)
	e.store.Clear()

	files, err := e.walkRepo(absRepo)
	if err != nil {
		return nil, fmt.Errorf("walking repo: %w", err)
	}
	e.log.Info("collected files", zap.Int("count", len(files)), zap.String("repo", absRepo))

	currentHashes, changed := e.filterChangedFiles(absRepo, files)
	if len(e.prevHashes) > 0 && len(changed) == 0 {
		// Nothing changed since the previous run; reload the cached graph.
		cached := filepath.Join(absRepo, e.cfg.Output.Dir, "facts.jsonl")
		if err := e.store.ReadJSONLFile(cached); err == nil {
			e.log.Info("no changes detected, reloaded cached graph",
				zap.Int("facts", e.store.Count()))
			e.finishRun(absRepo, start, nil, currentHashes)
			return e.meta, nil
		}
	}

	usedFrontEnds, err := e.runFrontEnds(ctx, absRepo, files)
	if err != nil {
		return nil, err
	}
	e.log.Info("indexed repository",
		zap.Int("facts", e.store.Count()),
		zap.Strings("frontends", usedFrontEnds))

	e.finishRun(absRepo, start, usedFrontEnds, currentHashes)
	return e.meta, nil
}

func (e *Engine) finishRun(absRepo string, start time.Time, usedFrontEnds []string, hashes map[string]string) {
	e.store.BuildGraph()

	var fileHashes []FileHash
	for path, hash := range hashes {
		fileHashes = append(fileHashes, FileHash{
			Path:    path,
			Hash:    hash,
			ModTime: fileModTime(filepath.Join(absRepo, path)),
		})
	}
	e.meta = &Meta{
		RepoPath:    absRepo,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Duration:    time.Since(start).String(),
		FrontEnds:   usedFrontEnds,
		FileHashes:  fileHashes,
		FactCount:   e.store.Count(),
	}
}

// runFrontEnds detects applicable front ends and pushes their declaration
// units through the indexer.
func (e *Engine) runFrontEnds(ctx context.Context, repoPath string, files []string) ([]string, error) {
	var usedNames []string

	for _, fe := range e.frontends.All() {
		if !e.cfg.IsFrontEndEnabled(fe.Name()) {
			continue
		}

		detected, err := fe.Detect(repoPath)
		if err != nil {
			e.log.Warn("front end detect error", zap.String("frontend", fe.Name()), zap.Error(err))
			continue
		}
		if !detected {
			e.log.Debug("front end not detected", zap.String("frontend", fe.Name()))
			continue
		}

		e.log.Info("running front end", zap.String("frontend", fe.Name()))
		units, sources, err := fe.Parse(ctx, repoPath, files)
		if err != nil {
			return nil, fmt.Errorf("front end %s: %w", fe.Name(), err)
		}

		ix := indexer.New(e.store, fe.Resolver(), sources, e.log.Named(fe.Name()))
		for i := range units {
			if err := ix.IndexUnit(&units[i]); err != nil {
				// A malformed unit aborts only itself; the rest of the
				// repository still indexes.
				e.log.Warn("unit failed",
					zap.String("file", units[i].Path), zap.Error(err))
			}
		}
		if err := ix.EmitOverrides(); err != nil {
			return nil, fmt.Errorf("front end %s: emitting overrides: %w", fe.Name(), err)
		}

		usedNames = append(usedNames, fe.Name())
	}

	return usedNames, nil
}

// walkRepo collects all files in the repo, applying ignore patterns.
func (e *Engine) walkRepo(repoPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}
		if e.isIgnored(relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, relPath)
		}
		return nil
	})
	return files, err
}

// isIgnored checks whether a path matches any ignore pattern.
func (e *Engine) isIgnored(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range e.cfg.Ignore {
		if strings.HasSuffix(pattern, "/**") {
			dirPrefix := strings.TrimSuffix(pattern, "/**")
			if relPath == dirPrefix || strings.HasPrefix(relPath, dirPrefix+"/") {
				return true
			}
		}

		matched, err := filepath.Match(pattern, relPath)
		if err == nil && matched {
			return true
		}

		if strings.HasPrefix(pattern, "**/") {
			subPattern := strings.TrimPrefix(pattern, "**/")
			matched, err = filepath.Match(subPattern, filepath.Base(relPath))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(subPattern, relPath)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// WriteArtifacts writes the fact graph and run metadata to the output
// directory. facts.jsonl is always written (it doubles as the incremental
// cache); facts.json is added for the grouped-document format.
func (e *Engine) WriteArtifacts(repoPath string) error {
	if e.meta == nil {
		return fmt.Errorf("no index generated")
	}

	outDir := filepath.Join(repoPath, e.cfg.Output.Dir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	jsonlPath := filepath.Join(outDir, "facts.jsonl")
	if err := e.store.WriteJSONLFile(jsonlPath); err != nil {
		return fmt.Errorf("writing facts.jsonl: %w", err)
	}
	e.log.Info("wrote artifact", zap.String("path", jsonlPath))

	if e.cfg.Output.Format == "json" {
		jsonPath := filepath.Join(outDir, "facts.json")
		if err := e.store.WriteJSONFile(jsonPath); err != nil {
			return fmt.Errorf("writing facts.json: %w", err)
		}
		e.log.Info("wrote artifact", zap.String("path", jsonPath))
	}

	metaJSON, err := json.MarshalIndent(e.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	metaPath := filepath.Join(outDir, "index.meta.json")
	if err := os.WriteFile(metaPath, metaJSON, 0o644); err != nil {
		return fmt.Errorf("writing index.meta.json: %w", err)
	}
	e.log.Info("wrote artifact", zap.String("path", metaPath))

	return nil
}

// GetArtifact returns the content of a named artifact rendered from the
// current store.
func (e *Engine) GetArtifact(name string) ([]byte, error) {
	if e.meta == nil {
		return nil, fmt.Errorf("no index generated")
	}

	switch name {
	case "facts.json":
		var buf bytes.Buffer
		if err := e.store.WriteJSON(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "facts.jsonl":
		var buf bytes.Buffer
		if err := e.store.WriteJSONL(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "index.meta.json":
		return json.MarshalIndent(e.meta, "", "  ")
	default:
		return nil, fmt.Errorf("artifact %q not found", name)
	}
}

// loadPreviousHashes reads file hashes from the previous index.meta.json.
func (e *Engine) loadPreviousHashes(repoPath string) {
	metaPath := filepath.Join(repoPath, e.cfg.Output.Dir, "index.meta.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		e.prevHashes = nil
		return
	}

	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		e.prevHashes = nil
		return
	}

	e.prevHashes = make(map[string]string, len(meta.FileHashes))
	for _, fh := range meta.FileHashes {
		e.prevHashes[fh.Path] = fh.Hash
	}
	e.log.Debug("loaded previous file hashes", zap.Int("count", len(e.prevHashes)))
}

// filterChangedFiles computes SHA-256 hashes for all files and returns the
// current hash map and the files that changed since the previous run.
func (e *Engine) filterChangedFiles(repoPath string, files []string) (map[string]string, []string) {
	currentHashes := make(map[string]string, len(files))
	var changed []string

	for _, relFile := range files {
		data, err := os.ReadFile(filepath.Join(repoPath, relFile))
		if err != nil {
			// Can't hash, treat as changed
			changed = append(changed, relFile)
			continue
		}

		h := sha256.Sum256(data)
		hash := hex.EncodeToString(h[:])
		currentHashes[relFile] = hash

		if prevHash, ok := e.prevHashes[relFile]; !ok || prevHash != hash {
			changed = append(changed, relFile)
		}
	}

	return currentHashes, changed
}

// fileModTime returns the modification time of a file as an RFC3339 string.
func fileModTime(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().Format(time.RFC3339)
}
