// Package importer reads thinker corpora from a directory tree of JSON
// files into the store, enforcing the corpus invariants, and exports them
// back out for round-tripping. Embeddings are computed at import time.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"minds/internal/embedding"
	"minds/internal/logging"
	"minds/internal/store"
	"minds/internal/types"
)

// ThinkerDoc is one corpus file: a thinker and their principles.
type ThinkerDoc struct {
	types.Thinker
	Principles []types.Principle `json:"principles"`
}

var kebabID = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate enforces the corpus invariants on one document.
func (d *ThinkerDoc) Validate() error {
	if !kebabID.MatchString(d.ID) {
		return fmt.Errorf("%w: thinker id %q is not kebab-case", types.ErrCorpusInvariant, d.ID)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: thinker %s has no name", types.ErrCorpusInvariant, d.ID)
	}
	if !validDomain(d.Domain) {
		return fmt.Errorf("%w: thinker %s has unknown domain %q", types.ErrCorpusInvariant, d.ID, d.Domain)
	}
	if n := len(d.Principles); n < 2 || n > 6 {
		return fmt.Errorf("%w: thinker %s has %d principles, want 2-6", types.ErrCorpusInvariant, d.ID, n)
	}
	for _, p := range d.Principles {
		if !kebabID.MatchString(p.ID) {
			return fmt.Errorf("%w: principle id %q is not kebab-case", types.ErrCorpusInvariant, p.ID)
		}
		if p.ThinkerID != "" && p.ThinkerID != d.ID {
			return fmt.Errorf("%w: principle %s claims thinker %s inside %s",
				types.ErrCorpusInvariant, p.ID, p.ThinkerID, d.ID)
		}
		if p.Name == "" || p.Description == "" {
			return fmt.Errorf("%w: principle %s missing name or description", types.ErrCorpusInvariant, p.ID)
		}
		if p.Falsification == "" {
			return fmt.Errorf("%w: principle %s has no falsification", types.ErrCorpusInvariant, p.ID)
		}
		switch p.DefaultStance {
		case "", types.StanceFor, types.StanceAgainst, types.StanceNeutral:
		default:
			return fmt.Errorf("%w: principle %s has unknown stance %q", types.ErrCorpusInvariant, p.ID, p.DefaultStance)
		}
	}
	return nil
}

func validDomain(domain string) bool {
	for _, d := range types.ThinkerDomains {
		if d == domain {
			return true
		}
	}
	return false
}

// Importer writes corpus documents into the store.
type Importer struct {
	store    *store.Store
	embedder embedding.Embedder // nil skips the semantic index
}

// New creates an importer. embedder may be nil.
func New(st *store.Store, emb embedding.Embedder) *Importer {
	return &Importer{store: st, embedder: emb}
}

// ImportDocs imports validated documents. Any invariant violation aborts the
// whole import before a single row is written.
func (i *Importer) ImportDocs(ctx context.Context, docs []ThinkerDoc) (int, error) {
	timer := logging.StartTimer(logging.CategoryImport, "ImportDocs")
	defer timer.Stop()

	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return 0, err
		}
	}

	imported := 0
	for _, doc := range docs {
		if err := i.store.InsertThinker(ctx, doc.Thinker); err != nil {
			return imported, err
		}
		for _, p := range doc.Principles {
			p.ThinkerID = doc.ID
			if err := i.store.InsertPrinciple(ctx, p); err != nil {
				return imported, err
			}
		}
		imported++
	}

	if i.embedder != nil {
		if err := i.embedAll(ctx, docs); err != nil {
			return imported, err
		}
	}
	logging.Import("imported %d thinkers", imported)
	return imported, nil
}

// embedAll computes principle embeddings in parallel worker goroutines;
// embedding can be CPU-heavy for model-backed providers.
func (i *Importer) embedAll(ctx context.Context, docs []ThinkerDoc) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, doc := range docs {
		for _, p := range doc.Principles {
			p := p
			g.Go(func() error {
				vec, err := i.embedder.Embed(gctx, p.Name+" "+p.Description+" "+strings.Join(p.DomainTags, " "))
				if err != nil {
					return fmt.Errorf("embed %s: %w", p.ID, err)
				}
				return i.store.UpsertEmbedding(gctx, p.ID, vec)
			})
		}
	}
	return g.Wait()
}

// ImportDir walks a directory tree and imports every .json file as one
// thinker document.
func (i *Importer) ImportDir(ctx context.Context, dir string) (int, error) {
	var docs []ThinkerDoc
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		var doc ThinkerDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%w: parse %s: %v", types.ErrCorpusInvariant, path, err)
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return 0, err
	}
	sort.Slice(docs, func(a, b int) bool { return docs[a].ID < docs[b].ID })
	return i.ImportDocs(ctx, docs)
}

// ExportDir writes the whole corpus back out, one JSON file per thinker.
// Import of an exported tree yields identical principle ids and texts.
func (i *Importer) ExportDir(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	thinkers, err := i.store.ListThinkers(ctx)
	if err != nil {
		return err
	}
	for _, th := range thinkers {
		principles, err := i.store.GetPrinciplesByThinker(ctx, th.ID)
		if err != nil {
			return err
		}
		doc := ThinkerDoc{Thinker: th, Principles: principles}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", th.ID, err)
		}
		path := filepath.Join(dir, th.ID+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	logging.Import("exported %d thinkers to %s", len(thinkers), dir)
	return nil
}
