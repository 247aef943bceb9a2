package graph

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/aaswin/cartwheel/index"
	"github.com/aaswin/cartwheel/version"
)

// SnapshotStore persists and restores a built graph, keyed by a
// fingerprint of the requirements that produced it. GraphBuilder depends
// only on this narrow interface; the bolt-backed implementation lives in
// package snapshot.
type SnapshotStore interface {
	// Load returns the persisted state for fingerprint, if any. ok is
	// false on a cache miss. A corrupt snapshot must be reported via err
	// == nil, ok == false (spec.md §7: SnapshotCorrupt is a cache miss,
	// never fatal).
	Load(fingerprint string) (requirements []string, nodes []Node, explored []string, ok bool, err error)

	// Save persists the given state under fingerprint.
	Save(fingerprint string, requirements []string, nodes []Node, explored []string) error
}

// Params configures a GraphBuilder run.
type Params struct {
	// Top bounds how many of a package's most recent releases are
	// explored. Zero selects the spec default of 10.
	Top int

	// UseCache, if true and Store is non-nil, attempts to restore a
	// previously built graph before running discovery.
	UseCache bool

	// Store is the SnapshotStore to consult/populate. May be nil, in
	// which case caching is skipped entirely.
	Store SnapshotStore

	// Concurrency bounds how many release-info fetches run in parallel
	// for a single package's selected release set. Zero selects 1
	// (sequential).
	Concurrency int

	// Trace, if true, emits progress lines to Logger.
	Trace bool

	// Logger receives trace output when Trace is set. A nil Logger with
	// Trace set is treated as "discard".
	Logger *log.Logger
}

// Trace prefix characters, reused from the teacher's trace.go: failure,
// and a restored/backtracked event.
const (
	traceFail = "✗"
	traceBack = "←"
)

// Builder orchestrates recursive discovery of a PackageGraph against a
// PackageIndexClient, per spec.md §4.C.
type Builder struct {
	client index.Client
	params Params
	graph  *PackageGraph
}

// NewBuilder constructs a Builder that will discover packages via
// client, subject to params.
func NewBuilder(client index.Client, params Params) *Builder {
	if params.Top <= 0 {
		params.Top = 10
	}
	if params.Concurrency <= 0 {
		params.Concurrency = 1
	}
	return &Builder{client: client, params: params}
}

// Fingerprint computes the month-granular expiring cache key for a set
// of bare requirement names, per spec.md §4.C: md5(year;month;sorted
// requirements joined by ';').
func Fingerprint(requirements []string, now time.Time) string {
	sorted := append([]string(nil), requirements...)
	sort.Strings(sorted)
	raw := fmt.Sprintf("%d;%d;%s", now.Year(), int(now.Month()), strings.Join(sorted, ";"))
	sum := md5.Sum([]byte(raw))
	return fmt.Sprintf("%x", sum)
}

// Build walks the package index starting from requirements until
// fixpoint, returning the resulting PackageGraph. If the builder's
// SnapshotStore has a fresh entry and UseCache is set, that entry is
// restored verbatim instead.
func (b *Builder) Build(ctx context.Context, requirements []string) (*PackageGraph, error) {
	fp := Fingerprint(requirements, time.Now())

	if b.params.UseCache && b.params.Store != nil {
		reqs, nodes, explored, ok, err := b.params.Store.Load(fp)
		if err != nil {
			return nil, errors.Wrap(err, "loading snapshot")
		}
		if ok {
			g, err := Rebuild(reqs, nodes, explored)
			if err != nil {
				// SnapshotCorrupt: treated as a cache miss, fresh
				// discovery proceeds below.
				b.trace("%s snapshot %s corrupt, re-resolving: %v", traceFail, fp, err)
			} else {
				b.trace("%s restored snapshot %s", traceBack, fp)
				return g, nil
			}
		}
	}

	b.graph = newGraph(requirements)
	for _, req := range requirements {
		if err := b.resolve(ctx, req); err != nil {
			return nil, err
		}
	}

	if b.params.Store != nil {
		if err := b.params.Store.Save(fp, b.graph.Requirements(), b.graph.Nodes(), b.graph.ExploredNames()); err != nil {
			b.trace("failed to save snapshot %s: %v", fp, err)
		}
	}

	return b.graph, nil
}

// resolve discovers name: marks it explored, fetches its latest-info
// document, selects the top-N release keys, and resolves each selected
// release in turn. Per spec.md §4.C step 1, the explored mark happens
// before the network request, cutting cycles.
func (b *Builder) resolve(ctx context.Context, name string) error {
	if b.graph.markExplored(name) {
		return nil
	}

	doc, err := b.client.LatestInfo(ctx, name)
	if err != nil {
		// IndexFetchFailed for the top-level name: the builder is
		// permissive, so this package is simply dropped, not fatal.
		b.trace("%s could not fetch %s: %v", traceFail, name, err)
		return nil
	}

	keys := make([]string, 0, len(doc.Releases))
	for k := range doc.Releases {
		keys = append(keys, k)
	}
	selected := version.FilterReleases(keys, b.params.Top)

	type result struct {
		ver  string
		refs []*Ref
		err  error
	}

	results := make([]result, len(selected))
	sem := make(chan struct{}, b.params.Concurrency)
	var wg sync.WaitGroup

	for i, ver := range selected {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ver string) {
			defer wg.Done()
			defer func() { <-sem }()
			refs, err := b.resolveRelease(ctx, name, ver)
			results[i] = result{ver: ver, refs: refs, err: err}
		}(i, ver)
	}
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			// IndexFetchFailed for this one version: drop the version,
			// keep going with the others.
			b.trace("%s could not resolve %s@%s: %v", traceFail, name, r.ver, r.err)
			continue
		}
		ref := Seal(name, r.ver, r.refs)
		if b.graph.insert(ref) {
			// spec.md §6 names this exact diagnostic string.
			b.trace("Added %s", ref.Key())
		}
	}

	return nil
}

// resolveRelease fetches one release's metadata, parses its declared
// requirements, recursively resolves each sub-requirement's package
// before filtering, and returns the subset of existing refs that satisfy
// each parsed range.
func (b *Builder) resolveRelease(ctx context.Context, name, ver string) ([]*Ref, error) {
	doc, err := b.client.ReleaseInfo(ctx, name, ver)
	if err != nil {
		return nil, err
	}

	var deps []*Ref
	for _, frag := range doc.Info.RequiresDist {
		req, perr := version.ParseFragment(frag)
		if perr != nil {
			// MalformedRequirement: skip with a diagnostic, never fatal.
			b.trace("%s skipping malformed requirement %q: %v", traceFail, frag, perr)
			continue
		}

		// Recurse into the sub-requirement before filtering, so that by
		// the time we look for matching versions, all candidate refs for
		// it exist (unless it was already explored, in which case we
		// accept whatever subset has been discovered so far — this is
		// the documented cycle policy from spec.md §4.C).
		if err := b.resolve(ctx, req.Name); err != nil {
			return nil, err
		}

		matches := b.graph.existingDependenciesMatching(req.Name, func(candidate string) bool {
			ok, serr := req.Range.Satisfies(candidate)
			if serr != nil {
				// InvalidVersion: skip just this candidate.
				return false
			}
			return ok
		})
		deps = append(deps, matches...)
	}

	return deps, nil
}

func (b *Builder) trace(format string, args ...interface{}) {
	if !b.params.Trace || b.params.Logger == nil {
		return
	}
	b.params.Logger.Printf(format, args...)
}
