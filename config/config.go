// Package config reads the TOML configuration document that drives a
// discovery run, repurposing the teacher's manifest-config idiom
// (toml.go's tomlMapper, manifest.go's rawManifest) for resolver
// parameters instead of project dependency manifests.
package config

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the decoded discovery configuration.
type Config struct {
	// Top bounds how many of a package's most recent releases are
	// explored. Zero selects the builder's own default (10).
	Top int

	// UseLatestWhenNotRequired mirrors solver.New's
	// useLatestWhenNotRequired parameter.
	UseLatestWhenNotRequired bool

	// UseCache enables snapshot-backed caching on the builder.
	UseCache bool

	// IndexBaseURL overrides index.DefaultBaseURL when non-empty.
	IndexBaseURL string

	// SnapshotDir is the directory a snapshot.Store should be opened
	// against.
	SnapshotDir string

	// Concurrency bounds parallel release-info fetches per package.
	Concurrency int
}

type tomlMapper struct {
	tree *toml.TomlTree
	err  error
}

// Load parses a TOML document in the shape:
//
//	top = 10
//	use_latest_when_not_required = false
//	use_cache = true
//	index_base_url = "https://pypi.python.org/pypi"
//	snapshot_dir = ".cartwheel-cache"
//	concurrency = 4
func Load(raw []byte) (Config, error) {
	tree, err := toml.LoadBytes(raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "parsing configuration")
	}

	m := &tomlMapper{tree: tree}
	cfg := Config{
		Top:                      readInt(m, "top", 10),
		UseLatestWhenNotRequired: readBool(m, "use_latest_when_not_required", false),
		UseCache:                 readBool(m, "use_cache", false),
		IndexBaseURL:             readString(m, "index_base_url", ""),
		SnapshotDir:              readString(m, "snapshot_dir", ".cartwheel-cache"),
		Concurrency:              readInt(m, "concurrency", 1),
	}
	if m.err != nil {
		return Config{}, errors.Wrap(m.err, "reading configuration keys")
	}
	return cfg, nil
}

func readString(m *tomlMapper, key, def string) string {
	if m.err != nil {
		return def
	}
	raw := m.tree.GetDefault(key, def)
	v, ok := raw.(string)
	if !ok {
		m.err = errors.Errorf("invalid type for %s, should be a string, but it is a %T", key, raw)
		return def
	}
	return v
}

func readBool(m *tomlMapper, key string, def bool) bool {
	if m.err != nil {
		return def
	}
	raw := m.tree.GetDefault(key, def)
	v, ok := raw.(bool)
	if !ok {
		m.err = errors.Errorf("invalid type for %s, should be a bool, but it is a %T", key, raw)
		return def
	}
	return v
}

func readInt(m *tomlMapper, key string, def int) int {
	if m.err != nil {
		return def
	}
	raw := m.tree.GetDefault(key, int64(def))
	switch v := raw.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		m.err = errors.Errorf("invalid type for %s, should be an integer, but it is a %T", key, raw)
		return def
	}
}
