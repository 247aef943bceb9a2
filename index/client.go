// Package index defines PackageIndexClient, the abstract boundary to the
// remote package index, plus a default HTTP-backed implementation of the
// PyPI-shaped wire format described in spec.md §6.
package index

import (
	"context"
	"fmt"
)

// Document is the decoded form of either a latest-info or a release-info
// response. Only the fields the builder actually consumes are modeled;
// everything else in the wire document is discarded.
type Document struct {
	// Releases maps version string to release metadata, present on
	// latest-info documents. Only the keys are consumed.
	Releases map[string][]interface{} `json:"releases"`

	// Info carries the release-info document's "info" object.
	Info Info `json:"info"`
}

// Info is the "info" object of a release-info document.
type Info struct {
	RequiresDist []string `json:"requires_dist"`
}

// Client fetches latest-release and per-release metadata documents from
// a remote package index. Implementations may be invoked from
// cooperative suspension points (spec.md §5) and must be safe for
// concurrent use, since GraphBuilder may fan out sibling fetches.
type Client interface {
	// LatestInfo returns the document whose Releases field enumerates
	// every version ever published for name.
	LatestInfo(ctx context.Context, name string) (Document, error)

	// ReleaseInfo returns the document describing one specific release
	// of name, including its declared requirements.
	ReleaseInfo(ctx context.Context, name, version string) (Document, error)
}

// ErrorKind classifies a Client failure per spec.md §7.
type ErrorKind int

const (
	// NotFound indicates the index has no record of the requested
	// name/version.
	NotFound ErrorKind = iota
	// Transport indicates a network/transport-level failure reaching
	// the index.
	Transport
	// Decode indicates the index responded, but the body could not be
	// decoded as the expected document shape.
	Decode
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Transport:
		return "transport"
	case Decode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error wraps a Client failure with its classification and the
// package/version it occurred for.
type Error struct {
	Kind    ErrorKind
	Name    string
	Version string
	Err     error
}

func (e *Error) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %s@%s: %v", e.Kind, e.Name, e.Version, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
