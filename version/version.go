// Package version implements VersionOps: parsing and standardizing the
// dotted-numeric version strings used by the package index, comparing
// them, and parsing the constraint grammar from requirement fragments into
// bounded ranges.
//
// The comparison itself is delegated to github.com/Masterminds/semver once
// a version string has been standardized to exactly three components,
// mirroring how the teacher's gps package leans on the same library for
// all of its version math.
package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// released matches a release key consisting entirely of dotted decimal
// digits: "1", "1.2", "1.2.3", etc. Anything else (rc/alpha/beta/dev
// suffixes) is not a candidate release.
var released = regexp.MustCompile(`^(\d+\.?)+$`)

// fragment parses a single requirement fragment such as
// "frobnitz (>=1.2,<2.0)". The <name> and first operator/version are
// required; a second comma-separated operator/version is optional.
var fragment = regexp.MustCompile(
	`^\s*(?P<name>[A-Za-z0-9_.\-]+)\s*\(?\s*` +
		`(?P<op1>==|<=|>=|<|>|=)\s*(?P<ver1>\d+(?:\.\d+){0,2})\s*` +
		`(?:,\s*(?P<op2>==|<=|>=|<|>|=)\s*(?P<ver2>\d+(?:\.\d+){0,2}))?\s*\)?`)

// InvalidVersion is returned by range evaluation when a candidate version
// string cannot be standardized or compared. Per spec, this is never
// fatal: the caller should skip the candidate and move on.
type InvalidVersion struct {
	Version string
	Cause   error
}

func (e *InvalidVersion) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Version, e.Cause)
}

// MalformedRequirement is returned when a requirement fragment does not
// match the constraint grammar at all. Per spec, the caller must not
// treat this as an error and should simply skip the fragment.
type MalformedRequirement struct {
	Fragment string
}

func (e *MalformedRequirement) Error() string {
	return fmt.Sprintf("malformed requirement fragment: %q", e.Fragment)
}

// Standardize right-pads a version of 1 or 2 components with ".0" so it
// has exactly three components, and discards any components past the
// third. Standardize(Standardize(v)) == Standardize(v) for any v.
func Standardize(v string) string {
	parts := strings.Split(v, ".")
	out := make([]string, 3)
	for i := 0; i < 3; i++ {
		if i < len(parts) {
			out[i] = parts[i]
		} else {
			out[i] = "0"
		}
	}
	return strings.Join(out, ".")
}

// Compare returns -1, 0, or 1 according to whether a is less than, equal
// to, or greater than b, after both have been standardized.
func Compare(a, b string) (int, error) {
	sva, err := semver.NewVersion(Standardize(a))
	if err != nil {
		return 0, &InvalidVersion{Version: a, Cause: err}
	}
	svb, err := semver.NewVersion(Standardize(b))
	if err != nil {
		return 0, &InvalidVersion{Version: b, Cause: err}
	}
	return sva.Compare(svb), nil
}

// IsRelease reports whether key consists entirely of dotted decimal
// digits, i.e. is admissible as a candidate release (no rc/alpha/beta
// qualifiers).
func IsRelease(key string) bool {
	return released.MatchString(key)
}

// FilterReleases returns the subset of keys that are releases, sorted
// ascending, keeping only the last n (the n highest versions). n <= 0
// means "no limit".
func FilterReleases(keys []string, n int) []string {
	var kept []string
	for _, k := range keys {
		if IsRelease(k) {
			kept = append(kept, k)
		}
	}
	sortVersions(kept)
	if n > 0 && len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return kept
}

// sortVersions sorts version strings ascending by standardized numeric
// comparison. Malformed entries sort last, stably, rather than panicking
// the caller; FilterReleases only ever hands this releases that already
// passed IsRelease, so this path is effectively dead for well-formed
// input but keeps the function total.
func sortVersions(vs []string) {
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0; j-- {
			c, err := Compare(vs[j-1], vs[j])
			if err != nil {
				// Only a well-formed entry moves ahead of a malformed one.
				_, prevErr := Compare(vs[j-1], vs[j-1])
				_, curErr := Compare(vs[j], vs[j])
				if prevErr == nil || curErr != nil {
					break
				}
			} else if c <= 0 {
				break
			}
			vs[j-1], vs[j] = vs[j], vs[j-1]
		}
	}
}

// Range is a parsed constraint: a lower bound (always present) and an
// optional upper bound.
type Range struct {
	Lower          string
	LowerInclusive bool
	HasUpper       bool
	Upper          string
	UpperInclusive bool
}

// Satisfies reports whether v falls within r, after standardization.
// An error is returned only if v itself cannot be parsed as a version;
// per spec this should be treated by the caller as "skip this
// candidate", not as a hard failure.
func (r Range) Satisfies(v string) (bool, error) {
	cl, err := Compare(v, r.Lower)
	if err != nil {
		return false, err
	}
	if r.LowerInclusive {
		if cl < 0 {
			return false, nil
		}
	} else if cl <= 0 {
		return false, nil
	}

	if !r.HasUpper {
		return true, nil
	}

	cu, err := Compare(v, r.Upper)
	if err != nil {
		return false, err
	}
	if r.UpperInclusive {
		return cu <= 0, nil
	}
	return cu < 0, nil
}

// Requirement is a single parsed sub-requirement: the depended-on
// package's name, and the range that a candidate version of it must
// satisfy.
type Requirement struct {
	Name  string
	Range Range
}

// ParseFragment parses a single requirement fragment per the grammar in
// spec.md §4.A. A fragment that fails to match returns
// *MalformedRequirement; the caller must treat this as a skip, not an
// error.
//
// The solver's historical behavior — preserved here per spec §4.A and §9
// open question 3 — treats the first operator's inequality as the lower
// bound and the second (if present) as the upper bound, even when the
// first operator is itself "<" or "<=". This is a lenient reading kept
// for compatibility rather than a stricter, more "correct" one.
func ParseFragment(frag string) (Requirement, error) {
	m := fragment.FindStringSubmatch(frag)
	if m == nil {
		return Requirement{}, &MalformedRequirement{Fragment: frag}
	}

	names := fragment.SubexpNames()
	group := func(name string) string {
		for i, n := range names {
			if n == name && i < len(m) {
				return m[i]
			}
		}
		return ""
	}

	name := group("name")
	op1 := group("op1")
	ver1 := group("ver1")
	op2 := group("op2")
	ver2 := group("ver2")

	if name == "" || ver1 == "" {
		return Requirement{}, &MalformedRequirement{Fragment: frag}
	}

	r := Range{
		Lower:          ver1,
		LowerInclusive: inclusiveLower(op1),
	}
	if ver2 != "" {
		r.HasUpper = true
		r.Upper = ver2
		r.UpperInclusive = inclusiveUpper(op2)
	}

	return Requirement{Name: name, Range: r}, nil
}

func inclusiveLower(op string) bool {
	switch op {
	case ">=", "==", "=", "<=":
		return true
	default:
		return false
	}
}

func inclusiveUpper(op string) bool {
	switch op {
	case "<=", "==", "=", ">=":
		return true
	default:
		return false
	}
}

// WrapFetchError annotates an underlying transport/decode failure with the
// package (and, optionally, version) it occurred for.
func WrapFetchError(err error, name, ver string) error {
	if ver == "" {
		return errors.Wrapf(err, "fetching %s", name)
	}
	return errors.Wrapf(err, "fetching %s@%s", name, ver)
}
