package versions

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
)

// releaseTagRegex is the strict shape of a release tag: a leading "v"
// followed by exactly three dot-separated numeric segments.
var releaseTagRegex = regexp.MustCompile(`^v(\d+)\.(\d+)\.(\d+)$`)

// ErrInvalidFormat is returned when a version token doesn't meet the
// requirements of a release tag (vMAJOR.MINOR.PATCH).
var ErrInvalidFormat = errors.New("not a valid release version (expected vMAJOR.MINOR.PATCH)")

// ReleaseVersion is a validated release tag token, e.g. "v1.2.3".
type ReleaseVersion struct {
	tag    string
	parsed *version.Version
}

// Parse validates a raw version token and returns it as a ReleaseVersion.
// The token must match the strict vMAJOR.MINOR.PATCH shape.
func Parse(token string) (ReleaseVersion, error) {
	if !releaseTagRegex.MatchString(token) {
		return ReleaseVersion{}, ErrInvalidFormat
	}

	v, err := version.NewVersion(token)
	if err != nil {
		return ReleaseVersion{}, ErrInvalidFormat
	}

	return ReleaseVersion{tag: token, parsed: v}, nil
}

// Tag returns the tag form of the version, e.g. "v1.2.3".
func (r ReleaseVersion) Tag() string {
	return r.tag
}

// Number returns the version with the leading "v" stripped, e.g. "1.2.3".
// This is the form persisted in the plugin metadata file.
func (r ReleaseVersion) Number() string {
	return strings.TrimPrefix(r.tag, "v")
}

func (r ReleaseVersion) String() string {
	return r.tag
}

// Compare returns -1, 0, or 1 depending on whether r is less than, equal
// to, or greater than other.
func (r ReleaseVersion) Compare(other ReleaseVersion) int {
	return r.parsed.Compare(other.parsed)
}

// ByLatest sorts versions ascending, so the most recent release is last.
type ByLatest []*version.Version

func (u ByLatest) Len() int {
	return len(u)
}

func (u ByLatest) Swap(i, j int) {
	u[i], u[j] = u[j], u[i]
}

func (u ByLatest) Less(i, j int) bool {
	return u[i].LessThan(u[j])
}

// SortTags orders tag names oldest release first. Names that don't parse
// as versions keep their relative order and go last.
func SortTags(tags []string) []string {
	var parsed []*version.Version
	var rest []string
	for _, tag := range tags {
		v, err := version.NewVersion(tag)
		if err != nil {
			rest = append(rest, tag)
			continue
		}
		parsed = append(parsed, v)
	}

	sort.Sort(ByLatest(parsed))

	out := make([]string, 0, len(tags))
	for _, v := range parsed {
		out = append(out, v.Original())
	}
	return append(out, rest...)
}
