package model

// Kind classifies a build target. The set of kinds is open ended: declaration
// loaders may introduce new kinds, and the filter engine compares them as
// opaque strings rather than dispatching per kind.
type Kind string

const (
	KindLibrary  Kind = "library"
	KindBinary   Kind = "binary"
	KindTest     Kind = "test"
	KindResource Kind = "resource"
)

// TargetSpec is the materialized declaration tuple handed to the graph
// builder by an external build-declaration loader.
type TargetSpec struct {
	Address string   `json:"address"`           // Unique stable identifier (e.g., "//util:strings")
	Kind    Kind     `json:"kind"`              // Type tag (library, binary, ...)
	Deps    []string `json:"deps,omitempty"`    // Declared dependency addresses, declaration order
	Tags    []string `json:"tags,omitempty"`    // String labels
	Sources []string `json:"sources,omitempty"` // File paths owned by this target
}

// Target is a node resident in a built dependency graph.
type Target struct {
	Address string   `json:"address"`
	Kind    Kind     `json:"kind"`
	Deps    []string `json:"deps,omitempty"` // Declaration order, duplicates removed
	Tags    []string `json:"tags,omitempty"`
	Sources []string `json:"sources,omitempty"`
}

// HasTag reports whether the target carries the given tag.
func (t *Target) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// OwnsSource reports whether the target owns the given source path.
func (t *Target) OwnsSource(path string) bool {
	for _, src := range t.Sources {
		if src == path {
			return true
		}
	}
	return false
}
