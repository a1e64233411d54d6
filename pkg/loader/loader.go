// Package loader reads materialized target-declaration snapshots. The
// declaration language itself is parsed elsewhere; this package only
// consumes the resulting (address, kind, deps, tags, sources) tuples,
// serialized as a JSON array.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/depscope/depscope/pkg/model"
)

// Load reads a snapshot file and returns the declared target specs.
func Load(path string) ([]model.TargetSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer f.Close()

	specs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return specs, nil
}

// Read decodes a snapshot from a reader.
func Read(r io.Reader) ([]model.TargetSpec, error) {
	var specs []model.TargetSpec
	if err := json.NewDecoder(r).Decode(&specs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return specs, nil
}
