package constellation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonathonMSmith/pysat/instrument"
)

// Member identifies one constellation member in a definition file.
type Member struct {
	Platform   string `json:"platform"`
	Name       string `json:"name"`
	Tag        string `json:"tag"`
	InstID     string `json:"inst_id"`
	CleanLevel string `json:"clean_level"` // optional; defaults to "none"
}

// definitionJSON is the on-disk shape; kept unexported so it can evolve.
type definitionJSON struct {
	Members []Member `json:"instruments"`
}

// BuildFunc turns a definition entry into a live Instrument. The CLI
// supplies one that consults the module registry and shared config.
type BuildFunc func(ctx context.Context, m Member) (*instrument.Instrument, error)

// Load reads a JSON constellation definition from r and constructs its
// members through build.
func Load(ctx context.Context, r io.Reader, build BuildFunc) (*Constellation, error) {
	if build == nil {
		return nil, fmt.Errorf("load constellation: build function is nil")
	}

	var payload definitionJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("load constellation: decode failed: %w", err)
	}
	if len(payload.Members) == 0 {
		return nil, fmt.Errorf("load constellation: no instruments listed")
	}

	c := &Constellation{}
	for i, m := range payload.Members {
		if m.Platform == "" || m.Name == "" {
			return nil, fmt.Errorf("load constellation: member %d missing platform or name", i)
		}
		if m.CleanLevel == "" {
			m.CleanLevel = string(instrument.CleanNone)
		}
		inst, err := build(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("load constellation: member %s_%s: %w",
				m.Platform, m.Name, err)
		}
		c.Instruments = append(c.Instruments, inst)
	}
	return c, nil
}
