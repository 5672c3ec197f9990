package catalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Powers []Power `yaml:"powers"`
}

// Load parses a YAML catalog document and validates it.
//
//	powers:
//	  - id: quick_step
//	    name: Quick Step
//	    tier: skill
//	    unlock_cost: 2
//	    rank_up_cost: 1
//	    rank_up_cost_rank3: 2
//	    max_rank: 3
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return New(nil)
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(file.Powers)
}
