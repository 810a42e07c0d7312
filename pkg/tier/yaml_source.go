package tier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlSource loads tier configurations from a YAML document.
// Deployments override the built-in catalog by shipping a catalog file:
//
//	tiers:
//	  - tier: free
//	    name: Free
//	    included_seats: 3
//	    included_actions: 25
//	    rate_ceilings:
//	      ai_generate: 5
type yamlSource struct {
	path string
	r    io.Reader
}

// NewYAMLFileSource returns a Source that reads the catalog from a file path.
func NewYAMLFileSource(path string) Source {
	return &yamlSource{path: path}
}

// NewYAMLSource returns a Source that reads the catalog from r.
func NewYAMLSource(r io.Reader) Source {
	return &yamlSource{r: r}
}

type yamlCatalog struct {
	Tiers []Config `yaml:"tiers"`
}

func (s *yamlSource) Load(ctx context.Context) (map[Tier]Config, error) {
	var data []byte
	var err error

	switch {
	case s.r != nil:
		data, err = io.ReadAll(s.r)
	case s.path != "":
		data, err = os.ReadFile(s.path)
	default:
		return nil, errors.Join(ErrFailedToLoadCatalog, errors.New("no catalog path or reader"))
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	configs := make(map[Tier]Config, len(doc.Tiers))
	for _, cfg := range doc.Tiers {
		if _, exists := configs[cfg.Tier]; exists {
			return nil, errors.Join(ErrInvalidCatalogEntry,
				fmt.Errorf("duplicate catalog entry for tier %q", cfg.Tier))
		}
		configs[cfg.Tier] = cfg
	}

	return configs, nil
}
