package selectors

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"smart-apply/internal/domain/entity"
)

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the built-in catalog.
func Default() (*entity.SelectorCatalog, error) {
	cat := &entity.SelectorCatalog{}
	if err := apply(cat, defaultCatalog); err != nil {
		return nil, fmt.Errorf("built-in selector catalog: %w", err)
	}
	return cat, cat.Validate()
}

// Load returns the built-in catalog with chains from the file at path replacing
// the chains of the same name. An empty path means no override.
func Load(path string) (*entity.SelectorCatalog, error) {
	cat, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cat, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selector catalog %s: %w", path, err)
	}
	if err := apply(cat, data); err != nil {
		return nil, fmt.Errorf("selector catalog %s: %w", path, err)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("selector catalog %s: %w", path, err)
	}
	return cat, nil
}

func apply(cat *entity.SelectorCatalog, data []byte) error {
	raw := map[string][]string{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	chains := cat.Chains()
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dst, ok := chains[name]
		if !ok {
			return fmt.Errorf("unknown selector chain %q", name)
		}
		chain := entity.SelectorChain(raw[name])
		if err := chain.Validate(name); err != nil {
			return err
		}
		*dst = chain
	}
	return nil
}
