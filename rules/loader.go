package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed chain.schema.json
var chainSchemaSrc string

var chainSchema = jsonschema.MustCompileString("chain.schema.json", chainSchemaSrc)

type chainFile struct {
	Name  string      `yaml:"name"`
	Steps []yaml.Node `yaml:"steps"`
}

type stepHeader struct {
	Kind Kind   `yaml:"kind"`
	Name string `yaml:"name"`
	When string `yaml:"when"`
}

// LoadChainFile reads a YAML chain definition from path.
func LoadChainFile(path string) (*Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := LoadChain(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadChain decodes a YAML chain definition. The document is checked against
// the embedded schema first; fields a step omits keep their variant defaults.
//
//	name: apartments
//	steps:
//	  - kind: build_when_close_to_pop_max
//	    buildingName: Apartments
//	  - kind: buy_upgrade
//	    when: Funds() > 20000
func LoadChain(r io.Reader) (*Chain, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read chain: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse chain: %w", err)
	}
	if err := validateChain(doc); err != nil {
		return nil, err
	}

	var file chainFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse chain: %w", err)
	}

	var c *Chain
	for i := range file.Steps {
		node := &file.Steps[i]
		var h stepHeader
		if err := node.Decode(&h); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		s, err := decodeStrategy(h.Kind, node)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, h.Kind, err)
		}
		c = c.Then(s)
		if h.Name != "" {
			c = c.Named(h.Name)
		}
		if h.When != "" {
			c = c.When(h.When)
		}
	}
	return c, nil
}

// validateChain runs the schema over the decoded YAML. The validator expects
// JSON-shaped values, so the document takes a round trip through encoding/json.
func validateChain(doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("chain is not representable as JSON: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("chain is not representable as JSON: %w", err)
	}
	if err := chainSchema.Validate(v); err != nil {
		return fmt.Errorf("invalid chain: %w", err)
	}
	return nil
}

func decodeStrategy(k Kind, node *yaml.Node) (Strategy, error) {
	switch k {
	case KindBuildWhenCloseToPopMax:
		return decodeVariant[BuildWhenCloseToPopMax](node)
	case KindBuyUpgrade:
		return decodeVariant[BuyUpgrade](node)
	case KindMaintenanceWhenDamaged:
		return decodeVariant[MaintenanceWhenBuildingIsGettingDamaged](node)
	case KindBuildWhenHasBuildingsUnderConstruct:
		return decodeVariant[BuildWhenHasBuildingsUnderConstruction](node)
	case KindAdjustBuildingTemperatures:
		return decodeVariant[AdjustBuildingTemperatures](node)
	case KindBuildBuildingOnTurnZero:
		return decodeVariant[BuildBuildingOnTurnZero](node)
	default:
		return nil, fmt.Errorf("unknown strategy kind %q", k)
	}
}

func decodeVariant[T Strategy](node *yaml.Node) (Strategy, error) {
	s := defaulted[T]()
	if err := node.Decode(&s); err != nil {
		return nil, err
	}
	return s, nil
}
