package manifest

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Parser Functions
// =============================================================================

// Parse parses manifest YAML into a MainConfig.
// This is a pure function - no I/O, no side effects.
//
// Field names are wire-stable; fields not known to the schema are ignored.
// Unit declaration order is preserved for each section.
func Parse(text string) (*MainConfig, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, NewParseError("", err.Error(), ErrInvalidYAML)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 ||
		root.Content[0].Kind != yaml.MappingNode {
		return nil, NewParseError("", "manifest must be a YAML mapping", ErrInvalidYAML)
	}

	cfg := &MainConfig{
		Apps:     make(map[string]AppConfig),
		Services: make(map[string]ServiceConfig),
		Dbs:      make(map[string]DbConfig),
	}

	doc := root.Content[0]
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "project":
			if err := value.Decode(&cfg.Project); err != nil {
				return nil, NewParseError("project", "project must be a string", ErrInvalidYAML)
			}
		case "app":
			order, err := decodeSection(value, "app", func(name string, node *yaml.Node) error {
				var app AppConfig
				if err := node.Decode(&app); err != nil {
					return NewParseError("app."+name, err.Error(), ErrInvalidYAML)
				}
				cfg.Apps[name] = app
				return nil
			})
			if err != nil {
				return nil, err
			}
			cfg.appOrder = order
		case "service":
			order, err := decodeSection(value, "service", func(name string, node *yaml.Node) error {
				var svc ServiceConfig
				if err := node.Decode(&svc); err != nil {
					return NewParseError("service."+name, err.Error(), ErrInvalidYAML)
				}
				if svc.Image == "" {
					return NewParseError("service."+name, "service must have an image", ErrServiceNoImage)
				}
				cfg.Services[name] = svc
				return nil
			})
			if err != nil {
				return nil, err
			}
			cfg.serviceOrder = order
		case "db":
			order, err := decodeSection(value, "db", func(name string, node *yaml.Node) error {
				var db DbConfig
				if err := node.Decode(&db); err != nil {
					return NewParseError("db."+name, err.Error(), ErrInvalidYAML)
				}
				cfg.Dbs[name] = db
				return nil
			})
			if err != nil {
				return nil, err
			}
			cfg.dbOrder = order
		}
		// Unknown top-level keys are ignored.
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeSection walks one unit section mapping, preserving key order.
func decodeSection(node *yaml.Node, section string, decode func(name string, node *yaml.Node) error) ([]string, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, NewParseError(section, section+" must be a mapping of unit names", ErrInvalidYAML)
	}
	var order []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if err := decode(name, node.Content[i+1]); err != nil {
			return nil, err
		}
		order = append(order, name)
	}
	return order, nil
}

// validate checks cross-section constraints after decoding.
func validate(cfg *MainConfig) error {
	if cfg.Project == "" {
		return NewParseError("project", "project name is required", ErrNoProject)
	}
	if cfg.UnitCount() == 0 {
		return NewParseError("", "no units declared", ErrNoUnits)
	}

	// Service names derive from short names, so a short name may appear in
	// only one section.
	seen := make(map[string]string)
	check := func(section string, names []string) error {
		for _, name := range names {
			if prev, ok := seen[name]; ok {
				return NewParseError(section+"."+name, "name already declared under "+prev, ErrDuplicateName)
			}
			seen[name] = section
		}
		return nil
	}
	if err := check("app", cfg.appOrder); err != nil {
		return err
	}
	if err := check("service", cfg.serviceOrder); err != nil {
		return err
	}
	if err := check("db", cfg.dbOrder); err != nil {
		return err
	}
	return nil
}
