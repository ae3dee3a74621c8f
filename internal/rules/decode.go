package rules

import (
	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts both the legacy "if"/"then" keys and the
// "condition"/"message" spelling.
func (r *Recommendation) UnmarshalYAML(node *yaml.Node) error {
	fields := mappingFields(node)

	cond, ok := fields["if"]
	if !ok {
		cond, ok = fields["condition"]
	}
	if ok {
		r.If = decodeCondition(cond)
	} else {
		r.If = UnknownCondition{}
	}

	msg, ok := fields["then"]
	if !ok {
		msg = fields["message"]
	}
	if msg != nil {
		var text string
		if err := msg.Decode(&text); err == nil {
			r.Then = text
		}
	}
	return nil
}

// UnmarshalYAML reads a catalog entry, falling back to the legacy "resType"
// key when "type" is absent.
func (r *Resource) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Title    string `yaml:"title"`
		URL      string `yaml:"url"`
		Provider string `yaml:"provider"`
		Type     string `yaml:"type"`
		ResType  string `yaml:"resType"`
		Est      string `yaml:"est"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*r = Resource{
		Title:    raw.Title,
		URL:      raw.URL,
		Provider: raw.Provider,
		Type:     raw.Type,
		Est:      raw.Est,
	}
	if r.Type == "" {
		r.Type = raw.ResType
	}
	return nil
}

// decodeCondition turns a YAML node into a Condition. Shapes that are not a
// leaf, an any-node or an all-node decode to UnknownCondition.
func decodeCondition(node *yaml.Node) Condition {
	fields := mappingFields(node)
	if fields == nil {
		return UnknownCondition{}
	}

	if d, ok := fields["domain"]; ok {
		leaf := LeafCondition{}
		if err := d.Decode(&leaf.Domain); err != nil {
			return UnknownCondition{}
		}
		for key, dst := range map[string]**float64{
			"lt":  &leaf.Lt,
			"lte": &leaf.Lte,
			"gt":  &leaf.Gt,
			"gte": &leaf.Gte,
		} {
			n, ok := fields[key]
			if !ok {
				continue
			}
			v, ok := scalarFloat(n)
			if !ok {
				return UnknownCondition{}
			}
			*dst = &v
		}
		return leaf
	}

	if n, ok := fields["any"]; ok {
		children, ok := decodeChildren(n)
		if !ok {
			return UnknownCondition{}
		}
		return AnyCondition{Children: children}
	}

	if n, ok := fields["all"]; ok {
		children, ok := decodeChildren(n)
		if !ok {
			return UnknownCondition{}
		}
		return AllCondition{Children: children}
	}

	return UnknownCondition{}
}

func decodeChildren(node *yaml.Node) ([]Condition, bool) {
	node = resolveAlias(node)
	if node.Kind != yaml.SequenceNode {
		return nil, false
	}
	children := make([]Condition, 0, len(node.Content))
	for _, c := range node.Content {
		children = append(children, decodeCondition(c))
	}
	return children, true
}

// mappingFields indexes a mapping node by key. It returns nil for any other
// node kind.
func mappingFields(node *yaml.Node) map[string]*yaml.Node {
	node = resolveAlias(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields[node.Content[i].Value] = resolveAlias(node.Content[i+1])
	}
	return fields
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}
