package main

import (
	"fmt"
	"io"

	"github.com/benoitkugler/reportlayout/report/tree"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// fixtureElement is the YAML form of a [tree.Element]
type fixtureElement struct {
	ID       string            `mapstructure:"id"`
	Kind     string            `mapstructure:"kind"`
	Style    map[string]string `mapstructure:"style"`
	Text     string            `mapstructure:"text"`
	Width    float32           `mapstructure:"width"`  // images only
	Height   float32           `mapstructure:"height"` // images only
	Children []fixtureElement  `mapstructure:"children"`
}

// loadFixture reads a report content tree, like
//
//	id: report
//	kind: container
//	children:
//	  - id: title
//	    kind: band
//	    style: {font-size: 14pt, text-align: center}
//	    children:
//	      - {id: label, kind: text, text: Quarterly report}
//
// Style values may be written as plain YAML numbers.
func loadFixture(r io.Reader) (*tree.Element, error) {
	var raw map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}

	var root fixtureElement
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &root,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return root.toElement("")
}

func (fe fixtureElement) toElement(path string) (*tree.Element, error) {
	if fe.ID == "" {
		return nil, fmt.Errorf("invalid fixture: missing id for element at %q", path)
	}
	path += "/" + fe.ID
	if fe.Kind == "" {
		fe.Kind = "band"
	}
	kind, err := tree.ParseElementKind(fe.Kind)
	if err != nil {
		return nil, fmt.Errorf("invalid fixture: %s: %w", path, err)
	}
	out := &tree.Element{
		ID:          fe.ID,
		Kind:        kind,
		Style:       fe.Style,
		Text:        fe.Text,
		ImageWidth:  fe.Width,
		ImageHeight: fe.Height,
	}
	for _, child := range fe.Children {
		c, err := child.toElement(path)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, c)
	}
	return out, nil
}
