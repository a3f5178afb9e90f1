package chart

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxChartFileSize bounds chart documents read from disk.
const maxChartFileSize = 4 * 1024 * 1024

// Load reads a chart file. YAML and JSON are both accepted. The chart name
// defaults to the file name without extension.
func Load(path string, opts ConvertOptions) (*Data, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access chart file: %w", err)
	}
	if info.Size() > maxChartFileSize {
		return nil, fmt.Errorf("chart file %s is %d bytes, maximum is %d", path, info.Size(), maxChartFileSize)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}

	d, err := Decode(bytes.NewReader(raw), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Decode reads one chart document.
//
// The attributes form lists entries directly:
//
//	name: example
//	planets:
//	  Sun: {Sign: Capricorn, House: 9, Retrograde: false}
//	houses:
//	  1: {Sign: Taurus, Cusp: 45.6}
//	aspects:
//	  - {Planet1: Sun, Planet2: Moon, Type: Trine}
//
// The positions form is converted with FromPositions:
//
//	name: example
//	positions:
//	  bodies:
//	    Sun: {longitude: 287.5, speed: 1.02}
//	  cusps: [45.6, 70.1, ...]
//
// Entry order in the document is preserved.
func Decode(r io.Reader, opts ConvertOptions) (*Data, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty chart document")
		}
		return nil, fmt.Errorf("failed to parse chart: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("empty chart document")
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, nodeError(doc, "chart must be a mapping")
	}

	d := New("")
	var positions *yaml.Node
	hasEntries := false

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "name":
			d.Name = val.Value
		case "planets":
			hasEntries = true
			if err := decodeCategory(val, &d.Planets, false); err != nil {
				return nil, err
			}
		case "points":
			hasEntries = true
			if err := decodeCategory(val, &d.Points, false); err != nil {
				return nil, err
			}
		case "houses":
			hasEntries = true
			if err := decodeHouses(val, d); err != nil {
				return nil, err
			}
		case "aspects":
			hasEntries = true
			if val.Kind != yaml.SequenceNode {
				return nil, nodeError(val, "aspects must be a list")
			}
			for _, item := range val.Content {
				attrs, err := decodeAttributes(item)
				if err != nil {
					return nil, err
				}
				d.AddAspect(attrs)
			}
		case "positions":
			positions = val
		default:
			return nil, nodeError(key, fmt.Sprintf("unknown chart section %q", key.Value))
		}
	}

	if positions != nil {
		if hasEntries {
			return nil, nodeError(positions, "positions cannot be combined with planets, houses, points or aspects")
		}
		p, err := decodePositions(positions)
		if err != nil {
			return nil, err
		}
		return FromPositions(d.Name, p, opts)
	}

	return d, nil
}

func decodeCategory(node *yaml.Node, c *Category, numericKeys bool) error {
	if node.Kind != yaml.MappingNode {
		return nodeError(node, "expected a mapping of names to attributes")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		name := key.Value
		if numericKeys {
			n, err := strconv.Atoi(name)
			if err != nil || n < 1 {
				return nodeError(key, fmt.Sprintf("house key %q is not a positive number", name))
			}
			name = strconv.Itoa(n)
		}
		attrs, err := decodeAttributes(val)
		if err != nil {
			return err
		}
		c.Set(name, attrs)
	}
	return nil
}

// decodeHouses accepts a mapping keyed by house number or a list in house order.
func decodeHouses(node *yaml.Node, d *Data) error {
	if node.Kind == yaml.SequenceNode {
		for i, item := range node.Content {
			attrs, err := decodeAttributes(item)
			if err != nil {
				return err
			}
			d.AddHouse(i+1, attrs)
		}
		return nil
	}
	return decodeCategory(node, &d.Houses, true)
}

func decodeAttributes(node *yaml.Node) (Attributes, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "expected a mapping of attributes")
	}
	attrs := make(Attributes, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var v any
		if err := val.Decode(&v); err != nil {
			return nil, nodeError(val, err.Error())
		}
		if v == nil {
			return nil, nodeError(val, fmt.Sprintf("attribute %q has no value", key.Value))
		}
		if _, nested := v.(map[string]any); nested {
			return nil, nodeError(val, fmt.Sprintf("attribute %q must be a scalar or a list", key.Value))
		}
		attrs[key.Value] = v
	}
	return attrs, nil
}

type bodyPosition struct {
	Longitude  *float64 `yaml:"longitude"`
	Speed      float64  `yaml:"speed"`
	Retrograde *bool    `yaml:"retrograde"`
}

func decodePositions(node *yaml.Node) (Positions, error) {
	var p Positions
	if node.Kind != yaml.MappingNode {
		return p, nodeError(node, "positions must be a mapping")
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "bodies", "planets":
			if val.Kind != yaml.MappingNode {
				return p, nodeError(val, "bodies must be a mapping of names to positions")
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				var bp bodyPosition
				if err := val.Content[j+1].Decode(&bp); err != nil {
					return p, nodeError(val.Content[j+1], err.Error())
				}
				if bp.Longitude == nil {
					return p, nodeError(val.Content[j+1], fmt.Sprintf("body %q has no longitude", val.Content[j].Value))
				}
				p.Bodies = append(p.Bodies, Body{
					Name:       val.Content[j].Value,
					Longitude:  *bp.Longitude,
					Speed:      bp.Speed,
					Retrograde: bp.Retrograde,
				})
			}
		case "cusps":
			if err := val.Decode(&p.Cusps); err != nil {
				return p, nodeError(val, err.Error())
			}
		default:
			return p, nodeError(key, fmt.Sprintf("unknown positions field %q", key.Value))
		}
	}
	return p, nil
}

func nodeError(node *yaml.Node, msg string) error {
	return fmt.Errorf("line %d: %s", node.Line, msg)
}
