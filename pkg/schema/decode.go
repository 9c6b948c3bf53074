package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrMalformed is returned when a document does not have the expected shape.
var ErrMalformed = errors.New("malformed document")

// DecodeComponent builds a ComponentSchema from a decoded map.
func DecodeComponent(raw map[string]any) (*ComponentSchema, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: component is empty", ErrMalformed)
	}
	var out ComponentSchema
	if err := decode(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out.Addons = splitAddons(raw)
	return &out, nil
}

// DecodePage builds a PageData from a decoded map.
func DecodePage(raw map[string]any) (*PageData, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: page is empty", ErrMalformed)
	}
	var out PageData
	if err := decode(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	addons := make(map[string]any)
	for k, v := range raw {
		if !pageKeys[k] {
			addons[k] = v
		}
	}
	if len(addons) > 0 {
		out.Addons = addons
	} else {
		out.Addons = nil
	}
	return &out, nil
}

// ParsePage reads a page document encoded as JSON or YAML.
func ParsePage(data []byte) (*PageData, error) {
	raw, err := parseMap(data)
	if err != nil {
		return nil, err
	}
	return DecodePage(raw)
}

// ParseComponent reads a single component encoded as JSON or YAML.
func ParseComponent(data []byte) (*ComponentSchema, error) {
	raw, err := parseMap(data)
	if err != nil {
		return nil, err
	}
	return DecodeComponent(raw)
}

// LoadPage reads a page document from disk.
func LoadPage(path string) (*PageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", path, err)
	}
	page, err := ParsePage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", path, err)
	}
	if page.ID == "" {
		page.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return page, nil
}

func parseMap(data []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	var raw map[string]any
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return raw, nil
	}
	if err := yaml.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return raw, nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Decode is exposed for packages that read their own declarations
// (component definitions, config) with the same rules as documents.
func Decode(input any, out any) error {
	return decode(input, out)
}
