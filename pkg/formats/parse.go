package formats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/quire/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrMalformedDefinition is returned when a format file holds no JSON object.
var ErrMalformedDefinition = errors.New("malformed story format definition")

// ParseDefinition decodes a format loader file. Loader files wrap a JSON object in a
// callback, e.g. window.storyFormat({...}); everything outside the outermost braces
// is ignored.
func ParseDefinition(data []byte) (*domain.FormatProperties, error) {
	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start < 0 || end < start {
		return nil, ErrMalformedDefinition
	}

	var raw map[string]any
	if err := json.Unmarshal(data[start:end+1], &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDefinition, err)
	}

	var props domain.FormatProperties
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &props,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode format properties: %w", err)
	}
	if props.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrMalformedDefinition)
	}
	return &props, nil
}
