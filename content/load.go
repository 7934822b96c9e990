package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "persona-agent/errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"gopkg.in/yaml.v3"
)

//go:embed default_content.yaml
var defaultContent []byte

// Format selects the document decoder.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank is not baked in; it rejects whitespace-only replies and ids.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Load reads the content document at path. An empty path loads the
// embedded default persona.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultContent, FormatYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidContent, "read content %s: %v", path, err)
	}
	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	catalog, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("content %s: %w", path, err)
	}
	return catalog, nil
}

// Parse decodes and validates a content document. Every error wraps
// ErrInvalidContent; callers treat it as fatal.
func Parse(data []byte, format Format) (*Catalog, error) {
	var doc document
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidContent, "decode: %v", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidContent, "validate: %v", err)
	}
	if err := checkReferences(&doc); err != nil {
		return nil, err
	}
	return newCatalog(&doc), nil
}

// checkReferences enforces what struct tags cannot: unique ids and
// edges that point at units that exist.
func checkReferences(doc *document) error {
	ids := make(map[string]struct{}, len(doc.Units))
	for _, u := range doc.Units {
		id := strings.TrimSpace(u.ID)
		if _, dup := ids[id]; dup {
			return apperrors.WrapErrorf(apperrors.ErrInvalidContent, "duplicate unit id %q", id)
		}
		ids[id] = struct{}{}
	}
	for _, u := range doc.Units {
		for _, next := range u.Next {
			next = strings.TrimSpace(next)
			if _, ok := ids[next]; !ok && next != DefaultUnitID {
				return apperrors.WrapErrorf(apperrors.ErrInvalidContent, "unit %q lists unknown successor %q", u.ID, next)
			}
		}
	}
	topicIDs := make(map[string]struct{}, len(doc.Topics))
	for _, t := range doc.Topics {
		id := strings.TrimSpace(t.ID)
		if _, dup := topicIDs[id]; dup {
			return apperrors.WrapErrorf(apperrors.ErrInvalidContent, "duplicate topic id %q", id)
		}
		topicIDs[id] = struct{}{}
		for _, unitID := range t.Units {
			if _, ok := ids[strings.TrimSpace(unitID)]; !ok {
				return apperrors.WrapErrorf(apperrors.ErrInvalidContent, "topic %q covers unknown unit %q", t.ID, unitID)
			}
		}
	}
	return nil
}
