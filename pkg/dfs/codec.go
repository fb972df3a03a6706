package dfs

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/dfs/pkg/dfs/config"
	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
)

// ErrInvalidDocument is returned when a spec document does not match the
// spec schema.
var ErrInvalidDocument = errors.New("invalid spec document")

//go:embed schema.json
var schemaJSON []byte

const schemaID = "inmemory://dfs/spec.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func specSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaID, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaID)
	})
	return compiledSchema, schemaErr
}

// Schema returns the JSON schema spec documents are validated against.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// validateDocument checks a generic decoded document against the schema.
// YAML documents are normalized through JSON first so scalar types match
// what the validator expects.
func validateDocument(doc any) error {
	sch, err := specSchema()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := sch.Validate(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// FromJSON decodes and validates a brace-style spec document.
func FromJSON(data []byte) (*Spec, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := checkDuplicateKeys(data); err != nil {
		return nil, err
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode spec: %w", err)
	}
	return finish(&s)
}

// checkDuplicateKeys rejects objects that repeat a key. encoding/json
// keeps the last value, which would silently drop a dialog.
func checkDuplicateKeys(data []byte) error {
	return walkKeys(json.NewDecoder(bytes.NewReader(data)), "")
}

func walkKeys(dec *json.Decoder, path string) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		seen := make(map[string]struct{})
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("parse json: %w", err)
			}
			key, _ := tok.(string)
			if _, dup := seen[key]; dup {
				if path == "/dialogs" {
					return dfserrors.Construction(dfserrors.ErrDuplicateDialog,
						"%s has multiple dialogs", key)
				}
				return fmt.Errorf("%w: duplicate key %q in %s", ErrInvalidDocument, key, pathOrRoot(path))
			}
			seen[key] = struct{}{}
			if err := walkKeys(dec, path+"/"+key); err != nil {
				return err
			}
		}
	case '[':
		for i := 0; dec.More(); i++ {
			if err := walkKeys(dec, fmt.Sprintf("%s/%d", path, i)); err != nil {
				return err
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return nil
}

func pathOrRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

// FromYAML decodes and validates a block-style spec document.
func FromYAML(data []byte) (*Spec, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode spec: %w", err)
	}
	return finish(&s)
}

func finish(s *Spec) (*Spec, error) {
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ToJSON encodes s as an indented brace-style document. Map keys are
// written in sorted order. A spec that fails Validate is not encoded.
func (s *Spec) ToJSON() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := s.Clone()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode spec: %w", err)
	}
	return buf.Bytes(), nil
}

// ToYAML encodes s as a block-style document. Map keys are written in
// sorted order. A spec that fails Validate is not encoded.
func (s *Spec) ToYAML() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := s.Clone()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode spec: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode spec: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode writes s in the given format.
func (s *Spec) Encode(format config.Format) ([]byte, error) {
	switch format {
	case config.FormatYAML:
		return s.ToYAML()
	case config.FormatJSON:
		return s.ToJSON()
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// Decode reads a spec document in the given format.
func Decode(data []byte, format config.Format) (*Spec, error) {
	switch format {
	case config.FormatYAML:
		return FromYAML(data)
	case config.FormatJSON:
		return FromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// LoadFile reads a spec, choosing the format from the file extension
// (.yaml, .yml or .json).
func LoadFile(path string) (*Spec, error) {
	format, err := config.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	s, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// WriteFile writes s to path in the format chosen by its extension.
func (s *Spec) WriteFile(path string) error {
	format, err := config.FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := s.Encode(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write spec file: %w", err)
	}
	return nil
}
