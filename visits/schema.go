package visits

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/iancoleman/strcase"
)

type SchemaKind string

const (
	FlatSchema      SchemaKind = "flat"
	KeyedSchema     SchemaKind = "keyed"
	EnvelopedSchema SchemaKind = "enveloped"
)

const maxExactFloat = 1 << 53

const (
	DefaultCountField = "hits"
	EnvelopeField     = "body"
)

// Schema describes where a counting endpoint puts the count in its response.
//
//	Flat("hits")                  {"hits": 42}
//	Keyed("example.com")          {"example.com": 42}
//	Enveloped(Flat("hits"))       {"body": {"hits": 42}} or {"body": "{\"hits\": 42}"}
type Schema struct {
	Kind  SchemaKind
	Key   string
	Inner *Schema
}

func Flat(field string) Schema {
	return Schema{Kind: FlatSchema, Key: field}
}

func Keyed(domain string) Schema {
	return Schema{Kind: KeyedSchema, Key: domain}
}

func Enveloped(inner Schema) Schema {
	return Schema{Kind: EnvelopedSchema, Key: EnvelopeField, Inner: &inner}
}

// Path returns the key path the count is read from.
func (s Schema) Path() []string {
	path := []string{s.Key}
	if s.Kind == EnvelopedSchema && s.Inner != nil {
		path = append(path, s.Inner.Path()...)
	}
	return path
}

func (s Schema) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, strings.Join(s.Path(), "."))
}

// NormalizeKind maps a configured kind name onto its SchemaKind. Surrounding
// space and case are ignored.
func NormalizeKind(kind string) SchemaKind {
	return SchemaKind(strcase.ToKebab(strings.TrimSpace(kind)))
}

// ParseSchema builds a schema from its configured form. Kind names are
// matched case-insensitively; an empty kind means flat.
func ParseSchema(kind string, key string, envelope bool) (Schema, error) {
	var schema Schema

	switch NormalizeKind(kind) {
	case "", FlatSchema:
		if key == "" {
			key = DefaultCountField
		}
		schema = Flat(key)
	case KeyedSchema:
		if key == "" {
			return Schema{}, fmt.Errorf("keyed schema requires a domain")
		}
		schema = Keyed(key)
	default:
		return Schema{}, fmt.Errorf("unknown schema kind %q", kind)
	}

	if envelope {
		schema = Enveloped(schema)
	}

	return schema, nil
}

// ExtractCount reads the visit count from a counting endpoint response.
// The value at the schema's path must be a non-negative integral JSON number.
func ExtractCount(payload []byte, schema Schema) (int, error) {
	return extract(payload, schema, nil)
}

func extract(payload []byte, schema Schema, parent []string) (int, error) {
	path := append(parent[:len(parent):len(parent)], schema.Key)

	var object map[string]json.RawMessage
	if err := json.Unmarshal(payload, &object); err != nil {
		return 0, ResponseShape(path, "payload is not a JSON object")
	}

	raw, ok := object[schema.Key]
	if !ok {
		return 0, ResponseShape(path, "key not present")
	}

	if schema.Kind != EnvelopedSchema {
		return parseCount(raw, path)
	}

	if schema.Inner == nil {
		return 0, ResponseShape(path, "envelope has no inner schema")
	}

	// some gateways deliver the envelope body as a JSON encoded string
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = []byte(encoded)
	}

	return extract(raw, *schema.Inner, path)
}

func parseCount(raw json.RawMessage, path []string) (int, error) {
	literal := string(bytes.TrimSpace(raw))
	if literal == "" || literal == "null" {
		return 0, ResponseShape(path, "count is null")
	}

	if c := literal[0]; c != '-' && (c < '0' || c > '9') {
		return 0, ResponseShape(path, fmt.Sprintf("count %s is not a number", literal))
	}

	if value, err := strconv.ParseInt(literal, 10, 64); err == nil {
		if value < 0 || value > math.MaxInt {
			return 0, ResponseShape(path, fmt.Sprintf("count %s is out of range", literal))
		}
		return int(value), nil
	}

	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, ResponseShape(path, fmt.Sprintf("count %s is not a number", literal))
	}

	if value != math.Trunc(value) {
		return 0, ResponseShape(path, fmt.Sprintf("count %s is not an integer", literal))
	}

	// floats lose integer precision beyond 2^53
	if value < 0 || value > maxExactFloat {
		return 0, ResponseShape(path, fmt.Sprintf("count %s is out of range", literal))
	}

	return int(value), nil
}
