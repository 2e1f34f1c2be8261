package report

import (
	"encoding/json"
	"io"

	"github.com/invopop/jsonschema"
)

// Schema reflects a closed, inlined JSON Schema for v.
func Schema(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(v)
}

// WriteSchema encodes the schema of v as indented JSON.
func WriteSchema(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Schema(v))
}
