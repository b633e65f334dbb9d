package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of a config file.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}

// SchemaJSON returns the indented JSON schema of a config file.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
