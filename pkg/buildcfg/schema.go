package buildcfg

import (
	"github.com/swaggest/jsonschema-go"
)

// An entry is declared either as a bare module path or a list of module
// paths.
func (EntrySpec) PrepareJSONSchema(schema *jsonschema.Schema) error {
	str := jsonschema.String.ToSchemaOrBool()

	arr := jsonschema.Array.ToSchemaOrBool()
	arr.TypeObject.ItemsEns().SchemaOrBool = &str

	schema.Type = nil
	schema.OneOf = []jsonschema.SchemaOrBool{str, arr}

	return nil
}
