package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const queryResponseSchemaJSON = `{
	"type": "object",
	"required": ["advice", "routing", "data"],
	"properties": {
		"success": {"type": "boolean"},
		"query": {"type": "string"},
		"advice": {"type": "string"},
		"routing": {
			"type": "object",
			"required": ["required_servers"],
			"properties": {
				"intent": {"type": "string"},
				"required_servers": {"type": "array", "items": {"type": "string"}},
				"reasoning": {"type": "string"}
			}
		},
		"data": {
			"type": "object",
			"properties": {
				"successful_servers": {"type": ["array", "null"], "items": {"type": "string"}},
				"failed_servers": {"type": ["array", "null"]},
				"data": {"type": ["object", "null"]}
			}
		},
		"execution_time_seconds": {"type": "number"},
		"timestamp": {"type": "string"}
	}
}`

const locationsSchemaJSON = `{
	"type": "object",
	"required": ["districts"],
	"properties": {
		"districts": {
			"type": "object",
			"additionalProperties": {"type": "array", "items": {"type": "string"}}
		}
	}
}`

const alertResponseSchemaJSON = `{
	"type": "object",
	"required": ["location", "coordinates", "alert_summary"],
	"properties": {
		"location": {"type": "string"},
		"coordinates": {
			"type": "object",
			"required": ["latitude", "longitude"],
			"properties": {
				"latitude": {"type": "number"},
				"longitude": {"type": "number"}
			}
		},
		"district": {"type": ["string", "null"]},
		"alert_summary": {"type": "string"},
		"timestamp": {"type": "string"}
	}
}`

var (
	querySchema   = mustSchema("query response", queryResponseSchemaJSON)
	catalogSchema = mustSchema("locations", locationsSchemaJSON)
	alertSchema   = mustSchema("alert response", alertResponseSchemaJSON)
)

func mustSchema(name, src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("backend: invalid %s schema: %v", name, err))
	}
	return schema
}

// validate checks body against schema and folds all violations into one error.
func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return errors.New("schema violations: " + strings.Join(errs, "; "))
}
