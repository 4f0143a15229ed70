// Package middleware holds HTTP middleware shared by the API routes.
package middleware

import (
	"github.com/xeipuuv/gojsonschema"

	contextutils "servicelog/internal/utils"
)

// SchemaLoader holds compiled response schemas keyed by "METHOD path".
// Path parameters are normalized to :name before lookup.
type SchemaLoader struct {
	schemas map[string]*gojsonschema.Schema
}

// responseSchemas are the shapes the API promises for its 2xx responses.
// They check structure, not exhaustive field constraints.
var responseSchemas = map[string]string{
	"GET /v1/dashboard/summary": `{
		"type": "object",
		"required": ["total", "status_counts", "last_30_days", "prior_30_days", "trend_delta", "mean_resolution_days"],
		"properties": {
			"total": {"type": "integer", "minimum": 0},
			"status_counts": {"type": "object"},
			"last_30_days": {"type": "integer", "minimum": 0},
			"prior_30_days": {"type": "integer", "minimum": 0},
			"trend_delta": {"type": "integer"},
			"mean_resolution_days": {"type": "number", "minimum": 0}
		}
	}`,
	"GET /v1/dashboard/urgent": `{
		"type": "object",
		"required": ["overdue", "on_hold"],
		"properties": {
			"overdue": {
				"type": "object",
				"required": ["entries", "overflow"],
				"properties": {
					"entries": {"type": "array"},
					"overflow": {"type": "integer", "minimum": 0}
				}
			},
			"on_hold": {
				"type": "object",
				"required": ["entries", "overflow"],
				"properties": {
					"entries": {"type": "array"},
					"overflow": {"type": "integer", "minimum": 0}
				}
			}
		}
	}`,
	"GET /v1/dashboard/trends": `{
		"type": "object",
		"required": ["daily", "weekly_by_status"],
		"properties": {
			"daily": {"type": "array"},
			"weekly_by_status": {"type": "array"}
		}
	}`,
	"GET /v1/dashboard/distributions": `{
		"type": "object",
		"required": ["call_types", "warranty_statuses"],
		"properties": {
			"call_types": {"type": "array"},
			"warranty_statuses": {"type": "array"}
		}
	}`,
	"POST /v1/service-logs": `{
		"type": "object",
		"required": ["call_id", "pending"],
		"properties": {
			"call_id": {"type": "string", "minLength": 1},
			"pending": {"type": "boolean"}
		}
	}`,
	"GET /v1/service-logs/unsolved": `{
		"type": "object",
		"required": ["calls"],
		"properties": {
			"calls": {"type": "array"}
		}
	}`,
	"POST /v1/dashboard/refresh": `{
		"type": "object",
		"required": ["cache_version"],
		"properties": {
			"cache_version": {"type": "integer", "minimum": 0}
		}
	}`,
}

// NewSchemaLoader compiles the bundled response schemas.
func NewSchemaLoader() (*SchemaLoader, error) {
	loader := &SchemaLoader{schemas: make(map[string]*gojsonschema.Schema, len(responseSchemas))}
	for route, raw := range responseSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to compile response schema for %s", route)
		}
		loader.schemas[route] = schema
	}
	return loader, nil
}

// Schema returns the compiled schema for a route, or nil when the route has
// no registered shape.
func (sl *SchemaLoader) Schema(method, path string) *gojsonschema.Schema {
	return sl.schemas[method+" "+path]
}
