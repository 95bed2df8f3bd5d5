package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"shelfsync/internal/services/api/docs"
)

// docReader is a seam so tests can inject invalid JSON
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// serveDocJSON serves the registered spec after filling in what every operation shares
func serveDocJSON(o Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		ensureServers(spec, "/api/v1")
		if o.TitleSuffix != "" {
			if info, ok := spec["info"].(map[string]any); ok {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + o.TitleSuffix
				}
			}
		}
		ensureErrorResponseDefinition(spec)
		addDefaultResponse(spec, "400", errorResponse(400, "Bad Request", 8, "rating must be at most 5"))
		addDefaultResponse(spec, "500", errorResponse(500, "Internal Server Error", 1, "panic recovered"))
		if o.BearerAuth {
			requireBearer(spec, o.Open)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers makes sure the spec is OAS3 and has a servers array
// swagger http ui can't support 3.1 at the moment, so downconvert if needed
func ensureServers(spec map[string]any, url string) {
	if _, hasSwagger := spec["swagger"]; hasSwagger {
		spec["openapi"] = "3.0.3"
		delete(spec, "swagger")
	}
	if v, ok := spec["openapi"].(string); !ok || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

func components(spec map[string]any) map[string]any {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	return comps
}

func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

// ensureErrorResponseDefinition mirrors the error envelope the handlers write
func ensureErrorResponseDefinition(spec map[string]any) {
	schemas := child(components(spec), "schemas")
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Standard error response",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer", "format": "int32"},
			"error":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

func errorResponse(status int, text string, code int, msg string) map[string]any {
	return map[string]any{
		"description": text,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": map[string]any{
					"status_code": status,
					"status":      text,
					"code":        code,
					"error":       msg,
					"request_id":  "shelfsync/abc-000001",
				},
			},
		},
	}
}

// operations calls fn for every operation with its path
func operations(spec map[string]any, fn func(path string, op map[string]any)) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	for path, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			if op, ok := opAny.(map[string]any); ok {
				fn(path, op)
			}
		}
	}
}

// addDefaultResponse injects resp under status wherever an operation has none
func addDefaultResponse(spec map[string]any, status string, resp map[string]any) {
	operations(spec, func(_ string, op map[string]any) {
		responses := child(op, "responses")
		if _, exists := responses[status]; !exists {
			responses[status] = resp
		}
	})
}

// requireBearer declares the bearer scheme and applies it outside the open prefixes
func requireBearer(spec map[string]any, open []string) {
	child(components(spec), "securitySchemes")["bearer"] = map[string]any{
		"type":   "http",
		"scheme": "bearer",
	}
	unauth := map[string]any{
		"description": "Unauthorized",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
			},
		},
	}
	operations(spec, func(path string, op map[string]any) {
		for _, p := range open {
			if strings.HasPrefix(path, p) {
				return
			}
		}
		op["security"] = []any{map[string]any{"bearer": []any{}}}
		if responses := child(op, "responses"); responses["401"] == nil {
			responses["401"] = unauth
		}
	})
}
