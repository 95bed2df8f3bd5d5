// Package docs registers the OpenAPI description of the shelfsync api with swag
// keep the paths in step with the @Router annotations on the handlers
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "tags": [
        {"name": "Catalog", "description": "paged browsing, search and counts"},
        {"name": "Discovery", "description": "local search index with server fallback"},
        {"name": "Reviews", "description": "per book reviews with pending submissions"},
        {"name": "TBR", "description": "the to be read list"},
        {"name": "Meta", "description": "health, readiness and build info"}
    ],
    "paths": {
        "/catalog/state": {
            "get": {"tags": ["Catalog"], "summary": "Current view state", "operationId": "catalogState",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/catalog/stats": {
            "get": {"tags": ["Catalog"], "summary": "Cache, batch and cooldown counters", "operationId": "catalogStats",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/catalog/load": {
            "post": {"tags": ["Catalog"], "summary": "Replace the view with a page", "operationId": "catalogLoad",
                "requestBody": {"$ref": "#/components/requestBodies/LoadInput"},
                "responses": {"200": {"$ref": "#/components/responses/View"}, "429": {"$ref": "#/components/responses/Error"}}}
        },
        "/catalog/append": {
            "post": {"tags": ["Catalog"], "summary": "Append a page to the view", "operationId": "catalogAppend",
                "requestBody": {"$ref": "#/components/requestBodies/LoadInput"},
                "responses": {"200": {"$ref": "#/components/responses/View"}, "429": {"$ref": "#/components/responses/Error"}}}
        },
        "/catalog/goto": {
            "post": {"tags": ["Catalog"], "summary": "Jump to an absolute page", "operationId": "catalogGoto",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/GotoInput"}}}},
                "responses": {"200": {"$ref": "#/components/responses/View"}}}
        },
        "/catalog/search": {
            "post": {"tags": ["Catalog"], "summary": "Start a new query from page one", "operationId": "catalogSearch",
                "requestBody": {"$ref": "#/components/requestBodies/LoadInput"},
                "responses": {"200": {"$ref": "#/components/responses/View"}}}
        },
        "/catalog/next": {
            "post": {"tags": ["Catalog"], "summary": "Next page", "operationId": "catalogNext",
                "responses": {"200": {"$ref": "#/components/responses/View"}}}
        },
        "/catalog/prev": {
            "post": {"tags": ["Catalog"], "summary": "Previous page", "operationId": "catalogPrev",
                "responses": {"200": {"$ref": "#/components/responses/View"}}}
        },
        "/catalog/refresh": {
            "post": {"tags": ["Catalog"], "summary": "Drop cached pages and reload", "operationId": "catalogRefresh",
                "responses": {"200": {"$ref": "#/components/responses/View"}}}
        },
        "/catalog/count": {
            "post": {"tags": ["Catalog"], "summary": "Count books under filters", "operationId": "catalogCount",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/CountInput"}}}},
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/catalog/books/{id}": {
            "get": {"tags": ["Catalog"], "summary": "Book detail", "operationId": "catalogBook",
                "parameters": [{"$ref": "#/components/parameters/ID"}],
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "404": {"$ref": "#/components/responses/Error"}}}
        },
        "/discovery/search": {
            "get": {"tags": ["Discovery"], "summary": "Search by query string", "operationId": "discoverySearchGet",
                "parameters": [
                    {"name": "q", "in": "query", "schema": {"type": "string", "maxLength": 200}},
                    {"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 200}},
                    {"name": "remote", "in": "query", "schema": {"type": "boolean"}}
                ],
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}},
            "post": {"tags": ["Discovery"], "summary": "Search, local index first", "operationId": "discoverySearch",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/SearchInput"}}}},
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/discovery/suggest": {
            "get": {"tags": ["Discovery"], "summary": "Prefix suggestions", "operationId": "discoverySuggest",
                "parameters": [{"name": "prefix", "in": "query", "required": true, "schema": {"type": "string", "maxLength": 100}}],
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/discovery/stats": {
            "get": {"tags": ["Discovery"], "summary": "Index and search counters", "operationId": "discoveryStats",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/discovery/seed": {
            "post": {"tags": ["Discovery"], "summary": "Index persisted pages", "operationId": "discoverySeed",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/discovery/history": {
            "delete": {"tags": ["Discovery"], "summary": "Forget recent queries", "operationId": "discoveryClearHistory",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/reviews": {
            "post": {"tags": ["Reviews"], "summary": "Submit a review", "operationId": "reviewsSubmit",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/SubmitInput"}}}},
                "responses": {"201": {"$ref": "#/components/responses/Envelope"}, "202": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/reviews/{bookId}": {
            "get": {"tags": ["Reviews"], "summary": "Reviews of a book, pending first", "operationId": "reviewsLoad",
                "parameters": [
                    {"$ref": "#/components/parameters/BookID"},
                    {"name": "refresh", "in": "query", "schema": {"type": "boolean"}}
                ],
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/reviews/{bookId}/pending": {
            "get": {"tags": ["Reviews"], "summary": "Submissions not yet confirmed", "operationId": "reviewsPending",
                "parameters": [{"$ref": "#/components/parameters/BookID"}],
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/tbr": {
            "get": {"tags": ["TBR"], "summary": "List entries", "operationId": "tbrList",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}},
            "post": {"tags": ["TBR"], "summary": "Add a book", "operationId": "tbrAdd",
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/AddInput"}}}},
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}},
            "delete": {"tags": ["TBR"], "summary": "Clear the list", "operationId": "tbrClear",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/tbr/{id}": {
            "delete": {"tags": ["TBR"], "summary": "Remove a book", "operationId": "tbrRemove",
                "parameters": [{"$ref": "#/components/parameters/ID"}],
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}, "404": {"$ref": "#/components/responses/Error"}}}
        },
        "/tbr/{id}/restore": {
            "post": {"tags": ["TBR"], "summary": "Undo the last removal of a book", "operationId": "tbrRestore",
                "parameters": [{"$ref": "#/components/parameters/ID"}],
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/meta/health": {
            "get": {"tags": ["Meta"], "summary": "Health check", "operationId": "metaHealth",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/meta/ready": {
            "get": {"tags": ["Meta"], "summary": "Readiness with dependency checks", "operationId": "metaReady",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/meta/version": {
            "get": {"tags": ["Meta"], "summary": "Build and version info", "operationId": "metaVersion",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/meta/service": {
            "get": {"tags": ["Meta"], "summary": "Service info and uptime", "operationId": "metaService",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        },
        "/meta/stats": {
            "get": {"tags": ["Meta"], "summary": "Counters of every module and the store", "operationId": "metaStats",
                "responses": {"200": {"$ref": "#/components/responses/Envelope"}}}
        }
    },
    "components": {
        "parameters": {
            "ID": {"name": "id", "in": "path", "required": true, "schema": {"type": "string"}},
            "BookID": {"name": "bookId", "in": "path", "required": true, "schema": {"type": "string"}}
        },
        "requestBodies": {
            "LoadInput": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/LoadInput"}}}}
        },
        "responses": {
            "Envelope": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Envelope"}}}},
            "View": {"description": "page and resulting state", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Envelope"}}}},
            "Error": {"description": "error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
        },
        "schemas": {
            "Envelope": {
                "type": "object",
                "properties": {
                    "status_code": {"type": "integer", "format": "int32"},
                    "status": {"type": "string"},
                    "request_id": {"type": "string"},
                    "data": {}
                },
                "required": ["status_code", "status"]
            },
            "Filters": {
                "type": "object",
                "additionalProperties": {"type": "array", "items": {"type": "string"}}
            },
            "LoadInput": {
                "type": "object",
                "properties": {
                    "page": {"type": "integer", "minimum": 1},
                    "q": {"type": "string", "maxLength": 200},
                    "filters": {"$ref": "#/components/schemas/Filters"}
                }
            },
            "GotoInput": {
                "type": "object",
                "properties": {"page": {"type": "integer", "minimum": 1}}
            },
            "CountInput": {
                "type": "object",
                "properties": {"filters": {"$ref": "#/components/schemas/Filters"}}
            },
            "SearchInput": {
                "type": "object",
                "properties": {
                    "q": {"type": "string", "maxLength": 200},
                    "limit": {"type": "integer", "minimum": 1, "maximum": 200},
                    "remote": {"type": "boolean"}
                }
            },
            "SubmitInput": {
                "type": "object",
                "properties": {
                    "bookId": {"type": "string", "maxLength": 200},
                    "comment": {"type": "string", "maxLength": 4000},
                    "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                    "userEmail": {"type": "string", "format": "email"},
                    "userName": {"type": "string", "maxLength": 200}
                },
                "required": ["bookId", "comment", "rating"]
            },
            "AddInput": {
                "type": "object",
                "properties": {
                    "id": {"type": "string", "maxLength": 200},
                    "title": {"type": "string", "maxLength": 500},
                    "author": {"type": "string", "maxLength": 500},
                    "imageUrl": {"type": "string", "format": "uri"}
                },
                "required": ["id"]
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "shelfsync api",
	Description:      "Book catalog sync, discovery, reviews and the to be read list.",
	InfoInstanceName: "shelfsync",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
