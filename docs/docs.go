// Package docs registers the OpenAPI description of the sercha-directory API.
// Regenerate with: swag init -g cmd/sercha-directory/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Sercha OSS",
            "url": "https://github.com/custodia-labs/sercha-directory/issues"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatusResponse"}}}
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ReadinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.ReadinessResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Get API version",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.VersionResponse"}}}
            }
        },
        "/directory/{type}": {
            "get": {
                "produces": ["text/html"],
                "tags": ["Directories"],
                "summary": "Render a directory listing",
                "parameters": [
                    {"type": "string", "name": "type", "in": "path", "required": true},
                    {"type": "string", "name": "letter", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "tax", "in": "query"},
                    {"type": "integer", "name": "paged", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "HTML fragment", "schema": {"type": "string"}},
                    "404": {"description": "Unknown content type", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/directories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Directories"],
                "summary": "List directory profiles",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.DirectoryProfile"}}}}
            }
        },
        "/api/v1/directories/{type}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Directories"],
                "summary": "Render a directory listing as JSON",
                "parameters": [
                    {"type": "string", "name": "type", "in": "path", "required": true},
                    {"type": "string", "name": "letter", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "tax", "in": "query"},
                    {"type": "integer", "name": "paged", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.RenderResult"}},
                    "404": {"description": "Unknown content type", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/events": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Report a content mutation",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.ContentEvent"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/http.StatusResponse"}},
                    "400": {"description": "Invalid event", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/admin/cache/versions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "List cache versions",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}}}
            }
        },
        "/api/v1/admin/cache/{type}/bump": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Invalidate a directory",
                "parameters": [{"type": "string", "name": "type", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.BumpResponse"}},
                    "404": {"description": "Unknown content type", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/admin/cache": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Flush every directory",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.FlushResult"}},
                    "409": {"description": "Flush already in progress", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/admin/cache/{type}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Flush one directory",
                "parameters": [{"type": "string", "name": "type", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.FlushResult"}},
                    "404": {"description": "Unknown content type", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Flush already in progress", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/v1/admin/cache/sweep": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Remove expired entries",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SweepResponse"}}}
            }
        }
    },
    "definitions": {
        "domain.ContentEvent": {
            "type": "object",
            "properties": {
                "event": {"type": "string", "example": "save"},
                "content_type": {"type": "string", "example": "artist"},
                "id": {"type": "string", "example": "42"},
                "old_status": {"type": "string"},
                "new_status": {"type": "string"},
                "taxonomy": {"type": "string"},
                "key": {"type": "string"}
            }
        },
        "domain.DirectoryProfile": {
            "type": "object",
            "properties": {
                "content_type": {"type": "string"},
                "label": {"type": "string"},
                "base_path": {"type": "string"},
                "letters": {"type": "string"},
                "per_page": {"type": "integer"},
                "locked_taxonomy": {"type": "string"}
            }
        },
        "domain.FlushResult": {
            "type": "object",
            "properties": {
                "deleted": {"type": "integer"},
                "versions": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "domain.RenderResult": {
            "type": "object",
            "properties": {
                "content_type": {"type": "string"},
                "html": {"type": "string"},
                "canonical_url": {"type": "string"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "status": {"type": "string", "enum": ["ok", "empty", "unavailable"]}
            }
        },
        "http.BumpResponse": {
            "type": "object",
            "properties": {
                "content_type": {"type": "string", "example": "artist"},
                "version": {"type": "integer", "example": 7}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "invalid request body"}}
        },
        "http.ReadinessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ready"},
                "components": {"type": "object", "additionalProperties": {"type": "object"}}
            }
        },
        "http.StatusResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "ok"}}
        },
        "http.SweepResponse": {
            "type": "object",
            "properties": {"removed": {"type": "integer", "example": 12}}
        },
        "http.VersionResponse": {
            "type": "object",
            "properties": {"version": {"type": "string", "example": "1.0.0"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Sercha Directory API",
	Description:      "Cached, filterable A-Z directory listings with version-based invalidation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
