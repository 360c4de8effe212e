// Package docs registers the hubd OpenAPI document with swag.
// Regenerate with `swag init -g cmd/hubd/docs.go -o docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "hubd maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/components": {
            "get": {
                "produces": ["application/json"],
                "summary": "List active components",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ComponentsResponse"}}
                }
            }
        },
        "/discover": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Announce a discovered service",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.DiscoverRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.AnnounceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/platforms": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Load a platform for a component",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.LoadPlatformRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.AnnounceResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Host and component status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        },
        "/healthz": {"get": {"summary": "Liveness probe", "responses": {"200": {"description": "ok"}}}},
        "/readyz": {"get": {"summary": "Readiness probe", "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
    },
    "definitions": {
        "types.AnnounceResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string", "example": "load_platform.light"},
                "component": {"type": "string", "example": "light"},
                "component_active": {"type": "boolean", "example": true}
            }
        },
        "types.ComponentStatus": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "light"},
                "dependencies": {"type": "array", "items": {"type": "string"}},
                "state": {"type": "string", "example": "loaded"},
                "error": {"type": "string"},
                "setup_ms": {"type": "integer", "example": 3}
            }
        },
        "types.ComponentsResponse": {
            "type": "object",
            "properties": {
                "components": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.DiscoverRequest": {
            "type": "object",
            "properties": {
                "service": {"type": "string", "example": "hub_found"},
                "discovered": {"type": "object", "additionalProperties": true},
                "component": {"type": "string", "example": "notify"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        },
        "types.LoadPlatformRequest": {
            "type": "object",
            "properties": {
                "component": {"type": "string", "example": "light"},
                "platform": {"type": "string", "example": "hue"},
                "discovered": {"type": "object", "additionalProperties": true}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "ready"},
                "components": {"type": "array", "items": {"$ref": "#/definitions/types.ComponentStatus"}},
                "listeners": {"type": "object", "additionalProperties": {"type": "integer"}},
                "uptime_seconds": {"type": "integer", "example": 3600},
                "server_time_unix": {"type": "integer", "example": 1700000000}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "hubd API",
	Description:      "HTTP API for runtime service and platform discovery in a component host.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
