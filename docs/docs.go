// Package docs holds the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "ApiKey": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    },
    "paths": {
        "/types": {
            "get": {
                "produces": ["application/json"],
                "summary": "List registered file types",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}}
            }
        },
        "/files/{filename}": {
            "get": {
                "summary": "Read a file",
                "description": "Returns the raw content, or the decoded value as JSON with ?decode=true.",
                "parameters": [
                    {"type": "string", "description": "file name, e.g. prices.json", "name": "filename", "in": "path", "required": true},
                    {"type": "boolean", "description": "decode with the type's codec", "name": "decode", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "put": {
                "security": [{"ApiKey": []}],
                "consumes": ["text/plain"],
                "summary": "Create or overwrite a file",
                "parameters": [{"type": "string", "description": "file name", "name": "filename", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "delete": {
                "security": [{"ApiKey": []}],
                "summary": "Delete a file",
                "description": "Deleting a missing file succeeds.",
                "parameters": [{"type": "string", "description": "file name", "name": "filename", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            },
            "head": {
                "summary": "Check whether a file exists",
                "parameters": [{"type": "string", "description": "file name", "name": "filename", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/files/{filename}/export": {
            "post": {
                "security": [{"ApiKey": []}],
                "produces": ["application/json"],
                "summary": "Export a file to the media store",
                "parameters": [{"type": "string", "description": "file name", "name": "filename", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ExportResult"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "service.ExportResult": {
            "type": "object",
            "properties": {
                "expires_in": {"type": "integer"},
                "key": {"type": "string"},
                "url": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DataPost API",
	Description:      "Typed documents stored as records and addressed by <name>.<type> filenames.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
