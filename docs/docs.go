// Package docs registers the OpenAPI document served under /swagger.
// Regenerate the paths with `swag init -g cmd/main.go`.
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
    "paths": {
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Authenticate",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/requestresponse.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.TokensPair"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/categories": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Categories"],
                "summary": "Required document categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}
                }
            }
        },
        "/documents": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Caller's documents",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Document"}}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Upload a document",
                "parameters": [
                    {"type": "string", "name": "category", "in": "formData", "required": true},
                    {"type": "string", "name": "family_member_name", "in": "formData"},
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "boolean", "name": "replace", "in": "query"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Document"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}},
                    "415": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        },
        "/forms/me": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Forms"],
                "summary": "Caller's intake form",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.IntakeForm"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/requestresponse.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "requestresponse.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "client@example.com"},
                "password": {"type": "string", "example": "P@ssw0rd123"}
            }
        },
        "requestresponse.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string", "example": "NOT_FOUND"},
                        "message": {"type": "string", "example": "resource not found"},
                        "status": {"type": "integer", "example": 404}
                    }
                }
            }
        },
        "model.TokensPair": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string", "example": "bearer"},
                "role": {"type": "string", "example": "customer"}
            }
        },
        "model.Document": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "category": {"type": "string"},
                "original_name": {"type": "string"},
                "mime_type": {"type": "string"},
                "size_bytes": {"type": "integer"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected"]},
                "admin_notes": {"type": "string"},
                "family_member_name": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "model.IntakeForm": {
            "type": "object",
            "properties": {
                "surname": {"type": "string"},
                "given_names": {"type": "string"},
                "birth_date": {"type": "string"},
                "nationality": {"type": "string"},
                "passport_number": {"type": "string"},
                "education": {"type": "array", "items": {"type": "object"}},
                "work_history": {"type": "array", "items": {"type": "object"}},
                "travel_history": {"type": "array", "items": {"type": "object"}},
                "relatives_abroad": {"type": "array", "items": {"type": "object"}},
                "family_members": {"type": "array", "items": {"type": "object"}},
                "is_completed": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
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
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Visa advisory portal",
	Description:      "REST API for client onboarding, document checklists and intake forms",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
