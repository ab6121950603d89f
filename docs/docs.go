// Package docs registers the OpenAPI document served under /docs.
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
        "/webhook": {
            "post": {
                "description": "Verifies the HMAC-SHA256 signature of the raw body and stores the message. Repeated message_id values are acknowledged without a second write.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["webhook"],
                "summary": "Receive an inbound message",
                "parameters": [
                    {
                        "type": "string",
                        "description": "hex HMAC-SHA256 of the raw body",
                        "name": "X-Signature",
                        "in": "header",
                        "required": true
                    },
                    {
                        "description": "Inbound message",
                        "name": "message",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/model.WebhookMessageRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.WebhookResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/messages": {
            "get": {
                "description": "Paginated list of messages, optionally filtered by sender, minimum timestamp and text substring.",
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "List messages",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "Page size (1-100)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Rows to skip", "name": "offset", "in": "query"},
                    {"type": "string", "description": "Exact sender in E.164 format", "name": "from", "in": "query"},
                    {"type": "string", "description": "Only messages with ts >= since (ISO-8601)", "name": "since", "in": "query"},
                    {"type": "string", "description": "Case-insensitive substring of text", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.MessagesListResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "description": "Totals, top 10 senders by count and the first/last message timestamps.",
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Message statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.StatsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/health/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.HealthResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/model.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "detail": {"type": "string", "example": "invalid signature"}
            }
        },
        "model.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string"}
            }
        },
        "model.Message": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "from": {"type": "string"},
                "message_id": {"type": "string"},
                "text": {"type": "string"},
                "to": {"type": "string"},
                "ts": {"type": "string"}
            }
        },
        "model.MessagesListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Message"}},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "model.SenderCount": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "from": {"type": "string"}
            }
        },
        "model.StatsResponse": {
            "type": "object",
            "properties": {
                "first_message_ts": {"type": "string"},
                "last_message_ts": {"type": "string"},
                "messages_per_sender": {"type": "array", "items": {"$ref": "#/definitions/model.SenderCount"}},
                "senders_count": {"type": "integer"},
                "total_messages": {"type": "integer"}
            }
        },
        "model.WebhookMessageRequest": {
            "type": "object",
            "required": ["from", "message_id", "to", "ts"],
            "properties": {
                "from": {"type": "string"},
                "message_id": {"type": "string", "maxLength": 255},
                "text": {"type": "string", "maxLength": 4096},
                "to": {"type": "string"},
                "ts": {"type": "string"}
            }
        },
        "model.WebhookResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"}
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
	Title:            "WhatsApp Webhook Service API",
	Description:      "Ingests signed WhatsApp-like messages and serves list, stats, health and metrics endpoints.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
