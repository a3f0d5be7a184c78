// Package docs holds the Swagger 2.0 document served at /swagger/*any. It is
// kept in the layout swag init emits and must be updated alongside the handler
// annotations.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign up",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/buildings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["buildings"],
                "summary": "List buildings",
                "responses": {"200": {"description": "count, buildings", "schema": {"type": "object", "additionalProperties": true}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a controller at 5.0 kW HVAC, 2.0 kW lighting, NORMAL mode",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["buildings"],
                "summary": "Register building",
                "parameters": [{"description": "Building", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateBuildingRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.BuildingState"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/buildings/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["buildings"],
                "summary": "Get building state",
                "parameters": [{"type": "string", "description": "Building ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.BuildingState"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["buildings"],
                "summary": "Delete building",
                "parameters": [{"type": "string", "description": "Building ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/buildings/{id}/signal": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "price > 0.15 scales HVAC by 0.7 and lighting by 0.8 (compounding) and sets ENERGY_SAVING; otherwise resets to NORMAL defaults",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["buildings"],
                "summary": "Apply price signal",
                "parameters": [
                    {"type": "string", "description": "Building ID", "name": "id", "in": "path", "required": true},
                    {"description": "Price signal", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignalRequest"}}
                ],
                "responses": {
                    "200": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'), type and building. A date-only 'to' covers the whole day.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List control events",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range. Date-only treated as end of day.", "name": "to", "in": "query"},
                    {"enum": ["CREATE", "ADJUST", "MODE_CHANGE", "DELETE"], "type": "string", "description": "Event type", "name": "type", "in": "query"},
                    {"type": "string", "description": "Only events of this building", "name": "building_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrades to a WebSocket and pushes {\"type\":\"state\",\"data\":<snapshot>} every interval",
                "tags": ["buildings"],
                "summary": "Stream building state",
                "parameters": [
                    {"type": "string", "description": "Building ID", "name": "building", "in": "query", "required": true},
                    {"type": "string", "example": "2s", "description": "Go duration, max 10s", "name": "interval", "in": "query"},
                    {"type": "integer", "description": "Milliseconds, max 10000", "name": "interval_ms", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"password": {"type": "string"}, "username": {"type": "string"}}
        },
        "handlers.CreateBuildingRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"description": "Human readable building name", "type": "string", "example": "HQ"}}
        },
        "handlers.SignalRequest": {
            "type": "object",
            "required": ["price"],
            "properties": {
                "price": {"description": "Energy price per kWh. Above 0.15 enters energy saving.", "type": "number", "example": 0.2},
                "duration_minutes": {"description": "Signal duration in minutes. Recorded but has no effect on control.", "type": "integer", "example": 60}
            }
        },
        "models.BuildingState": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "hvac_power_kw": {"type": "number"},
                "lighting_power_kw": {"type": "number"},
                "mode": {"type": "string", "enum": ["NORMAL", "ENERGY_SAVING", "MAXIMUM_SAVING"]},
                "last_price": {"type": "number"},
                "last_duration_minutes": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Building Energy Management API",
	Description:      "Price-signal driven HVAC and lighting control for buildings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
