package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClassGrid API",
        "description": "School administration API with automatic timetable generation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Staff login"},
        {"name": "Timetables", "description": "Timetable generation and lifecycle"},
        {"name": "Scheduling", "description": "Slot grid and teacher availability"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate staff",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/classes/{classId}/timetable/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a class timetable",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class not found"}
                }
            }
        },
        "/classes/{classId}/timetable/resolve": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Resolve ambiguous teacher slots",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No generation result to resolve"}
                }
            }
        },
        "/classes/{classId}/timetable": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a class timetable",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{classId}/timetable/activate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Activate the class draft timetable",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No draft to activate"}
                }
            }
        },
        "/classes/{classId}/timetable/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Export a class timetable",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate timetables for every class",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/BulkGenerateRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/time-slots": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "List the weekly time-slot grid",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/{teacherId}": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "List a teacher's availability windows",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "teacherId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "strategy": {"type": "string", "enum": ["balanced", "morning-heavy", "afternoon-heavy"]},
                "preserveExisting": {"type": "boolean"},
                "seed": {"type": "integer"}
            }
        },
        "ResolveTimetableRequest": {
            "type": "object",
            "properties": {
                "selections": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                }
            },
            "required": ["selections"]
        },
        "BulkGenerateRequest": {
            "type": "object",
            "properties": {
                "strategy": {"type": "string", "enum": ["balanced", "morning-heavy", "afternoon-heavy"]},
                "preserveExisting": {"type": "boolean"}
            }
        },
        "GenerationResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "timetable": {"type": "array", "items": {"type": "object"}},
                "conflicts": {"type": "array", "items": {"type": "object"}},
                "multiTeacherSlots": {"type": "array", "items": {"type": "object"}},
                "statistics": {"type": "object"},
                "distribution": {"type": "object"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
