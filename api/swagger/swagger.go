package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Surveillance Planning API",
        "description": "Exam surveillance assignment engine",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Planning", "description": "Roster generation and reset"},
        {"name": "Assignments", "description": "Manual roster corrections"},
        {"name": "Rosters", "description": "Duty roster queries"},
        {"name": "Teachers", "description": "Teacher directory and preferences"},
        {"name": "Imports", "description": "Spreadsheet ingestion"},
        {"name": "Exports", "description": "Downloadable roster documents"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/planning/solve": {
            "post": {
                "tags": ["Planning"],
                "summary": "Generate a duty roster for one dataset",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SolveRequest"}}
                ],
                "responses": {
                    "200": {"description": "Solve outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request"},
                    "423": {"description": "A solve is already running for the dataset"}
                }
            }
        },
        "/planning/reset": {
            "post": {
                "tags": ["Planning"],
                "summary": "Clear every assignment of one dataset",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "Deleted count", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign a teacher to an exam session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditRequest"}}
                ],
                "responses": {
                    "201": {"description": "Assignment created"},
                    "404": {"description": "Teacher or session not found"},
                    "409": {"description": "Duplicate or overlapping assignment"},
                    "423": {"description": "A solve is running for the dataset"}
                }
            },
            "delete": {
                "tags": ["Assignments"],
                "summary": "Unassign a teacher from an exam session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditRequest"}}
                ],
                "responses": {
                    "200": {"description": "Assignment removed"},
                    "404": {"description": "Assignment not found"},
                    "423": {"description": "A solve is running for the dataset"}
                }
            }
        },
        "/rosters/teachers/{id}": {
            "get": {
                "tags": ["Rosters"],
                "summary": "Duty roster of one teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "string"},
                    {"name": "session_type", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Roster", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rosters/session": {
            "get": {
                "tags": ["Rosters"],
                "summary": "Supervisors of one exam session",
                "parameters": [
                    {"name": "semester", "in": "query", "required": true, "type": "string"},
                    {"name": "session_type", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "start_time", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Session roster", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rosters/sessions": {
            "get": {
                "tags": ["Rosters"],
                "summary": "Sessions of a dataset with coverage counts",
                "parameters": [
                    {"name": "semester", "in": "query", "required": true, "type": "string"},
                    {"name": "session_type", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Session summaries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rosters/workload": {
            "get": {
                "tags": ["Rosters"],
                "summary": "Per-teacher duty counts against grade quotas",
                "parameters": [
                    {"name": "semester", "in": "query", "required": true, "type": "string"},
                    {"name": "session_type", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Workload rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "grade_code", "in": "query", "type": "string"},
                    {"name": "participates", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Teacher page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Fetch one teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Teacher"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/teachers/{id}/participation": {
            "patch": {
                "tags": ["Teachers"],
                "summary": "Toggle surveillance participation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated teacher"}
                }
            }
        },
        "/teachers/{id}/preferences": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List one teacher's preferences",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Preferences"}
                }
            },
            "put": {
                "tags": ["Teachers"],
                "summary": "Replace one teacher's preferences",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Stored preferences"}
                }
            }
        },
        "/grades": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List grade quota definitions",
                "responses": {
                    "200": {"description": "Grades"}
                }
            }
        },
        "/imports/teachers": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import the teacher directory workbook",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "200": {"description": "Import summary"}
                }
            }
        },
        "/imports/grades": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import the grade quota workbook",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "200": {"description": "Import summary"}
                }
            }
        },
        "/imports/exams": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import the exam calendar workbook for one dataset",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "200": {"description": "Import summary"}
                }
            }
        },
        "/imports/preferences": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import the preference workbook for one dataset",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "200": {"description": "Import summary"}
                }
            }
        },
        "/exports/teachers/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download one teacher's duty roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        },
        "/exports/session": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the supervisor sheet of one session",
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        },
        "/exports/workload": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the per-teacher workload report",
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        }
    },
    "definitions": {
        "SolveRequest": {
            "type": "object",
            "required": ["semester", "session_type"],
            "properties": {
                "semester": {"type": "string"},
                "session_type": {"type": "string", "enum": ["principal", "makeup"]},
                "policy": {"type": "string", "enum": ["equal_quota", "weighted", "strict_max_quota"]},
                "min_surveillants_par_salle": {"type": "integer", "minimum": 1},
                "allow_single_surveillant": {"type": "boolean"},
                "max_time_in_seconds": {"type": "integer", "minimum": 60},
                "relative_gap_limit": {"type": "number"},
                "preference_weight": {"type": "number"}
            }
        },
        "ResetRequest": {
            "type": "object",
            "required": ["semester", "session_type"],
            "properties": {
                "semester": {"type": "string"},
                "session_type": {"type": "string"}
            }
        },
        "EditRequest": {
            "type": "object",
            "required": ["teacher_id", "date", "start_time", "semester", "session_type"],
            "properties": {
                "teacher_id": {"type": "string"},
                "date": {"type": "string"},
                "start_time": {"type": "string"},
                "semester": {"type": "string"},
                "session_type": {"type": "string"},
                "room_code": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
