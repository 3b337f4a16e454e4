package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academy Booking API",
        "description": "Seat booking, capacity and credit tracking for academy seasons",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Slots", "description": "Monthly slot catalog"},
        {"name": "Capacity", "description": "Capacity projection per day-type and time-slot"},
        {"name": "Bookings", "description": "Seat enrollment and attendance"},
        {"name": "Schedules", "description": "Weekly pattern sync"},
        {"name": "Credits", "description": "Reconciled credit balances"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/seasons/{seasonId}/slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "List slots for a season month with occupied seat counts",
                "parameters": [
                    {"name": "seasonId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/{seasonId}/slots/generate": {
            "post": {
                "tags": ["Slots"],
                "summary": "Generate slot-month documents from the season templates",
                "parameters": [
                    {"name": "seasonId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/{seasonId}/slots/resync": {
            "post": {
                "tags": ["Slots"],
                "summary": "Resync slot capacities from the season templates",
                "parameters": [
                    {"name": "seasonId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seasons/{seasonId}/capacity": {
            "get": {
                "tags": ["Capacity"],
                "summary": "Capacity info for a day-type and time-slot combination",
                "parameters": [
                    {"name": "seasonId", "in": "path", "required": true, "type": "string"},
                    {"name": "dayType", "in": "query", "required": true, "type": "string"},
                    {"name": "timeSlot", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/{slotId}/enrollments": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Enroll a student into a slot month",
                "parameters": [
                    {"name": "slotId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Capacity exceeded or already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/{slotId}/enrollments/{studentId}": {
            "delete": {
                "tags": ["Bookings"],
                "summary": "Remove a student's enrollment from a slot month",
                "parameters": [
                    {"name": "slotId", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/slots/{slotId}/enrollments/{studentId}/attendance": {
            "put": {
                "tags": ["Bookings"],
                "summary": "Mark or clear attendance for an enrolled student",
                "parameters": [
                    {"name": "slotId", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/schedule-sync": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Sync a student's weekly pattern into monthly enrollments",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SyncScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Capacity exceeded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/credits": {
            "get": {
                "tags": ["Credits"],
                "summary": "Real remaining credits for a student",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SlotMonth": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "season_id": {"type": "string"},
                "month": {"type": "string"},
                "day_type": {"type": "string"},
                "time_slot": {"type": "string"},
                "category": {"type": "string"},
                "capacity": {"type": "integer"},
                "is_break": {"type": "boolean"}
            }
        },
        "CapacityInfo": {
            "type": "object",
            "properties": {
                "slot_id": {"type": "string"},
                "month": {"type": "string"},
                "total_capacity": {"type": "integer"},
                "current_enrollment": {"type": "integer"},
                "available": {"type": "integer"},
                "is_full": {"type": "boolean"},
                "earliest_available_date": {"type": "string"}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"}
            },
            "required": ["studentId"]
        },
        "AttendanceRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "attended": {"type": "boolean"}
            },
            "required": ["date"]
        },
        "SyncScheduleRequest": {
            "type": "object",
            "properties": {
                "seasonId": {"type": "string"},
                "pattern": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PatternEntry"}
                },
                "packageStart": {"type": "string"},
                "packageEnd": {"type": "string"}
            },
            "required": ["seasonId", "pattern", "packageStart"]
        },
        "PatternEntry": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "integer"},
                "timeSlot": {"type": "string"}
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
