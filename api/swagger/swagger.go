package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TA Hiring API",
        "description": "Teaching-assistant applications, candidate ranking and selection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Applications", "description": "Applicant and lecturer lifecycle actions"},
        {"name": "Recommendations", "description": "Ranking, filtering and bulk rejection of open applications"},
        {"name": "Metrics", "description": "Service counters"}
    ],
    "paths": {
        "/applications": {
            "post": {
                "tags": ["Applications"],
                "summary": "Apply to TA a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "TOO_MANY_APPLICATIONS or INSUFFICIENT_GRADE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "APPLICATION_EXISTS", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "COMMUNICATION_ERROR", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applications/{courseCode}": {
            "get": {
                "tags": ["Applications"],
                "summary": "Get the caller's application for a course",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applications/{courseCode}/withdraw": {
            "post": {
                "tags": ["Applications"],
                "summary": "Withdraw the caller's pending application",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "APPLICATION_APPROVED, INVALID_TRANSITION or STALE_APPLICATION", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "NOTIFICATION_FAILED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseCode}/applications": {
            "get": {
                "tags": ["Applications"],
                "summary": "List pending applications for a course",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseCode}/applications/{username}/select": {
            "post": {
                "tags": ["Applications"],
                "summary": "Hire an applicant as TA",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "username", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "COURSE_NOT_RECRUITING, TA_NOT_SAVED, INVALID_TRANSITION or STALE_APPLICATION", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "COMMUNICATION_ERROR or NOTIFICATION_FAILED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseCode}/applications/{username}/reject": {
            "post": {
                "tags": ["Applications"],
                "summary": "Reject a pending application",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "username", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "INVALID_TRANSITION or STALE_APPLICATION", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "NOTIFICATION_FAILED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseCode}/recommendations": {
            "get": {
                "tags": ["Recommendations"],
                "summary": "Rank open applications",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "criteria", "in": "query", "type": "string", "description": "Comma-separated, applied in order; the last one dominates. GRADE, EXPERIENCE, RATING"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "VALIDATION_ERROR", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseCode}/recommendations/filter": {
            "post": {
                "tags": ["Recommendations"],
                "summary": "Filter open applications by minimum thresholds",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FilterThresholdsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "VALIDATION_ERROR", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseCode}/recommendations/auto-reject": {
            "post": {
                "tags": ["Recommendations"],
                "summary": "Reject every open application that fails the thresholds",
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FilterThresholdsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "VALIDATION_ERROR", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "NOTIFICATION_FAILED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{courseCode}/recommendations/export": {
            "get": {
                "tags": ["Recommendations"],
                "summary": "Download the ranked candidate list",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "courseCode", "in": "path", "required": true, "type": "string"},
                    {"name": "criteria", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Service counters snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateApplicationRequest": {
            "type": "object",
            "required": ["courseCode"],
            "properties": {
                "courseCode": {"type": "string"}
            }
        },
        "FilterThresholdsRequest": {
            "type": "object",
            "properties": {
                "minGrade": {"type": "string"},
                "minRating": {"type": "string"},
                "minAverageRating": {"type": "string"},
                "minExperience": {"type": "string"}
            }
        },
        "Application": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "courseCode": {"type": "string"},
                "username": {"type": "string"},
                "quarter": {"type": "integer"},
                "grade": {"type": "number"},
                "status": {"type": "string", "enum": ["PENDING", "APPROVED", "REJECTED", "REVOKED"]},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
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
