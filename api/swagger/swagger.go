package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PAUD HI Backend API",
        "description": "Content and indicator reporting backend for the national early childhood development program",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and session management"},
        {"name": "Users", "description": "Account and permission management"},
        {"name": "Reports", "description": "Indicator report workflow per ministry"},
        {"name": "News", "description": "News articles with publish workflow"},
        {"name": "Resources", "description": "Learning material library"},
        {"name": "FAQ", "description": "Public question and answer entries"},
        {"name": "Dashboard", "description": "Public and staff aggregates"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by username or email",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials or inactive account"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Public achievement summary over approved reports",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List indicator reports scoped to the caller's organization",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Missing or invalid token"}
                }
            },
            "post": {
                "tags": ["Reports"],
                "summary": "Create a draft indicator report",
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Cross-organization write denied"}
                }
            }
        },
        "/reports/{id}/review": {
            "post": {
                "tags": ["Reports"],
                "summary": "Approve or reject a pending report",
                "responses": {
                    "200": {"description": "Reviewed"},
                    "400": {"description": "Report is not pending"},
                    "403": {"description": "Reviewer role required"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
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
