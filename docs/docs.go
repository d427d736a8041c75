// Package docs holds the swagger document served at /swagger/*, in the layout
// swag init writes, kept in step with the handler annotations by hand.
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
        "/sessions": {
            "get": {
                "description": "Get all live sessions, oldest first",
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "List sessions",
                "responses": {
                    "200": {
                        "description": "List of sessions",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/session.Session"}}
                    }
                }
            },
            "post": {
                "description": "Load the livestock or penguin tables into a new session",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Create a session",
                "parameters": [
                    {
                        "description": "Dataset to load",
                        "name": "session",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.CreateSessionRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Session created", "schema": {"$ref": "#/definitions/session.Session"}},
                    "400": {"description": "Invalid request payload", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Data source unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "description": "Retrieve one session",
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Get session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Session details", "schema": {"$ref": "#/definitions/session.Session"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["sessions"],
                "summary": "Delete session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "Session deleted"},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/options": {
            "get": {
                "description": "Sorted distinct categories, metric columns and reducers for the session's dataset",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Get dashboard options",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Control choices", "schema": {"$ref": "#/definitions/handler.OptionsResponse"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/dashboard": {
            "get": {
                "description": "Filter, aggregate, join and present the session's tables. Livestock sessions read categories, metrics, reducer and top5; penguin sessions read sex.",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Run dashboard",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Selected provinces (empty selects all)", "name": "categories", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Metric columns", "name": "metrics", "in": "query"},
                    {"enum": ["sum", "mean", "median"], "type": "string", "description": "sum, mean or median", "name": "reducer", "in": "query"},
                    {"type": "boolean", "description": "Keep only the top 5 provinces", "name": "top5", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Selected sexes (penguins)", "name": "sex", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Dashboard payload", "schema": {"$ref": "#/definitions/handler.DashboardResponse"}},
                    "400": {"description": "Invalid selection", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "422": {"description": "Malformed metric value", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/charts/bar": {
            "get": {
                "produces": ["image/png"],
                "tags": ["artifacts"],
                "summary": "Bar chart PNG",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Metric column, the first selected metric by default", "name": "metric", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "PNG image", "schema": {"type": "file"}},
                    "404": {"description": "Session or metric not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/charts/map": {
            "get": {
                "description": "Points at province coordinates, sized by the reduced value",
                "produces": ["image/png"],
                "tags": ["artifacts"],
                "summary": "Map PNG",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Metric column, the first selected metric by default", "name": "metric", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "PNG image", "schema": {"type": "file"}},
                    "400": {"description": "Session has no map", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Session or metric not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/table.xlsx": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["artifacts"],
                "summary": "Table workbook",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "XLSX workbook", "schema": {"type": "file"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/report": {
            "get": {
                "produces": ["text/html"],
                "tags": ["artifacts"],
                "summary": "HTML report",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "HTML page", "schema": {"type": "string"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/runs": {
            "get": {
                "description": "Get all dashboard runs, newest first",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "List runs",
                "responses": {
                    "200": {"description": "List of runs", "schema": {"type": "array", "items": {"$ref": "#/definitions/store.Run"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/runs/{id}": {
            "get": {
                "description": "Retrieve a run with its selection, status and stage metrics",
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Run details", "schema": {"$ref": "#/definitions/store.Run"}},
                    "404": {"description": "Run not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/runs/{id}/errors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run errors",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "List of errors", "schema": {"type": "array", "items": {"$ref": "#/definitions/store.RunError"}}},
                    "404": {"description": "Run not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/runs/{id}/logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["runs"],
                "summary": "Get run logs",
                "parameters": [{"type": "string", "description": "Run ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "List of stage logs", "schema": {"type": "array", "items": {"$ref": "#/definitions/store.RunLog"}}},
                    "404": {"description": "Run not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.CreateSessionRequest": {
            "type": "object",
            "properties": {"dataset": {"type": "string", "example": "livestock"}}
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.OptionsResponse": {
            "type": "object",
            "properties": {
                "dataset": {"type": "string"},
                "categoryColumn": {"type": "string"},
                "categories": {"type": "array", "items": {"type": "string"}},
                "metrics": {"type": "array", "items": {"type": "string"}},
                "reducers": {"type": "array", "items": {"type": "string"}},
                "defaultReducer": {"type": "string"}
            }
        },
        "handler.DashboardResponse": {
            "type": "object",
            "properties": {
                "runId": {"type": "string"},
                "sessionId": {"type": "string"},
                "dataset": {"type": "string"},
                "livestock": {"type": "object"},
                "penguins": {"type": "object"}
            }
        },
        "session.Session": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dataset": {"type": "string"},
                "createdAt": {"type": "string"},
                "rows": {"type": "integer"}
            }
        },
        "store.Run": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "sessionId": {"type": "string"},
                "dataset": {"type": "string"},
                "selection": {"type": "object"},
                "status": {"type": "string"},
                "metrics": {"type": "object"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "store.RunError": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "runId": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "store.RunLog": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "runId": {"type": "string"},
                "stage": {"type": "string"},
                "level": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object"},
                "createdAt": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Stats Dashboard API",
	Description:      "Livestock and penguin dashboards over tabular data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
