package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Timeline Tracker API",
    "description": "Stores one timeline document (timeframe and ticket estimates) per user identifier",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/api/timeline": {
      "get": {
        "tags": ["timeline"],
        "summary": "Get a timeline",
        "parameters": [{"name": "userId", "in": "query", "required": true, "type": "string"}],
        "responses": {"200": {"description": "stored document"}, "400": {"description": "userId is required"}, "404": {"description": "Data not found"}}
      },
      "post": {
        "tags": ["timeline"],
        "summary": "Save a timeline",
        "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}],
        "responses": {"200": {"description": "saved"}, "400": {"description": "userId and data are required"}}
      },
      "delete": {
        "tags": ["timeline"],
        "summary": "Delete a timeline",
        "parameters": [{"name": "userId", "in": "query", "required": true, "type": "string"}],
        "responses": {"200": {"description": "deleted"}, "400": {"description": "userId is required"}}
      }
    },
    "/api/timeline/export": {
      "get": {
        "tags": ["timeline"],
        "summary": "Export a timeline as csv or xlsx",
        "parameters": [
          {"name": "userId", "in": "query", "required": true, "type": "string"},
          {"name": "format", "in": "query", "required": false, "type": "string", "enum": ["csv", "xlsx"]}
        ],
        "responses": {"200": {"description": "file"}, "404": {"description": "Data not found"}}
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
