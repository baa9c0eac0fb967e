package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>xetor API - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document for the public and admin endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "xetor", "version": "v1.0.0" },
  "components": { "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } } },
  "paths": {
    "/api/health": { "get": { "summary": "Store-independent API liveness", "responses": { "200": { "description": "ok" } } } },
    "/api/collections/popular": { "get": { "summary": "Popular categories and products", "responses": { "200": { "description": "grouped by collection" } } } },
    "/api/categories/popular": { "get": { "summary": "Popular categories", "responses": { "200": { "description": "documents" } } } },
    "/api/products/popular": { "get": { "summary": "Popular products with category names", "responses": { "200": { "description": "documents" } } } },
    "/api/{collection}": {
      "get": { "summary": "List documents", "responses": { "200": { "description": "documents" }, "404": { "description": "invalid collection" } } },
      "post": { "summary": "Create a document; contact messages report email_sent", "parameters": [{ "name": "send_email", "in": "query", "schema": { "type": "boolean" } }], "requestBody": { "content": { "application/json": { "schema": { "type": "object" } } } }, "responses": { "201": { "description": "created id" }, "400": { "description": "validation failed" } } }
    },
    "/api/{collection}/{id}": {
      "get": { "summary": "Get one document", "responses": { "200": { "description": "document" }, "404": { "description": "not found" } } },
      "put": { "summary": "Partial update", "requestBody": { "content": { "application/json": { "schema": { "type": "object" } } } }, "responses": { "200": { "description": "updated" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Hard delete", "responses": { "200": { "description": "deleted" } } }
    },
    "/admin/login": {
      "post": { "summary": "Admin login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } } }
    },
    "/admin/refresh": {
      "post": { "summary": "Rotate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new token pair" }, "401": { "description": "invalid refresh" } } }
    },
    "/admin/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/admin/collections": { "get": { "security": [{ "bearer": [] }], "summary": "Admin collections with counts", "responses": { "200": { "description": "counts" } } } },
    "/admin/collections/{collection}/docs": {
      "get": { "security": [{ "bearer": [] }], "summary": "List up to 200 documents", "responses": { "200": { "description": "documents" } } },
      "post": { "security": [{ "bearer": [] }], "summary": "Create from form fields with optional image", "requestBody": { "content": { "multipart/form-data": { "schema": { "type": "object" } } } }, "responses": { "201": { "description": "created" }, "502": { "description": "image upload failed" } } }
    },
    "/admin/collections/{collection}/docs/{id}": {
      "get": { "security": [{ "bearer": [] }], "summary": "Get one document", "responses": { "200": { "description": "document" } } },
      "put": { "security": [{ "bearer": [] }], "summary": "Update from form fields", "responses": { "200": { "description": "updated" } } },
      "delete": { "security": [{ "bearer": [] }], "summary": "Delete", "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/admin/users": {
      "get": { "security": [{ "bearer": [] }], "summary": "List admin accounts", "responses": { "200": { "description": "accounts" } } },
      "post": { "security": [{ "bearer": [] }], "summary": "Create admin account", "responses": { "201": { "description": "created" }, "409": { "description": "username taken" } } }
    },
    "/admin/users/{id}": {
      "put": { "security": [{ "bearer": [] }], "summary": "Rename or reset password", "responses": { "200": { "description": "updated" } } },
      "delete": { "security": [{ "bearer": [] }], "summary": "Delete admin account", "responses": { "200": { "description": "deleted" } } }
    },
    "/admin/email/test": { "post": { "security": [{ "bearer": [] }], "summary": "Send a test email", "responses": { "200": { "description": "delivery result" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
