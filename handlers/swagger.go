package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the posts API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
// basePath is the mount point of the post collection, e.g. "/posts".
func RegisterSwagger(rg *gin.Engine, basePath string) {
	doc := strings.ReplaceAll(swaggerJSON, "{{base}}", basePath)

	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>blog posts API — Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "blog-posts", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "Post": { "type": "object", "properties": { "id": {"type":"string"}, "title": {"type":"string"}, "content": {"type":"string"}, "author": {"type":"string"}, "publishDate": {"type":"string","format":"date-time"}, "created": {"type":"string","format":"date-time"} } },
      "Author": { "oneOf": [ {"type":"string"}, {"type":"object","properties":{"firstName":{"type":"string"},"lastName":{"type":"string"}}} ] },
      "Error": { "type": "object", "properties": { "message": {"type":"string"} } }
    }
  },
  "paths": {
    "{{base}}": {
      "get": { "summary": "List posts (capped)", "responses": { "200": { "description": "{results: [Post]}" }, "500": { "description": "Internal server error" } } },
      "post": {
        "summary": "Create a post",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["title","content","author"],"properties":{"title":{"type":"string"},"content":{"type":"string"},"author":{"$ref":"#/components/schemas/Author"},"publishDate":{"type":"string","format":"date-time"}}}}}},
        "responses": { "201": { "description": "created Post" }, "400": { "description": "plain-text missing field message" }, "500": { "description": "Internal server error" } }
      }
    },
    "{{base}}/{id}": {
      "get": { "summary": "Get a post", "responses": { "200": { "description": "Post" }, "404": { "description": "Not found" }, "500": { "description": "Internal server error" } } },
      "put": {
        "summary": "Partially update a post; body id must equal path id",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["id"],"properties":{"id":{"type":"string"},"title":{"type":"string"},"content":{"type":"string"},"author":{"$ref":"#/components/schemas/Author"}}}}}},
        "responses": { "204": { "description": "updated" }, "400": { "description": "plain-text id mismatch message" }, "404": { "description": "Not found" }, "500": { "description": "Internal server error" } }
      },
      "delete": { "summary": "Delete a post (idempotent)", "responses": { "204": { "description": "deleted or already absent" }, "500": { "description": "Internal server error" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
