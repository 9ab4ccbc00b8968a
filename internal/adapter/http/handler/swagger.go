package handler

import (
	"fmt"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// DefaultSwaggerSpecPath is where the API document lives relative to the
// working directory.
const DefaultSwaggerSpecPath = "docs/api/openapi.yaml"

var swaggerSpec atomic.Pointer[[]byte]

// SetSwaggerSpec sets the OpenAPI document served at /swagger/spec. nil
// unloads it.
func SetSwaggerSpec(spec []byte) {
	if spec == nil {
		swaggerSpec.Store(nil)
		return
	}
	swaggerSpec.Store(&spec)
}

// LoadSwaggerSpec reads the OpenAPI document from path.
func LoadSwaggerSpec(path string) error {
	spec, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read openapi document: %w", err)
	}
	SetSwaggerSpec(spec)
	return nil
}

// SwaggerSpec serves the raw OpenAPI YAML.
func SwaggerSpec(c *gin.Context) {
	spec := swaggerSpec.Load()
	if spec == nil {
		c.String(http.StatusNotFound, "OpenAPI spec not loaded")
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/yaml", *spec)
}

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>MercadoLibre Reconciler - API Docs</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/swagger/spec',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`

// SwaggerUI serves a Swagger UI page that loads /swagger/spec.
func SwaggerUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerPage))
}
