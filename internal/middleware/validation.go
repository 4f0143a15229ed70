package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"servicelog/internal/observability"
)

// responseCaptureWriter buffers the response body so it can be validated
// after the handler runs. The buffered bytes are always forwarded unchanged.
type responseCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseValidationMiddleware checks 2xx JSON responses of registered routes
// against their declared schema. A mismatch is logged, never returned to the
// client; the middleware exists to catch contract drift, not to break traffic.
func ResponseValidationMiddleware(logger *observability.Logger) gin.HandlerFunc {
	loader, err := NewSchemaLoader()
	if err != nil {
		logger.Error(context.Background(), "Response schema compilation failed, validation disabled", err, nil)
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		routePath := c.FullPath()
		if routePath == "" {
			c.Next()
			return
		}
		schema := loader.Schema(c.Request.Method, routePath)
		if schema == nil {
			c.Next()
			return
		}

		writer := &responseCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		result, err := schema.Validate(gojsonschema.NewBytesLoader(writer.body.Bytes()))
		if err != nil {
			logger.Warn(c.Request.Context(), "Response validation could not run", map[string]interface{}{
				"path":  routePath,
				"error": err.Error(),
			})
			return
		}
		if !result.Valid() {
			problems := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				problems = append(problems, desc.String())
			}
			logger.Warn(c.Request.Context(), "Response does not match declared schema", map[string]interface{}{
				"method":   c.Request.Method,
				"path":     routePath,
				"problems": problems,
			})
		}
	}
}
