package main

import (
	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	cidpkg "github.com/X-CodesTech/qAudio-sub000/internal/cid"
)

// cidMiddleware attaches a correlation id to every request. An incoming
// X-QA-CID header is preserved; otherwise a fresh KSUID is generated. The
// id is echoed on the response and stored on the request context.
func (s *Server) cidMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cidpkg.HeaderName)
		if id == "" {
			id = ksuid.New().String()
		}
		c.Writer.Header().Set(cidpkg.HeaderName, id)
		c.Request = c.Request.WithContext(cidpkg.WithCID(c.Request.Context(), id))
		c.Next()
	}
}

// otelMiddleware starts a span per request with basic HTTP attributes and
// the correlation id when one is present.
func (s *Server) otelMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := otel.Tracer("qaudio-coordinator").Start(c.Request.Context(), "http.request")
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.target", c.Request.URL.Path),
		)
		if id := cidpkg.CIDFromContext(ctx); id != "" {
			span.SetAttributes(attribute.String(cidpkg.AttributeName, id))
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.End()
	}
}
