package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	requestStartKey = "request_start"
	responseMetaKey = "response_meta"
)

// WithResponseMeta stamps the request start so handlers can report timing in the envelope meta.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Next()
	}
}

// SetMeta attaches a key to the response meta of the current request.
func SetMeta(c *gin.Context, key string, value interface{}) {
	meta := c.GetStringMap(responseMetaKey)
	if meta == nil {
		meta = map[string]interface{}{}
		c.Set(responseMetaKey, meta)
	}
	meta[key] = value
}

// SetCacheHit records whether the payload was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, "cache_hit", hit)
}

// ResponseMeta returns the accumulated meta plus processing_time_ms, or nil when nothing was recorded.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	meta := c.GetStringMap(responseMetaKey)
	start, ok := c.Get(requestStartKey)
	if !ok && len(meta) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	if t, isTime := start.(time.Time); isTime {
		out["processing_time_ms"] = time.Since(t).Milliseconds()
	}
	return out
}
