package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/gc-spends/payflow_backend/internal/apperrors"
	portssvc "github.com/gc-spends/payflow_backend/internal/core/ports/services"
)

// IdempotencyHeader carries the client-chosen idempotency token.
const IdempotencyHeader = "Idempotency-Key"

var idempotencyTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10,255}$`)

// responseRecorder tees the handler's response so it can be cached.
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware guards mutating routes. A request without the header
// executes normally. A valid token replays the cached response when the body
// matches the first execution and fails with 409 when it does not; a
// malformed token fails with 400.
func IdempotencyMiddleware(idempotencySvc portssvc.IdempotencySvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(IdempotencyHeader)
		if token == "" {
			c.Next()
			return
		}
		if !idempotencyTokenPattern.MatchString(token) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key must be 10-255 characters of [A-Za-z0-9_-]"})
			return
		}

		userID, ok := GetUserIDFromCtx(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])

		ctx := c.Request.Context()
		record, err := idempotencySvc.Check(ctx, token, userID, requestHash)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Idempotency token was already used with a different request body"})
				return
			}
			GetLoggerFromCtx(ctx).Warn("Idempotency check failed, executing without guard",
				slog.String("error", err.Error()))
		}
		if record != nil {
			contentType := record.ContentType
			if contentType == "" {
				contentType = "application/json; charset=utf-8"
			}
			c.Header("X-Idempotent-Replay", "true")
			c.Data(record.StatusCode, contentType, record.Response)
			c.Abort()
			return
		}

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder

		c.Next()

		// Cache only handler outcomes, not transport failures.
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		_ = idempotencySvc.Store(ctx, token, userID, requestHash, status,
			c.Writer.Header().Get("Content-Type"), recorder.body.Bytes())
	}
}
