package builder

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/resume/store"
)

const keepAliveInterval = 25 * time.Second

// events streams the caller's state as server-sent events: once on connect and
// after every mutation. Slow readers miss intermediate states, never the last.
func (h *Handler) events(c *gin.Context) {
	st, ok := h.storeFor(c, "resume", "events")
	if !ok {
		return
	}

	updates := make(chan store.State, 1)
	// Observers run under the store lock and must not block.
	unsubscribe := st.Subscribe(func(state store.State) {
		select {
		case updates <- state:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- state:
			default:
			}
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("state", newResumeResponse(st.State()))
	c.Writer.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case state := <-updates:
			c.SSEvent("state", newResumeResponse(state))
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
