package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	evhub "librarydesk/events"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Hub *evhub.Hub
	Log *slog.Logger
}

// GET /v1/events/availability
// Streams book availability changes as server-sent events until the
// client disconnects.
func (h *Controller) Availability(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ch, cancel := h.Hub.Subscribe()
	defer cancel()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.Log.Error("sse marshal", "err", err)
				continue
			}
			if _, err := fmt.Fprintf(res, "event: availability\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
