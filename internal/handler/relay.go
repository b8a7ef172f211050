package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"http-relay-go/internal/middleware"
	"http-relay-go/internal/model"
	"http-relay-go/internal/relay"
)

// RelayHandler accepts wire requests and answers with the relay's Result.
type RelayHandler struct {
	invoker model.Invoker
	logger  *slog.Logger
}

// NewRelayHandler creates a RelayHandler backed by r.
func NewRelayHandler(r *relay.Relay, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{
		invoker: r,
		logger:  logger.With("component", "relay_handler"),
	}
}

// Handle decodes the envelope, invokes the relay and encodes the Result.
// Nothing is written once the caller has gone away.
func (h *RelayHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	var wr model.WireRequest
	if err := c.Bind(&wr); err != nil {
		return h.write(c, model.ValidationFailure("invalid request envelope", err.Error()))
	}
	spec, err := wr.Spec()
	if err != nil {
		return h.write(c, model.ValidationFailure(model.MsgInvalidJSONBody, err.Error()))
	}

	result := h.invoker.Invoke(ctx, spec)

	if ctx.Err() != nil {
		h.logger.Debug("caller went away; dropping result",
			"outcome", relay.Outcome(result),
		)
		c.Set(middleware.OutcomeKey, relay.Outcome(result))
		return nil
	}
	return h.write(c, result)
}

func (h *RelayHandler) write(c echo.Context, result model.Result) error {
	outcome := relay.Outcome(result)
	c.Set(middleware.OutcomeKey, outcome)

	if f, ok := result.(*model.Failure); ok {
		h.logger.Info("relay failure",
			"kind", f.Kind,
			"message", f.Message,
			"status", f.Status,
			"details", f.Details,
		)
	}

	status, body := model.EncodeResult(result)
	return c.JSON(status, body)
}

// methodNotAllowed answers non-POST calls to the relay route with a
// classified failure instead of echo's bare 405.
func methodNotAllowed(c echo.Context) error {
	_, body := model.EncodeResult(model.ValidationFailure(
		model.MsgUnsupportedMethod, "relay requests must be sent with POST"))
	return c.JSON(http.StatusMethodNotAllowed, body)
}
