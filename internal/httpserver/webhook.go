package httpserver

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/service"
	"github.com/elkhamyyali/ecommerceback/internal/webhook"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
)

const maxWebhookBody = 1 << 20

type WebhookHTTP struct {
	Verifier *webhook.Verifier
	Orders   *service.OrderService
}

// Checkout receives the gateway's raw JSON body; the signature covers the exact bytes sent.
func (h *WebhookHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.checkout")

	if h.Verifier == nil {
		l.Error("webhook_checkout_error", "status", 503, "reason", "webhook secret not configured")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "webhook not configured")
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		return fail(l, "webhook_checkout", apperr.Validation("Webhook Error: "+err.Error()))
	}

	ev, err := h.Verifier.ConstructEvent(payload, c.Request().Header.Get(webhook.SignatureHeader))
	if err != nil {
		return fail(l, "webhook_checkout", apperr.Validation("Webhook Error: "+err.Error()))
	}

	if string(ev.Type) == webhook.CheckoutCompleted {
		session, err := webhook.Session(ev)
		if err != nil {
			return fail(l, "webhook_checkout", apperr.Validation("Webhook Error: "+err.Error()))
		}
		order, err := h.Orders.CreateCardOrder(ctx, *session)
		if err != nil {
			return fail(l, "webhook_checkout", err)
		}
		l.Info("webhook_checkout_success", "event_id", ev.ID, "session_id", session.ID, "order_id", order.ID, "sequence_id", order.SequenceID)
	} else {
		l.Debug("webhook_event_ignored", "event_id", ev.ID, "type", ev.Type)
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
