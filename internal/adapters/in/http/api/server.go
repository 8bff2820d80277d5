package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /api/v1/orders)
	PlaceOrder(ctx echo.Context) error
	// (GET /api/v1/orders/{orderId})
	GetOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// (POST /api/v1/orders/{orderId}/queue)
	QueueOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// (POST /api/v1/orders/{orderId}/cancel)
	CancelOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// (POST /api/v1/orders/{orderId}/delivery-requests)
	CreateDeliveryRequest(ctx echo.Context, orderId openapi_types.UUID) error
	// (POST /api/v1/delivery-requests/{requestId}/respond)
	RespondToDeliveryRequest(ctx echo.Context, requestId openapi_types.UUID) error
	// (POST /api/v1/delivery-requests/{requestId}/complete)
	CompleteDeliveryRequest(ctx echo.Context, requestId openapi_types.UUID) error
	// (PUT /api/v1/dasher/availability)
	UpdateDasherAvailability(ctx echo.Context) error
	// (GET /api/v1/dasher/offers)
	ListDasherOffers(ctx echo.Context) error
	// (GET /api/v1/runs)
	ListOpenRuns(ctx echo.Context, params ListOpenRunsParams) error
	// (POST /api/v1/runs/{runId}/claim)
	ClaimRun(ctx echo.Context, runId openapi_types.UUID) error
	// (POST /api/v1/runs/{runId}/pickup)
	MarkPickedUp(ctx echo.Context, runId openapi_types.UUID) error
	// (POST /api/v1/runs/{runId}/deliver)
	MarkDelivered(ctx echo.Context, runId openapi_types.UUID) error
	// (POST /api/v1/runs/{runId}/cancel)
	CancelRun(ctx echo.Context, runId openapi_types.UUID) error
	// (GET /api/v1/queues)
	GetQueueSnapshots(ctx echo.Context, params GetQueueSnapshotsParams) error
	// (POST /internal/v1/payments/{paymentId}/outcome)
	RecordSettlementOutcome(ctx echo.Context, paymentId openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func bindUUID(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

func (w *ServerInterfaceWrapper) PlaceOrder(ctx echo.Context) error {
	return w.Handler.PlaceOrder(ctx)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	orderId, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, orderId)
}

func (w *ServerInterfaceWrapper) QueueOrder(ctx echo.Context) error {
	orderId, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.QueueOrder(ctx, orderId)
}

func (w *ServerInterfaceWrapper) CancelOrder(ctx echo.Context) error {
	orderId, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.CancelOrder(ctx, orderId)
}

func (w *ServerInterfaceWrapper) CreateDeliveryRequest(ctx echo.Context) error {
	orderId, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.CreateDeliveryRequest(ctx, orderId)
}

func (w *ServerInterfaceWrapper) RespondToDeliveryRequest(ctx echo.Context) error {
	requestId, err := bindUUID(ctx, "requestId")
	if err != nil {
		return err
	}
	return w.Handler.RespondToDeliveryRequest(ctx, requestId)
}

func (w *ServerInterfaceWrapper) CompleteDeliveryRequest(ctx echo.Context) error {
	requestId, err := bindUUID(ctx, "requestId")
	if err != nil {
		return err
	}
	return w.Handler.CompleteDeliveryRequest(ctx, requestId)
}

func (w *ServerInterfaceWrapper) UpdateDasherAvailability(ctx echo.Context) error {
	return w.Handler.UpdateDasherAvailability(ctx)
}

func (w *ServerInterfaceWrapper) ListDasherOffers(ctx echo.Context) error {
	return w.Handler.ListDasherOffers(ctx)
}

func (w *ServerInterfaceWrapper) ListOpenRuns(ctx echo.Context) error {
	var params ListOpenRunsParams

	err := runtime.BindQueryParameter("form", true, false, "hallId", ctx.QueryParams(), &params.HallId)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter hallId: %s", err))
	}
	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	return w.Handler.ListOpenRuns(ctx, params)
}

func (w *ServerInterfaceWrapper) ClaimRun(ctx echo.Context) error {
	runId, err := bindUUID(ctx, "runId")
	if err != nil {
		return err
	}
	return w.Handler.ClaimRun(ctx, runId)
}

func (w *ServerInterfaceWrapper) MarkPickedUp(ctx echo.Context) error {
	runId, err := bindUUID(ctx, "runId")
	if err != nil {
		return err
	}
	return w.Handler.MarkPickedUp(ctx, runId)
}

func (w *ServerInterfaceWrapper) MarkDelivered(ctx echo.Context) error {
	runId, err := bindUUID(ctx, "runId")
	if err != nil {
		return err
	}
	return w.Handler.MarkDelivered(ctx, runId)
}

func (w *ServerInterfaceWrapper) CancelRun(ctx echo.Context) error {
	runId, err := bindUUID(ctx, "runId")
	if err != nil {
		return err
	}
	return w.Handler.CancelRun(ctx, runId)
}

func (w *ServerInterfaceWrapper) GetQueueSnapshots(ctx echo.Context) error {
	var params GetQueueSnapshotsParams

	err := runtime.BindQueryParameter("form", true, false, "hallId", ctx.QueryParams(), &params.HallId)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter hallId: %s", err))
	}

	return w.Handler.GetQueueSnapshots(ctx, params)
}

func (w *ServerInterfaceWrapper) RecordSettlementOutcome(ctx echo.Context) error {
	paymentId, err := bindUUID(ctx, "paymentId")
	if err != nil {
		return err
	}
	return w.Handler.RecordSettlementOutcome(ctx, paymentId)
}

// EchoRouter is the subset of *echo.Echo and *echo.Group used for registration.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlersWithBaseURL registers the public routes relative to baseURL, which lets
// callers mount them on an echo group that already carries the prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/orders", w.PlaceOrder)
	router.GET(baseURL+"/orders/:orderId", w.GetOrder)
	router.POST(baseURL+"/orders/:orderId/queue", w.QueueOrder)
	router.POST(baseURL+"/orders/:orderId/cancel", w.CancelOrder)
	router.POST(baseURL+"/orders/:orderId/delivery-requests", w.CreateDeliveryRequest)
	router.POST(baseURL+"/delivery-requests/:requestId/respond", w.RespondToDeliveryRequest)
	router.POST(baseURL+"/delivery-requests/:requestId/complete", w.CompleteDeliveryRequest)
	router.PUT(baseURL+"/dasher/availability", w.UpdateDasherAvailability)
	router.GET(baseURL+"/dasher/offers", w.ListDasherOffers)
	router.GET(baseURL+"/runs", w.ListOpenRuns)
	router.POST(baseURL+"/runs/:runId/claim", w.ClaimRun)
	router.POST(baseURL+"/runs/:runId/pickup", w.MarkPickedUp)
	router.POST(baseURL+"/runs/:runId/deliver", w.MarkDelivered)
	router.POST(baseURL+"/runs/:runId/cancel", w.CancelRun)
	router.GET(baseURL+"/queues", w.GetQueueSnapshots)
}

// RegisterWebhookHandlersWithBaseURL registers the payment processor callback, which is
// guarded by a different scheme than the public routes. The full path is
// /internal/v1/payments/{paymentId}/outcome.
func RegisterWebhookHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/payments/:paymentId/outcome", w.RecordSettlementOutcome)
}
