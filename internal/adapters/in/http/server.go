package http

import (
	"context"
	"net/http"
	"time"

	"campusdash/internal/adapters/in/http/api"
	"campusdash/internal/core/application/usecases/commands"
	"campusdash/internal/core/application/usecases/queries"
	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type PlaceOrderHandler interface {
	Handle(ctx context.Context, command commands.PlaceOrderCommand) error
}

type QueueOrderHandler interface {
	Handle(ctx context.Context, command commands.QueueOrderCommand) error
}

type CancelOrderHandler interface {
	Handle(ctx context.Context, command commands.CancelOrderCommand) error
}

type DeliveryRequestHandler interface {
	HandleCreate(ctx context.Context, command commands.CreateDeliveryRequestCommand) error
	HandleRespond(ctx context.Context, command commands.RespondToDeliveryRequestCommand) error
	HandleComplete(ctx context.Context, command commands.CompleteDeliveryRequestCommand) error
}

type RunHandler interface {
	HandleClaim(ctx context.Context, command commands.ClaimRunCommand) error
	HandlePickedUp(ctx context.Context, command commands.MarkPickedUpCommand) error
	HandleDelivered(ctx context.Context, command commands.MarkDeliveredCommand) error
	HandleCancel(ctx context.Context, command commands.CancelRunCommand) error
}

type AvailabilityHandler interface {
	Handle(ctx context.Context, command commands.UpdateDasherAvailabilityCommand) error
}

type SettlementOutcomeHandler interface {
	Handle(ctx context.Context, command commands.RecordSettlementOutcomeCommand) error
}

type GetOrderHandler interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
}

type ListOpenRunsHandler interface {
	Handle(ctx context.Context, query queries.ListOpenRunsQuery) ([]queries.OpenRunView, error)
}

type ListDasherOffersHandler interface {
	Handle(ctx context.Context, query queries.ListDasherOffersQuery) ([]queries.DasherOfferView, error)
}

type QueueSnapshotsHandler interface {
	Handle(ctx context.Context, query queries.GetQueueSnapshotsQuery) ([]queries.QueueSnapshotView, error)
}

// Handlers groups the use cases the server dispatches to.
type Handlers struct {
	PlaceOrder        PlaceOrderHandler
	QueueOrder        QueueOrderHandler
	CancelOrder       CancelOrderHandler
	DeliveryRequests  DeliveryRequestHandler
	Runs              RunHandler
	Availability      AvailabilityHandler
	SettlementOutcome SettlementOutcomeHandler

	GetOrder         GetOrderHandler
	ListOpenRuns     ListOpenRunsHandler
	ListDasherOffers ListDasherOffersHandler
	QueueSnapshots   QueueSnapshotsHandler
}

// Server implements api.ServerInterface. Every handler resolves the caller from the
// verified token before building its command, so ownership checks run on trusted ids.
type Server struct {
	h   Handlers
	now func() time.Time
}

var _ api.ServerInterface = (*Server)(nil)

func NewServer(h Handlers) *Server {
	return &Server{h: h, now: time.Now}
}

// PlaceOrder handles POST /api/v1/orders.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	buyerID, err := CallerID(ctx)
	if err != nil {
		return err
	}

	var body api.NewOrder
	if err = ctx.Bind(&body); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}

	orderID := kernel.NewUUID()
	if body.OrderId != nil {
		if orderID, err = toKernelUUID("orderId", *body.OrderId); err != nil {
			return err
		}
	}
	pool := body.Pool != nil && *body.Pool

	cmd, err := commands.NewPlaceOrderCommand(orderID, buyerID, body.HallId, kernel.WindowType(body.WindowType), pool)
	if err != nil {
		return err
	}
	if err = s.h.PlaceOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, api.Created{Id: orderID.Bytes()})
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	callerID, err := CallerID(ctx)
	if err != nil {
		return err
	}
	id, err := toKernelUUID("orderId", orderId)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderQuery(id, callerID)
	if err != nil {
		return err
	}
	view, err := s.h.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, toAPIOrder(view))
}

// QueueOrder handles POST /api/v1/orders/{orderId}/queue.
func (s *Server) QueueOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	buyerID, err := CallerID(ctx)
	if err != nil {
		return err
	}
	id, err := toKernelUUID("orderId", orderId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewQueueOrderCommand(id, buyerID)
	if err != nil {
		return err
	}
	if err = s.h.QueueOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel.
func (s *Server) CancelOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	buyerID, err := CallerID(ctx)
	if err != nil {
		return err
	}
	id, err := toKernelUUID("orderId", orderId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCancelOrderCommand(id, buyerID)
	if err != nil {
		return err
	}
	if err = s.h.CancelOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CreateDeliveryRequest handles POST /api/v1/orders/{orderId}/delivery-requests.
func (s *Server) CreateDeliveryRequest(ctx echo.Context, orderId openapi_types.UUID) error {
	buyerID, err := CallerID(ctx)
	if err != nil {
		return err
	}
	id, err := toKernelUUID("orderId", orderId)
	if err != nil {
		return err
	}

	var body api.NewDeliveryRequest
	if err = ctx.Bind(&body); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}

	requestID := kernel.NewUUID()
	if body.RequestId != nil {
		if requestID, err = toKernelUUID("requestId", *body.RequestId); err != nil {
			return err
		}
	}

	items := make([]deliveryrequest.Item, 0, len(body.Items))
	for _, it := range body.Items {
		items = append(items, deliveryrequest.Item{Name: it.Name, Quantity: it.Quantity})
	}
	var instructions string
	if body.Instructions != nil {
		instructions = *body.Instructions
	}

	cmd, err := commands.NewCreateDeliveryRequestCommand(
		requestID, id, buyerID,
		kernel.QueueKey{HallID: kernel.HallID(body.HallId), WindowType: kernel.WindowType(body.WindowType)},
		items, body.MeetPoint, instructions,
	)
	if err != nil {
		return err
	}
	if err = s.h.DeliveryRequests.HandleCreate(ctx.Request().Context(), cmd); err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, api.Created{Id: requestID.Bytes()})
}

// RespondToDeliveryRequest handles POST /api/v1/delivery-requests/{requestId}/respond.
func (s *Server) RespondToDeliveryRequest(ctx echo.Context, requestId openapi_types.UUID) error {
	dasherID, err := CallerID(ctx)
	if err != nil {
		return err
	}
	id, err := toKernelUUID("requestId", requestId)
	if err != nil {
		return err
	}

	var body api.DeliveryRequestResponse
	if err = ctx.Bind(&body); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}

	cmd, err := commands.NewRespondToDeliveryRequestCommand(id, dasherID, body.Accept)
	if err != nil {
		return err
	}
	if err = s.h.DeliveryRequests.HandleRespond(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CompleteDeliveryRequest handles POST /api/v1/delivery-requests/{requestId}/complete.
func (s *Server) CompleteDeliveryRequest(ctx echo.Context, requestId openapi_types.UUID) error {
	dasherID, err := CallerID(ctx)
	if err != nil {
		return err
	}
	id, err := toKernelUUID("requestId", requestId)
	if err != nil {
		return err
	}

	var body api.PinProof
	if err = ctx.Bind(&body); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}

	cmd, err := commands.NewCompleteDeliveryRequestCommand(id, dasherID, body.Pin)
	if err != nil {
		return err
	}
	if err = s.h.DeliveryRequests.HandleComplete(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// UpdateDasherAvailability handles PUT /api/v1/dasher/availability.
func (s *Server) UpdateDasherAvailability(ctx echo.Context) error {
	dasherID, err := CallerID(ctx)
	if err != nil {
		return err
	}

	var body api.Availability
	if err = ctx.Bind(&body); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}

	cmd, err := commands.NewUpdateDasherAvailabilityCommand(dasherID, body.Online)
	if err != nil {
		return err
	}
	if err = s.h.Availability.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ListDasherOffers handles GET /api/v1/dasher/offers.
func (s *Server) ListDasherOffers(ctx echo.Context) error {
	dasherID, err := CallerID(ctx)
	if err != nil {
		return err
	}

	query, err := queries.NewListDasherOffersQuery(dasherID, s.now().UTC())
	if err != nil {
		return err
	}
	views, err := s.h.ListDasherOffers.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]api.Offer, len(views))
	for i, v := range views {
		items := make([]api.Item, len(v.Items))
		for j, it := range v.Items {
			items[j] = api.Item{Name: it.Name, Quantity: it.Quantity}
		}
		response[i] = api.Offer{
			RequestId:    v.RequestID.Bytes(),
			OrderId:      v.OrderID.Bytes(),
			HallId:       v.HallID.String(),
			WindowType:   api.WindowType(v.WindowType),
			Items:        items,
			MeetPoint:    v.MeetPoint,
			Instructions: optionalString(v.Instructions),
			ExpiresAt:    v.ExpiresAt,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// ListOpenRuns handles GET /api/v1/runs.
func (s *Server) ListOpenRuns(ctx echo.Context, params api.ListOpenRunsParams) error {
	if _, err := CallerID(ctx); err != nil {
		return err
	}

	var (
		hall  kernel.HallID
		limit int
	)
	if params.HallId != nil {
		hall = kernel.HallID(*params.HallId)
	}
	if params.Limit != nil {
		limit = *params.Limit
	}

	views, err := s.h.ListOpenRuns.Handle(ctx.Request().Context(), queries.NewListOpenRunsQuery(hall, limit))
	if err != nil {
		return err
	}

	response := make([]api.OpenRun, len(views))
	for i, v := range views {
		response[i] = api.OpenRun{
			Id:                   v.ID.Bytes(),
			HallId:               v.HallID.String(),
			WindowType:           api.WindowType(v.WindowType),
			EstimatedPayoutCents: v.EstimatedPayoutCents,
			MemberCount:          v.MemberCount,
			CreatedAt:            v.CreatedAt,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// ClaimRun handles POST /api/v1/runs/{runId}/claim.
func (s *Server) ClaimRun(ctx echo.Context, runId openapi_types.UUID) error {
	dasherID, id, err := s.runCaller(ctx, runId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewClaimRunCommand(id, dasherID)
	if err != nil {
		return err
	}
	if err = s.h.Runs.HandleClaim(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// MarkPickedUp handles POST /api/v1/runs/{runId}/pickup.
func (s *Server) MarkPickedUp(ctx echo.Context, runId openapi_types.UUID) error {
	dasherID, id, err := s.runCaller(ctx, runId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewMarkPickedUpCommand(id, dasherID)
	if err != nil {
		return err
	}
	if err = s.h.Runs.HandlePickedUp(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// MarkDelivered handles POST /api/v1/runs/{runId}/deliver.
func (s *Server) MarkDelivered(ctx echo.Context, runId openapi_types.UUID) error {
	dasherID, id, err := s.runCaller(ctx, runId)
	if err != nil {
		return err
	}

	var body api.DeliveryProof
	if err = ctx.Bind(&body); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}

	cmd, err := commands.NewMarkDeliveredCommand(id, dasherID, body.Pins)
	if err != nil {
		return err
	}
	if err = s.h.Runs.HandleDelivered(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CancelRun handles POST /api/v1/runs/{runId}/cancel.
func (s *Server) CancelRun(ctx echo.Context, runId openapi_types.UUID) error {
	dasherID, id, err := s.runCaller(ctx, runId)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCancelRunCommand(id, dasherID)
	if err != nil {
		return err
	}
	if err = s.h.Runs.HandleCancel(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetQueueSnapshots handles GET /api/v1/queues.
func (s *Server) GetQueueSnapshots(ctx echo.Context, params api.GetQueueSnapshotsParams) error {
	if _, err := CallerID(ctx); err != nil {
		return err
	}

	var hall kernel.HallID
	if params.HallId != nil {
		hall = kernel.HallID(*params.HallId)
	}

	views, err := s.h.QueueSnapshots.Handle(ctx.Request().Context(), queries.NewGetQueueSnapshotsQuery(hall))
	if err != nil {
		return err
	}

	response := make([]api.QueueSnapshot, len(views))
	for i, v := range views {
		response[i] = api.QueueSnapshot{
			HallId:             v.HallID.String(),
			WindowType:         api.WindowType(v.WindowType),
			Depth:              v.Depth,
			AverageWaitSeconds: v.AverageWaitSeconds,
			ComputedAt:         v.ComputedAt,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// RecordSettlementOutcome handles POST /internal/v1/payments/{paymentId}/outcome.
// The route sits behind the webhook key, not a user token.
func (s *Server) RecordSettlementOutcome(ctx echo.Context, paymentId openapi_types.UUID) error {
	id, err := toKernelUUID("paymentId", paymentId)
	if err != nil {
		return err
	}

	var body api.SettlementOutcome
	if err = ctx.Bind(&body); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	var reason string
	if body.Reason != nil {
		reason = *body.Reason
	}

	cmd, err := commands.NewRecordSettlementOutcomeCommand(id, body.Succeeded, reason)
	if err != nil {
		return err
	}
	if err = s.h.SettlementOutcome.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) runCaller(ctx echo.Context, runId openapi_types.UUID) (kernel.UUID, kernel.UUID, error) {
	dasherID, err := CallerID(ctx)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	id, err := toKernelUUID("runId", runId)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return dasherID, id, nil
}

func toKernelUUID(name string, id openapi_types.UUID) (kernel.UUID, error) {
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return parsed, nil
}

func optionalUUID(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	v := openapi_types.UUID(id.Bytes())
	return &v
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toAPIOrder(v queries.OrderView) api.Order {
	return api.Order{
		Id:                v.ID.Bytes(),
		BuyerId:           v.BuyerID.Bytes(),
		HallId:            v.HallID.String(),
		WindowType:        api.WindowType(v.WindowType),
		Status:            v.Status.String(),
		PriceCents:        v.PriceCents,
		CreatedAt:         v.CreatedAt,
		PairGroupId:       optionalUUID(v.PairGroupID),
		DeliveryRequestId: optionalUUID(v.DeliveryRequestID),
		DasherId:          optionalUUID(v.DasherID),
		MeetPoint:         optionalString(v.MeetPoint),
		PinCode:           optionalString(v.PinCode.String()),
	}
}
