// Package api holds the wire contract of the HTTP surface: the embedded OpenAPI document,
// the request and response types it describes, and the echo routing that binds typed
// parameters before calling a ServerInterface.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type WindowType string

const (
	Breakfast WindowType = "breakfast"
	Lunch     WindowType = "lunch"
	Dinner    WindowType = "dinner"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Created struct {
	Id openapi_types.UUID `json:"id"`
}

type NewOrder struct {
	OrderId    *openapi_types.UUID `json:"orderId,omitempty"`
	HallId     string              `json:"hallId"`
	WindowType WindowType          `json:"windowType"`
	Pool       *bool               `json:"pool,omitempty"`
}

type Order struct {
	Id                openapi_types.UUID  `json:"id"`
	BuyerId           openapi_types.UUID  `json:"buyerId"`
	HallId            string              `json:"hallId"`
	WindowType        WindowType          `json:"windowType"`
	Status            string              `json:"status"`
	PriceCents        int64               `json:"priceCents"`
	CreatedAt         time.Time           `json:"createdAt"`
	PairGroupId       *openapi_types.UUID `json:"pairGroupId,omitempty"`
	DeliveryRequestId *openapi_types.UUID `json:"deliveryRequestId,omitempty"`
	DasherId          *openapi_types.UUID `json:"dasherId,omitempty"`
	MeetPoint         *string             `json:"meetPoint,omitempty"`
	PinCode           *string             `json:"pinCode,omitempty"`
}

type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type NewDeliveryRequest struct {
	RequestId    *openapi_types.UUID `json:"requestId,omitempty"`
	HallId       string              `json:"hallId"`
	WindowType   WindowType          `json:"windowType"`
	Items        []Item              `json:"items"`
	MeetPoint    string              `json:"meetPoint"`
	Instructions *string             `json:"instructions,omitempty"`
}

type DeliveryRequestResponse struct {
	Accept bool `json:"accept"`
}

type PinProof struct {
	Pin string `json:"pin"`
}

type DeliveryProof struct {
	Pins string `json:"pins"`
}

type Availability struct {
	Online bool `json:"online"`
}

type Offer struct {
	RequestId    openapi_types.UUID `json:"requestId"`
	OrderId      openapi_types.UUID `json:"orderId"`
	HallId       string             `json:"hallId"`
	WindowType   WindowType         `json:"windowType"`
	Items        []Item             `json:"items"`
	MeetPoint    string             `json:"meetPoint"`
	Instructions *string            `json:"instructions,omitempty"`
	ExpiresAt    time.Time          `json:"expiresAt"`
}

type OpenRun struct {
	Id                   openapi_types.UUID `json:"id"`
	HallId               string             `json:"hallId"`
	WindowType           WindowType         `json:"windowType"`
	EstimatedPayoutCents int64              `json:"estimatedPayoutCents"`
	MemberCount          int                `json:"memberCount"`
	CreatedAt            time.Time          `json:"createdAt"`
}

type QueueSnapshot struct {
	HallId             string     `json:"hallId"`
	WindowType         WindowType `json:"windowType"`
	Depth              int        `json:"depth"`
	AverageWaitSeconds int64      `json:"averageWaitSeconds"`
	ComputedAt         time.Time  `json:"computedAt"`
}

type SettlementOutcome struct {
	Succeeded bool    `json:"succeeded"`
	Reason    *string `json:"reason,omitempty"`
}

type ListOpenRunsParams struct {
	HallId *string `form:"hallId,omitempty" json:"hallId,omitempty"`
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

type GetQueueSnapshotsParams struct {
	HallId *string `form:"hallId,omitempty" json:"hallId,omitempty"`
}
