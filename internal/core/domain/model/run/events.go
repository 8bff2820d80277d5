package run

import "campusdash/internal/core/domain/model/kernel"

// Created is recorded once per filled pair group.
type Created struct {
	RunID                kernel.UUID       `json:"runId"`
	HallID               kernel.HallID     `json:"hallId"`
	Window               kernel.WindowType `json:"windowType"`
	EstimatedPayoutCents int64             `json:"estimatedPayoutCents"`
}

func (Created) EventName() string { return "run.created" }

type StatusChanged struct {
	RunID    kernel.UUID   `json:"runId"`
	HallID   kernel.HallID `json:"hallId"`
	DasherID *kernel.UUID  `json:"dasherId,omitempty"`
	From     Status        `json:"from"`
	To       Status        `json:"to"`
}

func (StatusChanged) EventName() string { return "run.status_changed" }
