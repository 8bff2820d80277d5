package pairgroup

import "campusdash/internal/core/domain/model/kernel"

// GroupFilled is recorded when the last seat of a group is taken.
type GroupFilled struct {
	GroupID kernel.UUID       `json:"groupId"`
	HallID  kernel.HallID     `json:"hallId"`
	Window  kernel.WindowType `json:"windowType"`
}

func (GroupFilled) EventName() string { return "pairgroup.filled" }
