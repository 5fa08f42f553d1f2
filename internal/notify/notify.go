package notify

import (
	"errors"
	"log/slog"

	"github.com/tskinner/inkwell/internal/model"
	"github.com/tskinner/inkwell/internal/push"
)

// Sender delivers one payload to one subscription. Implemented by
// push.Service; tests substitute a fake.
type Sender interface {
	Send(sub *model.PushSubscription, payload push.Payload) error
}

// SubscriptionStore is the subset of the push store the dispatcher needs.
type SubscriptionStore interface {
	GetByUser(userID int64) (*model.PushSubscription, error)
	DeleteByUser(userID int64) error
}

// Outcome records the result of one delivery attempt. It is used for
// logging only and never reaches the end user.
type Outcome struct {
	UserID    int64
	Delivered bool
	Skipped   bool
	Err       error
}

// Dispatcher delivers a payload to a set of recipients, isolating failures
// per recipient. Dispatch has no error return: a push outage can slow a
// request down, never fail it.
type Dispatcher struct {
	subs   SubscriptionStore
	sender Sender
	logger *slog.Logger
}

func NewDispatcher(subs SubscriptionStore, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{subs: subs, sender: sender, logger: logger}
}

// Dispatch attempts delivery to each recipient in order. Recipients without
// a stored subscription are recorded as skipped. A failed delivery is logged
// and captured in its outcome; it never prevents the remaining attempts.
// Endpoints the push service reports as gone are pruned from the store.
func (d *Dispatcher) Dispatch(recipients []model.User, payload push.Payload) []Outcome {
	outcomes := make([]Outcome, 0, len(recipients))

	for _, user := range recipients {
		outcome := Outcome{UserID: user.ID}

		sub, err := d.subs.GetByUser(user.ID)
		if err != nil {
			outcome.Err = err
			d.logger.Error("load push subscription", "user_id", user.ID, "error", err)
			outcomes = append(outcomes, outcome)
			continue
		}
		if sub == nil {
			outcome.Skipped = true
			outcomes = append(outcomes, outcome)
			continue
		}

		if err := d.sender.Send(sub, payload); err != nil {
			outcome.Err = err
			d.logger.Error("push delivery failed", "user_id", user.ID, "error", err)
			if errors.Is(err, push.ErrExpired) {
				if derr := d.subs.DeleteByUser(user.ID); derr != nil {
					d.logger.Error("prune expired subscription", "user_id", user.ID, "error", derr)
				}
			}
			outcomes = append(outcomes, outcome)
			continue
		}

		outcome.Delivered = true
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}
