// Package bridge implements the cross-window notification channel: a
// payload-minimal, best-effort broadcast that tells every open client that
// patient data changed so each can re-run its own listing query. It carries
// no data beyond the event type tag.
package bridge

import "context"

// ChannelName identifies the broadcast channel clients attach to.
const ChannelName = "patient-updates"

// EventPatientUpdated is the only event type on the channel.
const EventPatientUpdated = "PATIENT_UPDATED"

// Event is the wire shape of a bridge message.
type Event struct {
	Type string `json:"type"`
}

// Bridge is the notification capability. Publish is fire-and-forget with
// respect to delivery: it never blocks on slow receivers and its error is
// advisory. Subscribe registers an in-process receiver and returns a cancel
// function. Callers never branch on whether a real transport is available;
// they always hold some Bridge.
type Bridge interface {
	Publish(ctx context.Context, e Event) error
	Subscribe(fn func(Event)) (cancel func())
}

// Noop is the silent single-window degradation: publishes succeed and go
// nowhere, subscribers never fire.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) Publish(context.Context, Event) error { return nil }

func (*Noop) Subscribe(func(Event)) (cancel func()) { return func() {} }
