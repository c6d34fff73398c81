// Package event defines the wallet event model shared by the store, the
// webhook dispatcher and the queue consumer API.
//
// An event is a kind-tagged, timestamped record whose payload shape is fixed
// per kind but opaque to the distribution subsystem: it is stored and
// forwarded verbatim, never interpreted.
package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies one of the closed set of wallet event variants.
// The values are the wire names used by the engine stream and webhook bodies.
type Kind string

const (
	KindPaymentSucceeded       Kind = "payment_successful"
	KindPaymentFailed          Kind = "payment_failed"
	KindPaymentReceived        Kind = "payment_received"
	KindOnchainPaymentReceived Kind = "onchain_payment_received"
	KindChannelOpened          Kind = "channel_opened"
	KindChannelClosed          Kind = "channel_closed"
	KindRebalanceInitiated     Kind = "rebalance_initiated"
	KindRebalanceSucceeded     Kind = "rebalance_successful"
	KindSplicePending          Kind = "splice_pending"
)

// requiredFields lists, per kind, the payload fields that must be present at
// construction. Optional fields (nullable hashes, reasons) are not listed.
var requiredFields = map[Kind][]string{
	KindPaymentSucceeded:       {"payment_id", "payment_hash", "payment_preimage", "fee_paid_msat"},
	KindPaymentFailed:          {"payment_id"},
	KindPaymentReceived:        {"payment_id", "payment_hash", "amount_msat"},
	KindOnchainPaymentReceived: {"payment_id", "txid", "amount_sat", "status"},
	KindChannelOpened:          {"channel_id", "counterparty_node_id", "funding_txo"},
	KindChannelClosed:          {"channel_id", "counterparty_node_id"},
	KindRebalanceInitiated:     {"trigger_payment_id", "trusted_rebalance_payment_id", "amount_msat"},
	KindRebalanceSucceeded:     {"trigger_payment_id", "trusted_rebalance_payment_id", "ln_rebalance_payment_id", "amount_msat", "fee_msat"},
	KindSplicePending:          {"channel_id", "counterparty_node_id", "new_funding_txo"},
}

// Valid reports whether k is one of the known event kinds.
func (k Kind) Valid() bool {
	_, ok := requiredFields[k]
	return ok
}

// ParseKind converts a wire name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown event kind %q", s)
	}
	return k, nil
}

// Event is an immutable wallet engine occurrence. Timestamp is seconds since
// epoch, assigned by the producer when the event is received from the engine.
type Event struct {
	Kind      Kind
	Timestamp int64
	Payload   map[string]any
}

// New builds a validated event. The payload must carry every required field
// for the kind; extra fields are kept as-is.
func New(kind Kind, timestamp int64, payload map[string]any) (Event, error) {
	fields, ok := requiredFields[kind]
	if !ok {
		return Event{}, fmt.Errorf("unknown event kind %q", kind)
	}
	for _, f := range fields {
		if _, present := payload[f]; !present {
			return Event{}, fmt.Errorf("event %s: missing payload field %q", kind, f)
		}
	}
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}
	return Event{Kind: kind, Timestamp: timestamp, Payload: payload}, nil
}

// flatten merges the discriminant, timestamp and payload into one object.
// "type" and "timestamp" are reserved; payload fields never override them.
func (e Event) flatten() map[string]any {
	flat := make(map[string]any, len(e.Payload)+2)
	for k, v := range e.Payload {
		if k == "type" || k == "timestamp" {
			continue
		}
		flat[k] = v
	}
	flat["type"] = string(e.Kind)
	flat["timestamp"] = e.Timestamp
	return flat
}

// MarshalJSON emits the flat wire object:
//
//	{"type": "<kind>", "timestamp": <int>, ...payload}
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.flatten())
}

// UnmarshalJSON parses the flat wire object back into an Event, validating
// the kind and the per-kind required fields.
func (e *Event) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	rawKind, ok := flat["type"].(string)
	if !ok {
		return fmt.Errorf("decode event: missing or non-string \"type\"")
	}
	kind, err := ParseKind(rawKind)
	if err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	// A missing timestamp is stamped at receipt; the producer owns it.
	var ts int64
	switch v := flat["timestamp"].(type) {
	case nil:
	case float64:
		ts = int64(v)
	default:
		return fmt.Errorf("decode event: non-numeric \"timestamp\"")
	}
	delete(flat, "type")
	delete(flat, "timestamp")
	parsed, err := New(kind, ts, flat)
	if err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	*e = parsed
	return nil
}
