package ir

import (
	"fmt"
	"math"
	"slices"
)

// Event is an input message: a named event with an object payload.
//
// Wire: {"name": <string>, "payload": <object>}. payload may be omitted.
type Event struct {
	Name    string
	Payload Object
}

// Effect is a side effect the host is asked to perform.
//
// Wire: {"capability": <string>, "operation": <object>}.
type Effect struct {
	Capability string
	Operation  Object
}

// Request pairs an Effect with the correlation ID the host uses to answer it.
//
// Wire: {"effect": <effect>, "id": <uint32>}.
type Request struct {
	ID     uint32
	Effect Effect
}

// NewEvent builds an Event from pairs.
func NewEvent(name string, pairs ...Pair) Event {
	return Event{Name: name, Payload: Obj(pairs...)}
}

// Value returns the wire form of the event.
func (e Event) Value() Object {
	payload := e.Payload
	if payload == nil {
		payload = Object{}
	}
	return Object{"name": String(e.Name), "payload": payload}
}

// Value returns the wire form of the effect.
func (e Effect) Value() Object {
	op := e.Operation
	if op == nil {
		op = Object{}
	}
	return Object{"capability": String(e.Capability), "operation": op}
}

// Value returns the wire form of the request.
func (r Request) Value() Object {
	return Object{"effect": r.Effect.Value(), "id": Int(r.ID)}
}

// EncodeEvent encodes an event to canonical JSON.
func EncodeEvent(e Event) ([]byte, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("encode event: empty name")
	}
	data, err := MarshalCanonical(e.Value())
	if err != nil {
		return nil, fmt.Errorf("encode event %q: %w", e.Name, err)
	}
	return data, nil
}

// DecodeEvent strictly decodes an event. Unknown fields, a missing or empty
// name, or a non-object payload are errors.
func DecodeEvent(data []byte) (Event, error) {
	v, err := UnmarshalValue(data)
	if err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	obj, ok := v.(Object)
	if !ok {
		return Event{}, fmt.Errorf("decode event: expected object, got %T", v)
	}
	if err := onlyKeys(obj, "name", "payload"); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	name, ok := obj.GetString("name")
	if !ok || name == "" {
		return Event{}, fmt.Errorf("decode event: name must be a non-empty string")
	}
	payload := Object{}
	if raw, present := obj["payload"]; present {
		payload, ok = raw.(Object)
		if !ok {
			return Event{}, fmt.Errorf("decode event %q: payload must be an object", name)
		}
	}
	return Event{Name: name, Payload: payload}, nil
}

// EncodeEffects encodes a batch of requests to a canonical JSON array.
// A nil or empty batch encodes as [].
func EncodeEffects(batch []Request) ([]byte, error) {
	arr := make(Array, len(batch))
	for i, r := range batch {
		if r.Effect.Capability == "" {
			return nil, fmt.Errorf("encode effects: request %d has empty capability", r.ID)
		}
		arr[i] = r.Value()
	}
	data, err := MarshalCanonical(arr)
	if err != nil {
		return nil, fmt.Errorf("encode effects: %w", err)
	}
	return data, nil
}

// DecodeEffects strictly decodes an effect batch. Hosts and tests use this;
// the engine only encodes.
func DecodeEffects(data []byte) ([]Request, error) {
	v, err := UnmarshalValue(data)
	if err != nil {
		return nil, fmt.Errorf("decode effects: %w", err)
	}
	arr, ok := v.(Array)
	if !ok {
		return nil, fmt.Errorf("decode effects: expected array, got %T", v)
	}

	batch := make([]Request, 0, len(arr))
	for i, elem := range arr {
		r, err := decodeRequest(elem)
		if err != nil {
			return nil, fmt.Errorf("decode effects: [%d]: %w", i, err)
		}
		batch = append(batch, r)
	}
	return batch, nil
}

func decodeRequest(v Value) (Request, error) {
	obj, ok := v.(Object)
	if !ok {
		return Request{}, fmt.Errorf("expected object, got %T", v)
	}
	if err := onlyKeys(obj, "effect", "id"); err != nil {
		return Request{}, err
	}
	id, ok := obj.GetInt("id")
	if !ok || id < 0 || id > math.MaxUint32 {
		return Request{}, fmt.Errorf("id must be a uint32")
	}
	eff, ok := obj.GetObject("effect")
	if !ok {
		return Request{}, fmt.Errorf("effect must be an object")
	}
	if err := onlyKeys(eff, "capability", "operation"); err != nil {
		return Request{}, fmt.Errorf("effect: %w", err)
	}
	capability, ok := eff.GetString("capability")
	if !ok || capability == "" {
		return Request{}, fmt.Errorf("effect: capability must be a non-empty string")
	}
	op, ok := eff.GetObject("operation")
	if !ok {
		return Request{}, fmt.Errorf("effect: operation must be an object")
	}
	return Request{ID: uint32(id), Effect: Effect{Capability: capability, Operation: op}}, nil
}

// EncodeResponse encodes a response value to canonical JSON.
func EncodeResponse(v Value) ([]byte, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return data, nil
}

// DecodeResponse strictly decodes a response value.
func DecodeResponse(data []byte) (Value, error) {
	v, err := UnmarshalValue(data)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

// onlyKeys fails if obj has any key outside allowed.
func onlyKeys(obj Object, allowed ...string) error {
	for _, k := range obj.SortedKeys() {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}
