// Package sensor is a sample producer modeling a periodic telemetry
// source, translating the original source's sensors.1 interface: a
// TELEMETRY capability marker ("temperature") addressable only through
// its paired subscribe/unsubscribe Commands, plus a Property controlling
// the sample interval.
package sensor

import (
	"fmt"
	"sync"

	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

const (
	InterfaceName    = "sensors"
	InterfaceVersion = 1
)

// Reading is what a subscribed callback receives.
type Reading struct {
	CelsiusTenths int32
}

// Callback is invoked by [Producer.Sample] on every sample tick once at
// least one consumer has subscribed.
type Callback func(Reading)

// SubscribeArgs / UnsubscribeArgs carry the callback a consumer wants
// registered or removed, mirroring az_ulib_telemetry_subscribe_model.
type SubscribeArgs struct {
	Context  uint32
	Callback Callback
}

type UnsubscribeArgs struct {
	Context uint32
}

// Producer owns the temperature telemetry capability: a TELEMETRY marker
// capability named "temperature" (never directly callable, per spec §9),
// plus "subscribe_temperature"/"unsubscribe_temperature" Commands that
// register/remove a per-context callback, and a "temperature_interval"
// Property.
type Producer struct {
	table      *ipc.Table
	descriptor *ipc.Descriptor

	mu          sync.Mutex
	subscribers map[uint32]Callback
	intervalMs  uint32
}

// NewProducer constructs a Producer with a default sample interval.
func NewProducer(table *ipc.Table, defaultIntervalMs uint32) *Producer {
	p := &Producer{
		table:       table,
		subscribers: make(map[uint32]Callback),
		intervalMs:  defaultIntervalMs,
	}

	p.descriptor = &ipc.Descriptor{
		Name:    InterfaceName,
		Version: InterfaceVersion,
		Capabilities: []ipc.Capability{
			{Name: "temperature", Kind: ipc.Telemetry},
			{
				Name: "subscribe_temperature",
				Kind: ipc.Command,
				Entry: func(modelIn, _ any) error {
					in, ok := modelIn.(*SubscribeArgs)
					if !ok {
						return fmt.Errorf("sensor: subscribe_temperature: unexpected model_in type %T", modelIn)
					}

					p.mu.Lock()
					p.subscribers[in.Context] = in.Callback
					p.mu.Unlock()

					return nil
				},
			},
			{
				Name: "unsubscribe_temperature",
				Kind: ipc.Command,
				Entry: func(modelIn, _ any) error {
					in, ok := modelIn.(*UnsubscribeArgs)
					if !ok {
						return fmt.Errorf("sensor: unsubscribe_temperature: unexpected model_in type %T", modelIn)
					}

					p.mu.Lock()
					delete(p.subscribers, in.Context)
					p.mu.Unlock()

					return nil
				},
			},
			{
				Name: "temperature_interval",
				Kind: ipc.Property,
				Get: func(_, modelOut any) error {
					out, ok := modelOut.(*uint32)
					if !ok {
						return fmt.Errorf("sensor: temperature_interval get: unexpected model_out type %T", modelOut)
					}

					p.mu.Lock()
					*out = p.intervalMs
					p.mu.Unlock()

					return nil
				},
				Set: func(modelIn, _ any) error {
					in, ok := modelIn.(*uint32)
					if !ok {
						return fmt.Errorf("sensor: temperature_interval set: unexpected model_in type %T", modelIn)
					}

					p.mu.Lock()
					p.intervalMs = *in
					p.mu.Unlock()

					return nil
				},
			},
		},
	}

	return p
}

// Start publishes the sensors interface.
func (p *Producer) Start() error {
	_, err := p.table.Publish(p.descriptor)
	if err != nil {
		return fmt.Errorf("sensor: publish: %w", err)
	}

	return nil
}

// Stop unpublishes the sensors interface.
func (p *Producer) Stop(waitMs int) error {
	return p.table.Unpublish(p.descriptor, waitMs)
}

// Sample delivers reading to every currently subscribed callback. In the
// original this is driven by a hardware timer ISR; here the demo CLI
// drives it explicitly on a ticker.
func (p *Producer) Sample(reading Reading) {
	p.mu.Lock()
	callbacks := make([]Callback, 0, len(p.subscribers))
	for _, cb := range p.subscribers {
		callbacks = append(callbacks, cb)
	}
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(reading)
	}
}
