// Package mathiface is a sample producer publishing a tiny two-command
// math interface, translating the original source's math_interface
// sample into a broker-native producer/consumer pair.
package mathiface

import (
	"fmt"

	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

const (
	InterfaceName    = "math"
	InterfaceVersion = 1
)

// SumArgs / SumResult are the model_in/model_out pair for the "sum"
// command.
type SumArgs struct {
	A, B int64
}

type SumResult struct {
	Value int64
}

// SubtractArgs / SubtractResult are the model_in/model_out pair for the
// "subtract" command.
type SubtractArgs struct {
	A, B int64
}

type SubtractResult struct {
	Value int64
}

func sumConcrete(modelIn, modelOut any) error {
	in, ok := modelIn.(*SumArgs)
	if !ok {
		return fmt.Errorf("mathiface: sum: unexpected model_in type %T", modelIn)
	}

	out, ok := modelOut.(*SumResult)
	if !ok {
		return fmt.Errorf("mathiface: sum: unexpected model_out type %T", modelOut)
	}

	out.Value = in.A + in.B

	return nil
}

func subtractConcrete(modelIn, modelOut any) error {
	in, ok := modelIn.(*SubtractArgs)
	if !ok {
		return fmt.Errorf("mathiface: subtract: unexpected model_in type %T", modelIn)
	}

	out, ok := modelOut.(*SubtractResult)
	if !ok {
		return fmt.Errorf("mathiface: subtract: unexpected model_out type %T", modelOut)
	}

	out.Value = in.A - in.B

	return nil
}

// Descriptor returns the interface descriptor for Publish, matching the
// original sample's AZ_ULIB_DESCRIPTOR_CREATE layout: two COMMAND
// capabilities, "sum" and "subtract".
func Descriptor() *ipc.Descriptor {
	return &ipc.Descriptor{
		Name:    InterfaceName,
		Version: InterfaceVersion,
		Capabilities: []ipc.Capability{
			{Name: "sum", Kind: ipc.Command, Entry: sumConcrete},
			{Name: "subtract", Kind: ipc.Command, Entry: subtractConcrete},
		},
	}
}

// Producer publishes and unpublishes the math interface on a [ipc.Table],
// mirroring producer_start/producer_end from the original sample.
type Producer struct {
	table      *ipc.Table
	descriptor *ipc.Descriptor
}

// NewProducer constructs a Producer bound to table.
func NewProducer(table *ipc.Table) *Producer {
	return &Producer{table: table, descriptor: Descriptor()}
}

// Start publishes the math interface.
func (p *Producer) Start() error {
	_, err := p.table.Publish(p.descriptor)
	if err != nil {
		return fmt.Errorf("mathiface: publish: %w", err)
	}

	return nil
}

// Stop unpublishes the math interface, waiting up to waitMs milliseconds
// for in-flight calls to drain.
func (p *Producer) Stop(waitMs int) error {
	return p.table.Unpublish(p.descriptor, waitMs)
}
