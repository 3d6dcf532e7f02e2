package mathiface

import (
	"fmt"

	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

// Consumer resolves and calls the math interface through a [ipc.Table],
// mirroring the original sample's consumer.c: acquire a handle once,
// reuse it across calls, release it when done.
type Consumer struct {
	table *ipc.Table
	h     ipc.Handle

	sumIdx      int
	subtractIdx int
}

// Connect resolves the math interface at any published version and caches
// both capability indices.
func Connect(table *ipc.Table) (*Consumer, error) {
	h, err := table.TryGet(InterfaceName, InterfaceVersion, ipc.Any)
	if err != nil {
		return nil, fmt.Errorf("mathiface: connect: %w", err)
	}

	sumIdx, err := table.TryGetCapability(h, "sum")
	if err != nil {
		_ = table.Release(h)
		return nil, fmt.Errorf("mathiface: connect: resolve sum: %w", err)
	}

	subtractIdx, err := table.TryGetCapability(h, "subtract")
	if err != nil {
		_ = table.Release(h)
		return nil, fmt.Errorf("mathiface: connect: resolve subtract: %w", err)
	}

	return &Consumer{table: table, h: h, sumIdx: sumIdx, subtractIdx: subtractIdx}, nil
}

// Sum calls the math interface's "sum" command.
func (c *Consumer) Sum(a, b int64) (int64, error) {
	out := SumResult{}

	err := c.table.Call(c.h, c.sumIdx, &SumArgs{A: a, B: b}, &out)
	if err != nil {
		return 0, fmt.Errorf("mathiface: sum: %w", err)
	}

	return out.Value, nil
}

// Subtract calls the math interface's "subtract" command.
func (c *Consumer) Subtract(a, b int64) (int64, error) {
	out := SubtractResult{}

	err := c.table.Call(c.h, c.subtractIdx, &SubtractArgs{A: a, B: b}, &out)
	if err != nil {
		return 0, fmt.Errorf("mathiface: subtract: %w", err)
	}

	return out.Value, nil
}

// Close releases the consumer's handle.
func (c *Consumer) Close() error {
	return c.table.Release(c.h)
}
