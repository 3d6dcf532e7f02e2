// Package display is a sample producer modeling a small text display,
// translating the original source's display.1 interface: a pair of
// read-only Property capabilities (max_x/max_y) and three Commands
// (cls, print, invalidate), with competing hardware producers (e.g.
// contoso and fabrikan) that share the same interface name/version, so
// only one of them can be published on a given table at a time.
package display

import (
	"fmt"
	"strings"

	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

const (
	InterfaceName    = "display"
	InterfaceVersion = 1
)

// PrintArgs is the model_in for "print".
type PrintArgs struct {
	X, Y   uint32
	Buffer string
}

// Device is a small in-memory text display, standing in for the
// original's BSP-backed framebuffer.
type Device struct {
	maxX, maxY int
	mem        [][]byte
}

// NewDevice returns a blank maxX x maxY display.
func NewDevice(maxX, maxY int) *Device {
	mem := make([][]byte, maxY)
	for i := range mem {
		mem[i] = make([]byte, maxX)
		for j := range mem[i] {
			mem[i][j] = ' '
		}
	}

	return &Device{maxX: maxX, maxY: maxY, mem: mem}
}

// Lines returns a snapshot of the display's current rows as strings.
func (d *Device) Lines() []string {
	lines := make([]string, len(d.mem))

	for i, row := range d.mem {
		lines[i] = string(row)
	}

	return lines
}

func (d *Device) cls() {
	for i := range d.mem {
		for j := range d.mem[i] {
			d.mem[i][j] = ' '
		}
	}
}

func (d *Device) print(x, y int, text string) error {
	if y < 0 || y >= d.maxY {
		return fmt.Errorf("display: y %d out of range [0,%d)", y, d.maxY)
	}

	for i, r := range []byte(text) {
		col := x + i
		if col < 0 || col >= d.maxX {
			break
		}

		d.mem[y][col] = r
	}

	return nil
}

// Descriptor returns the interface descriptor for Publish, bound to dev.
func Descriptor(dev *Device) *ipc.Descriptor {
	return &ipc.Descriptor{
		Name:    InterfaceName,
		Version: InterfaceVersion,
		Capabilities: []ipc.Capability{
			{
				Name: "max_x",
				Kind: ipc.Property,
				Get: func(_, modelOut any) error {
					out, ok := modelOut.(*int)
					if !ok {
						return fmt.Errorf("display: max_x: unexpected model_out type %T", modelOut)
					}

					*out = dev.maxX

					return nil
				},
			},
			{
				Name: "max_y",
				Kind: ipc.Property,
				Get: func(_, modelOut any) error {
					out, ok := modelOut.(*int)
					if !ok {
						return fmt.Errorf("display: max_y: unexpected model_out type %T", modelOut)
					}

					*out = dev.maxY

					return nil
				},
			},
			{
				Name: "cls",
				Kind: ipc.Command,
				Entry: func(_, _ any) error {
					dev.cls()

					return nil
				},
			},
			{
				Name: "print",
				Kind: ipc.Command,
				Entry: func(modelIn, _ any) error {
					in, ok := modelIn.(*PrintArgs)
					if !ok {
						return fmt.Errorf("display: print: unexpected model_in type %T", modelIn)
					}

					return dev.print(int(in.X), int(in.Y), in.Buffer)
				},
			},
			{
				Name: "invalidate",
				Kind: ipc.Command,
				Entry: func(_, _ any) error {
					// The original flushes the framebuffer to the physical
					// panel here; this sample's Device has no separate
					// backing store to flush.
					return nil
				},
			},
		},
	}
}

// Producer publishes one hardware vendor's display implementation. Two
// vendors (e.g. "contoso" and "fabrikan") can each run their own Producer
// over their own [Device] and still only ever publish interface
// "display".1 once at a time on a given [ipc.Table] — the package/vendor
// identity is operator-facing only, the broker has no concept of it (spec
// §3: a Descriptor is just name, version, capabilities).
type Producer struct {
	table      *ipc.Table
	descriptor *ipc.Descriptor
	dev        *Device
	vendor     string
}

// NewProducer constructs a Producer for the given vendor's hardware.
func NewProducer(table *ipc.Table, dev *Device, vendor string) *Producer {
	return &Producer{table: table, dev: dev, descriptor: Descriptor(dev), vendor: vendor}
}

// Start publishes the display interface.
func (p *Producer) Start() error {
	_, err := p.table.Publish(p.descriptor)
	if err != nil {
		return fmt.Errorf("display: %s: publish: %w", p.vendor, err)
	}

	return nil
}

// Stop unpublishes the display interface.
func (p *Producer) Stop(waitMs int) error {
	err := p.table.Unpublish(p.descriptor, waitMs)
	if err != nil {
		return fmt.Errorf("display: %s: unpublish: %w", p.vendor, err)
	}

	return nil
}

// Dump renders the display's current contents as a bordered block,
// matching the original consumer sample's print_line debug helper.
func (d *Device) Dump() string {
	var b strings.Builder

	for _, line := range d.Lines() {
		fmt.Fprintf(&b, "|%s|\n", line)
	}

	return b.String()
}
