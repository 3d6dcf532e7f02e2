package clicmd

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/ulib-broker/demo/cipher"
	"github.com/calvinalkan/ulib-broker/demo/display"
	"github.com/calvinalkan/ulib-broker/demo/mathiface"
	"github.com/calvinalkan/ulib-broker/demo/sensor"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

// QueryCmd publishes every sample interface and drives Query/QueryNext to
// enumerate them, exercising spec §4.4's two-phase (interfaces, then
// capabilities-of-an-interface) iteration protocol from the command line.
func QueryCmd() *Command {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	iface := fs.String("interface", "", "interface identifier to list capabilities for (omit to list all interfaces)")

	return &Command{
		Flags: fs,
		Usage: "query [--interface <id>]",
		Short: "Enumerate published interfaces or one interface's capabilities",
		Exec: func(o *IO, _ []string) error {
			return runQuery(o, *iface)
		},
	}
}

func runQuery(o *IO, iface string) error {
	table, err := ipc.New(ipc.DefaultConfig())
	if err != nil {
		return fmtErr("query", err)
	}

	if err := table.Init(); err != nil {
		return fmtErr("query", err)
	}
	defer func() { _ = table.Deinit() }()

	producers, err := publishAllSamples(table)
	if err != nil {
		return err
	}
	defer stopAllSamples(producers)

	result, tok, err := table.Query(iface)

	for {
		if err != nil && err != io.EOF {
			return fmtErr("query", err)
		}

		if result != "" {
			o.Println(result)
		}

		if err == io.EOF || tok == 0 {
			break
		}

		result, tok, err = table.QueryNext(tok)
	}

	return nil
}

// sampleStopper is satisfied by every demo package's Producer.
type sampleStopper interface {
	Stop(waitMs int) error
}

func publishAllSamples(table *ipc.Table) ([]sampleStopper, error) {
	mathProd := mathiface.NewProducer(table)
	if err := mathProd.Start(); err != nil {
		return nil, fmtErr("query: publish math", err)
	}

	cipherProd := cipher.NewProducer(table)
	if err := cipherProd.Start(); err != nil {
		_ = mathProd.Stop(0)
		return nil, fmtErr("query: publish cipher", err)
	}

	displayProd := display.NewProducer(table, display.NewDevice(48, 4), "contoso")
	if err := displayProd.Start(); err != nil {
		_ = cipherProd.Stop(0)
		_ = mathProd.Stop(0)
		return nil, fmtErr("query: publish display", err)
	}

	sensorProd := sensor.NewProducer(table, 1000)
	if err := sensorProd.Start(); err != nil {
		_ = displayProd.Stop(0)
		_ = cipherProd.Stop(0)
		_ = mathProd.Stop(0)
		return nil, fmtErr("query: publish sensors", err)
	}

	return []sampleStopper{mathProd, cipherProd, displayProd, sensorProd}, nil
}

func stopAllSamples(producers []sampleStopper) {
	for i := len(producers) - 1; i >= 0; i-- {
		_ = producers[i].Stop(0)
	}
}
