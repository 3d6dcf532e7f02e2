package clicmd

import (
	"github.com/calvinalkan/ulib-broker/demo/cipher"
	"github.com/calvinalkan/ulib-broker/demo/display"
	"github.com/calvinalkan/ulib-broker/demo/mathiface"
	"github.com/calvinalkan/ulib-broker/demo/sensor"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

// DemoCmd runs the same producer/consumer wiring the original source's
// samples/ipc_call_interface/main.c and samples/ipc_telemetry/main.c do,
// in a single process: publish every sample interface, exercise each one
// through a consumer, then unpublish everything.
func DemoCmd() *Command {
	return &Command{
		Usage: "demo",
		Short: "Run the built-in producer/consumer demo scenario",
		Exec: func(o *IO, _ []string) error {
			return runDemo(o)
		},
	}
}

func runDemo(o *IO) error {
	table, err := ipc.New(ipc.DefaultConfig())
	if err != nil {
		return fmtErr("demo", err)
	}

	if err := table.Init(); err != nil {
		return fmtErr("demo", err)
	}
	defer func() { _ = table.Deinit() }()

	o.Println("Start producer...")

	mathProd := mathiface.NewProducer(table)
	if err := mathProd.Start(); err != nil {
		return err
	}

	o.Println("Producer publish math interface with success")

	cipherProd := cipher.NewProducer(table)
	if err := cipherProd.Start(); err != nil {
		return err
	}

	dev := display.NewDevice(48, 4)
	displayProd := display.NewProducer(table, dev, "contoso")
	if err := displayProd.Start(); err != nil {
		return err
	}

	o.Println("Contoso published display interface with success")

	sensorProd := sensor.NewProducer(table, 1000)
	if err := sensorProd.Start(); err != nil {
		return err
	}

	if err := runMathConsumer(o, table); err != nil {
		return err
	}

	if err := runCipherConsumer(o, table); err != nil {
		return err
	}

	if err := runDisplayConsumer(o, table, dev); err != nil {
		return err
	}

	if err := runSensorConsumer(o, table, sensorProd); err != nil {
		return err
	}

	o.Println("End producer")

	if err := sensorProd.Stop(0); err != nil {
		return err
	}

	if err := displayProd.Stop(0); err != nil {
		return err
	}

	if err := cipherProd.Stop(0); err != nil {
		return err
	}

	return mathProd.Stop(0)
}

func runMathConsumer(o *IO, table *ipc.Table) error {
	consumer, err := mathiface.Connect(table)
	if err != nil {
		return fmtErr("demo: math consumer", err)
	}
	defer func() { _ = consumer.Close() }()

	sum, err := consumer.Sum(3, 4)
	if err != nil {
		return fmtErr("demo: math.sum", err)
	}

	o.Printf("math.sum(3, 4) = %d\n", sum)

	diff, err := consumer.Subtract(10, 4)
	if err != nil {
		return fmtErr("demo: math.subtract", err)
	}

	o.Printf("math.subtract(10, 4) = %d\n", diff)

	return nil
}

func runCipherConsumer(o *IO, table *ipc.Table) error {
	h, err := table.TryGet(cipher.InterfaceName, cipher.InterfaceVersion, ipc.Any)
	if err != nil {
		return fmtErr("demo: cipher consumer", err)
	}
	defer func() { _ = table.Release(h) }()

	encryptIdx, err := table.TryGetCapability(h, "encrypt")
	if err != nil {
		return fmtErr("demo: cipher.encrypt lookup", err)
	}

	decryptIdx, err := table.TryGetCapability(h, "decrypt")
	if err != nil {
		return fmtErr("demo: cipher.decrypt lookup", err)
	}

	encryptOut := cipher.EncryptResult{}
	if err := table.Call(h, encryptIdx, &cipher.EncryptArgs{Context: 7, Src: []byte("hello")}, &encryptOut); err != nil {
		return fmtErr("demo: cipher.encrypt", err)
	}

	decryptOut := cipher.DecryptResult{}
	if err := table.Call(h, decryptIdx, &cipher.DecryptArgs{Src: encryptOut.Dest}, &decryptOut); err != nil {
		return fmtErr("demo: cipher.decrypt", err)
	}

	o.Printf("cipher round-trip: %q\n", string(decryptOut.Dest))

	return nil
}

func runDisplayConsumer(o *IO, table *ipc.Table, dev *display.Device) error {
	h, err := table.TryGet(display.InterfaceName, display.InterfaceVersion, ipc.Any)
	if err != nil {
		return fmtErr("demo: display consumer", err)
	}
	defer func() { _ = table.Release(h) }()

	printIdx, err := table.TryGetCapability(h, "print")
	if err != nil {
		return fmtErr("demo: display.print lookup", err)
	}

	msg := "Hello world! This is a test to display a message."

	if err := table.Call(h, printIdx, &display.PrintArgs{X: 0, Y: 0, Buffer: msg}, nil); err != nil {
		return fmtErr("demo: display.print", err)
	}

	o.Printf("%s", dev.Dump())

	return nil
}

func runSensorConsumer(o *IO, table *ipc.Table, prod *sensor.Producer) error {
	h, err := table.TryGet(sensor.InterfaceName, sensor.InterfaceVersion, ipc.Any)
	if err != nil {
		return fmtErr("demo: sensor consumer", err)
	}
	defer func() { _ = table.Release(h) }()

	subscribeIdx, err := table.TryGetCapability(h, "subscribe_temperature")
	if err != nil {
		return fmtErr("demo: sensor.subscribe_temperature lookup", err)
	}

	readings := make(chan sensor.Reading, 1)

	args := sensor.SubscribeArgs{
		Context:  1,
		Callback: func(r sensor.Reading) { readings <- r },
	}

	if err := table.Call(h, subscribeIdx, &args, nil); err != nil {
		return fmtErr("demo: sensor.subscribe_temperature", err)
	}

	// In production a hardware timer drives Sample; the demo ticks once
	// by hand so the subscriber above has a reading to receive.
	prod.Sample(sensor.Reading{CelsiusTenths: 215})

	select {
	case r := <-readings:
		o.Printf("temperature = %.1fC\n", float64(r.CelsiusTenths)/10)
	default:
		o.Println("temperature: no reading delivered")
	}

	return nil
}
