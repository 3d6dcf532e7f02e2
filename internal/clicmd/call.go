package clicmd

import (
	"encoding/hex"
	"fmt"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/ulib-broker/demo/cipher"
	"github.com/calvinalkan/ulib-broker/demo/mathiface"
	"github.com/calvinalkan/ulib-broker/internal/config"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

// CallCmd publishes the sample interfaces and invokes a single named
// capability with command-line arguments, exercising both the typed
// [ipc.Table.Call] path (math) and the byte-span [ipc.Table.CallWithSpan]
// path (cipher) from outside the built-in demo scenario.
func CallCmd() *Command {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "call <math.sum|math.subtract|cipher.encrypt|cipher.decrypt> <args...>",
		Short: "Call a single sample capability directly",
		Exec: func(o *IO, args []string) error {
			return runCall(o, args)
		},
	}
}

func runCall(o *IO, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: call <math.sum|math.subtract|cipher.encrypt|cipher.decrypt> <args...>")
	}

	cfg, err := config.Load(config.FileName)
	if err != nil {
		return fmtErr("call", err)
	}

	table, err := ipc.New(ipc.DefaultConfig())
	if err != nil {
		return fmtErr("call", err)
	}

	if err := table.Init(); err != nil {
		return fmtErr("call", err)
	}
	defer func() { _ = table.Deinit() }()

	switch args[0] {
	case "math.sum", "math.subtract":
		return callMath(o, table, args[0], args[1:])
	case "cipher.encrypt", "cipher.decrypt":
		return callCipher(o, table, cfg, args[0], args[1:])
	default:
		return fmt.Errorf("unknown capability: %s", args[0])
	}
}

func callMath(o *IO, table *ipc.Table, op string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: call %s <a> <b>", op)
	}

	a, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("call %s: invalid operand %q: %w", op, args[0], err)
	}

	b, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("call %s: invalid operand %q: %w", op, args[1], err)
	}

	prod := mathiface.NewProducer(table)
	if err := prod.Start(); err != nil {
		return fmtErr("call: publish math", err)
	}
	defer func() { _ = prod.Stop(0) }()

	consumer, err := mathiface.Connect(table)
	if err != nil {
		return fmtErr("call: connect math", err)
	}
	defer func() { _ = consumer.Close() }()

	var result int64

	if op == "math.sum" {
		result, err = consumer.Sum(a, b)
	} else {
		result, err = consumer.Subtract(a, b)
	}

	if err != nil {
		return fmtErr("call: "+op, err)
	}

	o.Printf("%d\n", result)

	return nil
}

func callCipher(o *IO, table *ipc.Table, cfg config.Config, op string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: call %s <text>", op)
	}

	prod := cipher.NewProducer(table)
	if err := prod.Start(); err != nil {
		return fmtErr("call: publish cipher", err)
	}
	defer func() { _ = prod.Stop(0) }()

	h, err := table.TryGet(cipher.InterfaceName, cipher.InterfaceVersion, cfg.MatchCriteriaValue())
	if err != nil {
		return fmtErr("call: connect cipher", err)
	}
	defer func() { _ = table.Release(h) }()

	if op == "cipher.encrypt" {
		idx, err := table.TryGetCapability(h, "encrypt")
		if err != nil {
			return fmtErr("call: cipher.encrypt lookup", err)
		}

		out := cipher.EncryptResult{}
		if err := table.Call(h, idx, &cipher.EncryptArgs{Context: 1, Src: []byte(args[0])}, &out); err != nil {
			return fmtErr("call: cipher.encrypt", err)
		}

		o.Printf("%s\n", hex.EncodeToString(out.Dest))

		return nil
	}

	idx, err := table.TryGetCapability(h, "decrypt")
	if err != nil {
		return fmtErr("call: cipher.decrypt lookup", err)
	}

	src, err := hex.DecodeString(args[0])
	if err != nil {
		return fmtErr("call: cipher.decrypt: invalid input", err)
	}

	out := cipher.DecryptResult{}
	if err := table.Call(h, idx, &cipher.DecryptArgs{Src: src}, &out); err != nil {
		return fmtErr("call: cipher.decrypt", err)
	}

	o.Printf("%s\n", out.Dest)

	return nil
}
