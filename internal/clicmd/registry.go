package clicmd

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/ulib-broker/internal/config"
	"github.com/calvinalkan/ulib-broker/pkg/registry"
	"github.com/calvinalkan/ulib-broker/pkg/registry/flashsim"
)

// RegistryCmd drives the flash-backed key/value registry against a
// file-backed flash image, so a registry built up by one invocation
// survives to the next (simulating the spec's reboot-safety guarantees).
func RegistryCmd() *Command {
	cfg, err := config.Load(config.FileName)
	if err != nil {
		cfg = config.Default()
	}

	fs := flag.NewFlagSet("registry", flag.ContinueOnError)
	imagePath := fs.String("image", cfg.RegistryImage, "path to the flash image file")
	imageSize := fs.Uint64("size", 64*1024, "flash image size in bytes (only used when creating a new image)")
	pageSize := fs.Uint64("page-size", flashsim.DefaultPageSize, "erase page size in bytes")
	dirCount := fs.Uint64("dir-count", 64, "directory node capacity (used on every run; must match the value the image was created with)")

	return &Command{
		Flags: fs,
		Usage: "registry <add|get|delete|list|info|clean> [args]",
		Short: "Inspect and mutate the flash-backed key/value registry",
		Exec: func(o *IO, args []string) error {
			return runRegistry(o, *imagePath, *imageSize, *pageSize, *dirCount, args)
		},
	}
}

func runRegistry(o *IO, imagePath string, imageSize, pageSize, dirCount uint64, args []string) error {
	if len(args) == 0 {
		return fmtErr("registry", fmt.Errorf("missing subcommand: add|get|delete|list|info|clean"))
	}

	dev, created, err := openOrCreateImage(imagePath, imageSize, pageSize)
	if err != nil {
		return fmtErr("registry", err)
	}

	dirSize := dirCount * registryNodeSize

	cb := registry.ControlBlock{
		Device:          dev,
		DirectoryOffset: 0,
		DirectoryCount:  dirCount,
		DataOffset:      dirSize,
		DataSize:        dev.Size() - dirSize,
	}

	reg := registry.New()

	if err := reg.Init(cb); err != nil {
		return fmtErr("registry: init", err)
	}
	defer func() { _ = reg.Deinit() }()

	if created {
		o.Printf("created new flash image at %s (%d bytes)\n", imagePath, dev.Size())
	}

	var cmdErr error

	mutating := true

	switch args[0] {
	case "add":
		cmdErr = registryAdd(o, reg, args[1:])
	case "get":
		mutating = false
		cmdErr = registryGet(o, reg, args[1:])
	case "delete":
		cmdErr = registryDelete(o, reg, args[1:])
	case "list":
		mutating = false
		cmdErr = registryList(o, reg)
	case "info":
		mutating = false
		cmdErr = registryInfo(o, reg)
	case "clean":
		cmdErr = registryClean(o, reg)
	default:
		return fmtErr("registry", fmt.Errorf("unknown subcommand: %s", args[0]))
	}

	if cmdErr != nil {
		return cmdErr
	}

	if mutating {
		if err := dev.SaveSnapshot(imagePath); err != nil {
			return fmtErr("registry: persist image", err)
		}
	}

	return nil
}

// registryNodeSize mirrors pkg/registry's unexported directory node size;
// the CLI needs it to lay out the directory/data split in the image
// before pkg/registry.Registry itself has been initialized.
const registryNodeSize = 48

func openOrCreateImage(path string, size, pageSize uint64) (*flashsim.Device, bool, error) {
	dev, err := flashsim.LoadSnapshot(path)
	if err == nil {
		return dev, false, nil
	}

	dev = flashsim.New(size, pageSize)

	return dev, true, nil
}

func registryAdd(o *IO, reg *registry.Registry, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: registry add <key> <value>")
	}

	if err := reg.Add([]byte(args[0]), []byte(args[1])); err != nil {
		return fmtErr("registry: add", err)
	}

	o.Printf("added %q\n", args[0])

	return nil
}

func registryGet(o *IO, reg *registry.Registry, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: registry get <key>")
	}

	value, err := reg.TryGetValue([]byte(args[0]))
	if err != nil {
		return fmtErr("registry: get", err)
	}

	o.Printf("%s\n", value)

	return nil
}

func registryDelete(o *IO, reg *registry.Registry, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: registry delete <key>")
	}

	if err := reg.Delete([]byte(args[0])); err != nil {
		return fmtErr("registry: delete", err)
	}

	o.Printf("deleted %q\n", args[0])

	return nil
}

func registryList(o *IO, reg *registry.Registry) error {
	info, err := reg.GetInfo()
	if err != nil {
		return fmtErr("registry: list", err)
	}

	o.Printf("%d/%d nodes in use\n", info.InUseNodes, info.TotalNodes)

	return nil
}

func registryInfo(o *IO, reg *registry.Registry) error {
	info, err := reg.GetInfo()
	if err != nil {
		return fmtErr("registry: info", err)
	}

	o.Printf("nodes: total=%d in_use=%d free=%d\n", info.TotalNodes, info.InUseNodes, info.FreeNodes)
	o.Printf("data:  total=%d in_use=%d free=%d\n", info.TotalDataBytes, info.InUseDataBytes, info.FreeDataBytes)

	return nil
}

func registryClean(o *IO, reg *registry.Registry) error {
	if err := reg.CleanAll(); err != nil {
		return fmtErr("registry: clean", err)
	}

	o.Println("registry cleaned")

	return nil
}
