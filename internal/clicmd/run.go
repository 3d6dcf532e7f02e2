package clicmd

import (
	"fmt"
	"io"
)

// Run is ulibctl's entry point. Returns the process exit code.
func Run(out, errOut io.Writer, args []string) int {
	commands := allCommands()

	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	o := NewIO(out, errOut)

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		printUsage(o, commands)
		return 0
	}

	cmd, ok := commandMap[args[0]]
	if !ok {
		o.ErrPrintln("error: unknown command:", args[0])
		printUsage(o, commands)

		return 1
	}

	return cmd.Run(o, args[1:])
}

func allCommands() []*Command {
	return []*Command{
		DemoCmd(),
		QueryCmd(),
		CallCmd(),
		RegistryCmd(),
	}
}

func printUsage(o *IO, commands []*Command) {
	o.Println("ulibctl - inspect and drive an in-process IPC broker + flash registry")
	o.Println()
	o.Println("Usage: ulibctl <command> [flags]")
	o.Println()
	o.Println("Commands:")

	for _, cmd := range commands {
		o.Println(cmd.HelpLine())
	}
}

func fmtErr(context string, err error) error {
	return fmt.Errorf("%s: %w", context, err)
}
