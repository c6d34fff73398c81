package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/orangewallet/orange/cmd/orange/commands"
	"github.com/orangewallet/orange/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("orange"),
		kong.Description("Orange Lightning wallet CLI"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	if err := ctx.Run(&commands.Global{}, cli); err != nil {
		// Errors go to stdout as JSON so scripted callers get one format
		// for both results and failures.
		out, _ := json.MarshalIndent(map[string]string{"error": err.Error()}, "", "  ")
		fmt.Println(string(out))
		os.Exit(1)
	}
}
