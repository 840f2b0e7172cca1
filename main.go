package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gugugaga/gugugaga/cmd"
)

func main() {
	cobra.CheckErr(cmd.NewCLI().ExecuteContext(context.Background()))
}
