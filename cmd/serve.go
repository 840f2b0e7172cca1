package cmd

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"

	"github.com/gugugaga/gugugaga/envconfig"
	"github.com/gugugaga/gugugaga/server"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the gugugaga API server",
		Args:    cobra.ExactArgs(0),
		RunE:    RunServer,
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage())
	return cmd
}

func envUsage() string {
	vars := envconfig.AsMap()
	keys := maps.Keys(vars)
	slices.Sort(keys)

	var sb strings.Builder
	sb.WriteString("\nEnvironment Variables:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "      %-18s %s\n", vars[k].Name, vars[k].Description)
	}

	return sb.String()
}

func RunServer(_ *cobra.Command, _ []string) error {
	ln, err := net.Listen("tcp", envconfig.Host.Host)
	if err != nil {
		return err
	}

	return server.Serve(ln)
}
