package cmd

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gugugaga/gugugaga/api"
	"github.com/gugugaga/gugugaga/codec"
)

func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [PREFIX]",
		Aliases: []string{"ls"},
		Short:   "List codecs",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    listHandler,
	}

	return cmd
}

func listHandler(cmd *cobra.Command, args []string) error {
	var codecs []api.CodecInfo
	if remote, _ := cmd.Flags().GetBool("remote"); remote {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}

		resp, err := client.List(cmd.Context())
		if err != nil {
			return err
		}

		codecs = resp.Codecs
	} else {
		for _, info := range codec.List() {
			codecs = append(codecs, api.CodecInfo{
				Name:        info.Name,
				Base:        info.Base,
				Alphabet:    info.Alphabet,
				Description: info.Description,
			})
		}
	}

	var data [][]string
	for _, c := range codecs {
		if len(args) == 0 || strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(args[0])) {
			data = append(data, []string{c.Name, strconv.Itoa(c.Base), strings.Join(c.Alphabet, " "), c.Description})
		}
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"NAME", "BASE", "ALPHABET", "DESCRIPTION"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}
