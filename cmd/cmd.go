package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gugugaga/gugugaga/api"
	"github.com/gugugaga/gugugaga/codec"
	_ "github.com/gugugaga/gugugaga/codec/codecs"
	"github.com/gugugaga/gugugaga/envconfig"
	"github.com/gugugaga/gugugaga/logutil"
)

var errNoInput = errors.New("no input: pass text as arguments, with --file or on stdin")

// readInput returns the command input from args, --file or stdin, in that
// order. File and stdin input may be UTF-8 or BOM-prefixed UTF-16; a single
// trailing line ending is dropped.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	var r io.Reader
	if filename, _ := cmd.Flags().GetString("file"); filename != "" {
		f, err := os.Open(filename)
		if err != nil {
			return "", err
		}
		defer f.Close()

		r = f
	} else {
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return "", errNoInput
		}

		r = in
	}

	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	bts, err := io.ReadAll(transform.NewReader(r, tr))
	if err != nil {
		return "", err
	}

	s := string(bts)
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}

func EncodeHandler(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	if nfc, _ := cmd.Flags().GetBool("nfc"); nfc {
		text = norm.NFC.String(text)
	}

	name, _ := cmd.Flags().GetString("codec")

	var tokens string
	if remote, _ := cmd.Flags().GetBool("remote"); remote {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}

		resp, err := client.Encode(cmd.Context(), &api.EncodeRequest{Codec: name, Text: text})
		if err != nil {
			return err
		}

		tokens = resp.Tokens
	} else {
		c, err := codec.Get(name)
		if err != nil {
			return err
		}

		tokens, err = c.Encode(text)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), tokens)
	return nil
}

func DecodeHandler(cmd *cobra.Command, args []string) error {
	tokens, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("codec")

	var text string
	if remote, _ := cmd.Flags().GetBool("remote"); remote {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}

		resp, err := client.Decode(cmd.Context(), &api.DecodeRequest{Codec: name, Tokens: tokens})
		if err != nil {
			return remoteDecodeError(err)
		}

		text = resp.Text
	} else {
		c, err := codec.Get(name)
		if err != nil {
			return err
		}

		text, err = c.Decode(tokens)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// remoteDecodeError prefixes a failed remote decode with the position and
// excerpt the server reported.
func remoteDecodeError(err error) error {
	var serr api.StatusError
	if !errors.As(err, &serr) || serr.Code != api.ErrCodeDecode {
		return err
	}

	data, derr := serr.DecodeData()
	if derr != nil {
		slog.Debug("malformed decode error data", "data", serr.Data, "error", derr)
		return err
	}

	return fmt.Errorf("%s decode failed at position %d near %q: %w", data.Codec, data.Position, data.Excerpt, err)
}

func checkServerHeartbeat(cmd *cobra.Command, _ []string) error {
	if remote, _ := cmd.Flags().GetBool("remote"); !remote {
		return nil
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	if err := client.Heartbeat(cmd.Context()); err != nil {
		return fmt.Errorf("could not connect to gugugaga server at %s: %w", envconfig.Host, err)
	}

	return nil
}

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gugugaga",
		Short: "Reversible decorative text codecs",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
			slog.SetDefault(logutil.NewLogger(os.Stderr, logutil.Level(envconfig.Debug)))
		},
	}

	rootCmd.PersistentFlags().StringP("codec", "c", envconfig.Codec, "Codec to use")
	rootCmd.PersistentFlags().Bool("remote", false, "Use the gugugaga server at GUGU_HOST")

	cobra.EnableCommandSorting = false

	encodeCmd := &cobra.Command{
		Use:     "encode [TEXT...]",
		Short:   "Encode text into tokens",
		PreRunE: checkServerHeartbeat,
		RunE:    EncodeHandler,
	}

	encodeCmd.Flags().StringP("file", "f", "", "Read input from a file")
	encodeCmd.Flags().Bool("nfc", false, "Normalize input to NFC before encoding")

	decodeCmd := &cobra.Command{
		Use:     "decode [TOKENS...]",
		Short:   "Decode tokens back into text",
		PreRunE: checkServerHeartbeat,
		RunE:    DecodeHandler,
	}

	decodeCmd.Flags().StringP("file", "f", "", "Read input from a file")

	rootCmd.AddCommand(
		encodeCmd,
		decodeCmd,
		NewListCmd(),
		NewServeCmd(),
	)

	return rootCmd
}
