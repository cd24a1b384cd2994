package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/hivemind/internal/hivemind/hexbridge"
)

var hexCmd = &cobra.Command{
	Use:   "hex",
	Short: "Hex-Bridge kodieren und dekodieren",
	Long: `Wandelt zwischen Rohdaten und Hex-Bridge-Text.

Hex-Bridge-Text besteht aus Paaren von Großbuchstaben-Hexziffern,
alle anderen sichtbaren Zeichen werden als UTF-8 übernommen.`,
}

var hexEncodeCmd = &cobra.Command{
	Use:   "encode [text]",
	Short: "Steuerzeichen als Hex-Paare kodieren (Eingabe: Argument oder stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := argOrStdin(cmd, args)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(hexbridge.Encode(data))
		return err
	},
}

var hexDecodeCmd = &cobra.Command{
	Use:   "decode [text]",
	Short: "Hex-Bridge-Text in Rohdaten wandeln",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := argOrStdin(cmd, args)
		if err != nil {
			return err
		}
		out, err := hexbridge.Decode(strings.TrimRight(string(data), "\r\n"))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var hexCountCmd = &cobra.Command{
	Use:   "count [text]",
	Short: "Anzahl der Bytes nach dem Dekodieren",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := argOrStdin(cmd, args)
		if err != nil {
			return err
		}
		n, err := hexbridge.Count(strings.TrimRight(string(data), "\r\n"))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hexCmd)
	hexCmd.AddCommand(hexEncodeCmd)
	hexCmd.AddCommand(hexDecodeCmd)
	hexCmd.AddCommand(hexCountCmd)
}

func argOrStdin(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return []byte(args[0]), nil
	}
	return io.ReadAll(cmd.InOrStdin())
}
