package main

import (
	"fmt"
	"os"

	"github.com/clbanning/mxj/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	prettyFlag bool
	indentUnit string
	writeDecl  bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode <file.json>",
	Short: "Encode a JSON document into XML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		m, err := mxj.NewMapJson(data)
		if err != nil {
			return fmt.Errorf("invalid json: %w", err)
		}

		var out []byte
		if prettyFlag {
			out, err = m.XmlIndent("", indentOrDefault())
		} else {
			out, err = m.Xml()
		}
		if err != nil {
			return fmt.Errorf("encoding to xml: %w", err)
		}

		if writeDecl {
			os.Stdout.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
		}
		os.Stdout.Write(out)
		os.Stdout.WriteString("\n")

		logger.Info("encode complete", "bytes", humanize.Bytes(uint64(len(out))))
		return nil
	},
}

func init() {
	encodeCmd.Flags().BoolVar(&prettyFlag, "pretty", false, "indent the output")
	encodeCmd.Flags().StringVar(&indentUnit, "indent", "", "indentation unit used with --pretty (defaults to two spaces)")
	encodeCmd.Flags().BoolVar(&writeDecl, "doc-decl", false, `prefix output with an <?xml ...?> declaration`)
}

func indentOrDefault() string {
	if indentUnit == "" {
		return "  "
	}
	return indentUnit
}
