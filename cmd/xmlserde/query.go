package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/corvantis/xmlserde/xmldyn"
)

var queryCmd = &cobra.Command{
	Use:   "query <file> <path>",
	Short: "Run an xmldyn query path against a decoded document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		v, err := xmldyn.ParseBytes(data)
		if err != nil {
			return err
		}
		res, err := xmldyn.QueryAll(v.Map(), args[1])
		if err != nil {
			return err
		}
		return printValue(res)
	},
}
