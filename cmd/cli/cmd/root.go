package cmd

import (
	"fmt"
	"os"

	"github.com/slovoasm/slovoasm/internal/driver"
	"github.com/spf13/cobra"
)

const defaultOutput = "out.o"

var outputPath string
var noRangeCheck bool

var rootCmd = &cobra.Command{
	Use:   "словоасм <source.слово>",
	Short: "Словоассемблер — сборщик программ на Слове",
	Long:  `Словоассемблер assembles a single Слово source file into a relocatable AArch64 ELF object.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := driver.Options{
			SourcePath: args[0],
			OutputPath: outputPath,
			Strict:     !noRangeCheck,
		}

		debug, err := driver.Assemble(opts, func(format string, a ...any) {
			cmd.Println(fmt.Sprintf(format, a...))
		})
		if err != nil {
			for _, entry := range debug.Errors() {
				cmd.PrintErrln(entry.String())
			}
			return err
		}
		return nil
	},
}

// Execute runs the root command, exiting with status 1 on any failure —
// the same pattern the teacher's own Execute used.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", defaultOutput, "output object file path")
	rootCmd.Flags().BoolVar(&noRangeCheck, "no-range-check", false, "disable immediate/displacement range checking")
}
