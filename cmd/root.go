package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/dRec/cmd/bench"
	"github.com/ValentinKolb/dRec/cmd/util"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "drec",
		Short: "high-frequency data recording library",
		Long: fmt.Sprintf(`dRec (v%s)

A high-frequency data recording library written in Go. Values are bound
to named slots on a channel, snapshots serialize all of them into compact
binary records, and sinks persist the records (e.g. into a structured
binary log file).`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dRec",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dRec v%s\n", Version)
		},
	}
)

func init() {
	// initialize environment configuration
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
