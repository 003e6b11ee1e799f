package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dTT/cmd/hash"
	"github.com/ValentinKolb/dTT/cmd/table"
	"github.com/ValentinKolb/dTT/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dtt",
		Short: "Tokyo Tyrant client",
		Long: fmt.Sprintf(`dTT (v%s)

A pipelining client for Tokyo Tyrant database servers speaking the
binary protocol, with support for hash and table databases.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dTT",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dTT v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(hash.HashCommands)
	RootCmd.AddCommand(table.TableCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("log level (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
