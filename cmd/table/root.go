package table

import (
	"github.com/ValentinKolb/dTT/cmd/util"
	"github.com/ValentinKolb/dTT/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcTable *client.Table

	// TableCommands represents the table database command group
	TableCommands = &cobra.Command{
		Use:                "table",
		Short:              "Perform table database operations",
		PersistentPreRunE:  setupTableClient,
		PersistentPostRunE: closeTableClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the table command
	util.SetupRPCClientFlags(TableCommands)

	// Add subcommands
	TableCommands.AddCommand(putCmd)
	TableCommands.AddCommand(getCmd)
	TableCommands.AddCommand(outCmd)
	TableCommands.AddCommand(setIndexCmd)
	TableCommands.AddCommand(genUIDCmd)
	TableCommands.AddCommand(searchCmd)
	TableCommands.AddCommand(countCmd)
}

// setupTableClient connects the table database client
func setupTableClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := util.InitLogging(); err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	rpcTable, err = client.NewTable(*util.GetClientConfig(), t)
	return err
}

// closeTableClient closes the connection after a command completed
func closeTableClient(_ *cobra.Command, _ []string) error {
	if rpcTable == nil {
		return nil
	}
	return rpcTable.Close()
}
