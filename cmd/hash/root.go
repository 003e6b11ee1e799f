package hash

import (
	"github.com/ValentinKolb/dTT/cmd/util"
	"github.com/ValentinKolb/dTT/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcHash *client.Hash

	// HashCommands represents the hash database command group
	HashCommands = &cobra.Command{
		Use:                "hash",
		Short:              "Perform hash database operations",
		PersistentPreRunE:  setupHashClient,
		PersistentPostRunE: closeHashClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the hash command
	util.SetupRPCClientFlags(HashCommands)

	// Add subcommands
	HashCommands.AddCommand(putCmd)
	HashCommands.AddCommand(putKeepCmd)
	HashCommands.AddCommand(putCatCmd)
	HashCommands.AddCommand(putShlCmd)
	HashCommands.AddCommand(putNRCmd)
	HashCommands.AddCommand(getCmd)
	HashCommands.AddCommand(outCmd)
	HashCommands.AddCommand(mgetCmd)
	HashCommands.AddCommand(vsizCmd)
	HashCommands.AddCommand(addIntCmd)
	HashCommands.AddCommand(addDoubleCmd)
	HashCommands.AddCommand(fwmKeysCmd)
	HashCommands.AddCommand(keysCmd)
	HashCommands.AddCommand(rnumCmd)
	HashCommands.AddCommand(sizeCmd)
	HashCommands.AddCommand(statCmd)
	HashCommands.AddCommand(vanishCmd)
	HashCommands.AddCommand(syncCmd)
	HashCommands.AddCommand(perfTestCmd)
}

// setupHashClient connects the hash database client
func setupHashClient(cmd *cobra.Command, _ []string) error {
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

	rpcHash, err = client.NewHash(*util.GetClientConfig(), t)
	return err
}

// closeHashClient closes the connection after a command completed
func closeHashClient(_ *cobra.Command, _ []string) error {
	if rpcHash == nil {
		return nil
	}
	return rpcHash.Close()
}
