package hash

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/dTT/cmd/util"
	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// putFunc is the signature shared by all store commands of the hash client
type putFunc func(cmd *cobra.Command, key string, value []byte) error

// newPutCmd builds one of the store commands
func newPutCmd(use, short string, put putFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [key] [value]",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := put(cmd, args[0], []byte(args[1])); err != nil {
				return err
			}
			fmt.Printf("%s successfully\n", use)
			return nil
		},
	}
}

var (
	putCmd = newPutCmd("put", "Stores a record, overwriting an existing one", func(cmd *cobra.Command, key string, value []byte) error {
		ctx, cancel := util.CommandContext(cmd)
		defer cancel()
		return rpcHash.Put(ctx, key, value)
	})
	putKeepCmd = newPutCmd("putkeep", "Stores a record only if the key does not exist", func(cmd *cobra.Command, key string, value []byte) error {
		ctx, cancel := util.CommandContext(cmd)
		defer cancel()
		return rpcHash.PutKeep(ctx, key, value)
	})
	putCatCmd = newPutCmd("putcat", "Appends the value to a record", func(cmd *cobra.Command, key string, value []byte) error {
		ctx, cancel := util.CommandContext(cmd)
		defer cancel()
		return rpcHash.PutCat(ctx, key, value)
	})
	putNRCmd = newPutCmd("putnr", "Stores a record without waiting for a response", func(cmd *cobra.Command, key string, value []byte) error {
		ctx, cancel := util.CommandContext(cmd)
		defer cancel()
		return rpcHash.PutNR(ctx, key, value)
	})
	putShlCmd = &cobra.Command{
		Use:   "putshl [key] [value] [width]",
		Short: "Appends the value to a record and shifts it left to width bytes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("width must be a number: %w", err)
			}
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			if err := rpcHash.PutShl(ctx, args[0], []byte(args[1]), width); err != nil {
				return err
			}
			fmt.Println("putshl successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			key := args[0]
			resp, err := rpcHash.Get(ctx, key)
			if err != nil && !errors.Is(err, common.ErrNoRecord) {
				return err
			}
			fmt.Printf("key=%s, found=%v, resp=%s\n", key, err == nil, resp)
			return nil
		},
	}
	outCmd = &cobra.Command{
		Use:   "out [key]",
		Short: "Removes a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			if err := rpcHash.Out(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("out successfully")
			return nil
		},
	}
	mgetCmd = &cobra.Command{
		Use:   "mget [key...]",
		Short: "Reads the values of several keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			records, err := rpcHash.MGet(ctx, args)
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Printf("key=%s, resp=%s\n", r.Key, r.Value)
			}
			fmt.Printf("found %d of %d keys\n", len(records), len(args))
			return nil
		},
	}
	vsizCmd = &cobra.Command{
		Use:   "vsiz [key]",
		Short: "Prints the size of the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			size, err := rpcHash.VSiz(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, size=%d\n", args[0], size)
			return nil
		},
	}
	addIntCmd = &cobra.Command{
		Use:   "addint [key] [num]",
		Short: "Adds an integer to the counter stored in key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("num must be a number: %w", err)
			}
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			sum, err := rpcHash.AddInt(ctx, args[0], num)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, sum=%d\n", args[0], sum)
			return nil
		},
	}
	addDoubleCmd = &cobra.Command{
		Use:   "adddouble [key] [num]",
		Short: "Adds a real number to the counter stored in key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			num, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("num must be a number: %w", err)
			}
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			sum, err := rpcHash.AddDouble(ctx, args[0], num)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, sum=%s\n", args[0], strconv.FormatFloat(sum, 'f', -1, 64))
			return nil
		},
	}
	fwmKeysCmd = &cobra.Command{
		Use:   "fwmkeys [prefix]",
		Short: "Lists the keys starting with prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			keys, err := rpcHash.FwmKeys(ctx, args[0], viper.GetInt("max"))
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys using the server side iterator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			if err := rpcHash.IterInit(ctx); err != nil {
				return err
			}
			for {
				key, err := rpcHash.IterNext(ctx)
				if errors.Is(err, common.ErrNoRecord) {
					return nil
				} else if err != nil {
					return err
				}
				fmt.Println(key)
			}
		},
	}
	rnumCmd = &cobra.Command{
		Use:   "rnum",
		Short: "Prints the number of records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			n, err := rpcHash.RNum(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("records=%d\n", n)
			return nil
		},
	}
	sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Prints the size of the database in bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			n, err := rpcHash.Size(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("size=%d\n", n)
			return nil
		},
	}
	statCmd = &cobra.Command{
		Use:   "stat",
		Short: "Prints the status of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			stat, err := rpcHash.Stat(ctx)
			if err != nil {
				return err
			}
			fmt.Print(stat)
			return nil
		},
	}
	vanishCmd = &cobra.Command{
		Use:   "vanish",
		Short: "Removes all records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			if err := rpcHash.Vanish(ctx); err != nil {
				return err
			}
			fmt.Println("vanish successfully")
			return nil
		},
	}
	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Writes updated contents of the database to the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			if err := rpcHash.Sync(ctx); err != nil {
				return err
			}
			fmt.Println("sync successfully")
			return nil
		},
	}
)

func init() {
	fwmKeysCmd.Flags().Int("max", -1, util.WrapString("The maximum number of keys to list (negative lists all)"))
}
