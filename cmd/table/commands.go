package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dTT/cmd/util"
	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/query"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [pkey] [name=value...]",
		Short: "Stores a record with the given columns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := parseColumns(args[1:])
			if err != nil {
				return err
			}
			mode, _ := cmd.Flags().GetString("mode")

			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			switch mode {
			case "put":
				err = rpcTable.Put(ctx, args[0], cols)
			case "keep":
				err = rpcTable.PutKeep(ctx, args[0], cols)
			case "cat":
				err = rpcTable.PutCat(ctx, args[0], cols)
			default:
				return fmt.Errorf("invalid mode %s (one of put, keep, cat)", mode)
			}
			if err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [pkey]",
		Short: "Reads the columns of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			cols, err := rpcTable.Get(ctx, args[0])
			if errors.Is(err, common.ErrNoRecord) {
				fmt.Printf("pkey=%s, found=false\n", args[0])
				return nil
			} else if err != nil {
				return err
			}
			fmt.Printf("pkey=%s, found=true\n", args[0])
			printColumns(cols)
			return nil
		},
	}
	outCmd = &cobra.Command{
		Use:   "out [pkey]",
		Short: "Removes a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			if err := rpcTable.Out(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("out successfully")
			return nil
		},
	}
	setIndexCmd = &cobra.Command{
		Use:   "setindex [column] [type]",
		Short: "Sets an index on a column (lexical, decimal, token, qgram, opt, void)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itype, err := parseIndexType(args[1])
			if err != nil {
				return err
			}
			if keep, _ := cmd.Flags().GetBool("keep"); keep {
				itype |= common.ITKEEP
			}
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			if err := rpcTable.SetIndex(ctx, args[0], itype); err != nil {
				return err
			}
			fmt.Println("setindex successfully")
			return nil
		},
	}
	genUIDCmd = &cobra.Command{
		Use:   "genuid",
		Short: "Generates a unique primary key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			uid, err := rpcTable.GenUID(ctx)
			if err != nil {
				return err
			}
			fmt.Println(uid)
			return nil
		},
	}
	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Searches the table and prints the matching records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}
			columns, _ := cmd.Flags().GetStringSlice("columns")
			remove, _ := cmd.Flags().GetBool("out")

			ctx, cancel := util.CommandContext(cmd)
			defer cancel()

			var hint string
			switch {
			case remove:
				if len(columns) > 0 {
					return fmt.Errorf("--out can not be combined with --columns")
				}
				if hint, err = rpcTable.SearchOut(ctx, q); err != nil {
					return err
				}
				fmt.Println("searchout successfully")
			case len(columns) > 0:
				rows, h, err := rpcTable.SearchGet(ctx, q, columns...)
				if err != nil {
					return err
				}
				hint = h
				for _, row := range rows {
					fmt.Printf("pkey=%s\n", row.PrimaryKey)
					printColumns(row.Columns)
				}
			default:
				keys, h, err := rpcTable.Search(ctx, q)
				if err != nil {
					return err
				}
				hint = h
				for _, k := range keys {
					fmt.Println(k)
				}
			}
			printHint(cmd, hint)
			return nil
		},
	}
	countCmd = &cobra.Command{
		Use:   "count",
		Short: "Counts the records matching the search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := util.CommandContext(cmd)
			defer cancel()
			n, hint, err := rpcTable.SearchCount(ctx, q)
			if err != nil {
				return err
			}
			fmt.Printf("count=%d\n", n)
			printHint(cmd, hint)
			return nil
		},
	}
)

func init() {
	putCmd.Flags().String("mode", "put", util.WrapString("How to store the record: put overwrites, keep fails on existing records, cat merges the columns"))
	setIndexCmd.Flags().Bool("keep", false, util.WrapString("Fail if the index already exists"))

	for _, cmd := range []*cobra.Command{searchCmd, countCmd} {
		cmd.Flags().StringArray("cond", nil, util.WrapString("A condition name:op:expr (repeatable). Operators: streq, strinc, strbw, strew, strand, stror, stroreq, strrx, numeq, numgt, numge, numlt, numle, numbt, numoreq, ftsph, ftsand, ftsor, ftsex; prefix ! negates, prefix ~ skips the index"))
		cmd.Flags().String("order", "", util.WrapString("Sort order name:type with type one of strasc, strdesc, numasc, numdesc"))
		cmd.Flags().String("limit", "", util.WrapString("Limit the result to max[:skip] records"))
		cmd.Flags().Bool("hint", false, util.WrapString("Print the execution hint of the server"))
	}
	searchCmd.Flags().StringSlice("columns", nil, util.WrapString("Print the given columns of the matching records (comma separated)"))
	searchCmd.Flags().Bool("out", false, util.WrapString("Remove the matching records instead of listing them"))
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// queryFromFlags builds a query from the search flags of cmd
func queryFromFlags(cmd *cobra.Command) (*query.Query, error) {
	conds, _ := cmd.Flags().GetStringArray("cond")
	order, _ := cmd.Flags().GetString("order")
	limit, _ := cmd.Flags().GetString("limit")
	return buildQuery(conds, order, limit)
}

// printColumns prints columns sorted by name
func printColumns(cols map[string]string) {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s=%s\n", name, strconv.Quote(cols[name]))
	}
}

// printHint prints the execution hint if requested
func printHint(cmd *cobra.Command, hint string) {
	if show, _ := cmd.Flags().GetBool("hint"); show && hint != "" {
		fmt.Printf("hint:\n%s\n", strings.TrimRight(hint, "\n"))
	}
}
