package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

var findCmd = &cobra.Command{
	Use:   "find [collection]",
	Short: "Query documents of a collection",
	Long: `Prints the documents of a collection matching a MongoDB filter, one JSON
document per line. _attrs metadata is removed from every document.

Examples:
  polydb find Polytopes.Lattice.SmoothReflexive --filter '{"DIM": 3}' --limit 5
  polydb find Matroids.Small --sort '-N_ELEMENTS' --projection '{"RANK": 1}'`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

var getCmd = &cobra.Command{
	Use:   "get [collection] [id]",
	Short: "Show one document by id",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

var idsCmd = &cobra.Command{
	Use:   "ids [collection]",
	Short: "List the ids of matching documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runIDs,
}

var countCmd = &cobra.Command{
	Use:   "count [collection]",
	Short: "Count matching documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runCount,
}

var distinctCmd = &cobra.Command{
	Use:   "distinct [collection] [field]",
	Short: "List the distinct values of a property",
	Args:  cobra.ExactArgs(2),
	RunE:  runDistinct,
}

// Query flags.
var (
	queryFilter     string
	querySort       string
	queryProjection string
	querySkip       int64
	queryLimit      int64
	queryBatchSize  int32
)

func init() {
	for _, c := range []*cobra.Command{findCmd, idsCmd, countCmd, distinctCmd} {
		c.Flags().StringVarP(&queryFilter, "filter", "f", "", "MongoDB filter as a JSON object")
	}
	for _, c := range []*cobra.Command{findCmd, idsCmd} {
		c.Flags().StringVarP(&querySort, "sort", "s", "", `sort order, "DIM,-N_VERTICES" or {"DIM": 1}`)
		c.Flags().Int64Var(&querySkip, "skip", 0, "skip this many documents")
		c.Flags().Int64VarP(&queryLimit, "limit", "n", 0, "return at most this many documents (0 for all)")
		c.Flags().Int32Var(&queryBatchSize, "batch-size", 0, "documents fetched per round trip")
	}
	findCmd.Flags().StringVarP(&queryProjection, "projection", "p", "", "projection as a JSON object")

	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(idsCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(distinctCmd)
}

// findOptions builds query options from the query flags.
func findOptions() (domain.FindOptions, error) {
	var opts domain.FindOptions
	var err error
	if opts.Filter, err = parseJSONObject("filter", queryFilter); err != nil {
		return opts, err
	}
	if opts.Projection, err = parseJSONObject("projection", queryProjection); err != nil {
		return opts, err
	}
	if opts.Sort, err = parseSort(querySort); err != nil {
		return opts, err
	}
	opts.Skip = querySkip
	opts.Limit = queryLimit
	opts.BatchSize = queryBatchSize
	return opts, opts.Validate()
}

func runFind(cmd *cobra.Command, args []string) error {
	svc, err := collectionService(cmd)
	if err != nil {
		return err
	}
	opts, err := findOptions()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if currentFormat() != formatText {
		docs, err := svc.Find(ctx, args[0], opts)
		if err != nil {
			return wrap("find", err)
		}
		if docs == nil {
			docs = []domain.Document{}
		}
		return render(cmd, docs, nil)
	}

	err = svc.Each(ctx, args[0], opts, func(d domain.Document) error {
		line, err := compactJSON(d)
		if err != nil {
			return err
		}
		cmd.Println(line)
		return nil
	})
	return wrap("find", err)
}

func runGet(cmd *cobra.Command, args []string) error {
	svc, err := collectionService(cmd)
	if err != nil {
		return err
	}
	doc, err := svc.Get(commandContext(cmd), args[0], args[1])
	if err != nil {
		return wrap("get", err)
	}
	return render(cmd, doc, func() {
		line, err := compactJSON(doc)
		if err != nil {
			cmd.PrintErrln(ErrorText(err))
			return
		}
		cmd.Println(indentJSON([]byte(line)))
	})
}

func runIDs(cmd *cobra.Command, args []string) error {
	svc, err := collectionService(cmd)
	if err != nil {
		return err
	}
	opts, err := findOptions()
	if err != nil {
		return err
	}
	ids, err := svc.IDs(commandContext(cmd), args[0], opts)
	if err != nil {
		return wrap("ids", err)
	}
	return render(cmd, ids, func() {
		for _, id := range ids {
			cmd.Println(id)
		}
	})
}

func runCount(cmd *cobra.Command, args []string) error {
	svc, err := collectionService(cmd)
	if err != nil {
		return err
	}
	filter, err := parseJSONObject("filter", queryFilter)
	if err != nil {
		return err
	}
	n, err := svc.Count(commandContext(cmd), args[0], filter)
	if err != nil {
		return wrap("count", err)
	}
	return render(cmd, map[string]int64{"count": n}, func() {
		cmd.Println(n)
	})
}

func runDistinct(cmd *cobra.Command, args []string) error {
	svc, err := collectionService(cmd)
	if err != nil {
		return err
	}
	filter, err := parseJSONObject("filter", queryFilter)
	if err != nil {
		return err
	}
	values, err := svc.Distinct(commandContext(cmd), args[0], args[1], filter)
	if err != nil {
		return wrap("distinct", err)
	}
	return render(cmd, values, func() {
		for _, v := range values {
			if s, ok := v.(string); ok {
				cmd.Println(s)
				continue
			}
			line, err := compactJSON(v)
			if err != nil {
				line = fmt.Sprint(v)
			}
			cmd.Println(line)
		}
	})
}
