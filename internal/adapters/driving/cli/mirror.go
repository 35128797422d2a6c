package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror [collection]",
	Short: "Copy a collection into the local mirror",
	Long: `Copies the documents of a collection, with their type metadata and the
collection's info document, into the local SQLite mirror. Mirrored
collections can be queried with --offline.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationMirror: "true"},
	RunE:        runMirror,
}

var mirrorListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List mirrored collections",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationMirror: "true"},
	RunE:        runMirrorList,
}

var (
	mirrorFilter    string
	mirrorLimit     int64
	mirrorBatchSize int
)

func init() {
	mirrorCmd.Flags().StringVarP(&mirrorFilter, "filter", "f", "", "copy only documents matching this JSON filter")
	mirrorCmd.Flags().Int64VarP(&mirrorLimit, "limit", "n", 0, "copy at most this many documents (0 for all)")
	mirrorCmd.Flags().IntVar(&mirrorBatchSize, "batch-size", 0, "documents written per transaction")

	mirrorCmd.AddCommand(mirrorListCmd)
	rootCmd.AddCommand(mirrorCmd)
}

func runMirror(cmd *cobra.Command, args []string) error {
	svc, err := mirrorService(cmd)
	if err != nil {
		return err
	}
	filter, err := parseJSONObject("filter", mirrorFilter)
	if err != nil {
		return err
	}
	report, err := svc.Mirror(commandContext(cmd), args[0], domain.MirrorOptions{
		Filter:    filter,
		Limit:     mirrorLimit,
		BatchSize: mirrorBatchSize,
	})
	if err != nil {
		return wrap("mirror", err)
	}
	return render(cmd, report, func() {
		cmd.Println(successStyle.Render("Mirrored " + report.Collection))
		cmd.Println(field("Documents", strconv.Itoa(report.Documents)))
		cmd.Println(field("Batch", report.BatchID))
		cmd.Println(field("Info", yesNo(report.WithInfo)))
		cmd.Println(field("Duration", report.Duration().String()))
	})
}

func runMirrorList(cmd *cobra.Command, _ []string) error {
	svc, err := mirrorService(cmd)
	if err != nil {
		return err
	}
	names, err := svc.Collections(commandContext(cmd))
	if err != nil {
		return wrap("mirror list", err)
	}
	return render(cmd, names, func() {
		if len(names) == 0 {
			cmd.Println(mutedStyle.Render("Nothing mirrored yet."))
			return
		}
		for _, n := range names {
			cmd.Println(n)
		}
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
