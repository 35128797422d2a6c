package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the database is reachable",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

var sectionsCmd = &cobra.Command{
	Use:   "sections [section]",
	Short: "List subsections",
	Long: `Lists the subsections of a section, or the top-level sections when no
section is given. With --recursive the whole subtree is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSections,
}

var collectionsCmd = &cobra.Command{
	Use:   "collections [section]",
	Short: "List collections",
	Long:  `Lists the collections below a section, relative to it.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCollections,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show section or collection metadata",
}

var infoSectionCmd = &cobra.Command{
	Use:   "section [section]",
	Short: "Show section metadata",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfoSection,
}

var infoCollectionCmd = &cobra.Command{
	Use:   "collection [collection]",
	Short: "Show collection metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfoCollection,
}

var sectionsRecursive bool

func init() {
	sectionsCmd.Flags().BoolVarP(&sectionsRecursive, "recursive", "r", false, "print the whole section tree")

	infoCmd.AddCommand(infoSectionCmd)
	infoCmd.AddCommand(infoCollectionCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(infoCmd)
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runPing(cmd *cobra.Command, _ []string) error {
	catalog, err := catalogService(cmd)
	if err != nil {
		return err
	}
	if err := catalog.Ping(commandContext(cmd)); err != nil {
		return wrap("ping", err)
	}
	cmd.Println(successStyle.Render("OK"))
	return nil
}

func runSections(cmd *cobra.Command, args []string) error {
	catalog, err := catalogService(cmd)
	if err != nil {
		return err
	}
	section := optionalArg(args)
	ctx := commandContext(cmd)

	if sectionsRecursive {
		tree, err := catalog.SubsectionTree(ctx, section)
		if err != nil {
			return wrap("sections", err)
		}
		return render(cmd, tree, func() {
			printTree(cmd, tree, 0)
		})
	}

	names, err := catalog.Subsections(ctx, section)
	if err != nil {
		return wrap("sections", err)
	}
	return render(cmd, names, func() {
		if len(names) == 0 {
			cmd.Println(mutedStyle.Render("No subsections."))
			return
		}
		for _, n := range names {
			cmd.Println(n)
		}
	})
}

func printTree(cmd *cobra.Command, tree domain.SectionTree, depth int) {
	for _, name := range tree.Names() {
		cmd.Printf("%s%s\n", strings.Repeat("  ", depth), name)
		printTree(cmd, tree[name], depth+1)
	}
}

func runCollections(cmd *cobra.Command, args []string) error {
	catalog, err := catalogService(cmd)
	if err != nil {
		return err
	}
	names, err := catalog.Collections(commandContext(cmd), optionalArg(args))
	if err != nil {
		return wrap("collections", err)
	}
	return render(cmd, names, func() {
		if len(names) == 0 {
			cmd.Println(mutedStyle.Render("No collections."))
			return
		}
		for _, n := range names {
			cmd.Println(n)
		}
	})
}

func runInfoSection(cmd *cobra.Command, args []string) error {
	catalog, err := catalogService(cmd)
	if err != nil {
		return err
	}
	info, err := catalog.SectionInfo(commandContext(cmd), optionalArg(args))
	if err != nil {
		return wrap("section info", err)
	}
	return render(cmd, info, func() {
		name := info.Name
		if name == "" {
			name = "(root)"
		}
		cmd.Println(heading("Section " + name))
		if info.Description != "" {
			cmd.Println(field("Description", info.Description))
		}
		if info.Depth > 0 {
			cmd.Println(field("Depth", strconv.Itoa(info.Depth)))
		}
		if len(info.Maintainers) > 0 {
			cmd.Println(field("Maintainer", people(info.Maintainers)))
		}
		printList(cmd, "Sections", info.Sections)
		printList(cmd, "Collections", info.Collections)
	})
}

func runInfoCollection(cmd *cobra.Command, args []string) error {
	catalog, err := catalogService(cmd)
	if err != nil {
		return err
	}
	info, err := catalog.CollectionInfo(commandContext(cmd), args[0])
	if err != nil {
		return wrap("collection info", err)
	}
	return render(cmd, info, func() {
		cmd.Println(heading("Collection " + info.Name))
		if info.Description != "" {
			cmd.Println(field("Description", info.Description))
		}
		if len(info.Authors) > 0 {
			cmd.Println(field("Author", people(info.Authors)))
		}
		if len(info.Contributors) > 0 {
			cmd.Println(field("Contributor", people(info.Contributors)))
		}
		if len(info.Maintainers) > 0 {
			cmd.Println(field("Maintainer", people(info.Maintainers)))
		}
		if len(info.References) > 0 {
			cmd.Println(field("References", strconv.Itoa(len(info.References))))
		}
	})
}

func people(ps []domain.Person) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

func printList(cmd *cobra.Command, title string, items []string) {
	cmd.Println()
	cmd.Println(subtitleStyle.Render(title))
	if len(items) == 0 {
		cmd.Println(mutedStyle.Render("  (none)"))
		return
	}
	for _, it := range items {
		cmd.Printf("  %s\n", it)
	}
}
