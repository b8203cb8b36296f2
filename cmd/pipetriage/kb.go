package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pipetriage/internal/catalog"
)

var (
	kbSearch   string
	kbCategory string
	kbVerbose  bool
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Browse the error knowledge base",
	Long: `List, search or filter the curated error knowledge base that drives
pattern and semantic matching.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		switch {
		case kbSearch != "":
			entries := a.catalog.Search(kbSearch)
			fmt.Printf("%d entries matching %q:\n\n", len(entries), kbSearch)
			printEntries(entries)
		case kbCategory != "":
			entries := a.catalog.ByCategory(catalog.Category(kbCategory))
			fmt.Printf("%d entries in category %q:\n\n", len(entries), kbCategory)
			printEntries(entries)
		default:
			fmt.Printf("%d entries in %d categories:\n\n", a.catalog.Len(), len(a.catalog.Categories()))
			for _, cat := range a.catalog.Categories() {
				entries := a.catalog.ByCategory(cat)
				fmt.Printf("%s (%d)\n", cat, len(entries))
				printEntries(entries)
				fmt.Println()
			}
		}
		return nil
	},
}

func init() {
	kbCmd.Flags().StringVar(&kbSearch, "search", "", "keyword search across titles and descriptions")
	kbCmd.Flags().StringVar(&kbCategory, "category", "", "filter by category")
	kbCmd.Flags().BoolVar(&kbVerbose, "verbose", false, "show causes and solutions")
}

func printEntries(entries []*catalog.Entry) {
	for _, e := range entries {
		fmt.Printf("  %-24s %s [%s]\n", e.ID, e.Title, e.Severity)
		if !kbVerbose {
			continue
		}
		for _, cause := range e.Causes {
			fmt.Printf("      cause: %s\n", cause)
		}
		for _, sol := range e.Solutions {
			fmt.Printf("      fix:   %s\n", sol)
		}
		if e.EstimatedFixTime != "" {
			fmt.Printf("      typical fix time: %s\n", e.EstimatedFixTime)
		}
	}
}
