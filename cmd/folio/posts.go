package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
)

var postsCmd = &cobra.Command{
	Use:   "posts [slug]",
	Short: "List the writing collection, or show one post and its neighbours",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := folio.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		site, err := loadSite(cfg)
		if err != nil {
			return fmt.Errorf("load content: %w", err)
		}

		if len(args) == 0 {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tDATE\tCATEGORY\tTITLE")
			for _, p := range site.Posts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Slug, p.Date, p.Category, p.Title)
			}
			return w.Flush()
		}

		res := content.Resolve(site.Posts, args[0])
		if !res.Found() {
			return fmt.Errorf("post %q: %w", args[0], content.ErrNotFound)
		}
		fmt.Printf("%s\n  %s  %s  %s\n", res.Post.Title, res.Post.URL(), res.Post.Date, res.Post.ReadTime)
		if res.Previous != nil {
			fmt.Printf("  previous: %s (%s)\n", res.Previous.Title, res.Previous.URL())
		}
		if res.Next != nil {
			fmt.Printf("  next:     %s (%s)\n", res.Next.Title, res.Next.URL())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)
}
