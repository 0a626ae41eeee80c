package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
)

// version is set at build time via ldflags.
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - a personal portfolio site built with Go, Echo, and templ",
	Long: `folio serves a portfolio site: a home page with a rotating tagline,
work and about pages, and a writing collection with previous/next navigation.

Configuration is read from a YAML file, then FOLIO_* environment variables
(a .env file in the working directory is loaded first).`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the folio version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("folio %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "folio.yaml", "config file path")
	rootCmd.AddCommand(versionCmd)
}

// loadSite reads the catalog named by cfg, or the embedded one.
func loadSite(cfg folio.SiteConfig) (*content.Site, error) {
	if cfg.ContentDir != "" {
		return content.LoadDir(cfg.ContentDir)
	}
	return content.Default()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
