package internal

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "avbuild",
	Short: "avbuild prepares the bundled native codec library for linkage",
	Long: `avbuild extracts the bundled native codec library, builds it when its
artifacts are missing or a release build demands it, emits link directives
for the outer build system and generates typed bindings from its headers.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
