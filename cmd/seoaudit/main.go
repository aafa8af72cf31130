package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageforge/backend/analyzer"
	"github.com/pageforge/backend/extractor"
)

var scoreOnly bool

var rootCmd = &cobra.Command{
	Use:   "seoaudit",
	Short: "Analyze, auto-fix and segment generated HTML pages",
	Long: `seoaudit runs the page analysis engine against a local HTML file
(or stdin) without going through the HTTP API.

Examples:
  seoaudit analyze page.html       # SEO analysis as JSON
  seoaudit analyze --score page.html
  seoaudit fix page.html           # fixed document to stdout
  cat page.html | seoaudit extract # extracted components as JSON`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run the SEO analysis and print the result as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := readInput(args)
		if err != nil {
			return err
		}

		analysis := analyzer.Analyze(html)
		if scoreOnly {
			fmt.Println(analysis.Score)
			return nil
		}
		return printJSON(analysis)
	},
}

var fixCmd = &cobra.Command{
	Use:   "fix [file]",
	Short: "Apply every available automatic fix and print the fixed document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := readInput(args)
		if err != nil {
			return err
		}

		fixed := analyzer.ApplyFixes(html, analyzer.Analyze(html))
		fmt.Println(fixed)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Segment the page into components and print them as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		html, err := readInput(args)
		if err != nil {
			return err
		}

		return printJSON(extractor.Extract(html))
	},
}

func readInput(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	analyzeCmd.Flags().BoolVar(&scoreOnly, "score", false, "print only the numeric score")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(extractCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
