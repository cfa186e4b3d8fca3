package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/myst-ext/myst-ext-points/internal/importer"
	"github.com/myst-ext/myst-ext-points/internal/points"
	"github.com/myst-ext/myst-ext-points/internal/worksheet"
)

var (
	categories  []string
	outputPath  string
	strict      bool
	asJSON      bool
	pdfFallback bool
)

var rootCmd = &cobra.Command{
	Use:   "pointsmd",
	Short: "Point annotations for Markdown worksheets",
	Long: `pointsmd renders Markdown worksheets that carry inline point
annotations and a totals directive, checks them for annotation
problems, and converts legacy worksheet files to the annotated format.

Annotations look like {points}` + "`" + `3 bonus` + "`" + ` inside a problem, and a line
containing only {points-total} marks where the totals summary goes.`,
}

var renderCmd = &cobra.Command{
	Use:   "render <file.md>",
	Short: "Render a worksheet to HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var totalsCmd = &cobra.Command{
	Use:   "totals <file.md>",
	Short: "Print point totals for a worksheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runTotals,
}

var checkCmd = &cobra.Command{
	Use:   "check <file.md>...",
	Short: "Check worksheets for annotation problems",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Convert a legacy worksheet file to annotated Markdown",
	Long: `Converts a .txt, .csv, .html, .pdf, or .docx worksheet into Markdown
with point annotations rewritten from recognizable score labels such
as "(3 points)". The draft ends with a {points-total} directive.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&categories, "categories", nil,
		"Recognized point categories (default: bonus, extra, challenge)")

	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write output to a file instead of stdout")
	importCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write output to a file instead of stdout")
	importCmd.Flags().BoolVar(&pdfFallback, "pdftotext", true, "Fall back to the pdftotext binary for unreadable PDFs")
	totalsCmd.Flags().BoolVar(&asJSON, "json", false, "Print totals as JSON")
	checkCmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(totalsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRenderer() *worksheet.Renderer {
	return worksheet.NewRenderer(categories, nil)
}

func runRender(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	res, err := newRenderer().Render(src)
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", args[0], d.Severity, d.Message)
	}
	fmt.Fprintln(os.Stderr, points.ReportText(res.Totals))
	return writeOutput(res.HTML)
}

func runTotals(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	res, err := newRenderer().Render(src)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"grand_total": res.Totals.Grand(),
			"categories":  res.Totals.Categories(),
		})
	}

	fmt.Println(points.ReportText(res.Totals))
	for _, ct := range res.Totals.Categories() {
		fmt.Printf("  %s: %d\n", ct.Category, ct.Points)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	renderer := newRenderer()
	hasError := false

	for _, file := range args {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
			hasError = true
			continue
		}

		res, err := renderer.Render(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
			hasError = true
			continue
		}

		fileFailed := false
		for _, d := range res.Diagnostics {
			fmt.Printf("%s: %s: %s\n", file, d.Severity, d.Message)
			if d.Severity == points.SeverityError || strict {
				fileFailed = true
			}
		}
		if fileFailed {
			hasError = true
			continue
		}
		fmt.Printf("OK: %s (%s)\n", file, points.ReportText(res.Totals))
	}

	if hasError {
		os.Exit(1)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	conv, err := importer.ForFile(args[0])
	if err != nil {
		return err
	}
	if pdf, ok := conv.(*importer.PDFConverter); ok {
		pdf.FallbackPdftotext = pdfFallback
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	draft, err := conv.Convert(f, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "rewrote %d point annotations\n", draft.Rewrites)
	return writeOutput(draft.Markdown())
}

func writeOutput(data []byte) error {
	if outputPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputPath, data, 0644)
}
