package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"chapterize/internal/detect"
	"chapterize/internal/types"
)

var previewFormat string

var (
	headerStyle        = lipgloss.NewStyle().Bold(true)
	confidenceHigh     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	confidenceMedium   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	confidenceLowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Detect chapters without writing any output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := detectionOptions(cmd, cfg)
		if err != nil {
			return err
		}

		doc, err := openDocument(args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		result, err := detect.New(doc.src, opts).Detect()
		if err != nil {
			return err
		}

		switch previewFormat {
		case "yaml":
			data, err := yaml.Marshal(result)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		case "json":
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		case "table":
			printTable(result)
			return nil
		}
		return fmt.Errorf("unknown output format %q (expected table, yaml or json)", previewFormat)
	},
}

func init() {
	addDetectionFlags(previewCmd)
	previewCmd.Flags().StringVarP(&previewFormat, "output", "o", "table", "output format: table, yaml or json")
}

func printTable(result *types.DetectionResult) {
	fmt.Println(headerStyle.Render(fmt.Sprintf(
		"%d chapters detected via %s (%d units)",
		result.ChapterCount(), result.StrategyUsed, result.TotalUnits)))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTITLE\tLOCATION\tLEVEL\tMETHOD\tCONFIDENCE")
	for i, ch := range result.Chapters {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i+1, ch.Title, ch.Position.Location(), ch.Level, ch.Method,
			confidenceCell(ch.Confidence))
	}
	w.Flush()
}

func confidenceCell(confidence float64) string {
	text := fmt.Sprintf("%.2f", confidence)
	switch {
	case confidence >= 0.8:
		return confidenceHigh.Render(text)
	case confidence >= 0.5:
		return confidenceMedium.Render(text)
	default:
		return confidenceLowStyle.Render(text)
	}
}
