package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chapterize/internal/detect"
	"chapterize/internal/epub"
	"chapterize/internal/pdf"
)

// Chapters scoring below this trigger a confirmation prompt before writing.
const lowConfidenceThreshold = 0.5

var (
	splitOutputDir  string
	splitPattern    string
	splitTo         string
	splitNoMetadata bool
	splitYes        bool
)

var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split a document into one file per chapter",
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

		pattern := cfg.Pattern
		if cmd.Flags().Changed("pattern") {
			pattern = splitPattern
		}
		preserveMetadata := cfg.PreserveMetadata && !splitNoMetadata

		doc, err := openDocument(args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		if splitTo != "" && splitTo != "epub" && splitTo != "pdf" {
			return fmt.Errorf("unknown target format %q (expected epub or pdf)", splitTo)
		}
		if splitTo == "pdf" && doc.epub == nil {
			return fmt.Errorf("--to pdf only applies to EPUB input")
		}

		result, err := detect.New(doc.src, opts).Detect()
		if err != nil {
			return err
		}
		printTable(result)

		if lows := result.LowConfidence(lowConfidenceThreshold); len(lows) > 0 && !splitYes {
			fmt.Printf("\n%d chapter(s) were detected with low confidence:\n", len(lows))
			for _, ch := range lows {
				fmt.Printf("  %.2f  %s\n", ch.Confidence, ch)
			}
			if !confirm("Split anyway?") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		outputDir := splitOutputDir
		if outputDir == "" {
			outputDir = cfg.OutputDir
		}
		if outputDir == "" {
			stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			outputDir = stem + "_chapters"
		}

		var written []string
		if doc.epub != nil {
			format := epub.OutputEPUB
			if splitTo == "pdf" {
				format = epub.OutputPDF
			}
			splitter := epub.NewSplitter(doc.epub, outputDir, pattern, format, preserveMetadata, logger)
			written, err = splitter.Split(result)
		} else {
			splitter := pdf.NewSplitter(outputDir, pattern, preserveMetadata, logger)
			written, err = splitter.Split(args[0], result)
		}
		if err != nil {
			if len(written) > 0 {
				fmt.Printf("Wrote %d file(s) before the failure:\n", len(written))
				for _, p := range written {
					fmt.Printf("  %s\n", p)
				}
			}
			return err
		}

		fmt.Printf("\nWrote %d file(s) to %s\n", len(written), outputDir)
		return nil
	},
}

func init() {
	addDetectionFlags(splitCmd)
	splitCmd.Flags().StringVarP(&splitOutputDir, "output-dir", "d", "", "output directory (default: <name>_chapters)")
	splitCmd.Flags().StringVar(&splitPattern, "pattern", "", "filename pattern, e.g. {index}_{title}")
	splitCmd.Flags().StringVar(&splitTo, "to", "", "target format for EPUB input: epub (default) or pdf")
	splitCmd.Flags().BoolVar(&splitNoMetadata, "no-metadata", false, "do not carry source metadata into the output files")
	splitCmd.Flags().BoolVarP(&splitYes, "yes", "y", false, "skip the low-confidence confirmation prompt")
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
