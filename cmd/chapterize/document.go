package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chapterize/internal/config"
	"chapterize/internal/detect"
	"chapterize/internal/epub"
	"chapterize/internal/pdf"
	"chapterize/internal/types"
)

// document wraps an opened input file. For EPUBs the archive handle is
// kept so the splitter can read content units; PDFs are reopened by path.
type document struct {
	path string
	src  detect.Source
	epub *epub.Source // nil for PDFs
}

func openDocument(path string) (*document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		src, err := pdf.Open(path, logger)
		if err != nil {
			return nil, err
		}
		return &document{path: path, src: src}, nil
	case ".epub":
		src, err := epub.Open(path, logger)
		if err != nil {
			return nil, err
		}
		return &document{path: path, src: src, epub: src}, nil
	}
	return nil, fmt.Errorf("unsupported document type %q (expected .pdf or .epub)", filepath.Ext(path))
}

func (d *document) Close() error {
	if d.epub != nil {
		return d.epub.Close()
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cm, err := config.NewManager(cfgFile, homeDir)
	if err != nil {
		return nil, err
	}
	return cm.Get(), nil
}

// Detection flags shared by preview and split. Config supplies the value
// for any flag the user did not set.
var (
	flagStrategy    string
	flagSensitivity string
	flagLevel       int
)

func addDetectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagStrategy, "strategy", "s", "", "detection strategy: native, structural, manifest or hybrid")
	cmd.Flags().StringVar(&flagSensitivity, "sensitivity", "", "heading sensitivity: low, medium or high")
	cmd.Flags().IntVarP(&flagLevel, "level", "l", 0, "outline level to split by (1 = top-level, 0 = all)")
}

func detectionOptions(cmd *cobra.Command, cfg *config.Config) (detect.Options, error) {
	strategyName := cfg.Strategy
	if cmd.Flags().Changed("strategy") {
		strategyName = flagStrategy
	}
	strategy, err := types.ParseStrategy(strategyName)
	if err != nil {
		return detect.Options{}, err
	}

	sensitivityName := cfg.Sensitivity
	if cmd.Flags().Changed("sensitivity") {
		sensitivityName = flagSensitivity
	}
	sensitivity, err := types.ParseSensitivity(sensitivityName)
	if err != nil {
		return detect.Options{}, err
	}

	level := cfg.OutlineLevel
	if cmd.Flags().Changed("level") {
		level = flagLevel
	}

	return detect.Options{
		Strategy:    strategy,
		Sensitivity: sensitivity,
		Level:       level,
		Logger:      logger,
	}, nil
}
