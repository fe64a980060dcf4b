package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chapterize/internal/config"
	"chapterize/internal/home"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the chapterize home directory and default config",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := dir.EnsureExists(); err != nil {
			return err
		}

		if dir.ConfigExists() && !initForce {
			fmt.Printf("Config already exists at %s (use --force to overwrite)\n", dir.ConfigPath())
			return nil
		}

		if err := config.WriteDefault(dir.ConfigPath()); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", dir.ConfigPath())
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}
