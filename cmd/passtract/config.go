package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"passtract/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml to the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault("config.yaml"); err != nil {
			return err
		}
		fmt.Println("wrote config.yaml")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
