package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .sbmigrate.yaml config file",
	Long:  `Create a .sbmigrate.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(".sbmigrate.yaml"); err == nil && !force {
			return fmt.Errorf(".sbmigrate.yaml already exists (use --force to overwrite)")
		}

		if err := os.WriteFile(".sbmigrate.yaml", []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Println("Created .sbmigrate.yaml")
		return nil
	},
}

const defaultConfig = `# sbmigrate configuration
# Docs: https://github.com/dealercraft/sbmigrate

# Shared settings
theme: .
shared-root: ""
oem: ""
verbose: false

# Migration settings
migrate:
  write: false
  dry-run: false
  copy-inherited: false
  workers: 4
  strict: false

# Audit settings
audit:
  patterns:
    - "css/**/*.scss"
  format: text             # text | json
  strict: false
  print-lines: true
  print-check-name: true
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
