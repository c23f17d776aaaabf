package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a default mlsmell.yaml",
		Long: `Initialize mlsmell in a Python project.

This creates:
  - mlsmell.yaml configuration file with every rule option spelled out

Use --example to also create an ML Test Score sheet (ml_test_score.yaml)
ready for 'mlsmell score' and a .gitignore entry for the result cache.`,
		Example: `  # Initialize in current directory
  mlsmell init

  # Include the ML Test Score sheet
  mlsmell init --example

  # Initialize in another directory
  mlsmell init services/ranker

  # Force overwrite existing config
  mlsmell init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := NewCommandContextWithoutEngine(cmd).Renderer

			template := "minimal"
			if example {
				template = "example"
			}

			if dir != "." {
				if err := os.MkdirAll(dir, 0750); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			configPath := filepath.Join(dir, "mlsmell.yaml")
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("mlsmell.yaml already exists. Use --force to overwrite")
			}

			if err := copyTemplate(template, dir, force); err != nil {
				return fmt.Errorf("failed to initialize project: %w", err)
			}

			files, _ := listTemplateFiles(template)
			for _, f := range files {
				r.StatusLine(f, "success", "")
			}

			r.Println("")
			r.Success("mlsmell initialized!")
			r.Println("")
			r.Println("Next steps:")
			r.Println("  mlsmell lint      Find ML code smells")
			r.Println("  mlsmell rules     See what each rule checks")
			if example {
				r.Println("  mlsmell score     Compute the ML Test Score")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Also create an ML Test Score sheet and .gitignore")

	return cmd
}
