package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/objkit/internal/harness"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenario files without running them",
		Long: `Parse and validate one or more scenario files.

Checks YAML structure, rejects unknown fields, and verifies that every
step and assertion carries its required fields. No scenario is executed.

Example:
  objkit validate ./scenarios/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateScenarios(opts, args, cmd)
		},
	}

	return cmd
}

// validation is the payload reported per validated file.
type validation struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Steps      int    `json:"steps"`
	Assertions int    `json:"assertions"`
}

func validateScenarios(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	results := make([]validation, 0, len(paths))
	for _, path := range paths {
		s, err := harness.LoadScenario(path)
		if err != nil {
			formatter.Error("E001", fmt.Sprintf("%s: %v", path, err), nil)
			return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios invalid", 1, len(paths)))
		}
		formatter.VerboseLog("validated %s (%s)", path, s.Name)
		results = append(results, validation{
			Path:       path,
			Name:       s.Name,
			Steps:      len(s.Steps),
			Assertions: len(s.Assertions),
		})
	}

	if opts.Format == "json" {
		return formatter.Success(results)
	}
	return formatter.Success(fmt.Sprintf("%d scenario(s) valid", len(results)))
}
