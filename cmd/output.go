package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("output-file", "", "write output to file")
	f.Int("top", 0, "number of largest tasks to show")
	f.Bool("show-tasks", false, "list the tasks placed in each bin")
	f.Bool("no-cache", false, "disable the instance type cache")
}

// applyOutputFlags copies command-local flags into the config and opens the
// output destination. On success the returned close function is never nil;
// its error reports a failed flush of --output-file.
func applyOutputFlags(cmd *cobra.Command) (io.Writer, func() error, error) {
	if n, _ := cmd.Flags().GetInt("top"); cmd.Flags().Changed("top") {
		cfg.Output.TopN = n
	}
	if show, _ := cmd.Flags().GetBool("show-tasks"); cmd.Flags().Changed("show-tasks") {
		cfg.Output.ShowTasks = show
	}

	outFile, _ := cmd.Flags().GetString("output-file")
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() error {
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing output file: %w", err)
		}
		return nil
	}, nil
}

// closeOutput folds the close error of the output destination into the
// command's error.
func closeOutput(closeFn func() error, err *error) {
	if cerr := closeFn(); cerr != nil && *err == nil {
		*err = cerr
	}
}
