package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wlattner/mbl/experiment"
	"github.com/wlattner/mbl/mblconfig"
	"github.com/wlattner/mbl/persist"
)

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().String("ib", "mbl.ib", "instance-base file to load")
	classifyCmd.Flags().StringP("data", "d", "", "test data file (feature columns only)")
	classifyCmd.Flags().StringP("out", "o", "", "predictions output file (default stdout)")
	classifyCmd.Flags().Int("workers", 1, "number of concurrent classify workers")
	classifyCmd.MarkFlagRequired("data")
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a file of test instances against a saved instance base",
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	ibFile, _ := cmd.Flags().GetString("ib")
	dataFile, _ := cmd.Flags().GetString("data")
	outFile, _ := cmd.Flags().GetString("out")
	workers, _ := cmd.Flags().GetInt("workers")

	f, err := os.Open(ibFile)
	if err != nil {
		return fmt.Errorf("mbl classify: opening instance base: %w", err)
	}
	defer f.Close()

	hdr, lex, targets, features, ib, err := persist.ReadInstanceBase(f)
	if err != nil {
		return fmt.Errorf("mbl classify: reading instance base: %w", err)
	}

	opt := mblconfig.New()
	opt.BinSize = hdr.BinSize
	opt.Freeze()

	exp := &experiment.Experiment{
		Opt:      opt,
		Lex:      lex,
		Targets:  targets,
		Features: features,
		IB:       ib,
	}

	lines, err := readLines(dataFile)
	if err != nil {
		return fmt.Errorf("mbl classify: reading data file: %w", err)
	}

	results, err := exp.ClassifyBatch(lines, workers)
	if err != nil {
		log.Warn().Err(err).Msg("one or more lines failed to classify")
	}

	w := os.Stdout
	if outFile != "" {
		out, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("mbl classify: creating output file: %w", err)
		}
		defer out.Close()
		w = out
	}
	bw := bufio.NewWriter(w)
	for _, r := range results {
		fmt.Fprintf(bw, "%s\t%.4f\n", r.Class, r.Confidence)
	}
	return bw.Flush()
}
