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
	rootCmd.AddCommand(learnCmd)

	learnCmd.Flags().StringP("data", "d", "", "training data file")
	learnCmd.Flags().String("format", "Columns", "INPUTFORMAT: Columns, Tabbed, ARFF, Compact, Sparse")
	learnCmd.Flags().String("algorithm", "IB1", "ALGORITHM: IB1, IGTree, TRIBL, TRIBL2")
	learnCmd.Flags().String("weighting", "GR", "WEIGHTING: GR, IG, CHI2, SV, SD, NO")
	learnCmd.Flags().Int("neighbors", 1, "NEIGHBORS (k)")
	learnCmd.Flags().String("ib-out", "mbl.ib", "instance-base output file")
	learnCmd.Flags().String("weights-out", "", "optional feature-weight report file")
	learnCmd.MarkFlagRequired("data")
}

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Build an instance base from a training file",
	RunE:  runLearn,
}

func runLearn(cmd *cobra.Command, args []string) error {
	dataFile, _ := cmd.Flags().GetString("data")
	format, _ := cmd.Flags().GetString("format")
	algorithm, _ := cmd.Flags().GetString("algorithm")
	weighting, _ := cmd.Flags().GetString("weighting")
	neighbors, _ := cmd.Flags().GetInt("neighbors")
	ibOut, _ := cmd.Flags().GetString("ib-out")
	weightsOut, _ := cmd.Flags().GetString("weights-out")

	opt := mblconfig.New()
	for key, val := range map[string]string{
		"INPUTFORMAT": format,
		"ALGORITHM":   algorithm,
		"WEIGHTING":   weighting,
	} {
		if err := opt.Set(key, val); err != nil {
			return fmt.Errorf("mbl learn: %w", err)
		}
	}
	if err := opt.Set("NEIGHBORS", fmt.Sprint(neighbors)); err != nil {
		return fmt.Errorf("mbl learn: %w", err)
	}
	if optFile, _ := cmd.Flags().GetString("options"); optFile != "" {
		f, err := os.Open(optFile)
		if err != nil {
			return fmt.Errorf("mbl learn: opening options file: %w", err)
		}
		defer f.Close()
		if err := opt.Load(f); err != nil {
			return fmt.Errorf("mbl learn: loading options file: %w", err)
		}
	}

	lines, err := readLines(dataFile)
	if err != nil {
		return fmt.Errorf("mbl learn: reading data file: %w", err)
	}

	exp := experiment.New(opt)
	if err := exp.Learn(lines); err != nil {
		return fmt.Errorf("mbl learn: %w", err)
	}
	for _, w := range exp.Warnings() {
		log.Warn().Int("line", w.Line).Msg(w.Msg)
	}

	out, err := os.Create(ibOut)
	if err != nil {
		return fmt.Errorf("mbl learn: creating instance base file: %w", err)
	}
	defer out.Close()

	hdr := persist.Header{
		Algorithm:   algorithmFromOptLabel(algorithm),
		Persistent:  opt.KeepDistributions,
		BinSize:     opt.BinSize,
		Permutation: exp.IB.Permutation,
		Numeric:     map[int]bool{},
		Min:         map[int]float64{},
		Max:         map[int]float64{},
	}
	for _, f := range exp.Features {
		if f.Metric.IsNumeric() {
			hdr.Numeric[f.Index] = true
			hdr.Min[f.Index], hdr.Max[f.Index] = f.Min, f.Max
		}
	}
	if err := persist.WriteInstanceBase(out, hdr, exp.Lex, exp.Targets, exp.Features, exp.IB); err != nil {
		return fmt.Errorf("mbl learn: writing instance base: %w", err)
	}

	if weightsOut != "" {
		wf, err := os.Create(weightsOut)
		if err != nil {
			return fmt.Errorf("mbl learn: creating weight report: %w", err)
		}
		defer wf.Close()
		if err := persist.WriteWeights(wf, exp.Features); err != nil {
			return fmt.Errorf("mbl learn: writing weight report: %w", err)
		}
	}

	log.Info().Int("features", len(exp.Features)).Int("classes", exp.Targets.Len()).
		Msg("instance base written")
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
