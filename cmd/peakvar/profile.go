package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/omics-tools/peakvar/internal/genemodel"
	"github.com/omics-tools/peakvar/internal/output"
	"github.com/omics-tools/peakvar/internal/peak"
	"github.com/omics-tools/peakvar/internal/profile"
)

func newProfileCmd() *cobra.Command {
	var (
		genesPath string
		outPath   string
		window    int64
		onlyRepr  bool
	)

	cmd := &cobra.Command{
		Use:   "profile --genes <genes.tsv> <peaks.bed> <variants.vcf> [variants2.vcf ...]",
		Short: "Profile variant distribution over peaks",
		Long: `Annotate each peak against the gene model, place the variants of every
VCF file onto the peaks and write one tab-delimited statistics row per
peak. The first VCF populates the peaks; every further VCF is treated
as a replicate over the same peak set and combined in.`,
		Example: `  peakvar profile --genes genes.tsv peaks.narrowPeak sample.vcf
  peakvar profile --genes genes.tsv.gz --out stats.tsv peaks.bed a.vcf b.vcf
  peakvar profile --genes genes.tsv --window 50 peaks.bed sample.vcf.gz`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(genesPath, outPath, window, onlyRepr, args)
		},
	}

	cmd.Flags().StringVar(&genesPath, "genes", "", "gene model TSV file, .gz accepted (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().Int64Var(&window, "window", 0, "slice peaks into windows of this many nucleotides")
	cmd.Flags().BoolVar(&onlyRepr, "repr", false, "report representative-region tables instead of raw membership")
	_ = cmd.MarkFlagRequired("genes")

	_ = viper.BindPFlag("profile.window", cmd.Flags().Lookup("window"))
	_ = viper.BindPFlag("profile.repr", cmd.Flags().Lookup("repr"))

	return cmd
}

func runProfile(genesPath, outPath string, window int64, onlyRepr bool, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	// Flags not given on the command line fall back to the config file.
	if window == 0 {
		window = viper.GetInt64("profile.window")
	}
	if !onlyRepr {
		onlyRepr = viper.GetBool("profile.repr")
	}

	model := genemodel.NewModel()
	loader := genemodel.NewLoader(genesPath)
	loader.SetLogger(logger)
	if err := loader.Load(model); err != nil {
		return fmt.Errorf("loading gene model: %w", err)
	}

	peaks, err := peak.ParsePeakFile(args[0])
	if err != nil {
		return fmt.Errorf("parsing peaks: %w", err)
	}
	logger.Info("parsed peaks", zap.Int("peaks", len(peaks)))

	out := os.Stdout
	if outPath != "" {
		out, err = os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()
	}

	pr := profile.New(model)
	pr.SetLogger(logger)
	pr.SetWindow(window)

	return pr.Run(peaks, args[1:], output.NewTabWriter(out, onlyRepr))
}
