package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kaprekar-explorer/internal/kaprekar"
	"github.com/kaprekar-explorer/pkg/config"
)

var (
	configPath string

	minBase        int
	maxBase        int
	minDigits      int
	maxDigits      int
	cpuCores       int
	dataDir        string
	digitThreshold int
	highMem        bool
	allowSampling  bool
)

// exploreCmd represents the explore command
var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Classify Kaprekar orbits across a (base, digits) rectangle",
	Long: `explore walks every (base, digits) pair in the configured rectangle,
classifies each pair's starting values by the fixed point or cycle their
Kaprekar routine orbit settles into, and writes kaprekar_summary,
kaprekar_fp and kaprekar_cycles CSVs to <data-dir>/csv/.`,
	RunE: runExplore,
}

func init() {
	rootCmd.AddCommand(exploreCmd)

	binName := BinName()
	exploreCmd.Example = fmt.Sprintf(`  # The classic base-10, 4-digit case
  %s explore --min-base 10 --max-base 10 --min-digits 4 --max-digits 4

  # A small rectangle across several bases
  %s explore --min-base 2 --max-base 12 --min-digits 2 --max-digits 5 --data-dir ./out

  # Force the high-memory token-synced worker path
  %s explore --min-base 10 --max-base 10 --min-digits 7 --max-digits 7 --high-mem`,
		binName, binName, binName)

	exploreCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (overrides flag defaults, flags override it)")

	exploreCmd.Flags().IntVar(&minBase, "min-base", 2, "Minimum base (inclusive)")
	exploreCmd.Flags().IntVar(&maxBase, "max-base", 0, "Maximum base (inclusive); required")
	exploreCmd.Flags().IntVar(&minDigits, "min-digits", 2, "Minimum digit count (inclusive)")
	exploreCmd.Flags().IntVar(&maxDigits, "max-digits", 0, "Maximum digit count (inclusive); required")
	exploreCmd.Flags().IntVar(&cpuCores, "cpu-cores", 1, "Worker cores to use")
	exploreCmd.Flags().StringVar(&dataDir, "data-dir", ".", "Output directory root (CSVs are written under <data-dir>/csv/)")
	exploreCmd.Flags().IntVar(&digitThreshold, "digit-threshold", 13, "Advisory only: logged, but the simple/complex split is always base+digits >= 20")
	exploreCmd.Flags().BoolVar(&highMem, "high-mem", false, "Use the token-synced snapshot worker path instead of direct shared-memo writes")
	exploreCmd.Flags().BoolVar(&allowSampling, "allow-write-sampling", false, "Allow adaptive write-rate sampling to kick in on the direct-write path")
}

func runExplore(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	applyExploreFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info("=== Kaprekar Explorer ===")
	log.Info("base range:    [%d, %d]", cfg.Explore.MinBase, cfg.Explore.MaxBase)
	log.Info("digit range:   [%d, %d]", cfg.Explore.MinDigits, cfg.Explore.MaxDigits)
	log.Info("data dir:      %s", cfg.Explore.DataDir)
	log.Info("high mem:      %v", cfg.Explore.HighMem)
	log.Info("cpu cores:     %d", cfg.Worker.CPUCores)
	log.Info("")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver := kaprekar.NewDriver(cfg, log)

	start := time.Now()
	if err := driver.Run(ctx); err != nil {
		return fmt.Errorf("exploration failed: %w", err)
	}

	log.Info("")
	log.Info("=== Exploration Complete ===")
	log.Info("elapsed: %s", time.Since(start).Round(time.Millisecond))
	log.Info("output written to: %s", cfg.Explore.DataDir)

	return nil
}

// applyExploreFlags overlays every explicitly-set CLI flag onto the loaded
// config, so a config file supplies defaults but flags always win.
func applyExploreFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("min-base") {
		cfg.Explore.MinBase = minBase
	}
	if f.Changed("max-base") {
		cfg.Explore.MaxBase = maxBase
	}
	if f.Changed("min-digits") {
		cfg.Explore.MinDigits = minDigits
	}
	if f.Changed("max-digits") {
		cfg.Explore.MaxDigits = maxDigits
	}
	if f.Changed("cpu-cores") {
		cfg.Worker.CPUCores = cpuCores
	}
	if f.Changed("data-dir") {
		cfg.Explore.DataDir = dataDir
	}
	if f.Changed("digit-threshold") {
		cfg.Explore.DigitThreshold = digitThreshold
	}
	if f.Changed("high-mem") {
		cfg.Explore.HighMem = highMem
	}
	if f.Changed("allow-write-sampling") {
		cfg.Worker.AllowWriteSampling = allowSampling
	}
	if verbose {
		cfg.Log.Verbose = true
	}
}
