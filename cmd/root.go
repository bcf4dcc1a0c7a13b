// Package cmd provides the command-line interface of the simulator.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/vmslab/mmusim/datarecording"
	"github.com/vmslab/mmusim/pager"
	"github.com/vmslab/mmusim/report"
	"github.com/vmslab/mmusim/sim"
	"github.com/vmslab/mmusim/trace"
	"github.com/vmslab/mmusim/vm"
)

// recordEnvVar names the database that receives the operation recording.
// The variable being present enables recording; an empty value picks a
// unique database name.
const recordEnvVar = "MMUSIM_RECORD"

var (
	numFrames  int
	algoArg    string
	optionsArg string
)

// options is the decoded -o string.
type options struct {
	verbose        bool
	pageTables     bool
	frameTable     bool
	stats          bool
	currPageTable  bool
	allPageTables  bool
	currFrameTable bool
	agingInfo      bool
}

func parseOptions(arg string) (options, error) {
	var o options

	for _, ch := range arg {
		switch ch {
		case 'O':
			o.verbose = true
		case 'P':
			o.pageTables = true
		case 'F':
			o.frameTable = true
		case 'S':
			o.stats = true
		case 'x':
			o.currPageTable = true
		case 'y':
			o.allPageTables = true
		case 'f':
			o.currFrameTable = true
		case 'a':
			o.agingInfo = true
		default:
			return options{}, fmt.Errorf("unknown option letter %q", string(ch))
		}
	}

	return o, nil
}

var rootCmd = &cobra.Command{
	Use:   "mmusim -f<num_frames> -a<algo> [-o<options>] inputfile [randomfile]",
	Short: "Deterministic virtual-memory MMU simulator",
	Long: `mmusim replays a memory-reference trace for a set of processes ` +
		`against a single physical frame pool and reports operation traces, ` +
		`final page and frame tables, per-process statistics, and the total ` +
		`simulated cost. It exists to compare page-replacement policies ` +
		`under identical workloads.`,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE:         run,
}

// Execute runs the root command. Any fatal error is reported on the
// error stream and terminates the process with a non-zero status, after
// flushing any registered recorders.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(2)
	}

	atexit.Exit(0)
}

func init() {
	rootCmd.Flags().IntVarP(&numFrames, "frames", "f", 16,
		"number of physical frames (1..128)")
	rootCmd.Flags().StringVarP(&algoArg, "algo", "a", "f",
		"replacement algorithm: f|r|c|e|a|w")
	rootCmd.Flags().StringVarP(&optionsArg, "options", "o", "",
		"output options: any of OPFSxyfa")
}

func run(cmd *cobra.Command, args []string) error {
	// A missing .env is fine; it only supplies defaults.
	_ = godotenv.Load()

	if numFrames < 1 || numFrames > vm.MaxFrames {
		return fmt.Errorf("frame count %d out of range 1..%d",
			numFrames, vm.MaxFrames)
	}

	if len(algoArg) != 1 {
		return fmt.Errorf("invalid replacement algorithm %q", algoArg)
	}
	algo := algoArg[0]

	opts, err := parseOptions(optionsArg)
	if err != nil {
		return err
	}

	procs, instrs, err := trace.LoadInputFile(args[0])
	if err != nil {
		return err
	}

	var randStream *trace.RandStream
	if len(args) > 1 {
		randStream, err = trace.LoadRandomFile(args[1])
		if err != nil {
			return err
		}
	} else if algo == pager.AlgoRandom {
		return fmt.Errorf("the random pager needs a random file")
	}

	builder := sim.MakeBuilder().
		WithProcs(procs).
		WithInstructions(instrs).
		WithNumFrames(numFrames).
		WithAlgo(algo).
		WithRandStream(randStream)

	if opts.agingInfo {
		builder = builder.WithPagerDiagWriter(os.Stdout)
	}

	simulation, err := builder.Build()
	if err != nil {
		return err
	}

	if opts.verbose {
		simulation.RegisterTracer(report.NewOpPrinter(os.Stdout))
	}

	var recorder datarecording.DataRecorder
	if dbPath, ok := os.LookupEnv(recordEnvVar); ok {
		recorder = datarecording.New(dbPath)
		simulation.RegisterTracer(datarecording.NewOpRecorder(recorder))
	}

	registerDebugDumps(simulation, opts)

	if err := simulation.Run(); err != nil {
		return err
	}

	printReports(simulation, opts)

	if recorder != nil {
		datarecording.RecordProcStats(recorder, procs)
	}

	return nil
}

func registerDebugDumps(s *sim.Simulation, opts options) {
	if opts.currPageTable {
		s.RegisterPostInstructionHook(func() {
			if proc := s.CurrentProcess(); proc != nil {
				report.PrintPageTable(os.Stdout, proc)
			}
		})
	}

	if opts.allPageTables {
		s.RegisterPostInstructionHook(func() {
			report.PrintPageTables(os.Stdout, s.Procs())
		})
	}

	if opts.currFrameTable {
		s.RegisterPostInstructionHook(func() {
			report.PrintFrameTable(os.Stdout, s.Frames())
		})
	}
}

func printReports(s *sim.Simulation, opts options) {
	if opts.pageTables {
		report.PrintPageTables(os.Stdout, s.Procs())
	}

	if opts.frameTable {
		report.PrintFrameTable(os.Stdout, s.Frames())
	}

	if opts.stats {
		report.PrintProcStats(os.Stdout, s.Procs())
		report.PrintSummary(os.Stdout, s)
	}
}
