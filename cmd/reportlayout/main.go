// Command reportlayout lays out a report content tree, read from a YAML
// fixture, and prints the resulting pages.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/benoitkugler/reportlayout/config"
	"github.com/benoitkugler/reportlayout/logger"
	bo "github.com/benoitkugler/reportlayout/report/boxes"
	"github.com/benoitkugler/reportlayout/report/engine"
	"github.com/benoitkugler/reportlayout/report/shared"
	"github.com/benoitkugler/reportlayout/text"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func main() {
	root, _ := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds a fresh command tree. The returned pointer is filled
// with the loaded configuration before any sub command runs.
func newRootCmd() (*cobra.Command, **config.Config) {
	var (
		cfgFile string
		cfg     = new(*config.Config)
	)
	rootCmd := &cobra.Command{
		Use:           "reportlayout",
		Short:         "Lay out report content trees into pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger.Initialize(loaded.Logger)
			*cfg = loaded
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML configuration file")

	rootCmd.AddCommand(newLayoutCmd(cfg), newVersionCmd())
	return rootCmd, cfg
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of reportlayout",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reportlayout version %s\n", strings.TrimSpace(Version))
		},
	}
}

func newLayoutCmd(cfg **config.Config) *cobra.Command {
	var (
		measurerName string
		dump         bool
		contextID    string
	)
	cmd := &cobra.Command{
		Use:   "layout <fixture.yaml>",
		Short: "Lay out a report and print its pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			measurer, err := newMeasurer(measurerName)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			root, err := loadFixture(f)
			if err != nil {
				return err
			}

			current := *cfg
			if current == nil {
				current = config.NewDefaultConfig()
			}
			eng, err := engine.New(current, measurer, nil)
			if err != nil {
				return err
			}
			res, err := eng.Layout(cmd.Context(), root, shared.ContextState{ID: contextID})
			if err != nil {
				return err
			}
			printResult(cmd, res)
			if dump {
				bo.Dump(cmd.OutOrStdout(), res.Logical)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&measurerName, "measurer", "basic", "text measurer: basic or cell")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the logical page box tree")
	cmd.Flags().StringVar(&contextID, "context", "main", "identifier of the layout context")
	return cmd
}

func newMeasurer(name string) (text.Measurer, error) {
	switch name {
	case "basic":
		return text.NewCache(text.BasicMeasurer{}), nil
	case "cell":
		return text.CellMeasurer{}, nil
	default:
		return nil, fmt.Errorf("unknown measurer %q (expected basic or cell)", name)
	}
}

func printResult(cmd *cobra.Command, res *engine.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d page(s)\n", len(res.Pages))
	for _, page := range res.Pages {
		ids := make([]string, len(page.Bands))
		for i, band := range page.Bands {
			ids[i] = band.ID()
		}
		fmt.Fprintf(out, "page %d: offset %s, height %s, bands [%s]\n",
			page.Index+1, page.Offset, page.Height, strings.Join(ids, " "))
	}
	for _, o := range res.Overflows {
		fmt.Fprintln(out, o)
	}
	for _, c := range res.Conflicts {
		fmt.Fprintln(out, c)
	}
}
