package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/mockengine"
	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/problems"
)

type solveFlags struct {
	optionsFile string
	ints        []string
	nums        []string
	strs        []string
	outputFile  string
	printLevel  int32
	mock        bool
	format      string
}

func newSolveCmd(c *cli) *cobra.Command {
	var f solveFlags
	cmd := &cobra.Command{
		Use:   "solve <problem>",
		Short: "Solve one of the bundled problems",
		Long: `Solves a bundled problem (see "ipopt-go problems") and prints the final
point, objective, evaluation counts and solver status. The command fails when
the solver does not report success.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.solve(cmd, args[0], &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.optionsFile, "options", "", "YAML file with integer, numeric and string option maps")
	fl.StringArrayVar(&f.ints, "int", nil, "Integer option name=value (repeatable)")
	fl.StringArrayVar(&f.nums, "num", nil, "Numeric option name=value (repeatable)")
	fl.StringArrayVar(&f.strs, "str", nil, "String option name=value (repeatable)")
	fl.StringVar(&f.outputFile, "output-file", "", "Write Ipopt's iteration log to this file")
	fl.Int32Var(&f.printLevel, "print-level", 5, "Print level for --output-file (0-12)")
	fl.BoolVar(&f.mock, "mock", false, "Use the in-memory Newton engine instead of Ipopt")
	fl.StringVar(&f.format, "format", "text", "Result format (text, yaml)")
	return cmd
}

func (c *cli) solve(cmd *cobra.Command, name string, f *solveFlags) error {
	mk, ok := problems.Catalog[name]
	if !ok {
		return fmt.Errorf("unknown problem %q", name)
	}
	if f.format != "text" && f.format != "yaml" {
		return fmt.Errorf("invalid --format %q", f.format)
	}

	opts, err := f.options()
	if err != nil {
		return err
	}

	appOpts := []ipopt.AppOption{ipopt.WithLogger(c.logger), ipopt.WithOptions(opts)}
	if f.outputFile != "" {
		appOpts = append(appOpts, ipopt.WithOutputFile(f.outputFile, f.printLevel))
	}
	if f.mock {
		appOpts = append(appOpts, ipopt.WithEngine(mockengine.New(mockengine.WithNewton(0, 0))))
	}

	res, err := ipopt.New(appOpts...).Optimize(mk())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.format == "yaml" {
		err = writeYAML(out, name, res)
	} else {
		err = writeText(out, res)
	}
	if err != nil {
		return err
	}
	if !res.Status.Succeeded() {
		return fmt.Errorf("solver stopped: %s", res.Status)
	}
	return nil
}

// options merges the YAML file with the command-line assignments, which win.
func (f *solveFlags) options() (ipopt.Options, error) {
	opts := ipopt.Options{
		Integer: map[string]int32{},
		Numeric: map[string]float64{},
		String:  map[string]string{},
	}
	if f.optionsFile != "" {
		fromFile, err := ipopt.ReadOptionsFile(f.optionsFile)
		if err != nil {
			return ipopt.Options{}, err
		}
		opts = fromFile
	}
	for _, kv := range f.ints {
		name, v, err := assignment(kv)
		if err != nil {
			return ipopt.Options{}, err
		}
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return ipopt.Options{}, fmt.Errorf("--int %s: %w", name, err)
		}
		opts.Integer[name] = int32(n)
	}
	for _, kv := range f.nums {
		name, v, err := assignment(kv)
		if err != nil {
			return ipopt.Options{}, err
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ipopt.Options{}, fmt.Errorf("--num %s: %w", name, err)
		}
		opts.Numeric[name] = x
	}
	for _, kv := range f.strs {
		name, v, err := assignment(kv)
		if err != nil {
			return ipopt.Options{}, err
		}
		opts.String[name] = v
	}
	return opts, nil
}

func assignment(kv string) (string, string, error) {
	name, v, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("option %q: want name=value", kv)
	}
	return name, strings.TrimSpace(v), nil
}

func statusColor(s ipopt.Status) *color.Color {
	switch {
	case s.Succeeded():
		return color.New(color.FgGreen, color.Bold)
	case s > 0:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func writeText(w io.Writer, res *ipopt.OptimizationResult) error {
	sol, perf := res.Solution, res.Performance
	if _, err := statusColor(res.Status).Fprintf(w, "%s\n", res.Status); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w,
		"objective   %.10g\nx           %v\nconstraints %v\nevaluations f=%d grad_f=%d g=%d jac_g=%d h=%d\nrun         %s\n",
		sol.Objective, sol.X, sol.Constraints,
		perf.ObjectiveEvaluations, perf.ObjectiveGradientEvaluations, perf.ConstraintEvaluations,
		perf.JacobianEvaluations, perf.HessianEvaluations,
		res.RunID)
	return err
}

type report struct {
	Problem     string      `yaml:"problem"`
	Status      string      `yaml:"status"`
	Code        int32       `yaml:"code"`
	Objective   float64     `yaml:"objective"`
	X           []float64   `yaml:"x"`
	Constraints []float64   `yaml:"constraints"`
	Lambda      []float64   `yaml:"lambda"`
	ZL          []float64   `yaml:"z_l"`
	ZU          []float64   `yaml:"z_u"`
	Evaluations evaluations `yaml:"evaluations"`
	RunID       string      `yaml:"run_id"`
}

type evaluations struct {
	F     uint32 `yaml:"f"`
	GradF uint32 `yaml:"grad_f"`
	G     uint32 `yaml:"g"`
	JacG  uint32 `yaml:"jac_g"`
	H     uint32 `yaml:"h"`
}

func writeYAML(w io.Writer, name string, res *ipopt.OptimizationResult) error {
	sol, perf := res.Solution, res.Performance
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report{
		Problem:     name,
		Status:      res.Status.String(),
		Code:        int32(res.Status),
		Objective:   sol.Objective,
		X:           sol.X,
		Constraints: sol.Constraints,
		Lambda:      sol.Lambda,
		ZL:          sol.ZL,
		ZU:          sol.ZU,
		Evaluations: evaluations{
			F:     perf.ObjectiveEvaluations,
			GradF: perf.ObjectiveGradientEvaluations,
			G:     perf.ConstraintEvaluations,
			JacG:  perf.JacobianEvaluations,
			H:     perf.HessianEvaluations,
		},
		RunID: res.RunID,
	}); err != nil {
		return err
	}
	return enc.Close()
}
