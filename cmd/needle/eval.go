package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/needle-lang/needle/eval"
	"github.com/needle-lang/needle/lang"
)

var (
	exprFlag      string
	evalStatsFlag bool
)

var evalCmd = &cobra.Command{
	Use:   "eval PROGRAM",
	Short: "Evaluate a program's trailing expression",
	Args:  cobra.MinimumNArgs(1),
	Run:   evalCommand,
}

func init() {
	evalCmd.Flags().StringVar(&exprFlag, "expr", "", "Evaluate this expression with the program's bindings in scope")
	evalCmd.Flags().BoolVar(&evalStatsFlag, "stats", false, "Print evaluation statistics")
}

func evalCommand(cmd *cobra.Command, args []string) {
	filename := args[0]
	compiled, err := lang.CompilePath(filename)
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't compile program")
	}

	env := eval.Env{}
	for _, b := range compiled.Bindings {
		env = env.With(b.Name, eval.NewThunk(eval.Closure{Body: b.Term, Env: env}))
	}

	term := compiled.Main
	if exprFlag != "" {
		term, err = lang.ParseExprString("expr", exprFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't parse expression")
		}
	}
	if term == nil {
		log.Fatal().Msg("Program has no trailing expression; pass one with --expr")
	}

	m := eval.New()
	out, err := m.Eval(term, env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(lang.FormatTerm(out))

	if evalStatsFlag {
		stats := m.Stats()
		fmt.Fprintf(os.Stderr, "steps=%d max_stack=%d thunk_updates=%d eq_decompositions=%d\n",
			stats.Steps, stats.MaxStack, stats.ThunkUpdates, stats.EqDecompositions)
	}
}
