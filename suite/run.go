package suite

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/needle-lang/needle/cas"
	"github.com/needle-lang/needle/eval"
	"github.com/needle-lang/needle/lang"
)

// Runner compiles a manifest's programs into the store once, then
// evaluates every check against the retrieved programs.
type Runner struct {
	Manifest *Manifest
	Store    cas.Store

	programs map[string]cas.Hash
}

type CheckResult struct {
	Name    string
	Program string
	Expr    string
	Expect  string
	Passed  bool
	// Got is the formatted weak-head normal form of Expr, filled for
	// failed checks when the expression evaluates cleanly.
	Got   string
	Err   string
	Stats eval.Stats
}

type Statistics struct {
	Checks       int
	Passed       int
	Failed       int
	Errors       int
	Steps        int
	ThunkUpdates int
}

type Report struct {
	RunID      string
	Suite      string
	Results    []CheckResult
	Statistics Statistics
	Success    bool
}

// Initialize compiles and stores every program named by the manifest.
func (r *Runner) Initialize() error {
	for name, spec := range r.Manifest.Programs {
		src, err := os.ReadFile(spec.File)
		if err != nil {
			return fmt.Errorf("program %q: %w", name, err)
		}
		if err := r.addProgramSource(name, spec.File, src); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) addProgramSource(name, file string, src []byte) error {
	compiled, err := lang.CompileFile(file, src)
	if err != nil {
		return fmt.Errorf("program %q: %w", name, err)
	}
	hash, err := r.Store.Put(compiled)
	if err != nil {
		return fmt.Errorf("program %q: %w", name, err)
	}
	r.programs[name] = hash
	log.Debug().Str("program", name).Str("file", file).Uint64("hash", uint64(hash)).Msg("suite: stored program")
	return nil
}

// Run evaluates every check and returns the aggregated report. Check
// order is the sorted check names, for stable output.
func (r *Runner) Run() (*Report, error) {
	report := &Report{
		RunID: uuid.NewString(),
		Suite: r.Manifest.Suite.Name,
	}

	names := make([]string, 0, len(r.Manifest.Checks))
	for name := range r.Manifest.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := r.runCheck(name, r.Manifest.Checks[name])
		report.Results = append(report.Results, res)
		report.Statistics.Checks++
		report.Statistics.Steps += res.Stats.Steps
		report.Statistics.ThunkUpdates += res.Stats.ThunkUpdates
		switch {
		case res.Err != "":
			report.Statistics.Errors++
		case res.Passed:
			report.Statistics.Passed++
		default:
			report.Statistics.Failed++
		}
	}
	report.Success = report.Statistics.Failed == 0 && report.Statistics.Errors == 0
	return report, nil
}

func (r *Runner) runCheck(name string, spec CheckSpec) CheckResult {
	res := CheckResult{
		Name:    name,
		Program: spec.Program,
		Expr:    spec.Expr,
		Expect:  spec.Expect,
	}
	if res.Program == "" {
		res.Program = "main"
	}

	env, err := r.programEnv(res.Program)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	exprTerm, err := lang.ParseExprString("check:"+name, spec.Expr)
	if err != nil {
		res.Err = fmt.Sprintf("bad expression: %v", err)
		return res
	}
	expectTerm, err := lang.ParseExprString("expect:"+name, spec.Expect)
	if err != nil {
		res.Err = fmt.Sprintf("bad expected value: %v", err)
		return res
	}

	// The machine's own structural equality is the oracle: the check
	// passes when (expr) == (expect) evaluates to True.
	m := eval.New()
	out, err := m.Eval(&lang.Op2{Op: lang.Eq, Left: exprTerm, Right: expectTerm}, env)
	res.Stats = m.Stats()
	if err != nil {
		res.Err = err.Error()
		return res
	}
	b, ok := out.(lang.Bool)
	res.Passed = ok && bool(b)

	if !res.Passed {
		// Evaluate the expression alone so the report can show what
		// it actually produced.
		if got, gotErr := eval.New().Eval(exprTerm, env); gotErr == nil {
			res.Got = lang.FormatTerm(got)
		}
	}

	log.Debug().Str("check", name).Bool("passed", res.Passed).Int("steps", res.Stats.Steps).Msg("suite: check finished")
	return res
}

// programEnv rebuilds the binding environment of a stored program.
// Bindings are allocated in order, each closing over the ones before
// it.
func (r *Runner) programEnv(name string) (eval.Env, error) {
	hash, ok := r.programs[name]
	if !ok {
		return nil, fmt.Errorf("program %q was not initialized", name)
	}
	compiled, err := cas.Retrieve[*lang.Compiled](r.Store, hash)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", name, err)
	}
	env := eval.Env{}
	for _, b := range compiled.Bindings {
		env = env.With(b.Name, eval.NewThunk(eval.Closure{Body: b.Term, Env: env}))
	}
	return env, nil
}
