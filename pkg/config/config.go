// Package config holds the settings of an exploration run.
package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/valuesummary"
	"github.com/p-org/psym/pkg/valuesummary/domain"
)

// Config is read from YAML; field names follow the JSON tags.
type Config struct {
	// MaxIterations bounds the number of iterations; 0 means unbounded.
	MaxIterations int `json:"maxIterations"`
	// MaxDepth bounds the number of steps of one iteration.
	MaxDepth int `json:"maxDepth"`
	// ChoiceBound is the number of enabled senders merged into one
	// symbolic step. The remaining senders are left for later iterations.
	ChoiceBound      int    `json:"choiceBound"`
	GuardBackend     string `json:"guardBackend"`
	GuardVars        int    `json:"guardVars"`
	DPOR             bool   `json:"dpor"`
	ChoiceClustering bool   `json:"choiceClustering"`
	InvariantChecks  bool   `json:"invariantChecks"`
	// IntervalInts abstracts integer values as intervals.
	IntervalInts bool `json:"intervalInts"`

	Machines  int `json:"machines"`
	Receivers int `json:"receivers"`
	Messages  int `json:"messages"`
	// FailAt makes the reference program assert that no receiver holds
	// that many messages; 0 disables the assertion.
	FailAt int `json:"failAt"`

	MetricsAddr string `json:"metricsAddr"`
	Debug       bool   `json:"debug"`
}

func Default() *Config {
	return &Config{
		MaxIterations:    1000,
		MaxDepth:         64,
		ChoiceBound:      1,
		GuardBackend:     guard.BackendBDD.String(),
		GuardVars:        guard.DefaultVariables,
		DPOR:             true,
		ChoiceClustering: true,
		Machines:         2,
		Receivers:        1,
		Messages:         1,
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return c, nil
}

func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.MaxIterations, "max-iterations", c.MaxIterations, "maximum number of iterations, 0 for no bound")
	fs.IntVar(&c.MaxDepth, "max-depth", c.MaxDepth, "maximum number of steps per iteration")
	fs.IntVar(&c.ChoiceBound, "choice-bound", c.ChoiceBound, "number of senders merged into one symbolic step")
	fs.StringVar(&c.GuardBackend, "guard-backend", c.GuardBackend, "guard representation: bdd or sat")
	fs.IntVar(&c.GuardVars, "guard-vars", c.GuardVars, "number of decision variables the bdd backend can allocate in one run")
	fs.BoolVar(&c.DPOR, "dpor", c.DPOR, "use dynamic partial-order reduction")
	fs.BoolVar(&c.ChoiceClustering, "choice-clustering", c.ChoiceClustering, "cluster candidates before allocating choice variables")
	fs.BoolVar(&c.InvariantChecks, "invariant-checks", c.InvariantChecks, "check guard exclusivity of every value summary")
	fs.BoolVar(&c.IntervalInts, "interval-ints", c.IntervalInts, "abstract integers as intervals")
	fs.IntVar(&c.Machines, "machines", c.Machines, "number of senders of the reference program")
	fs.IntVar(&c.Receivers, "receivers", c.Receivers, "number of receivers of the reference program")
	fs.IntVar(&c.Messages, "messages", c.Messages, "messages sent by each sender")
	fs.IntVar(&c.FailAt, "fail-at", c.FailAt, "message count no receiver may reach, 0 to disable")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "address to serve prometheus metrics on, empty to disable")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "use debug log level")
}

// Override sets on c the flags that were changed on fs. It lets flags take
// precedence over a file loaded after fs was parsed.
func (c *Config) Override(fs *pflag.FlagSet) error {
	own := pflag.NewFlagSet("config", pflag.ContinueOnError)
	c.AddFlags(own)

	var errs []error
	fs.Visit(func(f *pflag.Flag) {
		if own.Lookup(f.Name) == nil {
			return
		}
		if err := own.Set(f.Name, f.Value.String()); err != nil {
			errs = append(errs, errors.Wrapf(err, "flag --%s", f.Name))
		}
	})
	return utilerrors.NewAggregate(errs)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("maxIterations must not be negative, got %d", c.MaxIterations))
	}
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("maxDepth must be positive, got %d", c.MaxDepth))
	}
	if c.ChoiceBound < 1 {
		errs = append(errs, fmt.Errorf("choiceBound must be positive, got %d", c.ChoiceBound))
	}
	if _, err := guard.ParseBackendKind(c.GuardBackend); err != nil {
		errs = append(errs, err)
	}
	if c.GuardVars < 1 || c.GuardVars > guard.MaxVariables {
		errs = append(errs, fmt.Errorf("guardVars must be in [1, %d], got %d", guard.MaxVariables, c.GuardVars))
	}
	for _, f := range []struct {
		name string
		v    int
	}{{"machines", c.Machines}, {"receivers", c.Receivers}, {"messages", c.Messages}} {
		if f.v < 1 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", f.name, f.v))
		}
	}
	if c.FailAt < 0 {
		errs = append(errs, fmt.Errorf("failAt must not be negative, got %d", c.FailAt))
	}
	return utilerrors.NewAggregate(errs)
}

// Apply pushes the process-wide settings: the guard backend, invariant
// checking and the Default domain registry. It starts a new guard
// generation, so it must only be called before a run.
func (c *Config) Apply() error {
	kind, err := guard.ParseBackendKind(c.GuardBackend)
	if err != nil {
		return err
	}
	if err := guard.UseBackend(kind, guard.WithVariables(c.GuardVars)); err != nil {
		return errors.Wrap(err, "selecting guard backend")
	}
	valuesummary.SetInvariantChecks(c.InvariantChecks)
	domain.Default.Reset()
	if c.IntervalInts {
		domain.RegisterInterval[int](domain.Default)
	}
	return nil
}
