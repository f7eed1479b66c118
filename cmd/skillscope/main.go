package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spektr-org/skillscope/config"
	"github.com/spektr-org/skillscope/logger"
	"github.com/spektr-org/skillscope/presenter"
	"github.com/spektr-org/skillscope/schema"
)

// ============================================================================
// SKILLSCOPE CLI: Skill assessment reports from a spreadsheet
// ============================================================================
// Settings resolve in this order: flags, SKILLSCOPE_* environment,
// config.yaml, built-in defaults. Every subcommand sees the effective
// configuration through app.
// ============================================================================

// app carries state shared by all subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	schemaFile string
	quiet      bool

	cfg    config.Config
	schema schema.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "skillscope",
		Short: "Skill assessment reports from a spreadsheet",
		Long: `Skillscope reads a spreadsheet of employee skill assessments and reports
self-assessment and final assessment distributions, department summaries,
staffing alerts and underqualified collaborators.

Examples:
  skillscope report --file assessments.xlsx --view final --competency Signalling --format table
  skillscope report --file assessments.xlsx --view alerts --format csv --out alerts_data.csv
  skillscope options --file assessments.xlsx --domain "Railway technical competencies"
  skillscope serve --port 8080`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default $HOME/.skillscope/config.yaml or ./config.yaml)")
	pf.StringVar(&a.schemaFile, "schema", "", "JSON column schema replacing the built-in headers")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "Suppress status messages")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: fmt or json")
	pf.String("linguistic-domain", "", "Domain rated on the linguistic scale")

	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = a.v.BindPFlag("linguistic_domain", pf.Lookup("linguistic-domain"))

	rootCmd.AddCommand(
		newReportCmd(a),
		newOptionsCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads configuration and the column schema before any subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.Init(a.v, a.configFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}

	logger.SetLogFormat(cfg.Log.Format)
	if err := logger.SetLogLevel(cfg.Log.Level); err != nil {
		return err
	}

	changed := map[string]string{}
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		changed[flag.Name] = flag.Value.String()
	})
	logger.G(cmd.Context()).WithField("command", cmd.CommandPath()).WithField("flags", changed).Debug("running command")

	presenter.SetQuiet(a.quiet)

	a.cfg = cfg
	a.schema = schema.Default()
	if a.schemaFile != "" {
		if a.schema, err = schema.Load(a.schemaFile); err != nil {
			return err
		}
		logger.G(cmd.Context()).WithField("schema", a.schema.Name).Info("loaded column schema")
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
