package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/launchdarkly/app-test-harness/apptest"
	"github.com/launchdarkly/app-test-harness/framework/ldtest"
	"github.com/launchdarkly/app-test-harness/sampleapp"
	"github.com/launchdarkly/app-test-harness/webapp"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultPort = 3333
	envPrefix   = "APPTEST"
)

var errTestsFailed = errors.New("some tests failed")

// commonParams are the settings shared by all commands. Each can also be set with an APPTEST_
// environment variable, such as APPTEST_TIMEOUT=10s, either in the environment or in a .env file
// in the working directory.
type commonParams struct {
	configFile string
	timeout    time.Duration
	debugAll   bool
}

type runParams struct {
	commonParams
	filters   ldtest.RegexFilters
	debug     bool
	jUnitFile string
	port      int
	noServer  bool
}

type requestParams struct {
	commonParams
	method  string
	path    string
	json    string
	headers []string
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "app-test-harness",
		Short:   "Runs the in-process web application test suite",
		Version: version(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("cannot read .env file: %w", err)
			}
			return v.BindPFlags(cmd.Flags())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "application configuration file (JSON or YAML)")
	cmd.PersistentFlags().Duration("timeout", apptest.DefaultResultTimeout, "how long to wait for async results")
	cmd.PersistentFlags().Bool("debug-all", false, "enable debug logging for everything")

	cmd.AddCommand(newRunCommand(v))
	cmd.AddCommand(newRequestCommand(v))
	return cmd
}

func readCommonParams(v *viper.Viper) commonParams {
	return commonParams{
		configFile: v.GetString("config"),
		timeout:    v.GetDuration("timeout"),
		debugAll:   v.GetBool("debug-all"),
	}
}

func newRunCommand(v *viper.Viper) *cobra.Command {
	var params runParams
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test suite against the sample application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.commonParams = readCommonParams(v)
			params.debug = v.GetBool("debug")
			params.jUnitFile = v.GetString("junit")
			params.port = v.GetInt("port")
			params.noServer = v.GetBool("no-server")
			if params.timeout <= 0 {
				return fmt.Errorf("--timeout must be positive")
			}
			results, err := runSuite(params, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if !results.OK() {
				return errTestsFailed
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Var(&params.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	flags.Var(&params.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	flags.Bool("debug", false, "enable debug logging for failed tests")
	flags.String("junit", "", "write JUnit XML output to the specified path")
	flags.Int("port", defaultPort, "port for tests that run a real server (0 for any free port)")
	flags.Bool("no-server", false, "skip tests that need a listening server")
	return cmd
}

func newRequestCommand(v *viper.Viper) *cobra.Command {
	var params requestParams
	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send one fake request to the sample application and print the result",
		Example: `  app-test-harness request GET /Kiki
  app-test-harness request POST /json --json '{"key1":"val1"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.commonParams = readCommonParams(v)
			params.method, params.path = args[0], args[1]
			if params.timeout <= 0 {
				return fmt.Errorf("--timeout must be positive")
			}
			return sendRequest(params, cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&params.json, "json", "", "JSON request body")
	flags.StringArrayVarP(&params.headers, "header", "H", nil, "request header as name=value (repeatable)")
	return cmd
}

var _ pflag.Value = (*ldtest.TestIDPatternList)(nil)

// loadAppConfig returns the sample application's bundled configuration, or the configuration
// file if one was specified.
func loadAppConfig(params commonParams) (webapp.Config, error) {
	if params.configFile == "" {
		return sampleapp.DefaultConfig()
	}
	return webapp.LoadConfig(params.configFile)
}

func parseHeader(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return "", "", fmt.Errorf("invalid header %q: expected name=value", s)
	}
	return strings.TrimSpace(name), value, nil
}
