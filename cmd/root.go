/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vtrials/vtdb/internal/iologger"
	app "github.com/vtrials/vtdb/pkg"
	"github.com/vtrials/vtdb/pkg/config"
)

var (
	dataDir string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
	Use:     "vtdb",
	Short:   "Manage virtual-trial campaigns of an external simulator",
	Long: `vtdb manages parameter-sweep campaigns of a file-driven simulator.

A campaign lives in one data directory: an embedded database of
registered inputs, content-addressed parameter variations and the run
hierarchy, next to one output directory per simulation. Typical flow:

  vtdb init --data ./campaign
  vtdb register config default
  vtdb sweep sweep.yaml
  vtdb run sampling 1
  vtdb status`,
	PersistentPreRunE: bootstrap,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func bootstrap(cmd *cobra.Command, args []string) error {
	if dataDir == "" {
		dataDir = os.Getenv("VTDB_DATA_DIR")
	}
	if dataDir == "" {
		var err error
		if dataDir, err = os.Getwd(); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	cfg = config.New()
	if fileCfg, err := initConfig(dataDir); err == nil {
		cfg.Update(fileCfg.ToOptions())
	} else if cmd.Name() != "init" {
		// Without a config file the campaign runs on defaults; init
		// will write one.
		slog.Debug("No config file, using defaults", "data", dataDir)
	}
	cfg.Update([]config.Option{config.OptDataDir(dataDir)})

	if err := setupLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Campaign selected", "data", dataDir)
	return nil
}

// setupLogging initializes slog per the loaded configuration. Before
// init has created the campaign's log directory, file logging falls
// back to stderr.
func setupLogging(cfg *config.Config) error {
	logCfg := cfg.Log
	if logCfg.Destination == "file" {
		if _, err := os.Stat(config.LogDir(cfg.DataDir)); err != nil {
			logCfg.Destination = "stderr"
		}
	}
	return iologger.Init(config.LogDir(cfg.DataDir), logCfg)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Remove the automatic "vtdb version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.Flags().BoolP("version", "V", false, "version for vtdb")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "",
		"campaign data directory (default $VTDB_DATA_DIR or the working directory)")

	rootCmd.AddCommand(
		getInitCmd(),
		getMigrateCmd(),
		getRegisterCmd(),
		getSweepCmd(),
		getRunCmd(),
		getStatusCmd(),
		getPruneCmd(),
	)
}

func initConfig(dataDir string) (*config.Config, error) {
	cfgPath := config.ConfigFilePath(dataDir)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var res config.Config
	if err := v.Unmarshal(&res); err != nil {
		return nil, err
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables
	// are allowed. These match the fields included in
	// config.ToOptions(), the persistent configuration that can be
	// stored in config.yaml.
	v.SetEnvPrefix("VTDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Run configuration
	v.BindEnv("run.mode", "RUN_MODE")
	v.BindEnv("run.marker", "RUN_MARKER")
	v.BindEnv("run.wait", "RUN_WAIT")

	// Build configuration
	v.BindEnv("build.base_source", "BUILD_BASE_SOURCE")
	v.BindEnv("build.target", "BUILD_TARGET")
	v.BindEnv("build.make_jobs", "BUILD_MAKE_JOBS")

	// HPC configuration
	v.BindEnv("hpc.partition", "HPC_PARTITION")
	v.BindEnv("hpc.account", "HPC_ACCOUNT")
	v.BindEnv("hpc.time_limit", "HPC_TIME_LIMIT")
	v.BindEnv("hpc.memory", "HPC_MEMORY")

	// Log configuration
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("log.destination", "LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "JOBS_NUMBER")

	v.AutomaticEnv()
}
