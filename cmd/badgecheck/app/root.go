// Package app implements the badgecheck command line interface.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openbadges/badgecheck"
)

// envPrefix prefixes the environment variables that set flags, so
// BADGECHECK_LOG_LEVEL sets --log-level.
const envPrefix = "BADGECHECK"

// cli carries the state shared by all subcommands.
type cli struct {
	v   *viper.Viper
	log *logrus.Logger
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), log: logrus.New()}
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "badgecheck",
		Short: "Verify Open Badges",
		Long: `Verify Open Badges 0.5, 1.0 and 1.1 assertions, bake them into images and
extract them again. Every flag can also be set with a BADGECHECK_ environment
variable or in a config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "path to a config file (json, yaml or toml)")
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "text", "log format: text or json")
	root.PersistentFlags().StringP("output", "o", formatJSON, "output format: json or yaml")

	root.AddCommand(
		newVerifyCmd(c),
		newBakeCmd(c),
		newUnbakeCmd(c),
		newHashCmd(c),
		newServeCmd(c),
	)
	return root
}

// setup binds the flags of the running command, reads the config file and
// configures logging.
func (c *cli) setup(cmd *cobra.Command) error {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if path := c.v.GetString("config"); path != "" {
		c.v.SetConfigFile(path)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	level, err := logrus.ParseLevel(c.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	c.log.SetLevel(level)
	c.log.SetOutput(cmd.ErrOrStderr())

	switch c.v.GetString("log-format") {
	case "text":
		c.log.SetFormatter(&logrus.TextFormatter{})
	case "json":
		c.log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid --log-format %q", c.v.GetString("log-format"))
	}

	if _, err := newPrinter(c.v.GetString("output")); err != nil {
		return err
	}
	return nil
}

// logger adapts the command logger for the library.
func (c *cli) logger() badgecheck.Logger {
	return badgecheck.NewLogrusLogger(c.log)
}

// printer returns the printer selected by --output.
func (c *cli) printer(cmd *cobra.Command) printer {
	p, _ := newPrinter(c.v.GetString("output"))
	p.w = cmd.OutOrStdout()
	return p
}
