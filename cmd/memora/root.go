package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-memora"
	"github.com/goliatone/go-memora/internal/config"
	"github.com/goliatone/go-memora/internal/logging"
	"github.com/goliatone/go-memora/pkg/prompt"
	"github.com/goliatone/go-memora/pkg/session"
)

// cli carries the state shared by every command of one invocation.
type cli struct {
	out        io.Writer
	configFile string
	driver     prompt.Driver
	styles     prompt.Styles

	v      *viper.Viper
	cfg    *config.Config
	logger *logging.Logger
}

// newRootCmd builds the command tree. A nil driver uses the survey terminal
// driver.
func newRootCmd(out io.Writer, driver prompt.Driver) *cobra.Command {
	c := &cli{out: out, driver: driver, styles: prompt.DefaultStyles()}
	if c.driver == nil {
		c.driver = prompt.NewSurveyDriver(out)
	}

	root := &cobra.Command{
		Use:   "memora",
		Short: "Create photo albums and service requests step by step",
		Long: `Memora walks you through creating a themed photo album or requesting a
photo service: fill in each step, move back and forth, review and submit.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.load,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.logger.Close()
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "config file (default is ./memora.yaml or "+config.ConfigDir()+"/memora.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("plain", false, "disable colours")

	root.AddCommand(
		c.albumCmd(),
		c.requestCmd(),
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.albumsCmd(),
		c.serveCmd(),
		c.configCmd(),
	)
	return root
}

func (c *cli) load(cmd *cobra.Command, _ []string) error {
	c.v = config.NewViper(c.configFile)
	if err := c.v.BindPFlag("log.level", cmd.Flags().Lookup("log-level")); err != nil {
		return err
	}

	cfg, err := config.Load(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		c.styles = prompt.PlainStyles()
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Output: io.Discard,
	})
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func (c *cli) app(options ...memora.Option) (*memora.App, error) {
	return memora.New(c.cfg, append([]memora.Option{memora.WithLogger(c.logger.Logger)}, options...)...)
}

func (c *cli) sessions() (*session.Service, error) {
	path := c.cfg.Session.Path
	if path == "" {
		var err error
		path, err = session.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	options := []session.Option{session.WithLogger(c.logger.With("component", "session"))}
	if !c.cfg.Session.Delay {
		options = append(options, session.WithoutDelay())
	}
	return session.NewService(session.NewFileStore(path), options...), nil
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// failureMessage unwraps a sign-in failure to its display message.
func failureMessage(err error) error {
	var failure *session.Failure
	if errors.As(err, &failure) {
		return errors.New(failure.Message)
	}
	return err
}
