package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmgilman/go/gitmirror/config"
	"github.com/jmgilman/go/gitmirror/mirror"
)

// app is the state shared by all commands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer

	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     zerolog.Logger

	closeLog func() error
}

// mirror opens the cache configured for this invocation.
func (a *app) mirror() (*mirror.Mirror, error) {
	//nolint:wrapcheck // mirror errors are already classified
	return mirror.New(a.cfg.BaseDir,
		mirror.WithConnection(a.cfg.Connection()),
		mirror.WithLockTimeout(a.cfg.LockTimeout),
		mirror.WithReporter(mirror.NewLogReporter(a.log)),
	)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{
		out:    out,
		errOut: errOut,
		v:      viper.New(),
		log:    zerolog.Nop(),
	}

	cmd := &cobra.Command{
		Use:   "gitmirror",
		Short: "Branch-scoped local mirrors of remote git repositories",
		Long: `Gitmirror keeps one local repository per (remote, branch) pair and reconciles
it with the remote on every access.

Names take the form <location>[<branch>]. A location with a scheme
(https://, ssh://, git://, file://) is mirrored under the base directory;
any other location must be an existing local repository.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.closeLog == nil {
				return nil
			}
			return a.closeLog()
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: gitmirror.yaml in the user config dir or .)")
	flags.String("base-dir", "", "directory holding the mirrors")
	flags.String("username", "", "HTTPS username when the remote has none")
	flags.String("ssh-key", "", "SSH private key (default: <base-dir>/remote.key)")
	flags.String("proxy", "", "HTTP(S) proxy for https:// remotes")
	flags.Duration("lock-timeout", mirror.DefaultLockTimeout, "how long to wait for a mirror in use")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this rotated file")

	bind := map[string]string{
		"base_dir":     "base-dir",
		"username":     "username",
		"ssh_key":      "ssh-key",
		"proxy":        "proxy",
		"lock_timeout": "lock-timeout",
		"log.level":    "log-level",
		"log.file":     "log-file",
	}
	for key, flag := range bind {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}

	cmd.AddCommand(
		newSyncCmd(a),
		newPathCmd(a),
		newParseCmd(a),
		newListCmd(a),
		newPruneCmd(a),
		newConfigCmd(a),
	)

	return cmd
}

// init loads the configuration and sets up logging.
func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, closeLog, err := newLogger(cfg.Log, a.errOut)
	if err != nil {
		return err
	}
	a.log = log
	a.closeLog = closeLog

	a.log.Debug().Str("base_dir", cfg.BaseDir).Msg("configuration loaded")
	return nil
}
