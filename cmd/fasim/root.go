package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/fasim"
	"github.com/aretw0/fasim/internal/config"
	"github.com/aretw0/fasim/internal/logging"
	"github.com/aretw0/fasim/pkg/adapters/file"
	"github.com/aretw0/fasim/pkg/adapters/memory"
	"github.com/aretw0/fasim/pkg/adapters/redis"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/observability"
	"github.com/aretw0/fasim/pkg/ports"
	"github.com/aretw0/fasim/pkg/session"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app carries what every command shares once flags and config are resolved.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	automata ports.AutomatonStore
	sessions ports.SessionStore
	redis    *redis.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "fasim",
		Short:         "fasim simulates deterministic and nondeterministic finite automata",
		Long:          `fasim loads automata from the #states/#initial/#accepting/#alphabet/#transitions text format, decides acceptance of input words and exports state diagrams.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: fasim.yaml, fasim.yml or fasim.json if present)")
	rootCmd.PersistentFlags().String("dir", ".", "Directory of the file store")
	rootCmd.PersistentFlags().String("store", config.StoreFile, "Store backend: memory, file or redis")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newRunCmd(a),
		newGraphCmd(a),
		newValidateCmd(a),
		newFmtCmd(a),
		newRegisterCmd(a),
		newListCmd(a),
		newSessionCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nRun '%s --help' for usage", err, cmd.CommandPath())
	})
	return rootCmd
}

// setup resolves config, flags, logger and stores.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	overrides := map[string]*string{
		"dir":        &cfg.Dir,
		"store":      &cfg.Store,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
	}
	for name, target := range overrides {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level, cfg.LogFormat)
	slog.SetDefault(a.logger)

	return a.openStores()
}

func (a *app) openStores() error {
	switch a.cfg.Store {
	case config.StoreMemory:
		s := memory.NewStore()
		a.automata, a.sessions = s, s
	case config.StoreFile:
		s := file.New(a.cfg.Dir)
		a.automata, a.sessions = s, s
	case config.StoreRedis:
		s := redis.New(a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB,
			redis.WithPrefix(a.cfg.Redis.Prefix),
			redis.WithTTL(a.cfg.Redis.TTL),
		)
		a.automata, a.sessions, a.redis = s, s, s
	default:
		return fmt.Errorf("unknown store %q", a.cfg.Store)
	}
	a.logger.Debug("store opened", "store", a.cfg.Store, "dir", a.cfg.Dir)
	return nil
}

func (a *app) close() error {
	if a.redis == nil {
		return nil
	}
	err := a.redis.Close()
	a.redis = nil
	return err
}

// engine builds an Engine over the configured store. Hooks are chained in order.
func (a *app) engine(hooks ...domain.LifecycleHooks) *fasim.Engine {
	opts := []fasim.Option{
		fasim.WithStore(a.automata),
		fasim.WithLogger(a.logger),
	}
	if len(hooks) > 0 {
		opts = append(opts, fasim.WithLifecycleHooks(observability.Chain(hooks...)))
	}
	return fasim.New(opts...)
}

// sessionManager builds a Manager that also locks through Redis when it is the store.
func (a *app) sessionManager(sim ports.Simulator) *session.Manager {
	opts := []session.Option{
		session.WithLogger(a.logger),
		session.WithLockTTL(a.cfg.Session.LockTTL),
	}
	if a.redis != nil {
		opts = append(opts, session.WithLocker(redis.NewLocker(a.redis.Client(), a.cfg.Redis.Prefix)))
	}
	return session.NewManager(a.automata, a.sessions, sim, opts...)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// profileFor picks colors for terminals and plain text for everything else.
func profileFor(w io.Writer) termenv.Profile {
	if isTerminal(w) {
		return termenv.EnvColorProfile()
	}
	return termenv.Ascii
}
