// Command soundpool is the playback daemon. It hosts the player pool and
// serves the host bridge on a unix socket.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llehouerou/soundpool/internal/config"
	"github.com/llehouerou/soundpool/internal/errmsg"
	"github.com/llehouerou/soundpool/internal/focus"
	"github.com/llehouerou/soundpool/internal/ipc"
	"github.com/llehouerou/soundpool/internal/log"
	"github.com/llehouerou/soundpool/internal/mpris"
	"github.com/llehouerou/soundpool/internal/player"
	"github.com/llehouerou/soundpool/internal/sound"
	"github.com/llehouerou/soundpool/internal/state"
	"github.com/llehouerou/soundpool/internal/stderr"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		socket     string
	)
	cmd := &cobra.Command{
		Use:           "soundpool",
		Short:         "Multi-player audio daemon driven over a unix socket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath, socket)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file loaded after the default locations")
	cmd.Flags().StringVarP(&socket, "socket", "s", "", "socket path (overrides the config)")
	return cmd
}

func run(ctx context.Context, configPath, socket string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLoadConfig, err))
	}
	if socket != "" {
		cfg.Socket = socket
	}

	logger, logFile, err := log.Setup(cfg.GetLogConfig())
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer logFile.Close()

	// Native audio libraries can write to fd 2; keep that out of the
	// terminal when the log goes to a file.
	if cfg.GetLogConfig().File != "stderr" {
		stop, err := stderr.Capture(logger)
		if err != nil {
			logger.WithError(err).Warn("cannot capture stderr")
		} else {
			defer stop()
		}
	}

	store, err := state.Open(cfg.State.Path, logger)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpOpenState, err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("closing state store")
		}
	}()

	d := newDaemon(cfg, store, logger)
	defer d.close()

	srv := ipc.NewServer(ipc.ServerConfig{
		Path:       cfg.SocketPath(),
		Controller: d.module,
		Focus:      d.focus,
		Events:     d.events,
		Logger:     logger,
	})
	if err := srv.Listen(); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpListen, cfg.SocketPath(), err))
	}

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(d.module, logger)
		if err != nil {
			logger.WithError(err).Warn("media controls disabled")
		} else {
			defer adapter.Close()
		}
	}

	logger.WithFields(logrus.Fields{
		"socket":   cfg.SocketPath(),
		"category": d.module.Session().Category,
		"mix":      d.module.Session().MixWithOthers,
	}).Info("soundpool started")
	return srv.Serve(ctx)
}

// daemon holds the core components shared by the bridge and media controls.
type daemon struct {
	module *sound.Module
	focus  *focus.Manager
	events *sound.Subscription
	log    logrus.FieldLogger
}

func newDaemon(cfg *config.Config, store state.Interface, logger logrus.FieldLogger) *daemon {
	audio := cfg.GetAudioConfig()
	httpCfg := cfg.GetHTTPConfig()

	levels, err := store.StreamVolumes()
	if err != nil {
		logger.WithError(err).Warn("cannot restore stream volumes")
	}
	out := player.NewOutput(player.OutputConfig{
		SampleRate:  audio.SampleRate,
		Buffer:      time.Duration(audio.BufferMs) * time.Millisecond,
		VolumeSteps: audio.VolumeSteps,
	}, store, levels, logger)

	backends := player.Factory(out, player.Options{
		HTTPClient:      &http.Client{Timeout: time.Duration(httpCfg.TimeoutSeconds) * time.Second},
		UserAgent:       httpCfg.UserAgent,
		MaxStreamBytes:  httpCfg.MaxBytes,
		ResampleQuality: audio.ResampleQuality,
	}, logger)

	return assemble(backends, out, store, initialSession(store, cfg, logger), cfg.ProgressInterval(), logger)
}

// assemble wires the module to its focus manager and event subscription.
func assemble(backends sound.BackendFactory, vol sound.VolumeControl, store sound.SessionStore, session sound.Session, interval time.Duration, logger logrus.FieldLogger) *daemon {
	fm := focus.New(logger)
	events := sound.NewSubscription()
	mod := sound.New(sound.Config{
		Backends:         backends,
		Focus:            fm,
		Volume:           vol,
		Emitter:          events,
		Store:            store,
		Logger:           logger,
		Session:          &session,
		ProgressInterval: interval,
	})
	return &daemon{module: mod, focus: fm, events: events, log: logger}
}

func (d *daemon) close() {
	if err := d.module.Close(); err != nil {
		d.log.WithError(err).Warn("closing players")
	}
	if n := d.events.Dropped(); n > 0 {
		d.log.WithField("dropped", n).Info("events dropped during run")
	}
	d.events.Close()
}

// initialSession prefers the saved session over the configured one.
func initialSession(store state.Interface, cfg *config.Config, logger logrus.FieldLogger) sound.Session {
	saved, ok, err := store.SavedSession()
	if err != nil {
		logger.WithError(err).Warn("cannot restore session, using config")
	}
	if ok {
		return saved
	}
	return sound.Session{Category: cfg.Category, MixWithOthers: cfg.Mix()}
}
