// Command soundctl drives a running soundpool daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/soundpool/internal/config"
	"github.com/llehouerou/soundpool/internal/errmsg"
	"github.com/llehouerou/soundpool/internal/ipc"
)

const callTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	socket     string
	configPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "soundctl",
		Short:         "Control a running soundpool daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.socket, "socket", "s", "", "daemon socket (default from config)")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file used to find the socket")

	root.AddCommand(
		a.prepareCmd(),
		a.transportCmd("play", ipc.CmdPlay, errmsg.OpPlay),
		a.transportCmd("pause", ipc.CmdPause, errmsg.OpPause),
		a.transportCmd("stop", ipc.CmdStop, errmsg.OpStop),
		a.releaseCmd(),
		a.volumeCmd(),
		a.loopCmd(),
		a.speedCmd(),
		a.seekCmd(),
		a.timeCmd(),
		a.speakerphoneCmd(),
		a.categoryCmd(),
		a.systemVolumeCmd(),
		a.focusCmd(),
		a.listCmd(),
		a.eventsCmd(),
		a.monitorCmd(),
	)
	return root
}

func (a *app) socketPath() (string, error) {
	if a.socket != "" {
		return a.socket, nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return "", errors.New(errmsg.Format(errmsg.OpLoadConfig, err))
	}
	return cfg.SocketPath(), nil
}

// withClient connects to the daemon and runs fn.
func (a *app) withClient(ctx context.Context, fn func(ctx context.Context, c *ipc.Client) error) error {
	path, err := a.socketPath()
	if err != nil {
		return err
	}
	c, err := ipc.Dial(ctx, path)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConnect, err))
	}
	defer c.Close()
	return fn(ctx, c)
}

// call sends one command with a timeout.
func (a *app) call(cmd *cobra.Command, op errmsg.Op, subject string, name ipc.CommandType, data, out any) error {
	return a.withClient(cmd.Context(), func(ctx context.Context, c *ipc.Client) error {
		ctx, cancel := contextWithTimeout(ctx)
		defer cancel()
		if err := c.Call(ctx, name, data, out); err != nil {
			return errors.New(errmsg.FormatWith(op, subject, err))
		}
		return nil
	})
}

func contextWithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, callTimeout)
}
