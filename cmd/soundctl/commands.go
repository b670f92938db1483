package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/llehouerou/soundpool/internal/errmsg"
	"github.com/llehouerou/soundpool/internal/ipc"
	"github.com/llehouerou/soundpool/internal/monitor"
)

func parseKey(s string) (int, error) {
	key, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid player key %q", s)
	}
	return key, nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func (a *app) prepareCmd() *cobra.Command {
	var (
		userAgent string
		headers   map[string]string
	)
	cmd := &cobra.Command{
		Use:   "prepare <key> <path-or-url>",
		Short: "Load a file or stream into a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			var out ipc.PrepareResponse
			req := ipc.PrepareRequest{
				Path:    args[1],
				Key:     key,
				Options: ipc.PrepareOptions{UserAgent: userAgent, Headers: headers},
			}
			if err := a.call(cmd, errmsg.OpPrepare, args[0], ipc.CmdPrepare, req, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "player %d ready: %.1fs, %d channels", key, out.Duration, out.NumberOfChannels)
			if out.Title != "" {
				fmt.Fprintf(cmd.OutOrStdout(), ", %q", out.Title)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "user agent for streams")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "extra HTTP header (name=value), repeatable")
	return cmd
}

func (a *app) transportCmd(use string, name ipc.CommandType, op errmsg.Op) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <key>",
		Short: fmt.Sprintf("Send %s to a player", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			var out ipc.BoolResponse
			if err := a.call(cmd, op, args[0], name, ipc.KeyRequest{Key: key}, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Value)
			return nil
		},
	}
}

func (a *app) releaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release <key>",
		Short: "Free a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			return a.call(cmd, errmsg.OpRelease, args[0], ipc.CmdRelease, ipc.KeyRequest{Key: key}, nil)
		},
	}
}

func (a *app) volumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volume <key> <0..1>",
		Short: "Set a player's volume",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			v, err := parseFloat("volume", args[1])
			if err != nil {
				return err
			}
			return a.call(cmd, errmsg.OpSetVolume, args[0], ipc.CmdSetVolume, ipc.VolumeRequest{Key: key, Volume: v}, nil)
		},
	}
}

func (a *app) loopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loop <key> <on|off>",
		Short: "Toggle looping",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			on, err := parseSwitch(args[1])
			if err != nil {
				return err
			}
			return a.call(cmd, errmsg.OpSetLooping, args[0], ipc.CmdSetLooping, ipc.LoopingRequest{Key: key, Looping: on}, nil)
		},
	}
}

func (a *app) speedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speed <key> <factor>",
		Short: "Set the playback speed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			v, err := parseFloat("speed", args[1])
			if err != nil {
				return err
			}
			return a.call(cmd, errmsg.OpSetSpeed, args[0], ipc.CmdSetSpeed, ipc.SpeedRequest{Key: key, Speed: v}, nil)
		},
	}
}

func (a *app) seekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seek <key> <seconds>",
		Short: "Move a player to a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			sec, err := parseFloat("position", args[1])
			if err != nil {
				return err
			}
			return a.call(cmd, errmsg.OpSeek, args[0], ipc.CmdSetCurrentTime, ipc.TimeRequest{Key: key, Seconds: sec}, nil)
		},
	}
}

func (a *app) timeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "time <key>",
		Short: "Print a player's position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			var out ipc.CurrentTimeResponse
			if err := a.call(cmd, errmsg.OpCurrentTime, args[0], ipc.CmdGetCurrentTime, ipc.KeyRequest{Key: key}, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f playing=%v\n", out.Seconds, out.IsPlaying)
			return nil
		},
	}
}

func (a *app) speakerphoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speakerphone <key> <on|off>",
		Short: "Route a player to the music stream and toggle the speakerphone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0])
			if err != nil {
				return err
			}
			on, err := parseSwitch(args[1])
			if err != nil {
				return err
			}
			return a.call(cmd, errmsg.OpSpeakerphone, args[0], ipc.CmdSetSpeakerphoneOn, ipc.SpeakerphoneRequest{Key: key, On: on}, nil)
		},
	}
}

func (a *app) categoryCmd() *cobra.Command {
	var mix bool
	cmd := &cobra.Command{
		Use:   "category <Playback|Ambient|System>",
		Short: "Set the session category for players prepared later",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.CategoryRequest{Category: args[0], MixWithOthers: mix}
			return a.call(cmd, errmsg.OpSetCategory, args[0], ipc.CmdSetCategory, req, nil)
		},
	}
	cmd.Flags().BoolVar(&mix, "mix", true, "mix with other players instead of taking exclusive focus")
	return cmd
}

func (a *app) systemVolumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sysvol [0..1]",
		Short: "Print or set the music stream volume",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v, err := parseFloat("volume", args[0])
				if err != nil {
					return err
				}
				return a.call(cmd, errmsg.OpSetSysVolume, "", ipc.CmdSetSystemVolume, ipc.SystemVolumeRequest{Volume: v}, nil)
			}
			var out ipc.SystemVolumeResponse
			if err := a.call(cmd, errmsg.OpSystemVolume, "", ipc.CmdGetSystemVolume, nil, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", out.Volume)
			return nil
		},
	}
}

func (a *app) focusCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "focus <gain|loss|loss_transient|loss_transient_can_duck>",
		Short:     "Inject an audio focus change",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"gain", "loss", "loss_transient", "loss_transient_can_duck"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, errmsg.OpFocus, args[0], ipc.CmdFocus, ipc.FocusRequest{Change: args[0]}, nil)
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the live players as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out ipc.ListResponse
			if err := a.call(cmd, errmsg.OpListPlayers, "", ipc.CmdList, nil, &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out.Players)
		},
	}
}

func (a *app) eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Stream player events as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c *ipc.Client) error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				for {
					select {
					case <-ctx.Done():
						return nil
					case p, ok := <-c.Events():
						if !ok {
							return nil
						}
						if err := enc.Encode(p); err != nil {
							return err
						}
					}
				}
			})
		},
	}
}

func (a *app) monitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Show live players in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(ctx context.Context, c *ipc.Client) error {
				return monitor.Run(ctx, c)
			})
		},
	}
}
