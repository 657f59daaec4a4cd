// Package main provides the CLI entry point for Hologram.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/normanking/hologram/internal/body"
	"github.com/normanking/hologram/internal/bus"
	"github.com/normanking/hologram/internal/config"
	"github.com/normanking/hologram/internal/feed"
	"github.com/normanking/hologram/internal/logging"
	"github.com/normanking/hologram/internal/metrics"
	"github.com/normanking/hologram/internal/rig"
	"github.com/normanking/hologram/internal/session"
)

// Version information (set at build time)
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "hologram",
		Short:   "Hologram - drive a 3D avatar from face and body tracking",
		Version: version,
	}

	rootCmd.AddCommand(newRunCmd(), newInspectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the detector and drive the avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Model.Path == "" {
				return fmt.Errorf("model.path is not set")
			}

			logger, err := logging.New(&logging.Config{
				LogDir:  cfg.Logging.Dir,
				Level:   logging.LogLevel(cfg.Logging.Level),
				Console: cfg.Logging.Console,
			})
			if err != nil {
				return err
			}
			defer logger.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.hologram/config.yaml)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	log := logger.Component("main")
	events := bus.NewEventBus()
	defer bus.LogEvents(events, logger.Zerolog())()

	avatar, err := session.LoadAvatar(cfg.Model.Path, cfg.Model.Attachment, logger.Zerolog())
	if err != nil {
		return err
	}
	announceAvatar(events, avatar)

	opts, err := config.LoadModelOptions(cfg.Model.OptionsPath)
	if err != nil {
		return err
	}

	client := feed.NewClient(cfg.Detector.URL, logger.Zerolog())
	client.SetBackoff(cfg.Detector.ReconnectDelay, cfg.Detector.MaxReconnectDelay)
	client.SetConnectionCallback(func(up bool) {
		metrics.SetDetectorConnected(up)
		t := bus.EventTypeDetectorDisconnected
		if up {
			t = bus.EventTypeDetectorConnected
		}
		events.Publish(bus.Event{Type: t})
	})

	sessionOpts := []session.Option{session.WithBus(events)}

	if cfg.Detector.Body {
		pipeline := body.NewPipeline(client, logger.Zerolog(), body.WithInferenceHook(
			func(took time.Duration, err error) {
				metrics.ObserveInference(metrics.PipelineBody, took, err)
			}))
		sessionOpts = append(sessionOpts, session.WithBody(pipeline))
	}

	if cfg.Model.Watch && cfg.Model.OptionsPath != "" {
		watcher, err := config.NewOptionsWatcher(ctx, cfg.Model.OptionsPath, logger.Zerolog())
		if err != nil {
			return err
		}
		defer watcher.Close()
		sessionOpts = append(sessionOpts, session.WithOptionChanges(watcher.Changes()))
	}

	sess := session.New(avatar, opts, session.Config{
		FrameInterval:     cfg.FrameInterval(),
		LostAfter:         cfg.Tracking.LostAfter,
		SmoothingInterval: cfg.Tracking.Interval,
		Expression:        cfg.Expression,
		FullBody:          cfg.Tracking.FullBody,
	}, logger.Zerolog(), sessionOpts...)

	client.SetFaceCallback(sess.PushFace)
	client.SetFaceLostCallback(sess.FaceLost)
	client.Connect(ctx)
	defer client.Disconnect()

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, logger.Zerolog()); err != nil {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	log.Info().
		Str("session", sess.ID).
		Str("model", avatar.Path).
		Str("detector", cfg.Detector.URL).
		Bool("body", cfg.Detector.Body).
		Msg("Hologram running")

	return sess.Run(ctx)
}

// announceAvatar publishes the loaded rig and its attachment, if any.
func announceAvatar(events *bus.EventBus, avatar *session.Avatar) {
	events.Publish(bus.Event{Type: bus.EventTypeRigLoaded, Data: map[string]any{
		"path":  avatar.Path,
		"vrm":   avatar.VRM,
		"bones": avatar.Binding.Bones.Len(),
	}})
	if avatar.Attachment == "" {
		return
	}
	events.Publish(bus.Event{Type: bus.EventTypeAttachment, Data: map[string]any{
		"path": avatar.Attachment,
	}})
}

func newInspectCmd() *cobra.Command {
	var attachment string

	cmd := &cobra.Command{
		Use:   "inspect [model]",
		Short: "Show the morph targets and bones the rig binding found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			avatar, err := session.LoadAvatar(args[0], attachment, zerolog.Nop())
			if err != nil {
				return err
			}
			printBinding(cmd, avatar)
			return nil
		},
	}

	cmd.Flags().StringVar(&attachment, "attachment", "", "attachment model to equip")
	return cmd
}

func printBinding(cmd *cobra.Command, avatar *session.Avatar) {
	b := avatar.Binding
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Model:      %s\n", avatar.Path)
	fmt.Fprintf(out, "VRM:        %t\n", avatar.VRM)
	fmt.Fprintf(out, "Components: %d\n", b.Morphs.Len())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Morph targets:")
	for _, name := range b.Morphs.Names() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BONE\tCLASS\tREST")
	for _, name := range b.Bones.Names() {
		rest, _ := b.Bones.RestRotation(name)
		fmt.Fprintf(w, "%s\t%s\t%.3f %.3f %.3f\n", name, rig.Classify(name), rest.X(), rest.Y(), rest.Z())
	}
	w.Flush()

	if _, ok := b.Bones.Bone(rig.Neck); !ok {
		fmt.Fprintln(out, "\nNo Neck bone: head rotation will turn the whole avatar.")
	}
}
