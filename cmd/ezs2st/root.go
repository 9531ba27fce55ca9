package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/yok-tottii/EzS2ST/internal/app"
	"github.com/yok-tottii/EzS2ST/internal/audio"
	"github.com/yok-tottii/EzS2ST/internal/config"
	"github.com/yok-tottii/EzS2ST/internal/logger"
)

const version = "0.1.0"

// exitError carries a process exit code out of a command
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// openDriver is swapped in tests
var openDriver = func() (audio.Driver, error) {
	return audio.NewPortAudioDriver()
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "ezs2st",
		Short:         "Translate spoken audio to English speech",
		Long:          "Records from the default microphone until Enter is pressed, translates the speech to English and plays the result.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), configPath, app.IO{In: stdin, Out: stdout, ErrOut: stderr})
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&configPath, "config", config.GetConfigPath(), "path to the configuration file")

	cmd.AddCommand(newDevicesCmd(), newInitCmd(&configPath))

	return cmd
}

// runOnce starts the fx application, waits for the pipeline (or a signal)
// to end it and stops it again
func runOnce(ctx context.Context, configPath string, terminal app.IO) error {
	fxApp := fx.New(
		fx.Supply(terminal),
		app.ConfigModule(configPath),
		app.LoggerModule,
		app.AudioModule,
		app.Module,
		fx.WithLogger(logger.NewFxLogger),
	)

	startCtx, cancel := context.WithTimeout(ctx, fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}

	sig := <-fxApp.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), fxApp.StopTimeout())
	defer cancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		fmt.Fprintf(terminal.ErrOut, "Error: %v\n", err)
		return exitError{code: app.ExitError}
	}

	if sig.ExitCode != app.ExitOK {
		return exitError{code: sig.ExitCode}
	}
	return nil
}

func execute(args []string) int {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return app.ExitOK
	}

	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return app.ExitError
}
