package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"plugin"

	"github.com/spf13/cobra"

	"github.com/wkalt/typewatch/util/log"
)

var rootCmd = &cobra.Command{
	Use:   "typewatch",
	Short: "typewatch tracks DDS/ROS2 type and topic bindings as they appear on a domain",
}

// runtimeError marks an error that occurred after argument parsing and
// validation succeeded — the command ran, but failed while doing its job.
// Execute exits 255 for this class and reserves 1 for everything cobra
// itself rejects during flag/argument parsing.
type runtimeError struct{ err error }

func (e *runtimeError) Error() string { return e.err.Error() }
func (e *runtimeError) Unwrap() error { return e.err }

// wrapRuntimeErr marks err (if non-nil) as a runtimeError for Execute to
// classify. RunE implementations should route their post-validation
// failures through this instead of returning err directly.
func wrapRuntimeErr(err error) error {
	if err == nil {
		return nil
	}
	return &runtimeError{err: err}
}

// Execute runs the root command. It exits 0 on success, 1 on an argument
// error (anything cobra itself rejects during flag/argument parsing, or a
// command that judges its own arguments invalid), and 255 — the uint8
// truncation of the original -1 unhandled-error code — for any error
// raised while actually running a command, logging it first.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute()))
}

// exitCode classifies err into one of Execute's exit statuses, logging the
// unwrapped cause when it falls into the unhandled-error class.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var rt *runtimeError
	if errors.As(err, &rt) {
		log.Errorw(context.Background(), "unhandled error", "error", rt.Unwrap())
		return 255
	}
	return 1
}

func bailf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func checkErr(err error) {
	if err != nil {
		bailf("error: %v", err)
	}
}

func configDir() string {
	home, err := os.UserHomeDir()
	checkErr(err)
	return path.Join(home, ".typewatch")
}

// loadPlugins loads any *.so plugins found under ~/.typewatch/plugins,
// each exporting a *cobra.Command under the symbol name PluginCmd.
func loadPlugins() {
	confdir := configDir()
	plugindir := filepath.Join(confdir, "plugins")
	// if the directory doesn't exist, there's nothing to load.
	if _, err := os.Stat(plugindir); os.IsNotExist(err) {
		return
	}

	checkErr(filepath.WalkDir(plugindir, func(path string, info os.DirEntry, err error) error {
		checkErr(err)
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(info.Name()) != ".so" {
			return nil
		}
		plug, err := plugin.Open(path)
		checkErr(err)

		sym, err := plug.Lookup("PluginCmd")
		checkErr(err)

		cmd, ok := sym.(**cobra.Command)
		if !ok {
			bailf("plugin %s does not export a *cobra.Command: %T", path, sym)
		}
		rootCmd.AddCommand(*cmd)
		return nil
	}))
}

// setLogLevel installs a text handler at the requested verbosity as the
// slog default, which util/log's helpers dispatch through. Log lines
// normally go to stderr, freeing stdout for the JSON record stream; when
// swapOutputs moves records to stderr instead, logs move to stdout so the
// two never collide on the same stream.
func setLogLevel(verbose, swapOutputs bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	stream := os.Stderr
	if swapOutputs {
		stream = os.Stdout
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stream, &slog.HandlerOptions{Level: level})))
}

func init() {
	loadPlugins()
	rootCmd.AddCommand(monitorCmd)
}
