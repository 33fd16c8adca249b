package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/wkalt/typewatch/service"
)

var monitorOpts struct {
	domain              string
	natsURL             string
	inputs              []string
	output              string
	append              bool
	overwrite           bool
	swapOutputs         bool
	filter              string
	rawFilter           string
	mangle              bool
	verbose             bool
	compatibilityMode   string
	requestReplyMapping string
	diagnosticsAddr     string
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "track type and topic bindings as they appear on a domain or in a recorded input file",
	RunE:  runMonitor,
}

func init() {
	flags := monitorCmd.Flags()
	flags.StringVarP(&monitorOpts.domain, "domain", "d", "", "DDS domain to watch, DOMAIN[/QOS]")
	flags.StringVar(&monitorOpts.natsURL, "nats-url", nats.DefaultURL, "NATS server URL backing --domain discovery")
	flags.StringArrayVarP(&monitorOpts.inputs, "input", "i", nil, "input file to replay, or - for stdin (repeatable)")
	flags.StringVarP(&monitorOpts.output, "output", "o", "", "output file; defaults to stdout")
	flags.BoolVarP(&monitorOpts.append, "append", "a", false, "append to an existing output file")
	flags.BoolVarP(&monitorOpts.overwrite, "overwrite", "O", false, "overwrite an existing output file")
	flags.BoolVarP(&monitorOpts.swapOutputs, "swap-outputs", "W", false, "write records to stderr, freeing stdout for logs")
	flags.StringVarP(&monitorOpts.filter, "filter", "f", ".*", "regex filter applied to the demangled ROS type name")
	flags.StringVarP(&monitorOpts.rawFilter, "raw-filter", "F", ".*", "regex filter applied to the raw wire type name")
	flags.BoolVarP(&monitorOpts.mangle, "mangle", "m", false, "store types under their mangled wire name")
	flags.BoolVarP(&monitorOpts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&monitorOpts.compatibilityMode, "compatibility-mode", "",
		"rmw_connext_cpp|rmw_cyclonedds_cpp")
	flags.StringVar(&monitorOpts.requestReplyMapping, "request-reply-mapping", "basic", "basic|extended")
	flags.StringVar(&monitorOpts.diagnosticsAddr, "diagnostics-addr", "",
		"address for the /healthz, /stats, and /debug/pprof/* diagnostics server")
}

func runMonitor(_ *cobra.Command, _ []string) error {
	setLogLevel(monitorOpts.verbose, monitorOpts.swapOutputs)

	opts := []service.Option{
		service.WithOutputPath(monitorOpts.output),
		service.WithAppend(monitorOpts.append),
		service.WithOverwrite(monitorOpts.overwrite),
		service.WithSwapOutputs(monitorOpts.swapOutputs),
		service.WithTypeFilter(monitorOpts.filter),
		service.WithRawTypeFilter(monitorOpts.rawFilter),
		service.WithMangle(monitorOpts.mangle),
		service.WithCompatibilityMode(monitorOpts.compatibilityMode),
		service.WithRequestReplyMapping(monitorOpts.requestReplyMapping),
		service.WithDiagnosticsAddr(monitorOpts.diagnosticsAddr),
	}

	if len(monitorOpts.inputs) > 0 {
		opts = append(opts, service.WithInputPaths(monitorOpts.inputs...))
	}

	if monitorOpts.domain != "" {
		domain, _, _ := strings.Cut(monitorOpts.domain, "/")
		conn, err := nats.Connect(monitorOpts.natsURL)
		if err != nil {
			return wrapRuntimeErr(err)
		}
		defer conn.Close()
		opts = append(opts, service.WithDomain(domain), service.WithNatsConn(conn))
	}

	if err := service.Start(context.Background(), opts...); err != nil {
		var invalidConfig *service.InvalidConfigError
		if errors.As(err, &invalidConfig) {
			return err
		}
		return wrapRuntimeErr(err)
	}
	return nil
}
