package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/guimove/binfit/internal/config"
	"github.com/guimove/binfit/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "binfit",
	Short: "Bin packing for weighted tasks",
	Long: `binfit packs weighted tasks into fixed-capacity bins with first-fit,
next-fit, or first-fit-decreasing, and compares the resulting plans.

Tasks come from a JSON, YAML, or CSV file, a Prometheus query, or the pod
requests of a Kubernetes cluster. The bin capacity is given explicitly or
resolved from an EC2 instance type.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the root command until it completes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	d := config.Default()

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default: binfit.yaml)")
	f.BoolVar(&verbose, "verbose", false, "enable debug logging")

	// Global flags that map to config
	f.Uint64("capacity", d.Packing.Capacity, "bin capacity; 0 resolves it from --instance-type")
	f.String("instance-type", d.AWS.InstanceType, "EC2 instance type to size bins from")
	f.String("region", d.AWS.Region, "AWS region")
	f.String("dimension", d.Packing.Dimension, "weight dimension: cpu, memory, or custom")
	f.String("source", d.Source.Type, "task source: file, prometheus, or kubernetes")
	f.StringP("input", "i", d.Source.Path, "task file for the file source (- for stdin)")
	f.String("input-format", d.Source.Format, "task file format: json, yaml, or csv (default: by extension)")
	f.String("prometheus-url", d.Prometheus.URL, "Prometheus/Thanos endpoint URL")
	f.String("kubeconfig", d.Kubernetes.Kubeconfig, "path to kubeconfig file")
	f.String("kube-context", d.Kubernetes.Context, "Kubernetes context name")
	f.StringP("namespace", "n", d.Kubernetes.Namespace, "limit the kubernetes source to a namespace")
	f.StringP("output", "o", d.Output.Format, "output format: table, json, markdown, csv")
	f.String("metrics-textfile", d.Output.MetricsTextfile, "write run metrics to this node-exporter textfile")
	f.String("log-format", d.Logging.Format, "log format: console or json")

	bindings := map[string]string{
		"packing.capacity":        "capacity",
		"aws.instance_type":       "instance-type",
		"aws.region":              "region",
		"packing.dimension":       "dimension",
		"source.type":             "source",
		"source.path":             "input",
		"source.format":           "input-format",
		"prometheus.url":          "prometheus-url",
		"kubernetes.kubeconfig":   "kubeconfig",
		"kubernetes.context":      "kube-context",
		"kubernetes.namespace":    "namespace",
		"output.format":           "output",
		"output.metrics_textfile": "metrics-textfile",
		"logging.format":          "log-format",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func loadConfig() error {
	// Start with defaults
	cfg = config.Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("binfit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.binfit")
	}

	// Environment variable overrides, e.g. BINFIT_PACKING_CAPACITY
	viper.SetEnvPrefix("BINFIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (not an error if missing)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	logger = l
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("loaded config file", zap.String("path", used))
	}
	return nil
}
