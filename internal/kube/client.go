package kube

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client bundles a clientset with the context it was built from.
type Client struct {
	kubernetes.Interface
	Context string
}

// NewClient builds a clientset. Resolution order: explicit kubeconfig,
// KUBECONFIG, ~/.kube/config, then in-cluster config.
func NewClient(kubeconfig, kubeContext string) (*Client, error) {
	cfg, current, err := restConfig(kubeconfig, kubeContext)
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w", err)
	}

	// Listing every pod of a large cluster pages through many requests.
	cfg.QPS = 50
	cfg.Burst = 100
	cfg.UserAgent = "binfit"

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}
	return &Client{Interface: cs, Context: current}, nil
}

func kubeconfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".kube", "config")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func restConfig(kubeconfig, kubeContext string) (*rest.Config, string, error) {
	path := kubeconfigPath(kubeconfig)
	if path == "" {
		cfg, err := rest.InClusterConfig()
		if err != nil {
			return nil, "", fmt.Errorf("no kubeconfig found and not running in-cluster: %w", err)
		}
		return cfg, "", nil
	}

	loader := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: path},
		&clientcmd.ConfigOverrides{CurrentContext: kubeContext},
	)
	raw, err := loader.RawConfig()
	if err != nil {
		return nil, "", err
	}
	current := raw.CurrentContext
	if kubeContext != "" {
		current = kubeContext
	}

	cfg, err := loader.ClientConfig()
	if err != nil {
		return nil, "", err
	}
	return cfg, current, nil
}
