package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lovoo/goka"
	"github.com/niksmo/candle-shop/config"
	"github.com/niksmo/candle-shop/internal/adapter"
	"github.com/niksmo/candle-shop/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	partitions        = 3
	replicationFactor = 3
	minInsyncReplicas = "1"
)

type topicSpec struct {
	name    string
	cleanup string
}

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	if !cfg.Broker.Enabled {
		fmt.Println("broker is disabled, nothing to create")
		return
	}

	cl, err := newAdminClient(cfg)
	if err != nil {
		fmt.Printf("failed to create admin client: %v\n", err)
		os.Exit(2)
	}
	defer cl.Close()

	specs := []topicSpec{
		{name: cfg.Broker.Topics.CartEvents, cleanup: "delete"},
		{name: demandTable(cfg.Broker.Consumers.DemandGroup), cleanup: "compact"},
	}

	start := time.Now()
	var errs []error
	for _, s := range specs {
		if err := createTopic(sigCtx, cl, s); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		fmt.Printf("failed to create topics:\n%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func newAdminClient(cfg config.Config) (*kadm.Client, error) {
	bcfg := cfg.Broker
	tlsConfig, err := adapter.MakeTLSConfig(bcfg.TLS.CA, bcfg.TLS.Cert, bcfg.TLS.Key)
	if err != nil {
		return nil, err
	}

	opts := []kgo.Opt{kgo.SeedBrokers(bcfg.SeedBrokers...)}
	if tlsConfig != nil {
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}
	return kadm.NewOptClient(opts...)
}

func createTopic(ctx context.Context, cl *kadm.Client, s topicSpec) error {
	cleanup, minISR := s.cleanup, minInsyncReplicas
	configs := map[string]*string{
		"cleanup.policy":      &cleanup,
		"min.insync.replicas": &minISR,
	}

	res, err := cl.CreateTopic(ctx, partitions, replicationFactor, configs, s.name)
	if err == nil {
		err = res.Err
	}

	switch {
	case err == nil:
		fmt.Printf("topic %q (%s): created\n", s.name, s.cleanup)
	case errors.Is(err, kerr.TopicAlreadyExists):
		fmt.Printf("topic %q (%s): already exists\n", s.name, s.cleanup)
	default:
		return fmt.Errorf("topic %q: %w", s.name, err)
	}
	return nil
}

// demandTable is the goka group table backing the demand view.
func demandTable(group string) string {
	return string(goka.GroupTable(goka.Group(group)))
}
