package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/niksmo/candle-shop/config"
	"github.com/niksmo/candle-shop/internal/adapter"
	"github.com/niksmo/candle-shop/internal/adapter/httphandler"
	"github.com/niksmo/candle-shop/internal/adapter/kafka"
	"github.com/niksmo/candle-shop/internal/adapter/storage"
	"github.com/niksmo/candle-shop/internal/core/cart"
	"github.com/niksmo/candle-shop/internal/core/port"
	"github.com/niksmo/candle-shop/internal/core/service"
	"github.com/niksmo/candle-shop/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
	"golang.org/x/sync/errgroup"
)

type broker struct {
	producer   port.CartEventsProducer
	demandProc port.DemandProcessor
	demandView port.DemandView
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	sqldb      storage.SQLDB
	slot       port.Slot
	broker     *broker
	service    *service.Service
	httpServer httphandler.HTTPServer
	runners    errgroup.Group
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initBroker()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	level, _ := app.cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqldb = sqldb

	switch app.cfg.Cart.Store {
	case config.StorePostgres:
		app.slot = storage.NewSQLSlot(sqldb)
	case config.StoreHDFS:
		cl, err := storage.NewHDFSClient(app.cfg.HDFS.Addresses, app.cfg.HDFS.User)
		if err != nil {
			app.fallDown(op, err)
		}
		slot, err := storage.NewHDFSSlot(cl, app.cfg.HDFS.Dir)
		if err != nil {
			app.fallDown(op, err)
		}
		app.slot = slot
	default:
		app.slot = storage.NewMemorySlot()
	}
}

func (app *App) initBroker() {
	const op = "App.initBroker"

	bcfg := app.cfg.Broker
	if !bcfg.Enabled {
		slog.Info("broker is disabled", "op", op)
		return
	}

	srClient, err := sr.NewClient(sr.URLs(bcfg.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	cartEventSerde, err := schema.NewSerdeCartEventV1(
		app.ctx,
		schema.SubjectOpt(bcfg.Topics.CartEvents+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	tlsConfig, err := adapter.MakeTLSConfig(bcfg.TLS.CA, bcfg.TLS.Cert, bcfg.TLS.Key)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewCartEventsProducer(
		kafka.ProducerClientOpt(app.ctx, bcfg.SeedBrokers, bcfg.Topics.CartEvents, tlsConfig),
		kafka.ProducerEncoderOpt(cartEventSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	demandProc, err := kafka.NewDemandProc(
		bcfg.SeedBrokers,
		bcfg.Topics.CartEvents,
		bcfg.Consumers.DemandGroup,
		cartEventSerde,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	demandView, err := kafka.NewDemandView(bcfg.SeedBrokers, bcfg.Consumers.DemandGroup)
	if err != nil {
		app.fallDown(op, err)
	}

	app.broker = &broker{
		producer:   producer,
		demandProc: demandProc,
		demandView: demandView,
	}
}

func (app *App) initCoreService() {
	var (
		listeners []cart.SessionListener
		demand    port.DemandReader
	)
	if app.broker != nil {
		listeners = append(listeners, app.broker.producer.ProduceChange)
		demand = app.broker.demandView
	}

	sessions := cart.NewSessions(
		app.newCartStore, app.cfg.Cart.MaxSessions, listeners...,
	)

	app.service = service.New(
		storage.NewProductsRepository(app.sqldb),
		demand,
		sessions,
		app.cfg.Currency,
	)
}

// newCartStore keys the default session by the configured store key and
// any other one by "<store key>:<session id>".
func (app *App) newCartStore(sessionID string) port.CartStore {
	key := app.cfg.Cart.StoreKey
	if sessionID != "" {
		key = key + ":" + sessionID
	}
	return storage.NewCartStore(app.slot, key, app.cfg.Cart.SaveTimeout)
}

func (app *App) initInboundAdapters() {
	mux := http.NewServeMux()
	httphandler.RegisterHealth(mux)
	httphandler.RegisterCart(mux, app.service)
	httphandler.RegisterDemand(mux, app.service)

	handler := httphandler.Session(httphandler.AllowJSON(mux))
	app.httpServer = httphandler.NewHTTPServer(
		httphandler.ServerConfig{
			Addr:           app.cfg.HTTPServerAddr,
			HandlerTimeout: app.cfg.HandlerTimeout,
		},
		handler,
	)
}

// Run starts the broker components and the http server.
//
// stopFn is called when any component stops unexpectedly.
func (app *App) Run(stopFn context.CancelFunc) {
	const op = "App.Run"

	stopOnErr := func(run func() error) func() error {
		return func() error {
			err := run()
			if err != nil {
				stopFn()
			}
			return err
		}
	}

	if app.broker != nil {
		var wg sync.WaitGroup
		wg.Add(1)
		go app.broker.demandProc.Run(app.ctx, stopFn, &wg)
		wg.Wait()

		app.runners.Go(stopOnErr(func() error {
			return app.broker.demandView.Run(app.ctx)
		}))
	}

	app.runners.Go(stopOnErr(app.httpServer.Run))

	slog.Info("application is running", "op", op)
}

func (app *App) Close(ctx context.Context) {
	const op = "App.Close"
	log := slog.With("op", op)

	log.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.broker != nil {
		app.broker.demandProc.Close()
		app.broker.producer.Close()
	}

	if err := app.runners.Wait(); err != nil {
		log.Error("component stopped with error", "err", err)
	}
	app.sqldb.Close()

	log.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
