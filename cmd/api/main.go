package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aririzq/panelstore/internal/catalog"
	"github.com/aririzq/panelstore/internal/config"
	"github.com/aririzq/panelstore/internal/files"
	"github.com/aririzq/panelstore/internal/fulfillment"
	"github.com/aririzq/panelstore/internal/gateway"
	"github.com/aririzq/panelstore/internal/httpx"
	kafkax "github.com/aririzq/panelstore/internal/kafka"
	"github.com/aririzq/panelstore/internal/orders"
	"github.com/aririzq/panelstore/internal/postgres"
	"github.com/aririzq/panelstore/internal/provision"
	"github.com/aririzq/panelstore/internal/redisx"
	"github.com/aririzq/panelstore/internal/settings"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, satu per topic lifecycle
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pCompleted := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCompleted, 1024)
	pFailed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicFulfillmentFailed, 1024)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	producers := []*kafkax.Producer{pCreated, pCompleted, pFailed, pCancelled}
	for _, p := range producers {
		p.Start(ctx)
	}
	events := &fulfillment.Events{
		Created:   pCreated,
		Completed: pCompleted,
		Failed:    pFailed,
		Cancelled: pCancelled,
		Service:   cfg.ServiceName,
	}

	// Kolaborator eksternal
	gw := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayMerchantID, cfg.GatewayAPIKey)
	panelAPI := provision.NewPanelAPI(cfg.PanelBaseURL, cfg.PanelAPIKey, cfg.PanelEggID, cfg.PanelLocationID)
	signer := files.NewSigner(cfg.FilesDir, cfg.DownloadSecret, cfg.PublicBaseURL)
	cfgStore := &settings.Provider{Source: &settings.RedisFetcher{Client: rdb}}

	// Repo + core
	orderRepo := &orders.Repo{DB: db}
	catalogRepo := &catalog.Repo{DB: db}
	panelProv := &provision.Panel{API: panelAPI, Settings: cfgStore}
	dispatcher := &fulfillment.Dispatcher{
		Store:   orderRepo,
		Gateway: gw,
		Provisioners: map[catalog.ProductType]provision.Provisioner{
			catalog.TypePanel: panelProv,
			catalog.TypeSC:    &provision.Download{Signer: signer, Settings: cfgStore},
			catalog.TypeSewa:  &provision.Rental{Settings: cfgStore},
		},
		Fallback: panelProv,
		Events:   events,
	}
	checkout := &fulfillment.Checkout{
		Catalog: catalogRepo,
		Gateway: gw,
		Orders:  orderRepo,
		Events:  events,
	}

	// HTTP
	router := httpx.NewRouter()
	sh := &httpx.StoreHandler{
		Checkout:   checkout,
		Dispatcher: dispatcher,
		Orders:     orderRepo,
		Catalog:    catalogRepo,
		Downloads:  signer,
		Events:     events,
		Redis:      rdb,
	}
	sh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close() // tutup inbox -> flush & close writer
	}
	cancel() // stop producer loop
	for _, p := range producers {
		p.WaitClosed() // drain
	}
}
