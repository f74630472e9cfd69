package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"grocery-order-service/handlers"
	"grocery-order-service/internal/auth"
	"grocery-order-service/internal/config"
	"grocery-order-service/internal/consul"
	"grocery-order-service/internal/coupons"
	"grocery-order-service/internal/inventory"
	"grocery-order-service/internal/invoices"
	"grocery-order-service/internal/orders"
	"grocery-order-service/internal/products"
	"grocery-order-service/internal/shops"
	"grocery-order-service/internal/stores/kafka"
	"grocery-order-service/internal/stores/postgres"
	"grocery-order-service/internal/users"
	"grocery-order-service/pkg/logkey"

	consulapi "github.com/hashicorp/consul/api"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("service failed to start", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	pool, err := postgres.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.RunMigrations(pool); err != nil {
		return err
	}

	pubKeyPEM, err := os.ReadFile(os.Getenv("AUTH_PUBLIC_KEY_FILE"))
	if err != nil {
		return err
	}
	keys, err := auth.NewKeys(pubKeyPEM)
	if err != nil {
		return err
	}

	usersConf, err := users.NewConf(pool)
	if err != nil {
		return err
	}
	shopsConf, err := shops.NewConf(pool)
	if err != nil {
		return err
	}
	productsConf, err := products.NewConf(pool)
	if err != nil {
		return err
	}
	inventoryConf, err := inventory.NewConf(pool)
	if err != nil {
		return err
	}
	couponsConf, err := coupons.NewConf(pool)
	if err != nil {
		return err
	}
	invoicesConf, err := invoices.NewConf(pool)
	if err != nil {
		return err
	}

	ordersConf, err := orders.NewConf(pool, usersConf, shopsConf, productsConf,
		inventoryConf, couponsConf, invoicesConf, orders.Policy{
			ReleaseCouponOnCancel: cfg.ReleaseCouponOnCancel,
			ShippingFee:           cfg.ShippingFee,
			FreeShippingAbove:     cfg.FreeShippingAbove,
			DeliveryWindow:        cfg.DeliveryWindow,
		})
	if err != nil {
		return err
	}

	var kafkaConf *kafka.Conf
	if cfg.KafkaBrokers != "" {
		kafkaConf, err = kafka.NewConf(cfg.KafkaBrokers)
		if err != nil {
			// Events are fire-and-forget; the service still takes orders
			// when the broker is down.
			slog.Error("kafka unavailable, events disabled", slog.String(logkey.ERROR, err.Error()))
		} else {
			defer kafkaConf.Close()
		}
	}

	var consulClient *consulapi.Client
	if cfg.ConsulAddress != "" {
		consulClient, err = consul.NewClient(cfg.ConsulAddress)
		if err != nil {
			return err
		}
		port, err := strconv.Atoi(cfg.Port)
		if err != nil {
			return err
		}
		host := os.Getenv("SERVICE_HOST")
		if host == "" {
			host = "localhost"
		}
		if err := consul.RegisterService(consulClient, cfg.ServiceName, host, port); err != nil {
			return err
		}
	}

	api := handlers.API(cfg.EndpointPrefix, keys, consulClient, ordersConf,
		inventoryConf, couponsConf, productsConf, usersConf, invoicesConf, kafkaConf)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-shutdown:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return err
		}
	}
	return nil
}
