package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TTRSQ/gdax/config"
	"github.com/TTRSQ/gdax/domains/feed"
	"github.com/TTRSQ/gdax/interface/exchange"
	"github.com/TTRSQ/gdax/src/store"
	"github.com/TTRSQ/gdax/src/ws"
	"github.com/redis/go-redis/v9"
)

const boardInterval = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("gdaxfeed stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	tickers := store.NewTickerStore(rdb, store.DefaultTTL)
	if err := tickers.Ping(ctx); err != nil {
		return err
	}

	var key *exchange.Key
	if cfg.HasKey() {
		key = &cfg.Key
	}
	client, err := ws.New(cfg.Products, cfg.WebsocketURI, key, ws.Options{Channels: cfg.Channels, Logger: logger})
	if err != nil {
		return err
	}

	books := map[string]*ws.Book{}
	for _, p := range cfg.Products {
		books[p] = ws.NewBook(p)
	}

	closed := make(chan struct{})
	client.OnMessage(func(msg feed.Message) {
		switch msg.Type {
		case feed.TypeTicker:
			if err := tickers.Save(ctx, msg.ProductID, msg.ProductTicker()); err != nil {
				logger.Warn("save ticker", "product_id", msg.ProductID, "error", err)
			}
		case feed.TypeSnapshot, feed.TypeL2Update:
			book, ok := books[msg.ProductID]
			if !ok {
				return
			}
			if err := book.Apply(msg); err != nil && !errors.Is(err, ws.ErrNoSnapshot) {
				logger.Warn("apply level2", "product_id", msg.ProductID, "error", err)
			}
		}
	})
	client.OnError(func(err error) {
		logger.Error("feed error", "error", err)
	})
	client.OnClose(func() {
		close(closed)
	})

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	err = client.Connect(connectCtx)
	cancel()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(boardInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return client.Disconnect()
		case <-closed:
			return errors.New("feed closed")
		case <-ticker.C:
			for p, book := range books {
				if !book.Ready() {
					continue
				}
				b := book.Board(1)
				attrs := []any{"product_id", p, "mid_price", b.MidPrice}
				if ask, ok := b.BestAsk(); ok {
					attrs = append(attrs, "best_ask", ask.Price, "ask_size", ask.Size)
				}
				if bid, ok := b.BestBid(); ok {
					attrs = append(attrs, "best_bid", bid.Price, "bid_size", bid.Size)
				}
				logger.Info("top of book", attrs...)
			}
		}
	}
}
