package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"easyorders/bot"
	"easyorders/impl/core"
	"easyorders/internal/auth"
	"easyorders/internal/config"
	"easyorders/internal/database"
	repository "easyorders/internal/database/mongo"
	"easyorders/internal/http-server/api"
	"easyorders/internal/lib/logger"
	"easyorders/internal/lib/sl"
	"easyorders/internal/lib/util"
	"easyorders/internal/metrics"
	"easyorders/internal/ws"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	if *logPath == "" {
		*logPath = conf.LogPath
	}
	lg := logger.SetupLogger(conf.Env, *logPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, []int64{conf.Telegram.AdminId}, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			// security events are logged at warn level
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelWarn)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			go func() {
				if err := tgBot.Start(ctx); err != nil {
					lg.Error("telegram bot error", sl.Err(err))
				}
			}()
		}
	}

	lg.Info("starting easyorders", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg, conf)
	handler.SetTokenIssuer(auth.NewIssuer(conf.Auth.Secret, conf.Auth.SessionTTL, conf.Auth.NonceTTL))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)
	handler.SetMetrics(recorder)

	hub := ws.NewHub(lg)
	go hub.Run()
	defer hub.Stop()
	handler.SetBroadcaster(hub)

	db, err := database.NewSQLClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mysql client")
	}
	if db != nil {
		handler.SetOrderStore(db)
		handler.SetConfigStore(db)
		handler.SetActivityLog(db)
		handler.SetUserStore(db)
		handler.SetSchema(db)
		handler.SetCounterStore(db)
		lg.With(
			slog.String("host", conf.SQL.HostName),
			slog.String("port", conf.SQL.Port),
			slog.String("user", conf.SQL.UserName),
			slog.String("database", conf.SQL.Database),
		).Info("mysql client initialized")
		defer db.Close()

		go func() {
			ticker := time.NewTicker(30 * time.Minute)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					lg.Info("mysql", slog.String("stats", db.Stats()))
				}
			}
		}()
	}

	mongo, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(sl.Err(err)).Error("mongo client")
	}
	if mongo != nil {
		handler.SetCounterStore(mongo)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("database", conf.Mongo.Database),
		).Info("rate-limit counters kept in mongo")
	}

	if tgBot != nil {
		tgBot.SetJanitor(handler)
		tgBot.SetSubscribers(hub)
	}

	handler.Start()
	defer handler.Stop()

	proxies, err := util.ParseProxies(conf.Http.TrustedProxies)
	if err != nil {
		lg.With(sl.Err(err)).Error("trusted proxies")
		return
	}

	err = api.New(ctx, conf, lg, handler, api.Deps{
		Hub:      hub,
		Observer: recorder,
		Gatherer: registry,
		Proxies:  proxies,
	})
	if err != nil {
		lg.With(sl.Err(err)).Error("api server")
	}

	lg.Error("service stopped")
}
