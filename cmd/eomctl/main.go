package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"easyorders/entity"
	"easyorders/impl/core"
	"easyorders/internal/config"
	"easyorders/internal/database"
	repository "easyorders/internal/database/mongo"
	"easyorders/internal/lib/logger"
)

// operator acts on behalf of the site owner for maintenance commands.
var operator = &entity.UserAuth{
	ID:    1,
	Login: "eomctl",
	Name:  "eomctl",
	Roles: []entity.Role{entity.RoleAdministrator},
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: eomctl [-conf config.yml] <command> [flags]\n\n")
	fmt.Fprintf(os.Stderr, "commands:\n")
	fmt.Fprintf(os.Stderr, "  install              create tables and default settings\n")
	fmt.Fprintf(os.Stderr, "  uninstall [-drop]    remove settings and rate-limit counters, optionally drop the activity log\n")
	fmt.Fprintf(os.Stderr, "  logs [-page N]       print the activity log\n")
	fmt.Fprintf(os.Stderr, "  settings             print the stored settings\n")
	fmt.Fprintf(os.Stderr, "  cleanup              remove expired rate-limit counters\n")
}

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, conf.LogPath)

	db, err := database.NewSQLClient(conf, lg)
	if err != nil {
		log.Fatalf("failed to connect to MySQL: %v", err)
	}
	defer db.Close()

	handler := core.New(lg, conf)
	handler.SetOrderStore(db)
	handler.SetConfigStore(db)
	handler.SetActivityLog(db)
	handler.SetUserStore(db)
	handler.SetSchema(db)
	handler.SetCounterStore(db)
	if conf.Mongo.Enabled {
		mongo, err := repository.NewMongoClient(conf, lg)
		if err != nil {
			log.Fatalf("mongo: %v", err)
		}
		handler.SetCounterStore(mongo)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "install":
		if err = handler.Install(ctx); err != nil {
			log.Fatalf("install: %v", err)
		}
		log.Println("installed")

	case "uninstall":
		fs := flag.NewFlagSet("uninstall", flag.ExitOnError)
		drop := fs.Bool("drop", false, "also drop the activity log table")
		_ = fs.Parse(args)
		if err = handler.Uninstall(ctx, *drop); err != nil {
			log.Fatalf("uninstall: %v", err)
		}
		log.Printf("uninstalled (activity log dropped: %t)", *drop)

	case "logs":
		fs := flag.NewFlagSet("logs", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		_ = fs.Parse(args)
		logs, err := handler.GetLogs(ctx, operator, *page)
		if err != nil {
			log.Fatalf("logs: %v", err)
		}
		if err = printLogs(os.Stdout, logs, conf.TimeLocation()); err != nil {
			log.Fatalf("logs: %v", err)
		}

	case "settings":
		settings, err := handler.LoadSettings(ctx)
		if err != nil {
			log.Fatalf("settings: %v", err)
		}
		if err = printSettings(os.Stdout, settings); err != nil {
			log.Fatalf("settings: %v", err)
		}

	case "cleanup":
		removed, err := handler.CleanupExpired(ctx)
		if err != nil {
			log.Fatalf("cleanup: %v", err)
		}
		log.Printf("removed %d expired counters", removed)

	default:
		usage()
		os.Exit(2)
	}
}
