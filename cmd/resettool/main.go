// resettool is the operator-invoked batch tool for wiping account and
// profile data. It is deliberately not reachable from the HTTP surface
// and expects to run without concurrent mutating traffic.
//
//	resettool db [--keep-superuser] [--tables users,refresh_sessions]
//	resettool users [--keep-superuser]
//	resettool profiles [--username alice]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"backend/config"
	"backend/services"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	reset := services.NewResetService(db, logger)

	switch os.Args[1] {
	case "db":
		runResetDB(reset, os.Args[2:])
	case "users":
		runResetUsers(reset, os.Args[2:])
	case "profiles":
		runResetProfiles(reset, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func runResetDB(reset *services.ResetService, args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	keepSuperuser := fs.Bool("keep-superuser", false, "keep superuser accounts")
	tableList := fs.String("tables", "", "comma-separated tables to reset (default: all)")
	fs.Parse(args)

	var tables []string
	for _, table := range strings.Split(*tableList, ",") {
		if table = strings.TrimSpace(table); table != "" {
			tables = append(tables, table)
		}
	}

	if err := reset.ResetTables(tables, *keepSuperuser); err != nil {
		log.Fatalf("database reset failed: %v", err)
	}
	fmt.Println("Database reset complete")
}

func runResetUsers(reset *services.ResetService, args []string) {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	keepSuperuser := fs.Bool("keep-superuser", false, "keep superuser accounts")
	fs.Parse(args)

	deleted, kept, err := reset.ResetUsers(*keepSuperuser)
	if err != nil {
		log.Fatalf("user reset failed: %v", err)
	}
	fmt.Printf("Deleted %d accounts, kept %d\n", deleted, kept)
	if !*keepSuperuser {
		fmt.Println("No accounts remain, including superusers")
	}
}

func runResetProfiles(reset *services.ResetService, args []string) {
	fs := flag.NewFlagSet("profiles", flag.ExitOnError)
	username := fs.String("username", "", "reset the profile of this account only")
	fs.Parse(args)

	count, err := reset.ResetProfiles(*username)
	if err != nil {
		log.Fatalf("profile reset failed: %v", err)
	}
	fmt.Printf("Reset profile data for %d account(s)\n", count)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: resettool <db|users|profiles> [flags]")
}
