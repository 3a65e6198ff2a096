package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/RichardKnop/tinysql/internal/pkg/database"
	"github.com/RichardKnop/tinysql/internal/pkg/logging"
	"github.com/RichardKnop/tinysql/internal/pkg/parser"
	"github.com/RichardKnop/tinysql/internal/pkg/repl"
	"github.com/RichardKnop/tinysql/internal/pkg/table"
)

const defaultDbFileName = "db"

var (
	dbFileName string
)

func init() {
	flag.StringVar(&dbFileName, "db", defaultDbFileName, "Database file, a positional argument takes precedence")
}

func main() {
	flag.Parse()
	if flag.NArg() > 0 {
		dbFileName = flag.Arg(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := logging.New(os.Getenv("LOG_LEVEL"), "info")
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // flushes buffer, if any

	aTable, err := table.Open(ctx, logger, dbFileName)
	if err != nil {
		fmt.Println("Unable to open file")
		logger.Fatal("error opening database", zap.String("file", dbFileName), zap.Error(err))
	}

	aREPL := repl.New(logger, database.New(logger, dbFileName, parser.New(), aTable))

	done := make(chan error, 1)
	go func() {
		done <- aREPL.Run(ctx, os.Stdin, os.Stdout)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil {
			logger.Fatal("database error", zap.Error(err))
		}
	case sig := <-sigChan:
		logger.Debug("received signal, shutting down", zap.String("signal", sig.String()))
		// The REPL goroutine may be blocked reading stdin, it is not waited for
		if err := aREPL.Shutdown(ctx); err != nil {
			logger.Fatal("error closing database", zap.Error(err))
		}
		fmt.Println()
	}
}
