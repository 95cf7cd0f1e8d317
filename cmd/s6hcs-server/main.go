package main

import (
	"flag"
	"log"
	"log/slog"
	"net"
	"os"

	"github.com/barnettlynn/s6hcs/internal/config"
	"github.com/barnettlynn/s6hcs/pkg/session"
	"github.com/barnettlynn/s6hcs/pkg/store"
	"github.com/barnettlynn/s6hcs/pkg/wire"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if *logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	fm, err := store.New(cfg.Dir)
	if err != nil {
		log.Fatalf("open storage root %q failed: %v", cfg.Dir, err)
	}

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		log.Fatalf("listen on %q failed: %v", cfg.Address, err)
	}
	slog.Info("listening", "address", cfg.Address, "dir", cfg.Dir)

	for {
		nc, err := ln.Accept()
		if err != nil {
			slog.Error("accept failed", "error", err)
			continue
		}
		go serve(nc, fm)
	}
}

// serve runs one connection to completion on its own goroutine, matching
// the parallel-thread-per-connection model (§5).
func serve(nc net.Conn, fm *store.FileManager) {
	conn := wire.NewTCPConn(nc)
	defer conn.Close()

	if err := session.ServerHandleConnection(conn, fm); err != nil {
		slog.Warn("session ended with error", "remote", nc.RemoteAddr(), "error", err)
	}
}
