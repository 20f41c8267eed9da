// Command webserv runs the HTTP/1.1 origin server: a single positional
// argument names the configuration file to load.
package main

import (
	"fmt"
	"os"

	"github.com/nocturne-http/webserv/internal/config"
	"github.com/nocturne-http/webserv/internal/eventloop"
	"github.com/nocturne-http/webserv/internal/server"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: webserv <config-file>")
		os.Exit(1)
	}
	configPath := os.Args[1]

	log := server.NewDefaultLogger()
	metrics := server.NewMetrics()

	servers, err := config.Load(configPath)
	if err != nil {
		log.Error("config load failed", server.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	if watcher, err := config.Watch(configPath, func(event string) {
		log.Warn("config file changed on disk, restart to apply it",
			server.Field{Key: "event", Value: event})
	}); err != nil {
		log.Warn("config file watch unavailable", server.Field{Key: "error", Value: err.Error()})
	} else {
		defer watcher.Close()
	}

	loop, err := eventloop.New(servers, log, metrics)
	if err != nil {
		log.Error("event loop init failed", server.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer loop.Close()

	if err := loop.Init(); err != nil {
		log.Error("listener bind failed", server.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	log.Info("webserv ready", server.Field{Key: "config", Value: configPath})

	if err := loop.Run(); err != nil {
		log.Error("event loop exited", server.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}
