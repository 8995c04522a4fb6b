package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "scenes", "Directory of JSON scene files")
	flag.Parse()

	logger := renderer.NewDefaultLogger()
	webServer := server.NewServer(*port, logger)
	webServer.SetScenesDir(*scenesDir)

	logger.Printf("Weekend Raytracer Web Server\n")
	if info, err := renderer.GetHostInfo(); err == nil {
		logger.Printf("Host: %s\n", info)
	}
	logger.Printf("Visit http://localhost:%d to start rendering\n", *port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- webServer.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			logger.Printf("Error starting server: %v\n", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v\n", err)
		}
	}
}
