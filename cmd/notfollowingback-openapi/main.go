// Package main prints the OpenAPI document of the check service without
// launching a browser.
//
// Usage:
//
//	go run ./cmd/notfollowingback-openapi > openapi.json
//	go run ./cmd/notfollowingback-openapi -yaml -output openapi.yaml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/Bangnus/Check-Unfollows-IG/internal/api/handlers"
	"github.com/Bangnus/Check-Unfollows-IG/internal/version"
)

func main() {
	outputFile := flag.String("output", "", "Output file path (default: stdout)")
	outputYAML := flag.Bool("yaml", false, "Output as YAML instead of JSON")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().Short())
		return
	}

	api := humachi.New(chi.NewRouter(), handlers.NewHumaConfig())

	// Handlers are registered for their schemas only and never invoked.
	handlers.RegisterHealth(api, handlers.NewHealthHandler(nil))
	handlers.RegisterCheck(api, handlers.NewCheckHandler(nil, nil, nil, nil, handlers.CheckOptions{}, slog.Default()))
	handlers.RegisterRuns(api, handlers.NewRunsHandler(nil))

	spec := api.OpenAPI()

	var (
		data []byte
		err  error
	)
	if *outputYAML {
		data, err = yaml.Marshal(spec)
	} else {
		data, err = json.MarshalIndent(spec, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal spec: %v\n", err)
		os.Exit(1)
	}

	if *outputFile == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*outputFile, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *outputFile, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "OpenAPI spec written to %s\n", *outputFile)
}
