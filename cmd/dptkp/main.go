package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/c3r4h/dptkp/internal/api"
	"github.com/c3r4h/dptkp/internal/server"
)

// Options defines all CLI flags and env vars for the server.
// Flags: --host, --port, --web-dir, --categories-feed, --locations-feed, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_WEB_DIR, SERVICE_CATEGORIES_FEED, ...
type Options struct {
	Host           string `doc:"Host to bind to" default:"0.0.0.0"`
	Port           int    `doc:"Port to listen on" short:"p" default:"8086"`
	WebDir         string `doc:"Path to web/ directory" default:"web"`
	DataDir        string `doc:"Directory for the DuckDB file, empty for in-memory" default:""`
	CategoriesFeed string `doc:"Category feed: path, http(s) URL or s3://bucket/key" default:"web/static/category.json"`
	LocationsFeed  string `doc:"Locations feed: path, http(s) URL or s3://bucket/key" default:"web/static/locations.json"`
	FeedTimeout    int    `doc:"Timeout for fetching a feed, in seconds" default:"15"`
	CenterLat      string `doc:"Initial map centre latitude" default:"-7.825335"`
	CenterLng      string `doc:"Initial map centre longitude" default:"110.374922"`
	Zoom           int    `doc:"Initial map zoom" default:"13"`
	TileURL        string `doc:"Leaflet tile URL template" default:"https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png"`
	DuckDB         bool   `doc:"Mirror locations into DuckDB for the query endpoints" default:"true"`
	SessionIdle    int    `doc:"Drop viewer sessions idle for this many minutes" default:"60"`
	Debug          bool   `doc:"Enable debug logging" default:"false"`
}

func newLogger(opts *Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// coordinate parses a centre option, keeping fallback on bad input.
func coordinate(log zerolog.Logger, name, value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn().Str("option", name).Str("value", value).Msg("Invalid coordinate, using default")
		return fallback
	}
	return v
}

func newServer(opts *Options, log zerolog.Logger) *server.Server {
	return server.New(server.Config{
		Host:           opts.Host,
		Port:           fmt.Sprintf("%d", opts.Port),
		WebDir:         opts.WebDir,
		DataDir:        opts.DataDir,
		CategoriesFeed: opts.CategoriesFeed,
		LocationsFeed:  opts.LocationsFeed,
		FeedTimeout:    time.Duration(opts.FeedTimeout) * time.Second,
		CenterLat:      coordinate(log, "center-lat", opts.CenterLat, -7.825335),
		CenterLng:      coordinate(log, "center-lng", opts.CenterLng, 110.374922),
		Zoom:           opts.Zoom,
		TileURL:        opts.TileURL,
		DuckDB:         opts.DuckDB,
		SessionIdle:    time.Duration(opts.SessionIdle) * time.Minute,
		Logger:         log,
	})
}

func main() {
	// .env is optional; real env vars win.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		log := newLogger(opts)
		srv := newServer(opts, log)

		hooks.OnStart(func() {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			defer srv.Close()

			httpSrv := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
				Handler:           srv,
				ReadHeaderTimeout: 10 * time.Second,
			}

			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("dptkp map server starting...\n")
			fmt.Printf("  Map:        %s/\n", baseURL)
			fmt.Printf("  Categories: %s\n", opts.CategoriesFeed)
			fmt.Printf("  Locations:  %s\n", opts.LocationsFeed)
			fmt.Println()
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			srv.Start(ctx)

			go func() {
				<-ctx.Done()
				shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				httpSrv.Shutdown(shutdownCtx)
			}()

			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("Server error")
			}
		})
	})

	cli.Root().Use = "dptkp"
	cli.Root().Short = "Coffee shop map with filters, nearest sort and exports"
	cli.Root().Version = api.Version

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.DuckDB = false
			srv := newServer(opts, zerolog.Nop())
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	cli.Run()
}
