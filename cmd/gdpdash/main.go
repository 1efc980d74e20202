package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"unicode/utf8"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/gdpdash/internal/api"
	"github.com/lox/gdpdash/internal/dataset"
	"github.com/lox/gdpdash/internal/source"
)

const defaultDataPath = "nama_10_gdp/nama_10_gdp_1_Data.csv"

type Globals struct {
	EnvFile   kongdotenv.ENVFileConfig `kong:"optional,name=env-file,short=e,default=.env,help='Path to a .env file.'"`
	Data      string                   `short:"d" default:"${data}" env:"GDPDASH_DATA" help:"Dataset source: a CSV path, file://, http(s)://, ftp:// or sqlite:// URL."`
	Delimiter string                   `default:"," env:"GDPDASH_DELIMITER" help:"CSV field delimiter."`
	Exclude   []string                 `env:"GDPDASH_EXCLUDE" help:"Extra GEO values to drop alongside the EU aggregates."`
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Load the dataset and serve the dashboard."`
	Inspect InspectCmd `cmd:"" help:"Load the dataset, print a summary and exit."`
}

type ServeCmd struct {
	Port      string `short:"p" default:"8050" env:"GDPDASH_PORT" help:"HTTP server port."`
	PlotlyURL string `default:"${plotly}" env:"GDPDASH_PLOTLY_URL" help:"URL of the plotly.js bundle the page loads."`
}

type InspectCmd struct{}

func (g *Globals) options() (dataset.Options, error) {
	if utf8.RuneCountInString(g.Delimiter) != 1 {
		return dataset.Options{}, fmt.Errorf("delimiter must be a single character, got %q", g.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(g.Delimiter)
	return dataset.Options{Delimiter: r, ExtraExclusions: g.Exclude}, nil
}

func (g *Globals) load(ctx context.Context) (*dataset.Dataset, error) {
	opts, err := g.options()
	if err != nil {
		return nil, err
	}
	src, err := source.Parse(g.Data)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return ds, nil
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ds, err := g.load(ctx)
	if err != nil {
		return err
	}

	key, from := secretKey(os.Getenv)
	log.Printf("session secret from %s", from)

	server, err := api.NewServer(ds, api.Config{Port: c.Port, PlotlyURL: c.PlotlyURL, SecretKey: key})
	if err != nil {
		return err
	}

	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

func (c *InspectCmd) Run(g *Globals) error {
	ds, err := g.load(context.Background())
	if err != nil {
		return err
	}
	printSummary(os.Stdout, ds)
	return nil
}

func printSummary(w io.Writer, ds *dataset.Dataset) {
	st := ds.Stats()
	fmt.Fprintf(w, "rows: %d read, %d kept, %d aggregate, %d malformed, %d missing values\n",
		st.RowsRead, st.RowsKept, st.RowsExcluded, st.RowsMalformed, st.MissingValues)
	fmt.Fprintf(w, "years: %d-%d (%d)\n", ds.MinYear(), ds.MaxYear(), len(ds.Years()))

	fmt.Fprintf(w, "indicators (%d):\n", len(ds.Indicators()))
	for _, ind := range ds.Indicators() {
		fmt.Fprintf(w, "  %s\n", ind)
	}
	fmt.Fprintf(w, "countries (%d):\n", len(ds.Countries()))
	for _, c := range ds.Countries() {
		fmt.Fprintf(w, "  %s\n", c)
	}
}

// secretKey returns the session secret and where it came from. Without
// secret_key in the environment a random integer in [0, 1000000] is used.
func secretKey(getenv func(string) string) (key, from string) {
	if v := getenv("secret_key"); v != "" {
		return v, "environment"
	}
	return strconv.Itoa(rand.IntN(1_000_001)), "random fallback"
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gdpdash"),
		kong.Description("Interactive dashboard over the Eurostat nama_10_gdp dataset."),
		kong.UsageOnError(),
		kong.Vars{
			"data":   defaultDataPath,
			"plotly": api.DefaultPlotlyURL,
		},
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		log.Fatalf("%s: %v", ctx.Command(), err)
	}
}
