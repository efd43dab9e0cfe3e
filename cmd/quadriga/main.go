package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"quadriga-client/internal/config"
	"quadriga-client/quadriga"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "",
		Usage:   "load configuration from `file` (defaults plus QUADRIGA_* env when empty)",
	}
	envFileFlag = &cli.StringFlag{
		Name:  "env-file",
		Value: ".env",
		Usage: "load environment variables from `file` if it exists",
	}
	bookFlag = &cli.StringFlag{
		Name:    "book",
		Aliases: []string{"b"},
		Usage:   "trading pair such as btc_cad (config book when empty)",
	}
	decodeFlag = &cli.BoolFlag{
		Name:  "decode",
		Usage: "print the typed decoding instead of the raw body",
	}
	yesFlag = &cli.BoolFlag{
		Name:  "yes",
		Usage: "confirm an operation that moves funds",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:    filepath.Base(os.Args[0]),
		Usage:   "query the QuadrigaCX v2 REST API",
		Version: "0.1.0",
		Flags:   []cli.Flag{configFlag, envFileFlag},
		Commands: []*cli.Command{
			tickerCommand,
			orderBookCommand,
			tradesCommand,
			balanceCommand,
			userTransactionsCommand,
			openOrdersCommand,
			lookupCommand,
			cancelCommand,
			orderCommand,
			depositCommand,
			withdrawCommand,
			checkCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runtime struct {
	cfg     config.Config
	log     *zap.Logger
	public  *quadriga.PublicClient
	private *quadriga.PrivateClient
}

func setup(c *cli.Context) (*runtime, error) {
	if path := c.String(envFileFlag.Name); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	cfg, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	log, err := cfg.Log.NewLogger()
	if err != nil {
		return nil, err
	}
	opts := quadriga.Options{
		BaseURL:   cfg.Exchange.BaseURL,
		Transport: quadriga.NewHTTPTransport(cfg.Exchange.HTTPOptions(log)),
		Nonce:     cfg.Exchange.NonceSource(),
		Logger:    log,
	}
	rt := &runtime{
		cfg:    cfg,
		log:    log,
		public: quadriga.NewPublicClient(opts),
	}
	if cfg.HasCredentials() {
		rt.private, err = quadriga.NewPrivateClient(cfg.Credentials(), opts)
		if err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (rt *runtime) close() {
	_ = rt.log.Sync()
}

func (rt *runtime) requirePrivate() (*quadriga.PrivateClient, error) {
	if rt.private == nil {
		return nil, fmt.Errorf("credentials required: set exchange.api_key, exchange.api_secret and exchange.client_id or %s/%s/%s",
			config.EnvAPIKey, config.EnvAPISecret, config.EnvClientID)
	}
	return rt.private, nil
}

func (rt *runtime) book(c *cli.Context) quadriga.Book {
	if b := c.String(bookFlag.Name); b != "" {
		return quadriga.Book(b)
	}
	return quadriga.Book(rt.cfg.Book)
}
