package config

import (
	"flag"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/btccmon/internal/clients"
)

const (
	EnvAccessKey = "BTCC_ACCESS_KEY"
	EnvSecretKey = "BTCC_SECRET_KEY"

	defaultMarket       = "btccny"
	defaultDepthLimit   = 10
	defaultTradesLimit  = 20
	defaultPollInterval = 30 * time.Second
	defaultLogCapacity  = 200
	defaultWebAddr      = ":8080"
	defaultCertCacheDir = "cert-cache"
)

type Config struct {
	RPCURL       string
	TradesURL    string
	Market       string
	DepthLimit   int
	TradesLimit  int
	WatchOrders  []int64
	PollInterval time.Duration
	LogCapacity  int
	WebAddr      string
	TLSDomains   []string
	CertCacheDir string

	AccessKey string
	SecretKey string
}

// ConfigTmp is the YAML file layout.
type ConfigTmp struct {
	RPCURL       string        `yaml:"rpc_url,omitempty"`
	TradesURL    string        `yaml:"trades_url,omitempty"`
	Market       string        `yaml:"market,omitempty"`
	DepthLimit   int           `yaml:"depth_limit,omitempty"`
	TradesLimit  *int          `yaml:"trades_limit,omitempty"`
	WatchOrders  []int64       `yaml:"watch_orders,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	LogCapacity  int           `yaml:"log_capacity,omitempty"`
	WebAddr      string        `yaml:"web_addr,omitempty"`
	TLSDomains   []string      `yaml:"tls_domains,omitempty"`
	CertCacheDir string        `yaml:"cert_cache_dir,omitempty"`
}

// Default returns the configuration used when no flag or file overrides a field.
func Default() Config {
	return Config{
		RPCURL:       clients.DefaultRPCURL,
		TradesURL:    clients.DefaultTradesURL,
		Market:       defaultMarket,
		DepthLimit:   defaultDepthLimit,
		TradesLimit:  defaultTradesLimit,
		PollInterval: defaultPollInterval,
		LogCapacity:  defaultLogCapacity,
		WebAddr:      defaultWebAddr,
		CertCacheDir: defaultCertCacheDir,
	}
}

// Get reads the configuration from the command line, or from the YAML file
// named by --config. Credentials always come from the environment; a .env file
// in the working directory is loaded first if present.
func Get() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "failed to load .env")
	}
	return Parse(os.Args[1:], os.Getenv)
}

// Parse is Get without process globals.
func Parse(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("btccmon", flag.ContinueOnError)
	def := Default()

	configPath := fs.String("config", "", "path to yaml config")
	rpcURL := fs.String("rpcurl", def.RPCURL, "trade API JSON-RPC endpoint")
	tradesURL := fs.String("tradesurl", def.TradesURL, "public trade history endpoint")
	market := fs.String("market", def.Market, "market, example: btccny")
	depthLimit := fs.Int("depthlimit", def.DepthLimit, "order book levels per side")
	tradesLimit := fs.Int("tradeslimit", def.TradesLimit, "recent trades per poll")
	watchOrders := fs.String("orders", "", "comma separated order ids to check every poll")
	pollInterval := fs.Duration("pollinterval", def.PollInterval, "exchange poll interval")
	logCapacity := fs.Int("logcapacity", def.LogCapacity, "diagnostic log buffer capacity")
	webAddr := fs.String("webaddr", def.WebAddr, "web page listen address")
	tlsDomains := fs.String("tlsdomains", "", "comma separated domains for automatic TLS")
	certCacheDir := fs.String("certcache", def.CertCacheDir, "certificate cache directory")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var (
		c   Config
		err error
	)
	if *configPath != "" {
		c, err = Load(*configPath)
		if err != nil {
			return Config{}, err
		}
	} else {
		orders, err := parseOrderIDs(*watchOrders)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid --orders provided, --orders=%s", *watchOrders)
		}
		c = Config{
			RPCURL:       *rpcURL,
			TradesURL:    *tradesURL,
			Market:       *market,
			DepthLimit:   *depthLimit,
			TradesLimit:  *tradesLimit,
			WatchOrders:  orders,
			PollInterval: *pollInterval,
			LogCapacity:  *logCapacity,
			WebAddr:      *webAddr,
			TLSDomains:   splitList(*tlsDomains),
			CertCacheDir: *certCacheDir,
		}
	}

	c.AccessKey = getenv(EnvAccessKey)
	c.SecretKey = getenv(EnvSecretKey)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads a YAML config file. Absent fields take their defaults.
func Load(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return tmp.toConfig(), nil
}

func (t ConfigTmp) toConfig() Config {
	c := Default()
	if t.RPCURL != "" {
		c.RPCURL = t.RPCURL
	}
	if t.TradesURL != "" {
		c.TradesURL = t.TradesURL
	}
	if t.Market != "" {
		c.Market = t.Market
	}
	if t.DepthLimit != 0 {
		c.DepthLimit = t.DepthLimit
	}
	// zero is meaningful here: the server picks the count
	if t.TradesLimit != nil {
		c.TradesLimit = *t.TradesLimit
	}
	if t.PollInterval != 0 {
		c.PollInterval = t.PollInterval
	}
	if t.LogCapacity != 0 {
		c.LogCapacity = t.LogCapacity
	}
	if t.WebAddr != "" {
		c.WebAddr = t.WebAddr
	}
	if t.CertCacheDir != "" {
		c.CertCacheDir = t.CertCacheDir
	}
	c.WatchOrders = t.WatchOrders
	c.TLSDomains = t.TLSDomains
	return c
}

// Validate checks every field and names the first offending one.
func (c Config) Validate() error {
	if err := checkURL("rpc_url", c.RPCURL); err != nil {
		return err
	}
	if err := checkURL("trades_url", c.TradesURL); err != nil {
		return err
	}
	if c.Market == "" {
		return errors.New("incorrect 'market' param: must not be empty")
	}
	if c.DepthLimit <= 0 {
		return errors.Errorf("incorrect 'depth_limit' param: %d, must be positive", c.DepthLimit)
	}
	if c.TradesLimit < 0 {
		return errors.Errorf("incorrect 'trades_limit' param: %d, must not be negative", c.TradesLimit)
	}
	if c.PollInterval <= 0 {
		return errors.Errorf("incorrect 'poll_interval' param: %s, must be positive", c.PollInterval)
	}
	if c.LogCapacity <= 0 {
		return errors.Errorf("incorrect 'log_capacity' param: %d, must be positive", c.LogCapacity)
	}
	for _, id := range c.WatchOrders {
		if id <= 0 {
			return errors.Errorf("incorrect 'watch_orders' param: order id %d, must be positive", id)
		}
	}
	if len(c.WatchOrders) > 0 && !c.HasCredentials() {
		return errors.Errorf("incorrect 'watch_orders' param: requires %s and %s", EnvAccessKey, EnvSecretKey)
	}
	if len(c.TLSDomains) > 0 && c.CertCacheDir == "" {
		return errors.New("incorrect 'cert_cache_dir' param: required when tls_domains is set")
	}
	return nil
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("incorrect '%s' param: %q is not an absolute URL", name, raw)
	}
	return nil
}

// HasCredentials reports whether both API keys are set.
func (c Config) HasCredentials() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// Entry is a single key/value line of a config dump.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Section is a named group of entries.
type Section struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Sections returns the effective configuration as ordered sections. Secrets are masked.
func (c Config) Sections() []Section {
	orders := make([]string, 0, len(c.WatchOrders))
	for _, id := range c.WatchOrders {
		orders = append(orders, strconv.FormatInt(id, 10))
	}

	return []Section{
		{Name: "exchange", Entries: []Entry{
			{"rpc_url", c.RPCURL},
			{"trades_url", c.TradesURL},
			{"access_key", mask(c.AccessKey)},
			{"secret_key", mask(c.SecretKey)},
		}},
		{Name: "monitor", Entries: []Entry{
			{"market", c.Market},
			{"depth_limit", strconv.Itoa(c.DepthLimit)},
			{"trades_limit", strconv.Itoa(c.TradesLimit)},
			{"watch_orders", strings.Join(orders, ",")},
			{"poll_interval", c.PollInterval.String()},
		}},
		{Name: "log", Entries: []Entry{
			{"log_capacity", strconv.Itoa(c.LogCapacity)},
		}},
		{Name: "web", Entries: []Entry{
			{"web_addr", c.WebAddr},
			{"tls_domains", strings.Join(c.TLSDomains, ",")},
			{"cert_cache_dir", c.CertCacheDir},
		}},
	}
}

// mask keeps the last four characters of long secrets.
func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}

func parseOrderIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
