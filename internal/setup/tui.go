package setup

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/btccmon/config"
	"github.com/vadiminshakov/btccmon/internal/console"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(console.Highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(console.Success).
			Bold(true).
			MarginTop(1)

	noteStyle = lipgloss.NewStyle().Foreground(console.Subtle)
	doneStyle = lipgloss.NewStyle().Foreground(console.Success)
)

// answers holds the raw wizard input.
type answers struct {
	rpcURL       string
	tradesURL    string
	market       string
	depthLimit   string
	tradesLimit  string
	watchOrders  string
	pollInterval string
	logCapacity  string
	webAddr      string
	tlsDomains   string
}

func defaultAnswers() answers {
	def := config.Default()
	return answers{
		rpcURL:       def.RPCURL,
		tradesURL:    def.TradesURL,
		market:       def.Market,
		depthLimit:   strconv.Itoa(def.DepthLimit),
		tradesLimit:  strconv.Itoa(def.TradesLimit),
		pollInterval: def.PollInterval.String(),
		logCapacity:  strconv.Itoa(def.LogCapacity),
		webAddr:      def.WebAddr,
	}
}

func clearScreen(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("BTCCMON CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI launches the terminal configuration wizard and writes the result to path.
// API credentials are not asked for; they are read from the environment.
func RunTUI(path string) error {
	a := defaultAnswers()
	var confirm bool

	clearScreen("STEP 1: EXCHANGE")
	fmt.Println(noteStyle.Render(
		fmt.Sprintf("Credentials are read from %s and %s.\n", config.EnvAccessKey, config.EnvSecretKey)))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trade API URL").
				Value(&a.rpcURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Trade history URL").
				Value(&a.tradesURL).
				Validate(validateURL),
			huh.NewSelect[string]().
				Title("Market").
				Options(
					huh.NewOption("BTC/CNY", "btccny"),
					huh.NewOption("LTC/CNY", "ltccny"),
					huh.NewOption("LTC/BTC", "ltcbtc"),
				).
				Value(&a.market),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen("STEP 2: POLLING")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll Interval").
				Description("Duration string (e.g. 30s, 1m, 5m)").
				Value(&a.pollInterval).
				Validate(validateDuration),
			huh.NewInput().
				Title("Order book depth").
				Description("Levels per side").
				Value(&a.depthLimit).
				Validate(validatePositive),
			huh.NewInput().
				Title("Recent trades").
				Description("Trades fetched per poll, 0 for the server default").
				Value(&a.tradesLimit).
				Validate(validateNonNegative),
			huh.NewInput().
				Title("Watched orders").
				Description("Comma separated order ids, empty for none").
				Value(&a.watchOrders).
				Validate(validateOrderIDs),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen("STEP 3: LOG & WEB")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Log capacity").
				Description("Lines kept in the diagnostic log").
				Value(&a.logCapacity).
				Validate(validatePositive),
			huh.NewInput().
				Title("Web address").
				Value(&a.webAddr),
			huh.NewInput().
				Title("TLS domains").
				Description("Comma separated, empty for plain HTTP").
				Value(&a.tlsDomains),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"Market: %s\nInterval: %s\nLog capacity: %s\nWeb: %s\n",
		a.market, a.pollInterval, a.logCapacity, a.webAddr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return errors.New("setup cancelled by user")
	}

	cfgTmp, err := buildFileConfig(a)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return errors.Wrap(err, "failed to generate yaml")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}

	fmt.Println(doneStyle.Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting monitor...", path)))
	return nil
}

// buildFileConfig turns wizard answers into the YAML file layout.
func buildFileConfig(a answers) (config.ConfigTmp, error) {
	pollInterval, err := time.ParseDuration(a.pollInterval)
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "poll interval")
	}
	depthLimit, err := strconv.Atoi(a.depthLimit)
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "depth limit")
	}
	tradesLimit, err := strconv.Atoi(a.tradesLimit)
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "trades limit")
	}
	logCapacity, err := strconv.Atoi(a.logCapacity)
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "log capacity")
	}
	orders, err := parseOrderIDs(a.watchOrders)
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "watched orders")
	}

	return config.ConfigTmp{
		RPCURL:       strings.TrimSpace(a.rpcURL),
		TradesURL:    strings.TrimSpace(a.tradesURL),
		Market:       a.market,
		DepthLimit:   depthLimit,
		TradesLimit:  &tradesLimit,
		WatchOrders:  orders,
		PollInterval: pollInterval,
		LogCapacity:  logCapacity,
		WebAddr:      strings.TrimSpace(a.webAddr),
		TLSDomains:   splitList(a.tlsDomains),
	}, nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("must be a whole number")
	}
	if n <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func validateNonNegative(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("must be a whole number")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validateOrderIDs(s string) error {
	_, err := parseOrderIDs(s)
	return err
}

func parseOrderIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(s) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.Errorf("invalid order id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
