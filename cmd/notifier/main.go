package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"fbgroup-notifier/internal/browser"
	"fbgroup-notifier/internal/config"
	"fbgroup-notifier/internal/logging"
	"fbgroup-notifier/internal/monitor"
	"fbgroup-notifier/internal/notifier"
	"fbgroup-notifier/internal/scraper"
	"fbgroup-notifier/internal/scraper/facebook"
)

var logger = logging.GetModuleLogger("main")

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] enc_file type\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "  enc_file  encrypted config file")
	fmt.Fprintln(os.Stderr, `  type      type of post to watch, "listing" or "post"`)
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

var (
	errUsage    = errors.New("expected enc_file and type")
	errBadType  = errors.New(`Expected type "listing" or "post"`)
	errNotFound = errors.New("File not found.")
)

// parseArgs checks the positional arguments and picks the exit code for a
// bad invocation: 2 for a wrong count, 1 for a bad type or a missing file.
func parseArgs(args []string) (encFile string, sort scraper.Sort, code int, err error) {
	if len(args) != 2 {
		return "", "", 2, errUsage
	}
	encFile = args[0]

	sort, err = scraper.ParseSort(args[1])
	if err != nil {
		return "", "", 1, errBadType
	}

	if info, err := os.Stat(encFile); err != nil || info.IsDir() {
		return "", "", 1, errNotFound
	}
	return encFile, sort, 0, nil
}

func main() {
	headless := flag.BoolP("headless", "H", false, "run the browser without a window")
	logDir := flag.String("log-dir", "logs", "directory for rotated log files (empty disables)")
	logLevel := flag.String("log-level", "info", "log level")
	cookiesPath := flag.String("cookies", "", "session cookie jar (overrides cookies_path from the config)")
	flag.Usage = usage
	flag.Parse()

	encFile, sort, code, err := parseArgs(flag.Args())
	if err != nil {
		if errors.Is(err, errUsage) {
			usage()
		} else {
			fmt.Println(err)
		}
		os.Exit(code)
	}

	if err := logging.Setup(*logDir, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	password, err := config.Password("Config password: ")
	if err != nil {
		logger.WithError(err).Fatal("❌ Could not read config password")
	}
	cfg, err := config.Load(encFile, password)
	if err != nil {
		logger.WithError(err).Fatal("❌ Failed to load config")
	}
	logger.Infof("🔧 Config loaded. Group: %s, keywords: %v", cfg.GroupID, cfg.Keywords)
	if *cookiesPath != "" {
		cfg.CookiesPath = *cookiesPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sort, *headless, *logDir); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("👋 Interrupted, shutting down.")
			return
		}
		logger.WithError(err).Error("❌ Notifier stopped")
		logrus.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, sort scraper.Sort, headless bool, logDir string) error {
	senders := notifier.Multi{notifier.NewPushover(cfg.Pushover.APIToken, cfg.Pushover.UserKey)}
	var tg *notifier.Telegram
	if cfg.Telegram != nil {
		var err error
		tg, err = notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return err
		}
		senders = append(senders, notifier.Mirror{Name: "telegram", Sender: tg})
		logger.Info("🤖 Telegram mirror enabled.")
	}

	err := watch(ctx, cfg, sort, headless, logDir, senders)
	if err != nil && tg != nil && !errors.Is(err, context.Canceled) {
		if sendErr := tg.SendError(err); sendErr != nil {
			logger.WithError(sendErr).Warn("⚠️ Failed to report error to Telegram")
		}
	}
	return err
}

func watch(ctx context.Context, cfg *config.Config, sort scraper.Sort, headless bool, logDir string, sender notifier.Sender) error {
	pwManager, err := browser.NewPlaywright(headless)
	if err != nil {
		return err
	}
	//close playwright manager when application stops
	defer pwManager.Close()

	var cookies []playwright.OptionalCookie
	if cfg.CookiesPath != "" {
		if cookies, err = browser.LoadCookies(cfg.CookiesPath); err != nil {
			logger.WithError(err).Warnf("⚠️ Could not load cookies from %s. Continuing.", cfg.CookiesPath)
		} else {
			logger.Infof("🍪 Loaded %d cookies", len(cookies))
		}
	}

	browserCtx, err := pwManager.NewContext(cookies)
	if err != nil {
		return err
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return errors.Wrap(err, "failed to create new page")
	}
	logger.Info("✅ Browser initialized successfully!")

	screenshotDir := filepath.Join(logDir, "screenshots")
	if logDir == "" {
		screenshotDir = "screenshots"
	}
	fb := facebook.New(page, facebook.Options{
		CookiesPath: cfg.CookiesPath,
		Screenshots: browser.NewScreenshotDebugger(screenshotDir),
	})
	if err := fb.Login(ctx, cfg.Facebook.Account, cfg.Facebook.Password); err != nil {
		return err
	}

	mon := monitor.New(fb, sender, monitor.Options{
		GroupID:  cfg.GroupID,
		Sort:     sort,
		Keywords: cfg.Keywords,
		Message:  cfg.Message,
		Interval: monitor.DefaultInterval,
	})
	return mon.Run(ctx)
}
