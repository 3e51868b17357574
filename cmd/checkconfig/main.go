package main

import (
	"fmt"
	"os"

	"fbgroup-notifier/internal/config"
	"fbgroup-notifier/internal/logging"
)

var logger = logging.GetModuleLogger("checkconfig")

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: checkconfig enc_file")
		os.Exit(2)
	}

	fmt.Println("🔧 Testing config loading...")
	password, err := config.Password("Config password: ")
	if err != nil {
		logger.Fatalf("❌ %v", err)
	}
	cfg, err := config.Load(os.Args[1], password)
	if err != nil {
		logger.Fatalf("❌ %v", err)
	}

	fmt.Printf("✅ Config loaded successfully!\n")
	fmt.Printf("   Facebook account: %s\n", cfg.Facebook.Account)
	fmt.Printf("   Pushover token: %s\n", mask(cfg.Pushover.APIToken))
	fmt.Printf("   Group ID: %s\n", cfg.GroupID)
	fmt.Printf("   Keywords: %v\n", cfg.Keywords)
	fmt.Printf("   Message: %q\n", cfg.Message)
	if cfg.Telegram != nil {
		fmt.Printf("   Telegram chat: %d\n", cfg.Telegram.ChatID)
	}
	if cfg.CookiesPath != "" {
		fmt.Printf("   Cookies path: %s\n", cfg.CookiesPath)
	}
}
