package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"fbgroup-notifier/internal/config"
	"fbgroup-notifier/internal/logging"
	"fbgroup-notifier/internal/vault"
)

var logger = logging.GetModuleLogger("encrypt")

func main() {
	out := flag.StringP("output", "o", "", "encrypted output file (default <input>.enc)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: encrypt [-o out] config.yaml\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)
	if *out == "" {
		*out = input + ".enc"
	}

	plain, err := os.ReadFile(input)
	if err != nil {
		logger.Fatalf("❌ Could not read %s: %v", input, err)
	}

	//refuse to seal a config the notifier would reject
	cfg, err := config.Parse(plain)
	if err != nil {
		logger.Fatalf("❌ Invalid config: %v", err)
	}

	password, err := config.NewPassword()
	if err != nil {
		logger.Fatalf("❌ %v", err)
	}

	sealed, err := vault.Encrypt(plain, password)
	if err != nil {
		logger.Fatalf("❌ Encryption failed: %v", err)
	}
	if err := os.WriteFile(*out, sealed, 0600); err != nil {
		logger.Fatalf("❌ Could not write %s: %v", *out, err)
	}

	fmt.Printf("🔒 Wrote %s (group %s, %d keywords)\n", *out, cfg.GroupID, len(cfg.Keywords))
}
