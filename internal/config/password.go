package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

const PasswordEnv = "FBNOTIFY_PASSWORD"

var ErrNoPassword = errors.New("no password: set " + PasswordEnv + " or run from a terminal")

// Password returns the vault password from the environment (a .env file is
// honoured) or asks for it on the terminal.
func Password(prompt string) (string, error) {
	_ = godotenv.Load()

	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}
	return promptPassword(prompt)
}

// NewPassword asks twice and fails when the answers differ.
func NewPassword() (string, error) {
	_ = godotenv.Load()

	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}
	first, err := promptPassword("New password: ")
	if err != nil {
		return "", err
	}
	second, err := promptPassword("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoPassword
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}

	pw := strings.TrimSpace(string(raw))
	if pw == "" {
		return "", ErrNoPassword
	}
	return pw, nil
}
