// Decrypt the config file
// Parse YAML config
// Validate config

package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"fbgroup-notifier/internal/notifier"
	"fbgroup-notifier/internal/vault"
)

type FacebookCred struct {
	Account  string `yaml:"account"`
	Password string `yaml:"password"`
}

type PushoverCred struct {
	APIToken string `yaml:"api_token"`
	UserKey  string `yaml:"user_key"`
}

type TelegramCred struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type Config struct {
	Facebook FacebookCred  `yaml:"fb_cred"`
	Pushover PushoverCred  `yaml:"pushover"`
	Telegram *TelegramCred `yaml:"telegram,omitempty"`

	GroupID  string   `yaml:"group_id"`
	Keywords Keywords `yaml:"keywords"`
	// Message supports {url}, {content} and {listing_text}
	Message string `yaml:"message"`

	CookiesPath string `yaml:"cookies_path,omitempty"`
}

// Keywords accepts a list, a single string, or an empty value.
type Keywords []string

func (k *Keywords) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || value.Value == "" {
			*k = nil
			return nil
		}
		*k = Keywords{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*k = list
		return nil
	}
	return errors.Errorf("line %d: keywords must be a list or a string", value.Line)
}

// Load decrypts and parses the config file at path.
func Load(path, password string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	plain, err := vault.Decrypt(data, password)
	if err != nil {
		return nil, errors.Wrap(err, "decrypt config")
	}

	return Parse(plain)
}

// Parse reads plaintext YAML and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "YAML failed to load, may be due to incorrect password or invalid YAML format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"fb_cred.account", c.Facebook.Account},
		{"fb_cred.password", c.Facebook.Password},
		{"pushover.api_token", c.Pushover.APIToken},
		{"pushover.user_key", c.Pushover.UserKey},
		{"group_id", c.GroupID},
		{"message", c.Message},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Errorf("%s is required", r.key)
		}
	}

	if c.Telegram != nil {
		if c.Telegram.BotToken == "" {
			return errors.New("telegram.bot_token is required when telegram is set")
		}
		if c.Telegram.ChatID == 0 {
			return errors.New("telegram.chat_id is required when telegram is set")
		}
	}

	if err := notifier.ValidateTemplate(c.Message); err != nil {
		return errors.Wrap(err, "invalid message template")
	}
	return nil
}
