// Package config persists payflowctl's local state: which API it talks to,
// the merchant JWT from the last login, and the API key pair issued for
// that merchant.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIURL      string      `yaml:"api_url"`
	Credentials Credentials `yaml:"credentials"`
}

type Credentials struct {
	AccessToken string `yaml:"access_token"`
	UserEmail   string `yaml:"user_email"`
	KeyID       string `yaml:"key_id"`
	KeySecret   string `yaml:"key_secret"`
}

var global *Config

// Init creates the config directory and a default config file if neither
// already exists, then loads it.
func Init() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		def := &Config{APIURL: "http://localhost:8080"}
		data, err := yaml.Marshal(def)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return err
		}
	}

	return Load(path)
}

// Load reads the config file at path, or the default location if path is empty.
func Load(path string) error {
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	global = &cfg
	return nil
}

func Save() error {
	if global == nil {
		return fmt.Errorf("config not loaded")
	}
	data, err := yaml.Marshal(global)
	if err != nil {
		return err
	}
	return os.WriteFile(Path(), data, 0600)
}

func SaveLogin(accessToken, email string) error {
	ensureLoaded()
	global.Credentials.AccessToken = accessToken
	global.Credentials.UserEmail = email
	return Save()
}

func SaveAPIKey(keyID, keySecret string) error {
	ensureLoaded()
	global.Credentials.KeyID = keyID
	global.Credentials.KeySecret = keySecret
	return Save()
}

func ClearCredentials() error {
	ensureLoaded()
	global.Credentials = Credentials{}
	return Save()
}

func ensureLoaded() {
	if global == nil {
		if err := Load(""); err != nil {
			global = &Config{APIURL: "http://localhost:8080"}
		}
	}
}

func Path() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".payflowctl")
}

func APIURL() string {
	ensureLoaded()
	if global.APIURL == "" {
		return "http://localhost:8080"
	}
	return global.APIURL
}

func SetAPIURL(url string) {
	ensureLoaded()
	global.APIURL = url
}

func AccessToken() string {
	ensureLoaded()
	return global.Credentials.AccessToken
}

func UserEmail() string {
	ensureLoaded()
	return global.Credentials.UserEmail
}

func KeyID() string {
	ensureLoaded()
	return global.Credentials.KeyID
}

func KeySecret() string {
	ensureLoaded()
	return global.Credentials.KeySecret
}
