package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PaymentMethod describes one accepted payment method. NeedsChange is only
// true for cash: a tendered amount is required and change is computed.
type PaymentMethod struct {
	Code        string `mapstructure:"code"`
	Name        string `mapstructure:"name"`
	NeedsChange bool   `mapstructure:"needsChange"`
	Enabled     bool   `mapstructure:"enabled"`
}

type PaymentConfig struct {
	Methods []PaymentMethod `mapstructure:"methods"`
}

func DefaultPaymentConfig() PaymentConfig {
	return PaymentConfig{
		Methods: []PaymentMethod{
			{Code: "CA", Name: "Dinheiro", NeedsChange: true, Enabled: true},
			{Code: "CR", Name: "Crédito", Enabled: true},
			{Code: "DE", Name: "Débito", Enabled: true},
			{Code: "PX", Name: "Pix", Enabled: true},
			{Code: "OT", Name: "Outro", Enabled: true},
		},
	}
}

// PaymentConfigHolder exposes the current payment-method catalog and hot
// reloads it when the config file changes on disk.
type PaymentConfigHolder struct {
	current atomic.Value // holds PaymentConfig
}

func NewPaymentConfigHolder() (*PaymentConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("payment")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/comanda/config")
	v.AddConfigPath("/etc/comanda")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COMANDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPaymentConfig()
		v.SetDefault("payment.methods", defaults.Methods)
	}

	var cfg PaymentConfig
	if err := v.UnmarshalKey("payment", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Methods) == 0 {
		cfg = DefaultPaymentConfig()
	}
	if err := validatePaymentConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PaymentConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PaymentConfig
		if err := v.UnmarshalKey("payment", &updated); err != nil {
			log.Printf("[payment-config] reload failed: %v", err)
			return
		}
		if err := validatePaymentConfig(updated); err != nil {
			log.Printf("[payment-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

func (h *PaymentConfigHolder) Current() PaymentConfig {
	return h.current.Load().(PaymentConfig)
}

// Method resolves an enabled payment method by code.
func (h *PaymentConfigHolder) Method(code string) (PaymentMethod, bool) {
	for _, m := range h.Current().Methods {
		if m.Code == code && m.Enabled {
			return m, true
		}
	}
	return PaymentMethod{}, false
}

func validatePaymentConfig(cfg PaymentConfig) error {
	if len(cfg.Methods) == 0 {
		return errors.New("payment config needs at least one method")
	}
	seen := make(map[string]struct{}, len(cfg.Methods))
	for _, m := range cfg.Methods {
		code := strings.TrimSpace(m.Code)
		if code == "" {
			return errors.New("payment method code is empty")
		}
		if _, ok := seen[code]; ok {
			return errors.New("duplicate payment method code " + code)
		}
		seen[code] = struct{}{}
	}
	return nil
}
