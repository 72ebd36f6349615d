package rft

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/omegalab/rft/domain"
	"github.com/omegalab/rft/extensions"
	"github.com/spf13/viper"
)

// WithOptions applies a series of configuration functions to the engine
// instance. Each option function can modify the engine configuration and
// return an error if it fails.
func (engine *Engine) WithOptions(options ...func(*Engine) error) error {
	for _, option := range options {
		err := option(engine)
		if err != nil {
			return fmt.Errorf("applying option on engine : %w", err)
		}
	}
	return nil
}

// WithConfigDir configures the engine to use the specified configuration
// directory. It creates the directory if it doesn't exist and initializes the
// configuration file using Viper.
func WithConfigDir(appConfigDir string) func(*Engine) error {
	return func(engine *Engine) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if os.IsNotExist(err) {
				log.Println("[*] creating config dir")
				err := os.MkdirAll(appConfigDir, 0700)
				if err != nil {
					return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
				}
			} else {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
		}
		// At this point, the directory exists or was created successfully
		engine.ConfigDir = appConfigDir

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(appConfigDir)
		v.SetDefault("coherence_threshold", 0.707)
		v.SetDefault("min_challenge_runes", 10)
		v.SetDefault("max_challenge_runes", 1000)
		v.SetDefault("rendering_cap", 1000)
		v.SetDefault("rejection_log_cap", 500)
		v.SetDefault("fingerprint_cap", 200)
		v.SetDefault("session_timeout_minutes", 60)
		v.SetDefault("interference_window", 10)
		err = v.ReadInConfig()
		if err != nil {
			// need to check if the error is config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				err = v.SafeWriteConfig()
				if err != nil {
					return fmt.Errorf("writing config file : %w", err)
				}
			} else {
				return fmt.Errorf("reading config file : %w", err)
			}
		}
		if err := v.Unmarshal(&engine.Config); err != nil {
			return fmt.Errorf("unmarshalling config to struct : %w", err)
		}

		engine.Config.viper = v
		engine.Config.ConfigDir = appConfigDir
		// Rewrite entire file from struct
		err = v.WriteConfig()
		if err != nil {
			return fmt.Errorf("writing config after unmarshalling : %w", err)
		}
		return nil
	}
}

// WithRepo sets the repository, closing any previously configured one.
func WithRepo(repo Repository) func(*Engine) error {
	return func(engine *Engine) error {
		if engine.Repo != nil {
			if err := engine.Repo.Close(); err != nil {
				return err
			}
			engine.Repo = nil
		}
		engine.Repo = repo
		return nil
	}
}

// WithExtension prepares a single extension runtime and adds it to the
// engine.
func WithExtension(extension *domain.Extension, options ...func(*extensions.Runtime) error) func(*Engine) error {
	return func(engine *Engine) error {
		if _, ok := engine.GetExtension(extension.Name); ok {
			return nil
		}
		runtime := &extensions.Runtime{Data: extension}
		err := runtime.PrepareState(engine, options)
		if err != nil {
			return fmt.Errorf("preparing extension %s : %w", extension.Name, err)
		}
		engine.Extensions = append(engine.Extensions, runtime)
		return nil
	}
}

// WithExtensions prepares a set of extensions, replacing any already loaded.
func WithExtensions(stored []*domain.Extension, options ...func(*extensions.Runtime) error) func(*Engine) error {
	return func(engine *Engine) error {
		engine.Extensions = make([]*extensions.Runtime, 0, len(stored))
		for _, extension := range stored {
			if _, ok := engine.GetExtension(extension.Name); ok {
				continue
			}
			runtime := &extensions.Runtime{Data: extension}
			err := runtime.PrepareState(engine, options)
			if err != nil {
				return fmt.Errorf("preparing extension %s : %w", extension.Name, err)
			}
			engine.Extensions = append(engine.Extensions, runtime)
		}
		return nil
	}
}

// WithResponseHandler takes a handler function that will be executed on each
// rendered frame.
func WithResponseHandler(handler func(rendering *domain.Rendering) error) func(*Engine) error {
	return func(engine *Engine) error {
		if engine.OnResponse != nil {
			return errors.New("engine already has a response handler defined")
		}
		engine.OnResponse = handler
		return nil
	}
}

// WithAlertHandler takes a handler function that will be executed on each
// watchdog, interference, or dramatic-shift alert.
func WithAlertHandler(handler func(alert Alert) error) func(*Engine) error {
	return func(engine *Engine) error {
		if engine.OnAlert != nil {
			return errors.New("engine already has an alert handler defined")
		}
		engine.OnAlert = handler
		return nil
	}
}

// WithLogHandler takes a handler function that will be executed on each
// persisted log entry.
func WithLogHandler(handler func(log *domain.Log) error) func(*Engine) error {
	return func(engine *Engine) error {
		if engine.OnLog != nil {
			return errors.New("engine already has a log handler defined")
		}
		engine.OnLog = handler
		return nil
	}
}
