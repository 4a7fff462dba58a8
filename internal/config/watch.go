package config

import (
	"context"
	"os"
	"time"
)

// Watch reloads the config file on change and calls onUpdate with the latest
// version. It performs an initial load before entering the watch loop.
func Watch(ctx context.Context, path string, interval time.Duration, onUpdate func(*Config)) error {
	if path == "" {
		path = "configs/config.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					continue
				}
				lastMod = info.ModTime()
				if onUpdate != nil {
					onUpdate(cfg)
				}
			}
		}
	}()

	return nil
}
