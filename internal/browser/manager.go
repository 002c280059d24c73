// Package browser drives the live surface for an export run: it launches
// (or attaches to) Chrome via Rod, opens the target page with stealth
// applied, and implements the engine's Surface capability on top of it.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/hazyhaar/arbex/export"
)

// Mode selects how the browser runs.
type Mode int

const (
	// ModeHeadless runs Chrome headless with stealth. Clipboard access is
	// usually denied there (no focused window), so extraction relies on
	// direct viewer reads.
	ModeHeadless Mode = iota
	// ModeHeadful runs Chrome under an Xvfb display. Required when the
	// clipboard fallback matters: the surface only permits clipboard reads
	// from a focused execution context.
	ModeHeadful
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via the rod launcher.
	RemoteURL string `yaml:"remote"`

	// Mode: "headless" (default) or "headful".
	Mode string `yaml:"mode"`

	// XvfbDisplay for headful mode. Default ":99".
	XvfbDisplay string `yaml:"xvfb_display"`

	// NavigateTimeout bounds page navigation. Default 30s.
	NavigateTimeout export.Duration `yaml:"navigate_timeout"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.Mode == "" {
		c.Mode = "headless"
	}
	if c.XvfbDisplay == "" {
		c.XvfbDisplay = ":99"
	}
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = export.Duration(30 * time.Second)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

func (c *Config) mode() Mode {
	if c.Mode == "headful" {
		return ModeHeadful
	}
	return ModeHeadless
}

// Manager owns the Chrome process for the lifetime of one export run.
// Unlike a long-lived observation daemon there is no recycling: exports
// are one-shot, the browser dies with the run.
type Manager struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
	xvfb    *exec.Cmd
}

// NewManager creates a Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance).
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	log := m.cfg.Logger

	if m.cfg.mode() == ModeHeadful {
		if err := m.startXvfb(); err != nil {
			return nil, fmt.Errorf("browser: xvfb: %w", err)
		}
	}

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New()
		if m.cfg.mode() == ModeHeadful {
			l = l.Headless(false).Env("DISPLAY", m.cfg.XvfbDisplay)
		} else {
			l = l.Headless(true)
		}
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "mode", m.cfg.Mode)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("browser: ignore cert errors failed", "error", err)
	}

	m.browser = b
	return b, nil
}

// Browser returns the Rod browser handle, nil before Start.
func (m *Manager) Browser() *rod.Browser { return m.browser }

// Headful reports whether the run has a real (virtual) display, which is
// what makes OS-clipboard fallback reads meaningful.
func (m *Manager) Headful() bool { return m.cfg.mode() == ModeHeadful }

// Close shuts down Chrome and Xvfb.
func (m *Manager) Close() error {
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	m.stopXvfb()
	return nil
}

func (m *Manager) startXvfb() error {
	if m.xvfb != nil {
		return nil
	}
	cmd := exec.Command("Xvfb", m.cfg.XvfbDisplay, "-screen", "0", "1920x1080x24", "-ac")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start xvfb: %w", err)
	}
	m.xvfb = cmd

	// Give Xvfb a moment to initialise.
	time.Sleep(500 * time.Millisecond)

	m.cfg.Logger.Info("browser: xvfb started", "display", m.cfg.XvfbDisplay, "pid", cmd.Process.Pid)
	return nil
}

func (m *Manager) stopXvfb() {
	if m.xvfb == nil {
		return
	}
	if m.xvfb.Process != nil {
		m.xvfb.Process.Kill()
		m.xvfb.Wait()
	}
	m.cfg.Logger.Info("browser: xvfb stopped")
	m.xvfb = nil
}
