package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
	"github.com/vovakirdan/orbital-defense/internal/session"
	"github.com/vovakirdan/orbital-defense/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.orbital/host_key.
	HostKeyPath string

	// DBPath is the path to the sessions database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Game is the simulation config every session starts from.
	Game       config.Config
	Difficulty string
	TickRate   int

	// MaxSessions caps concurrent games; zero means unlimited.
	MaxSessions int

	// ConnectRate and ConnectBurst limit new connections per remote host.
	ConnectRate  rate.Limit
	ConnectBurst int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:      ":23234",
		DBPath:       "~/.orbital/sessions.db",
		IdleTimeout:  30 * time.Minute,
		Game:         config.Default(),
		TickRate:     60,
		MaxSessions:  64,
		ConnectRate:  rate.Every(2 * time.Second),
		ConnectBurst: 3,
	}
}

// SSHServer wraps a Wish SSH server hosting one game per connection.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    *storage.Store
	logger   *log.Logger
	registry *session.Registry

	limitMu  sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "orbital-ssh",
		})
	}

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open sessions database", "error", err)
		// Continue without storage
	}

	srv := &SSHServer{
		config:   cfg,
		store:    store,
		logger:   logger,
		registry: session.NewRegistry(),
		limiters: make(map[string]*rate.Limiter),
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".orbital", "host_key")
	}

	// Ensure host key directory exists
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
			srv.limitMiddleware,
		),
	)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	opts := Options{
		Config: s.config.Game,
		Runtime: core.RuntimeConfig{
			ScreenW:  pty.Window.Width,
			ScreenH:  pty.Window.Height,
			TickRate: s.config.TickRate,
		},
		Difficulty: s.config.Difficulty,
		Store:      s.store,
		Logger:     s.logger.With("user", sshSession.User()),
		Theme:      DefaultTheme(),
		Registry:   s.registry,
		Embedded:   true,
	}

	return NewAppModel(opts, sshSession.User()), []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"live", s.registry.Count(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"duration", time.Since(start).Truncate(time.Second),
		)
	}
}

// limitMiddleware turns away hosts that reconnect too fast and connections
// beyond MaxSessions.
func (s *SSHServer) limitMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		host := remoteHost(sshSession.RemoteAddr())
		if !s.limiter(host).Allow() {
			s.logger.Warn("connection rate limited", "remote", host)
			wish.Fatalln(sshSession, "Too many connections, try again in a few seconds.")
			return
		}
		if s.config.MaxSessions > 0 && s.registry.Count() >= s.config.MaxSessions {
			s.logger.Warn("server full", "live", s.registry.Count())
			wish.Fatalln(sshSession, "All defense stations are occupied, try again later.")
			return
		}
		next(sshSession)
	}
}

func (s *SSHServer) limiter(host string) *rate.Limiter {
	s.limitMu.Lock()
	defer s.limitMu.Unlock()
	l, ok := s.limiters[host]
	if !ok {
		l = rate.NewLimiter(s.config.ConnectRate, s.config.ConnectBurst)
		s.limiters[host] = l
	}
	return l
}

func remoteHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// ListenAndServe starts the SSH server and blocks until ctx is cancelled or
// the process receives SIGINT/SIGTERM.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			s.logger.Error("server error", "error", err)
			return err
		}
	}

	s.logger.Info("shutting down...", "live", s.registry.Count())
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type appScreen int

const (
	screenMenu appScreen = iota
	screenGame
	screenSessions
)

// AppModel manages the full remote flow: menu -> game or sessions -> menu.
// This is the top-level model used for SSH sessions.
type AppModel struct {
	opts     Options
	user     string
	screen   appScreen
	menu     MenuModel
	game     Model
	sessions SessionsModel
	quitting bool
}

// NewAppModel creates the top-level model for one connection.
func NewAppModel(opts Options, user string) AppModel {
	opts.Embedded = true
	if opts.Theme.Palette == nil {
		opts.Theme = DefaultTheme()
	}
	m := AppModel{opts: opts, user: user}
	m.menu = m.newMenu()
	return m
}

func (m AppModel) newMenu() MenuModel {
	var best float64
	if m.opts.Store != nil {
		if b, err := m.opts.Store.BestScore(); err == nil {
			best = b
		}
	}
	return NewMenuModel(m.opts.Theme, m.user, best, m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
}

// Init initializes the app.
func (m AppModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the app.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.opts.Runtime.ScreenW = wsm.Width
		m.opts.Runtime.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenSessions:
		return m.updateSessions(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, nil
	}
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	switch m.menu.Selected() {
	case ChoiceQuit:
		m.quitting = true
		return m, tea.Quit
	case ChoicePlay:
		opts := m.opts
		opts.Runtime.Seed = time.Now().UnixNano()
		m.game = NewModel(opts)
		m.screen = screenGame
		return m, m.game.Init()
	case ChoiceSessions:
		m.sessions = NewSessionsModel(m.opts.Store, m.opts.Theme, m.opts.Runtime.ScreenW, m.opts.Runtime.ScreenH)
		m.screen = screenSessions
		return m, m.sessions.Init()
	}
	return m, cmd
}

func (m AppModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if game, ok := next.(Model); ok {
		m.game = game
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		m.screen = screenMenu
		m.menu = m.newMenu()
		return m, nil
	}
	return m, cmd
}

func (m AppModel) updateSessions(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, nil
	}
	next, cmd := m.sessions.Update(msg)
	if sessions, ok := next.(SessionsModel); ok {
		m.sessions = sessions
	}

	if m.sessions.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.sessions.IsGoingBack() {
		// The browser quits its own program when standalone; here it
		// returns to the menu instead.
		m.screen = screenMenu
		m.menu = m.newMenu()
		return m, nil
	}
	return m, cmd
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenSessions:
		return m.sessions.View()
	default:
		return m.menu.View()
	}
}
