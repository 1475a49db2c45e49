package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/tetris/internal/config"
	"github.com/tomz197/tetris/internal/draw"
	"github.com/tomz197/tetris/internal/input"
	tlog "github.com/tomz197/tetris/internal/logging"
	"github.com/tomz197/tetris/internal/loop"
	"github.com/tomz197/tetris/internal/piece"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"

	drainTimeout    = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	logger := tlog.New(os.Stderr, "ssh")

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	settingsPath := config.GetEnv(config.EnvSettings, "")

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		logger.Fatal("failed to load settings", "err", err)
	}
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "settings", settingsPath)

	// Cancelled on shutdown; every running game ends with a shutdown message.
	gameCtx, cancelGames := context.WithCancel(context.Background())
	games := &gameServer{
		ctx:      gameCtx,
		settings: settings,
		logger:   logger,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			games.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// TCP_NODELAY keeps key presses snappy
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server", "players", games.active())

	cancelGames()
	if !games.wait(drainTimeout) {
		logger.Warn("some games did not finish in time", "players", games.active())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// gameServer runs one independent game per SSH session.
type gameServer struct {
	ctx      context.Context
	settings config.Settings
	logger   *log.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	players int
	closed  bool
}

func (g *gameServer) active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players
}

// join registers a new game. It fails once the server is closing.
func (g *gameServer) join() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.ctx.Err() != nil {
		return false
	}
	g.players++
	g.wg.Add(1)
	return true
}

func (g *gameServer) leave() {
	g.mu.Lock()
	g.players--
	g.mu.Unlock()
	g.wg.Done()
}

// wait stops new games from joining and blocks until every running game has
// finished or timeout expires.
func (g *gameServer) wait(timeout time.Duration) bool {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	ch := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (g *gameServer) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		logger := g.logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
		logger.Info("new game session", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		if !g.join() {
			fmt.Fprint(sess, "Server is shutting down.\r\n")
			return
		}
		defer g.leave()

		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		resize := make(chan loop.Size, 1)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
				publishSize(resize, loop.Size{Width: win.Width, Height: win.Height})
			}
		}()
		if err := draw.CheckSize(sizeTracker.getSize); err != nil {
			fmt.Fprintf(sess, "%v\r\n", err)
			return
		}

		screen := draw.NewScreen(sess, draw.ScreenOptions{
			ShowHelp: g.settings.ShowHelp,
			ShowNext: g.settings.ShowNext,
			Color:    g.settings.Color,
		})
		screen.Resize(sizeTracker.size())
		keys := input.StartStream(bufio.NewReader(sess))

		ctx, cancel := context.WithCancelCause(g.ctx)
		defer cancel(nil)
		go func() {
			select {
			case <-sess.Context().Done():
				cancel(loop.ErrDisconnected)
			case <-ctx.Done():
			}
		}()

		res, err := loop.Run(ctx, keys, screen, loop.Options{
			Rules:      g.settings.Rules(),
			Randomizer: piece.NewUniform(g.settings.Seed),
			Logger:     logger,
			Resize:     resize,
		})
		if err != nil {
			logger.Error("game error", "err", err)
		}
		logger.Info("session ended", "reason", res.Reason, "score", res.Score.Points, "lines", res.Score.Lines)
		next(sess)
	}
}

// publishSize replaces any size the game has not picked up yet with size.
func publishSize(ch chan loop.Size, size loop.Size) {
	for {
		select {
		case ch <- size:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

func (s *sizeTracker) getSize() (int, int, error) {
	w, h := s.size()
	return w, h, nil
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
