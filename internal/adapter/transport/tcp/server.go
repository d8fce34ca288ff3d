package tcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/dayanaadylkhanova/powgate/internal/entity"
)

const (
	replyBadJSON   = "invalid solution json"
	replyPoWFailed = "pow verification failed"
	replyReplayed  = "solution already used"
)

type Server struct {
	log       *slog.Logger
	addr      string
	ttl       time.Duration
	pow       PoW
	quotes    Quote
	reg       metrics.Registry
	m         serverMetrics
	ln        net.Listener
	wg        sync.WaitGroup
	connsMu   sync.Mutex
	active    map[net.Conn]struct{}
	shutdownT time.Duration
}

func NewServer(log *slog.Logger, addr string, ttl time.Duration, shutdown time.Duration, pow PoW, quotes Quote) *Server {
	reg := metrics.NewRegistry()
	return &Server{
		log:       log,
		addr:      addr,
		ttl:       ttl,
		shutdownT: shutdown,
		pow:       pow,
		quotes:    quotes,
		reg:       reg,
		m:         newServerMetrics(reg),
		active:    make(map[net.Conn]struct{}),
	}
}

// Metrics exposes the server counters.
func (s *Server) Metrics() metrics.Registry { return s.reg }

func (s *Server) Run(ctx context.Context, difficulty uint16) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.log.Info("server started", "addr", s.addr, "difficulty", difficulty, "ttl", s.ttl.String())

	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConns()

	errCh := make(chan error, 1)
	go func() { errCh <- s.acceptLoop(connCtx, difficulty) }()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown: closing listener")
		_ = s.ln.Close()

		s.connsMu.Lock()
		for c := range s.active {
			_ = c.SetDeadline(time.Now().Add(200 * time.Millisecond))
			if tc, ok := c.(*net.TCPConn); ok {
				_ = tc.CloseWrite()
			}
		}
		s.connsMu.Unlock()

		done := make(chan struct{})
		go func() { s.wg.Wait(); close(done) }()
		select {
		case <-done:
			s.log.Info("shutdown: all connections drained")
		case <-time.After(s.shutdownT):
			s.log.Warn("shutdown: force-close remaining connections")
			cancelConns()
			s.connsMu.Lock()
			for c := range s.active {
				_ = c.Close()
			}
			s.connsMu.Unlock()
		}
		s.log.Info("server stopped", s.m.logArgs()...)
		return nil

	case err := <-errCh:
		return err
	}
}

func (s *Server) acceptLoop(ctx context.Context, difficulty uint16) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn("temporary accept error", "err", err)
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.track(conn, true)
		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			defer s.track(c, false)
			s.handle(ctx, c, difficulty)
		}(conn)
	}
}

func (s *Server) track(c net.Conn, add bool) {
	s.connsMu.Lock()
	if add {
		s.active[c] = struct{}{}
	} else {
		delete(s.active, c)
	}
	s.connsMu.Unlock()
}

func (s *Server) handle(ctx context.Context, conn net.Conn, difficulty uint16) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(2 * s.ttl))

	ch, err := s.pow.NewChallenge(difficulty, s.ttl)
	if err != nil {
		s.log.Error("challenge create failed", "err", err)
		return
	}
	bw := bufio.NewWriter(conn)
	br := bufio.NewReader(conn)

	payload, err := json.Marshal(ch)
	if err != nil {
		s.log.Error("challenge marshal failed", "err", err)
		return
	}
	_, _ = bw.Write(append(payload, '\n'))
	_ = bw.Flush()
	s.m.issued.Inc(1)
	s.log.Debug("challenge issued",
		"remote", conn.RemoteAddr().String(),
		"timestamp", ch.Timestamp,
		"expires", ch.Expires,
		"difficulty", ch.Difficulty,
	)

	line, err := br.ReadString('\n')
	if err != nil {
		s.log.Debug("read solution failed", "err", err)
		return
	}
	sol, err := parseSolution(line)
	if err != nil {
		s.m.malformed.Inc(1)
		s.reply(bw, replyBadJSON)
		s.log.Debug("bad solution", "err", err)
		return
	}

	// A solution may redeem a challenge signed in an earlier session.
	target := ch
	if sol.Challenge != nil {
		target = *sol.Challenge
	}

	if err := s.pow.Verify(ctx, target, sol); err != nil {
		if errors.Is(err, entity.ErrSolutionSpent) {
			s.m.replayed.Inc(1)
			s.reply(bw, replyReplayed)
			s.log.Warn("replayed solution", "remote", conn.RemoteAddr().String(), "nonce", sol.Nonce)
			return
		}
		s.m.rejected.Inc(1)
		s.reply(bw, replyPoWFailed)
		s.log.Debug("pow failed", "reason", err.Error())
		return
	}

	s.m.accepted.Inc(1)
	s.reply(bw, s.quotes.Random())
	s.log.Info("success", "remote", conn.RemoteAddr().String(), "nonce", sol.Nonce)
}

func (s *Server) reply(bw *bufio.Writer, msg string) {
	_, _ = bw.WriteString(msg + "\n")
	_ = bw.Flush()
}

// parseSolution requires the nonce field to be present.
func parseSolution(line string) (entity.Solution, error) {
	var raw struct {
		Nonce     *uint64           `json:"nonce"`
		Challenge *entity.Challenge `json:"challenge"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &raw); err != nil {
		return entity.Solution{}, err
	}
	if raw.Nonce == nil {
		return entity.Solution{}, errors.New("missing nonce")
	}
	return entity.Solution{Nonce: *raw.Nonce, Challenge: raw.Challenge}, nil
}
