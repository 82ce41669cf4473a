package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/textproto"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"gopkg.in/gomail.v2"

	"resumerefresh/internal/domain"
)

// SMTPConfig holds configuration for the SMTP connection pool.
type SMTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	Secure             bool
	InsecureSkipVerify bool
	PoolSize           int
	ConnectTimeout     time.Duration
	GreetingTimeout    time.Duration
	SocketTimeout      time.Duration
}

const (
	defaultPoolSize        = 5
	defaultConnectTimeout  = 10 * time.Second
	defaultGreetingTimeout = 10 * time.Second
	defaultSocketTimeout   = 30 * time.Second
)

var (
	errPoolClosed    = errors.New("smtp pool closed")
	errDialTimeout   = errors.New("smtp connect/greeting timed out")
	errSocketTimeout = errors.New("smtp socket timed out")
)

type dialFunc func() (gomail.SendCloser, error)

// SMTPPool is a bounded pool of authenticated SMTP connections. Connections
// are dialed lazily, reused after a successful send and discarded after any
// error.
type SMTPPool struct {
	cfg    SMTPConfig
	dial   dialFunc
	slots  chan struct{}
	idle   chan gomail.SendCloser
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// OpenSMTPPool creates the pool. No connection is made until the first send or Verify.
func OpenSMTPPool(cfg SMTPConfig, logger *slog.Logger) *SMTPPool {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.Secure
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	return newSMTPPool(cfg, d.Dial, logger)
}

func newSMTPPool(cfg SMTPConfig, dial dialFunc, logger *slog.Logger) *SMTPPool {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.GreetingTimeout <= 0 {
		cfg.GreetingTimeout = defaultGreetingTimeout
	}
	if cfg.SocketTimeout <= 0 {
		cfg.SocketTimeout = defaultSocketTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPPool{
		cfg:    cfg,
		dial:   dial,
		slots:  make(chan struct{}, cfg.PoolSize),
		idle:   make(chan gomail.SendCloser, cfg.PoolSize),
		logger: logger,
	}
}

// Transmit sends msg over a pooled connection.
func (p *SMTPPool) Transmit(ctx context.Context, msg *domain.OutboundMessage) (string, error) {
	if p.isClosed() {
		return "", &domain.TransmissionError{Reason: domain.ReasonUnknown, Err: errPoolClosed}
	}
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return "", classifySMTPError(ctx.Err())
	}
	defer func() { <-p.slots }()

	conn, err := p.acquire(ctx)
	if err != nil {
		return "", classifySMTPError(err)
	}

	m := buildMessage(msg)
	send := func() error {
		return conn.Send(msg.FromAddress, []string{msg.To}, m)
	}
	finished, err := p.withTimeout(ctx, p.cfg.SocketTimeout, errSocketTimeout, send, func() { p.closeConn(conn) })
	if err != nil {
		// An abandoned send still owns conn; withTimeout closes it once Send returns.
		if finished {
			p.discard(conn)
		}
		return "", classifySMTPError(err)
	}
	p.release(conn)
	return msg.MessageID, nil
}

// Verify dials and authenticates a fresh connection, then closes it.
func (p *SMTPPool) Verify(ctx context.Context) error {
	conn, err := p.dialBounded(ctx)
	if err != nil {
		return classifySMTPError(err)
	}
	if err := conn.Close(); err != nil {
		p.logger.Debug("smtp verify close failed", "err", err)
	}
	p.logger.InfoContext(ctx, "smtp connection verified", "host", p.cfg.Host, "port", p.cfg.Port)
	return nil
}

// Close closes idle connections. In-flight connections are closed when returned.
func (p *SMTPPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	var errs []error
	for {
		select {
		case conn := <-p.idle:
			if err := conn.Close(); err != nil {
				errs = append(errs, err)
			}
		default:
			return errors.Join(errs...)
		}
	}
}

func (p *SMTPPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *SMTPPool) acquire(ctx context.Context) (gomail.SendCloser, error) {
	select {
	case conn := <-p.idle:
		return conn, nil
	default:
		return p.dialBounded(ctx)
	}
}

func (p *SMTPPool) release(conn gomail.SendCloser) {
	if p.isClosed() {
		p.discard(conn)
		return
	}
	select {
	case p.idle <- conn:
	default:
		p.discard(conn)
	}
}

// discard closes conn in the background. conn must not be in use.
func (p *SMTPPool) discard(conn gomail.SendCloser) {
	go p.closeConn(conn)
}

func (p *SMTPPool) closeConn(conn gomail.SendCloser) {
	if err := conn.Close(); err != nil {
		p.logger.Debug("smtp connection close failed", "err", err)
	}
}

type dialResult struct {
	conn gomail.SendCloser
	err  error
}

// dialBounded dials within the connect and greeting budgets. gomail performs
// TCP connect, greeting, STARTTLS and AUTH in one call.
func (p *SMTPPool) dialBounded(ctx context.Context) (gomail.SendCloser, error) {
	done := make(chan dialResult, 1)
	go func() {
		conn, err := p.dial()
		done <- dialResult{conn, err}
	}()

	timer := time.NewTimer(p.cfg.ConnectTimeout + p.cfg.GreetingTimeout)
	defer timer.Stop()
	select {
	case d := <-done:
		return d.conn, d.err
	case <-timer.C:
		go closeLate(done)
		return nil, errDialTimeout
	case <-ctx.Done():
		go closeLate(done)
		return nil, ctx.Err()
	}
}

// closeLate closes a connection that finished dialing after its caller gave up.
func closeLate(done <-chan dialResult) {
	if d := <-done; d.conn != nil {
		_ = d.conn.Close()
	}
}

// withTimeout waits at most limit for fn. finished is false when the caller
// gave up first; late then runs after fn returns, never concurrently with it.
func (p *SMTPPool) withTimeout(ctx context.Context, limit time.Duration, timeoutErr error, fn func() error, late func()) (finished bool, err error) {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	timer := time.NewTimer(limit)
	defer timer.Stop()
	select {
	case err := <-done:
		return true, err
	case <-timer.C:
		go runLate(done, late)
		return false, timeoutErr
	case <-ctx.Done():
		go runLate(done, late)
		return false, ctx.Err()
	}
}

func runLate(done <-chan error, late func()) {
	<-done
	if late != nil {
		late()
	}
}

var smtpCodeRe = regexp.MustCompile(`^\s*([2-5]\d\d)[\s-]`)

// classifySMTPError maps a transport error onto a TransmissionError.
func classifySMTPError(err error) error {
	if err == nil {
		return nil
	}
	var te *domain.TransmissionError
	if errors.As(err, &te) {
		return te
	}

	timeout := func() error {
		return &domain.TransmissionError{Reason: domain.ReasonTimeout, Transient: true, Err: err}
	}
	if errors.Is(err, errDialTimeout) || errors.Is(err, errSocketTimeout) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return timeout()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timeout()
	}

	code := 0
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		code = tpErr.Code
	} else if m := smtpCodeRe.FindStringSubmatch(err.Error()); m != nil {
		code, _ = strconv.Atoi(m[1])
	}
	switch {
	case code == 530 || code == 534 || code == 535:
		return &domain.TransmissionError{Reason: domain.ReasonAuth, Err: err}
	case code >= 400 && code < 500:
		return &domain.TransmissionError{Reason: domain.ReasonUnknown, Transient: true, Err: err}
	case code >= 500:
		return &domain.TransmissionError{Reason: domain.ReasonRejected, Err: err}
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &domain.TransmissionError{Reason: domain.ReasonUnknown, Transient: true, Err: err}
	}
	if strings.Contains(strings.ToLower(err.Error()), "auth") {
		return &domain.TransmissionError{Reason: domain.ReasonAuth, Err: err}
	}
	return &domain.TransmissionError{Reason: domain.ReasonUnknown, Err: fmt.Errorf("smtp: %w", err)}
}
