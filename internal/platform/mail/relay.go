package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// implicitTLSPort is the submission port where the connection is TLS from
// the first byte instead of being upgraded with STARTTLS.
const implicitTLSPort = 465

// smtpRelay delivers gomail messages over a single SMTP session. TLS is
// mandatory: on a plain connection the relay must offer STARTTLS, otherwise
// the session ends before AUTH. Every read and write is bounded by the
// context, and canceling the context aborts the session.
type smtpRelay struct {
	host        string
	addr        string
	username    string
	password    string
	implicitTLS bool
	tlsConfig   *tls.Config
	dialer      net.Dialer
}

func newSMTPRelay(host string, port int, username, password string) *smtpRelay {
	return &smtpRelay{
		host:        host,
		addr:        net.JoinHostPort(host, strconv.Itoa(port)),
		username:    username,
		password:    password,
		implicitTLS: port == implicitTLSPort,
		tlsConfig:   &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
	}
}

// Deliver implements transport.
func (r *smtpRelay) Deliver(ctx context.Context, m *gomail.Message) error {
	conn, err := r.dialer.DialContext(ctx, "tcp", r.addr)
	if err != nil {
		return sessionError(ctx, "dial", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return fmt.Errorf("set deadline: %w", err)
		}
	}
	// Unblocks any pending read or write once ctx is done.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	if r.implicitTLS {
		conn = tls.Client(conn, r.tlsConfig)
	}

	c, err := smtp.NewClient(conn, r.host)
	if err != nil {
		_ = conn.Close()
		return sessionError(ctx, "greeting", err)
	}
	defer func() { _ = c.Close() }()

	if !r.implicitTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return ErrTLSRequired
		}
		if err := c.StartTLS(r.tlsConfig); err != nil {
			return sessionError(ctx, "starttls", err)
		}
	}

	if err := c.Auth(smtp.PlainAuth("", r.username, r.password, r.host)); err != nil {
		return sessionError(ctx, "auth", err)
	}

	send := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if err := c.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := c.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := msg.WriteTo(w); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	})
	if err := gomail.Send(send, m); err != nil {
		return sessionError(ctx, "send", err)
	}

	return c.Quit()
}

// sessionError prefers the context error, so a timeout reads as one rather
// than as whatever the interrupted I/O reported.
func sessionError(ctx context.Context, step string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", step, ctxErr)
	}
	return fmt.Errorf("%s: %w", step, err)
}
