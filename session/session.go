package session

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/telenornms/ravn"
	"github.com/telenornms/ravn/inventory"
	"github.com/ziutek/telnet"
	"golang.org/x/crypto/ssh"
)

// Options tunes session establishment and command execution. Zero values
// fall back to conservative defaults.
type Options struct {
	Port           int // 0 = driver default (22 ssh, 23 telnet)
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
}

// Session is a live, privilege-escalated CLI channel to one device. It
// is owned by exactly one audit run and never shared.
type Session struct {
	Target string

	in      io.Writer
	out     chan []byte
	closers []io.Closer
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// Open dials the device, logs in, disables paging and escalates to
// privileged mode. The returned session is ready for audit commands.
// Failure here is terminal for the device: there is no retry.
func Open(dev inventory.Device, opts Options) (*Session, error) {
	s := &Session{Target: dev.Address, timeout: opts.CommandTimeout}
	if s.timeout == 0 {
		s.timeout = time.Second * 30
	}
	var err error
	switch dev.Driver {
	case inventory.DriverTelnet:
		err = s.dialTelnet(dev, opts)
	default:
		err = s.dialSSH(dev, opts)
	}
	if err != nil {
		return nil, &ravn.ConnectionError{Target: dev.Address, Err: err}
	}
	if err := s.setup(dev); err != nil {
		s.Close()
		return nil, &ravn.ConnectionError{Target: dev.Address, Err: err}
	}
	ravn.Debugf("%s - session established", dev.Address)
	return s, nil
}

func (s *Session) dialSSH(dev inventory.Device, opts Options) error {
	cfg := &ssh.ClientConfig{
		User:            dev.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(dev.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         opts.ConnectTimeout,
	}
	port := opts.Port
	if port == 0 {
		port = 22
	}
	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", dev.Address, port), cfg)
	if err != nil {
		return fmt.Errorf("ssh dial: %w", err)
	}
	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return fmt.Errorf("ssh session: %w", err)
	}
	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty("vt100", 40, 200, modes); err != nil {
		sess.Close()
		client.Close()
		return fmt.Errorf("pty request: %w", err)
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := sess.Shell(); err != nil {
		sess.Close()
		client.Close()
		return fmt.Errorf("shell: %w", err)
	}
	s.in = stdin
	s.closers = []io.Closer{sess, client}
	s.start(stdout)
	return nil
}

func (s *Session) dialTelnet(dev inventory.Device, opts Options) error {
	port := opts.Port
	if port == 0 {
		port = 23
	}
	t := opts.ConnectTimeout
	if t == 0 {
		t = time.Second * 10
	}
	conn, err := telnet.DialTimeout("tcp", fmt.Sprintf("%s:%d", dev.Address, port), t)
	if err != nil {
		return fmt.Errorf("telnet dial: %w", err)
	}
	conn.SetUnixWriteMode(true)
	s.in = conn
	s.closers = []io.Closer{conn}
	s.start(conn)
	// telnet has no authentication of its own, the device CLI asks
	if _, err := s.expect("sername:", "ogin:"); err != nil {
		return fmt.Errorf("login prompt: %w", err)
	}
	if err := s.send(dev.Username); err != nil {
		return err
	}
	if _, err := s.expect("assword:"); err != nil {
		return fmt.Errorf("password prompt: %w", err)
	}
	if err := s.send(dev.Password); err != nil {
		return err
	}
	return nil
}

// start begins draining the device into s.out. The channel is closed
// when the transport dies, which is how waiting readers learn that the
// session is gone.
func (s *Session) start(r io.Reader) {
	s.out = make(chan []byte, 16)
	go func() {
		defer close(s.out)
		for {
			buf := make([]byte, 4096)
			n, err := r.Read(buf)
			if n > 0 {
				s.out <- buf[:n]
			}
			if err != nil {
				return
			}
		}
	}()
}

// setup eats the login banner, disables paging and escalates. Every
// audit command afterwards assumes an enable prompt.
func (s *Session) setup(dev inventory.Device) error {
	if _, err := s.expect(); err != nil {
		return fmt.Errorf("banner: %w", err)
	}
	if err := s.send("terminal length 0"); err != nil {
		return err
	}
	if _, err := s.expect(); err != nil {
		return fmt.Errorf("disable paging: %w", err)
	}
	return s.enable(dev)
}

// enable escalates to privileged mode. Some devices drop straight into
// an enable prompt, in which case the password round never happens.
func (s *Session) enable(dev inventory.Device) error {
	if err := s.send("enable"); err != nil {
		return err
	}
	out, err := s.expect("assword:")
	if err != nil {
		return fmt.Errorf("enable: %w", err)
	}
	if strings.Contains(out, "assword:") {
		secret := dev.Secret
		if secret == "" {
			secret = dev.Password
		}
		if err := s.send(secret); err != nil {
			return err
		}
		out, err = s.expect()
		if err != nil {
			return fmt.Errorf("enable auth: %w", err)
		}
	}
	if !strings.HasSuffix(lastLine(out), "#") {
		return fmt.Errorf("enable refused, still at user level")
	}
	return nil
}

// Exec runs one command and returns its output with the echoed command
// and the trailing prompt stripped. The text is otherwise unparsed;
// interpretation is the caller's responsibility.
func (s *Session) Exec(cmd string) (string, error) {
	s.mu.Lock()
	dead := s.closed
	s.mu.Unlock()
	if dead {
		return "", &ravn.CommandError{Cmd: cmd, Err: fmt.Errorf("session to %s is closed", s.Target)}
	}
	if err := s.send(cmd); err != nil {
		return "", &ravn.CommandError{Cmd: cmd, Err: err}
	}
	out, err := s.expect()
	if err != nil {
		return "", &ravn.CommandError{Cmd: cmd, Err: err}
	}
	return clean(out, cmd), nil
}

// ConfigSet runs commands in configuration mode, wrapped in conf t/end.
func (s *Session) ConfigSet(cmds ...string) (string, error) {
	full := make([]string, 0, len(cmds)+2)
	full = append(full, "conf t")
	full = append(full, cmds...)
	full = append(full, "end")
	var b strings.Builder
	for _, cmd := range full {
		out, err := s.Exec(cmd)
		if err != nil {
			return b.String(), err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// Close tears the session down. Idempotent and quiet, so it is safe on
// every exit path, including the ones where the device already hung up.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.in != nil {
		// best effort, the device closes the channel on exit
		io.WriteString(s.in, "exit\n")
	}
	for _, c := range s.closers {
		c.Close()
	}
	return nil
}

func (s *Session) send(line string) error {
	if _, err := io.WriteString(s.in, line+"\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// expect collects output until one of the markers shows up, or until the
// device prompt returns. It times out hard: an interactive session that
// stops answering is dead to us.
func (s *Session) expect(markers ...string) (string, error) {
	var b strings.Builder
	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()
	for {
		select {
		case chunk, ok := <-s.out:
			if !ok {
				return b.String(), fmt.Errorf("session closed while waiting for output")
			}
			b.Write(chunk)
			got := b.String()
			for _, m := range markers {
				if strings.Contains(got, m) {
					return got, nil
				}
			}
			if atPrompt(got) {
				return got, nil
			}
		case <-deadline.C:
			return b.String(), fmt.Errorf("timed out after %s waiting for device", s.timeout)
		}
	}
}

// atPrompt reports whether the output so far ends in something that
// looks like an IOS exec or enable prompt.
func atPrompt(out string) bool {
	last := lastLine(out)
	if last == "" {
		return false
	}
	return strings.HasSuffix(last, ">") || strings.HasSuffix(last, "#")
}

func lastLine(out string) string {
	lines := strings.Split(strings.ReplaceAll(out, "\r", ""), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// clean strips the echoed command and the trailing prompt line from raw
// command output.
func clean(out, cmd string) string {
	lines := strings.Split(strings.ReplaceAll(out, "\r", ""), "\n")
	if len(lines) > 0 && atPrompt(out) {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 && strings.Contains(lines[0], cmd) {
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
