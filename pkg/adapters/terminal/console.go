// Package terminal is an interactive console transport: lines typed on stdin
// become updates and outbound messages are printed with their buttons.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

// UpdateHandler processes one inbound update.
type UpdateHandler interface {
	Handle(ctx context.Context, u domain.Update) error
}

// Console commands understood besides plain text.
const (
	cmdPick    = "#"        // #2 presses the second button of the last keyboard
	cmdContact = "/contact" // /contact +998901234567 shares a contact
	cmdPhoto   = "/photo"   // /photo <ref> sends a photo
	cmdAs      = "/as"      // /as <id> switches the acting user
	cmdQuit    = "/quit"
)

// Console implements ports.Messenger and reads updates from a reader.
type Console struct {
	in       *bufio.Reader
	mu       sync.Mutex
	out      io.Writer
	render   Renderer
	actor    domain.Actor
	seq      int
	keyboard map[int64][]domain.Button
}

// Option configures a Console.
type Option func(*Console)

// WithRenderer renders message text before printing.
func WithRenderer(r Renderer) Option {
	return func(c *Console) {
		c.render = r
	}
}

// WithActor sets the initial acting user.
func WithActor(a domain.Actor) Option {
	return func(c *Console) {
		c.actor = a
	}
}

// New creates a console.
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:       bufio.NewReader(in),
		out:      out,
		actor:    domain.Actor{ID: 1, Username: "console"},
		keyboard: make(map[int64][]domain.Button),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Actor returns the acting user.
func (c *Console) Actor() domain.Actor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actor
}

func (c *Console) Send(ctx context.Context, chatID int64, msg domain.Message) (domain.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	ref := domain.MessageRef{ChatID: chatID, MessageID: strconv.Itoa(c.seq)}
	c.print(chatID, fmt.Sprintf("[%d #%s]", chatID, ref.MessageID), msg)
	return ref, nil
}

func (c *Console) Edit(ctx context.Context, ref domain.MessageRef, msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.print(ref.ChatID, fmt.Sprintf("[%d #%s edited]", ref.ChatID, ref.MessageID), msg)
	return nil
}

// print must be called with mu held.
func (c *Console) print(chatID int64, header string, msg domain.Message) {
	text := msg.Text
	if c.render != nil {
		if rendered, err := c.render(text); err == nil {
			text = strings.TrimSpace(rendered)
		}
	}
	fmt.Fprintln(c.out, Dim(header))
	if msg.PhotoRef != "" {
		fmt.Fprintln(c.out, Dim("(photo "+msg.PhotoRef+")"))
	}
	fmt.Fprintln(c.out, text)

	var buttons []domain.Button
	for _, row := range msg.Keyboard {
		buttons = append(buttons, row...)
	}
	if len(buttons) == 0 {
		return
	}
	c.keyboard[chatID] = buttons
	for i, b := range buttons {
		fmt.Fprintf(c.out, "  %s%d %s\n", cmdPick, i+1, b.Text)
	}
}

// Parse turns one input line into an update for the acting user.
// ok is false for empty lines and console-only commands.
func (c *Console) Parse(line string) (u domain.Update, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return u, false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	u.Actor = c.actor

	switch {
	case strings.HasPrefix(line, cmdAs+" "):
		id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, cmdAs)), 10, 64)
		if err != nil {
			return u, false, fmt.Errorf("usage: %s <id>", cmdAs)
		}
		c.actor = domain.Actor{ID: id, Username: "user" + strconv.FormatInt(id, 10)}
		return u, false, nil
	case strings.HasPrefix(line, cmdContact+" "):
		u.Contact = &domain.Contact{PhoneNumber: strings.TrimSpace(strings.TrimPrefix(line, cmdContact))}
	case strings.HasPrefix(line, cmdPhoto+" "):
		u.PhotoRef = strings.TrimSpace(strings.TrimPrefix(line, cmdPhoto))
	case strings.HasPrefix(line, cmdPick):
		n, err := strconv.Atoi(strings.TrimPrefix(line, cmdPick))
		buttons := c.keyboard[c.actor.ID]
		if err != nil || n < 1 || n > len(buttons) {
			return u, false, fmt.Errorf("no button %s", line)
		}
		b := buttons[n-1]
		if b.Data != "" {
			u.Callback = b.Data
		} else {
			u.Text = b.Text
		}
	default:
		u.Text = line
	}
	return u, true, nil
}

// Run reads lines until EOF, /quit or ctx is done, and hands each update to h.
func (c *Console) Run(ctx context.Context, h UpdateHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		for {
			line, err := c.in.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errs <- err
				return
			}
		}
	}()

	seq := 0
	for {
		c.prompt()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errs:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case line := <-lines:
			if strings.TrimSpace(line) == cmdQuit {
				return nil
			}
			u, ok, err := c.Parse(line)
			if err != nil {
				c.notice(err.Error())
				continue
			}
			if !ok {
				continue
			}
			seq++
			u.ID = "console-" + strconv.Itoa(seq)
			if err := h.Handle(ctx, u); err != nil {
				c.notice("error: " + err.Error())
			}
		}
	}
}

func (c *Console) prompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%d> ", c.actor.ID)
}

func (c *Console) notice(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, Dim(s))
}

var _ ports.Messenger = (*Console)(nil)
