package terminal_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/storefront/pkg/adapters/terminal"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	updates []domain.Update
	reply   func(u domain.Update)
}

func (r *recorder) Handle(ctx context.Context, u domain.Update) error {
	r.updates = append(r.updates, u)
	if r.reply != nil {
		r.reply(u)
	}
	return nil
}

func TestConsole_Parse(t *testing.T) {
	var out bytes.Buffer
	c := terminal.New(strings.NewReader(""), &out, terminal.WithActor(domain.Actor{ID: 42}))
	ctx := context.Background()

	_, err := c.Send(ctx, 42, domain.Message{
		Text: "Sneakers",
		Keyboard: domain.Keyboard{
			{{Text: "Order", Data: "order:1"}},
			{{Text: "❌ Cancel"}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "#1 Order")
	assert.Contains(t, out.String(), "#2 ❌ Cancel")

	u, ok, err := c.Parse("#1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "order:1", u.Callback)

	u, _, _ = c.Parse("#2")
	assert.Equal(t, "❌ Cancel", u.Text)

	_, _, err = c.Parse("#9")
	assert.Error(t, err)

	u, _, _ = c.Parse("/contact 901234567")
	require.NotNil(t, u.Contact)
	assert.Equal(t, "901234567", u.Contact.PhoneNumber)

	u, _, _ = c.Parse("/photo file-1")
	assert.Equal(t, "file-1", u.PhotoRef)

	_, ok, err = c.Parse("/as 7")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(7), c.Actor().ID)

	u, ok, _ = c.Parse("hello")
	assert.True(t, ok)
	assert.Equal(t, int64(7), u.Actor.ID)
	assert.Equal(t, "hello", u.Text)

	_, ok, _ = c.Parse("   ")
	assert.False(t, ok)
}

func TestConsole_Run(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("/start\nhello\n/quit\nignored\n")
	c := terminal.New(in, &out, terminal.WithActor(domain.Actor{ID: 5}))

	rec := &recorder{}
	rec.reply = func(u domain.Update) {
		_, _ = c.Send(context.Background(), u.Actor.ID, domain.Message{Text: "echo " + u.Text})
	}

	require.NoError(t, c.Run(context.Background(), rec))
	require.Len(t, rec.updates, 2)
	assert.Equal(t, "/start", rec.updates[0].Text)
	assert.Equal(t, "console-2", rec.updates[1].ID)
	assert.Contains(t, out.String(), "echo hello")
}

func TestConsole_EditAndEOF(t *testing.T) {
	var out bytes.Buffer
	c := terminal.New(strings.NewReader("last line without newline"), &out)
	ctx := context.Background()

	ref, err := c.Send(ctx, 1, domain.Message{Text: "0/10", PhotoRef: "p"})
	require.NoError(t, err)
	require.NoError(t, c.Edit(ctx, ref, domain.Message{Text: "10/10"}))
	assert.Contains(t, out.String(), "edited")
	assert.Contains(t, out.String(), "(photo p)")

	rec := &recorder{}
	require.NoError(t, c.Run(ctx, rec))
	require.Len(t, rec.updates, 1)
	assert.Equal(t, "last line without newline", rec.updates[0].Text)
}

func TestPrintBanner(t *testing.T) {
	var out bytes.Buffer
	terminal.PrintBanner(&out)
	assert.NotEmpty(t, strings.TrimSpace(out.String()))
}
