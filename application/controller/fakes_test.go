package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"web_controller/domain/entities"
)

type scriptedConsole struct {
	answers []string
	prompts []string
	out     strings.Builder
}

func newConsole(answers ...string) *scriptedConsole {
	return &scriptedConsole{answers: answers}
}

func (c *scriptedConsole) Prompt(_ context.Context, question string) (string, error) {
	c.prompts = append(c.prompts, question)
	if len(c.answers) == 0 {
		return "", io.EOF
	}
	ans := c.answers[0]
	c.answers = c.answers[1:]
	return strings.TrimSpace(ans), nil
}

func (c *scriptedConsole) Printf(format string, args ...any) {
	fmt.Fprintf(&c.out, format, args...)
}

type reply struct {
	text string
	err  error
}

type scriptedAI struct {
	t       *testing.T
	replies []reply
	prompts []string
}

func (a *scriptedAI) Ask(_ context.Context, prompt string) (string, error) {
	a.prompts = append(a.prompts, prompt)
	if len(a.replies) == 0 {
		a.t.Fatalf("agent asked %d times, no scripted reply left", len(a.prompts))
	}
	r := a.replies[0]
	a.replies = a.replies[1:]
	return r.text, r.err
}

type fakeBrowser struct {
	navigated []string
	clicked   []string
	filled    [][2]string

	actionErr  error
	captureErr error

	screenshots int
	closed      int
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.navigated = append(b.navigated, url)
	return b.actionErr
}

func (b *fakeBrowser) Click(_ context.Context, selector string) error {
	b.clicked = append(b.clicked, selector)
	return b.actionErr
}

func (b *fakeBrowser) Fill(_ context.Context, selector, text string) error {
	b.filled = append(b.filled, [2]string{selector, text})
	return b.actionErr
}

func (b *fakeBrowser) Screenshot(context.Context) ([]byte, error) {
	b.screenshots++
	if b.captureErr != nil {
		return nil, b.captureErr
	}
	return []byte("png"), nil
}

func (b *fakeBrowser) Content(context.Context) (string, error) {
	if b.captureErr != nil {
		return "", b.captureErr
	}
	return "<html></html>", nil
}

func (b *fakeBrowser) Close() error {
	b.closed++
	return nil
}

type memStore struct {
	commands []string
	resets   int
	pages    int
}

func (s *memStore) ResetLog() error {
	s.resets++
	s.commands = nil
	return nil
}

func (s *memStore) AppendCommand(cmd string) error {
	s.commands = append(s.commands, cmd)
	return nil
}

func (s *memStore) SaveScreenshot([]byte) error { return nil }

func (s *memStore) SavePage(string) error {
	s.pages++
	return nil
}

func (s *memStore) Attachments() []entities.Attachment { return nil }

type harness struct {
	ctrl    *Controller
	ai      *scriptedAI
	browser *fakeBrowser
	store   *memStore
	console *scriptedConsole
}

func newHarness(t *testing.T, script []reply, answers ...string) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()

	h := &harness{
		ai:      &scriptedAI{t: t, replies: script},
		browser: &fakeBrowser{},
		store:   &memStore{},
		console: newConsole(answers...),
	}
	h.ctrl = NewController(h.ai, h.browser, h.store, h.console, Delays{}, logger)
	return h
}

func replies(texts ...string) []reply {
	out := make([]reply, 0, len(texts))
	for _, text := range texts {
		out = append(out, reply{text: text})
	}
	return out
}

const exitReply = `{"action":"exit","args":[]}`
