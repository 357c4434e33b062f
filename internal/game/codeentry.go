package game

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ncruces/zenity"
)

// entryOutcome is what became of one code entry dialog.
type entryOutcome int

const (
	entryNone entryOutcome = iota
	entryAccepted
	entryRejected
	entryCanceled
	entryFailed
)

type entryResult struct {
	code string
	err  error
}

// codeEntry asks for the unlock code in a native dialog. The dialog blocks,
// so it runs on its own goroutine and posts its result back over a channel
// that the update loop drains with poll.
type codeEntry struct {
	code    string
	prompt  func() (string, error)
	results chan entryResult
	open    bool
	log     *slog.Logger
}

func newCodeEntry(code string, log *slog.Logger) *codeEntry {
	return &codeEntry{
		code:    code,
		prompt:  zenityPrompt,
		results: make(chan entryResult, 1),
		log:     log.With("component", "codeentry"),
	}
}

func zenityPrompt() (string, error) {
	return zenity.Entry("Enter the 4-digit code",
		zenity.Title("Locked"),
		zenity.HideText(),
	)
}

// reveal opens the dialog unless one is already open.
func (c *codeEntry) reveal() {
	if c.open {
		return
	}
	c.open = true
	c.log.Info("code entry revealed")
	go func() {
		code, err := c.prompt()
		c.results <- entryResult{code: code, err: err}
	}()
}

// poll returns the outcome of the open dialog once it has closed.
func (c *codeEntry) poll() entryOutcome {
	select {
	case r := <-c.results:
		c.open = false
		return c.check(r)
	default:
		return entryNone
	}
}

func (c *codeEntry) check(r entryResult) entryOutcome {
	if r.err != nil {
		if errors.Is(r.err, zenity.ErrCanceled) {
			c.log.Debug("code entry canceled")
			return entryCanceled
		}
		c.log.Warn("code entry failed", "err", r.err)
		return entryFailed
	}
	if strings.TrimSpace(r.code) == c.code {
		c.log.Info("editor unlocked")
		return entryAccepted
	}
	c.log.Info("wrong code entered")
	return entryRejected
}
