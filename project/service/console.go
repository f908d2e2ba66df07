package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gookit/color"
)

const consoleTimeFormat = "01-02 15:04:05"

// Console は検知内容を人が読む形でタイムスタンプ付きで出力します
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	names  IdentityLookup
	logger *slog.Logger
	now    func() time.Time
}

// NewConsole は Console を作成します
func NewConsole(out io.Writer, names IdentityLookup, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		out:    out,
		names:  names,
		logger: logger,
		now:    time.Now,
	}
}

// Print はエスケープ解除とメンション展開をしてから "MM-DD HH:MM:SS message" を出力します
func (c *Console) Print(ctx context.Context, message string) {
	c.logger.Debug(message)

	message = Unescape(message)
	if c.names != nil {
		message = ExpandMentions(ctx, c.names, message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", c.now().Format(consoleTimeFormat), message)
}

// Highlight は text を注意喚起用の赤字にします
func Highlight(text string) string {
	return color.Red.Sprint(text)
}
