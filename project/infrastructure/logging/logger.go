package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New はログファイルへ追記する JSON ロガーを作成します
// 戻り値の io.Closer は終了時に閉じてください
func New(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: ログファイルを開けません (path=%s): %w", path, err)
	}

	return NewWithWriter(f, level), f, nil
}

// NewWithWriter は任意の出力先に JSON ロガーを作成します
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
	return slog.New(handler)
}
