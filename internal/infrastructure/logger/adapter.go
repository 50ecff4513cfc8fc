package logger

import (
	"fmt"
	"sort"

	"smart-apply/internal/application/port/output"

	"go.uber.org/zap"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type LoggerAdapter struct {
	z *zap.Logger
}

func NewLoggerAdapter(opts Options) (*LoggerAdapter, error) {
	z, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &LoggerAdapter{z: z}, nil
}

func Wrap(z *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{z: z}
}

func NewNop() *LoggerAdapter {
	return &LoggerAdapter{z: zap.NewNop()}
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.z.Debug(msg, fields(args)...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.z.Info(msg, fields(args)...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.z.Warn(msg, fields(args)...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.z.Error(msg, fields(args)...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{z: l.z.With(zap.Any(key, value))}
}

func (l *LoggerAdapter) WithFields(fieldMap map[string]any) output.LoggerPort {
	keys := make([]string, 0, len(fieldMap))
	for k := range fieldMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zf := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zf = append(zf, zap.Any(k, fieldMap[k]))
	}
	return &LoggerAdapter{z: l.z.With(zf...)}
}

func (l *LoggerAdapter) Sync() error {
	return l.z.Sync()
}

// Close сбрасывает буферы; ошибка sync для stdout игнорируется.
func (l *LoggerAdapter) Close() error {
	_ = l.z.Sync()
	return nil
}

func fields(args []any) []zap.Field {
	out := make([]zap.Field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			out = append(out, zap.Any("arg", args[i]))
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		out = append(out, zap.Any(key, args[i+1]))
	}
	return out
}
