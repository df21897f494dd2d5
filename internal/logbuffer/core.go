package logbuffer

import (
	"html"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SeverityForLevel maps zap levels onto buffer categories.
func SeverityForLevel(level zapcore.Level) Severity {
	switch {
	case level >= zapcore.ErrorLevel:
		return SeverityError
	case level == zapcore.WarnLevel:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

type bufferCore struct {
	zapcore.LevelEnabler
	enc zapcore.Encoder
	buf *Buffer
}

// NewCore returns a zap core that appends every enabled record to buf. The text is
// the message followed by its fields, HTML-escaped so it can be rendered as-is.
func NewCore(buf *Buffer, enab zapcore.LevelEnabler) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		NameKey:          "logger",
		EncodeName:       zapcore.FullNameEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
		LineEnding:       zapcore.DefaultLineEnding,
	})
	return &bufferCore{LevelEnabler: enab, enc: enc, buf: buf}
}

func (c *bufferCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &bufferCore{LevelEnabler: c.LevelEnabler, enc: c.enc.Clone(), buf: c.buf}
	for _, f := range plainErrors(fields) {
		f.AddTo(clone.enc)
	}
	return clone
}

func (c *bufferCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *bufferCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	encoded, err := c.enc.EncodeEntry(ent, plainErrors(fields))
	if err != nil {
		return err
	}
	text := strings.TrimRight(encoded.String(), "\n")
	encoded.Free()

	c.buf.Append(SeverityForLevel(ent.Level), html.EscapeString(text))
	return nil
}

// plainErrors replaces error fields with their message so the buffer never
// receives errorVerbose stack traces.
func plainErrors(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		err, ok := f.Interface.(error)
		if f.Type != zapcore.ErrorType || !ok {
			continue
		}
		if out == nil {
			out = append([]zapcore.Field(nil), fields...)
		}
		out[i] = zap.String(f.Key, err.Error())
	}
	if out == nil {
		return fields
	}
	return out
}

func (c *bufferCore) Sync() error {
	return nil
}
