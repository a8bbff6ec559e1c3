// Package logging provides slog handlers for the command-line binaries.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
)

// PrettyHandlerOptions configures a PrettyHandler.
type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
}

// PrettyHandler writes one coloured line per record:
//
//	[15:04:05.000] LEVEL: message {"key":"value"}
type PrettyHandler struct {
	slog.Handler
	l      *log.Logger
	attrs  []scopedAttr
	groups []string
}

// scopedAttr is an attribute bound with WithAttrs under the groups open at the time.
type scopedAttr struct {
	groups []string
	attr   slog.Attr
}

// NewPrettyHandler returns a PrettyHandler writing to w. Level filtering
// follows opts.SlogOpts.Level.
func NewPrettyHandler(w io.Writer, opts PrettyHandlerOptions) *PrettyHandler {
	return &PrettyHandler{
		Handler: slog.NewJSONHandler(w, &opts.SlogOpts),
		l:       log.New(w, "", 0),
	}
}

// Handle formats r and writes it.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.BlueString(level)
	default:
		level = color.MagentaString(level)
	}

	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, sa := range h.attrs {
		putAttr(fields, sa.groups, sa.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		putAttr(fields, h.groups, a)
		return true
	})

	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding log attributes: %w", err)
	}

	timeStr := r.Time.Format("[15:04:05.000]")
	msg := color.CyanString(r.Message)

	h.l.Println(timeStr, level, msg, color.WhiteString(string(b)))
	return nil
}

// WithAttrs returns a handler that prefixes every record with attrs.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := slices.Clip(h.attrs)
	for _, a := range attrs {
		merged = append(merged, scopedAttr{groups: h.groups, attr: a})
	}
	return &PrettyHandler{
		Handler: h.Handler.WithAttrs(attrs),
		l:       h.l,
		attrs:   merged,
		groups:  h.groups,
	}
}

// WithGroup returns a handler that nests later attributes under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &PrettyHandler{
		Handler: h.Handler.WithGroup(name),
		l:       h.l,
		attrs:   h.attrs,
		groups:  append(slices.Clip(h.groups), name),
	}
}

// putAttr stores a under the nested maps named by groups. Group-valued
// attributes become nested objects; empty ones are dropped like slog does.
func putAttr(fields map[string]any, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	for _, g := range groups {
		next, ok := fields[g].(map[string]any)
		if !ok {
			next = make(map[string]any)
			fields[g] = next
		}
		fields = next
	}

	if a.Value.Kind() != slog.KindGroup {
		fields[a.Key] = attrValue(a.Value)
		return
	}

	members := a.Value.Group()
	if len(members) == 0 {
		return
	}
	target := fields
	if a.Key != "" {
		nested, ok := fields[a.Key].(map[string]any)
		if !ok {
			nested = make(map[string]any)
			fields[a.Key] = nested
		}
		target = nested
	}
	for _, m := range members {
		putAttr(target, nil, m)
	}
}

// attrValue unwraps values that json.Marshal would otherwise render badly.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	case slog.KindDuration:
		return v.Duration().String()
	}
	return v.Any()
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
// Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewCLILogger builds the pretty stderr logger used by one-shot commands.
func NewCLILogger(level slog.Level) *slog.Logger {
	return slog.New(NewPrettyHandler(os.Stderr, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: level},
	}))
}
