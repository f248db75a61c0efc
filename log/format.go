// Copyright 2014 The go-ethereum Authors
// Copyright 2024 The gqtum Authors
// This file is part of the gqtum library.
//
// The gqtum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package log

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const timeFormat = "2006-01-02T15:04:05-0700"

// Format turns a Record into a byte slice ready to write out.
type Format interface {
	Format(r *Record) []byte
}

type formatFunc func(*Record) []byte

func (f formatFunc) Format(r *Record) []byte { return f(r) }

var lvlColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgHiBlack),
}

// TerminalFormat returns a Format producing human-readable, optionally
// ANSI-colored lines of the form:
//
//	INFO [01-02|15:04:05] message key=val key2=val2
//
// Coloring is only applied when useColor is true AND standard output
// (fd 1) is a terminal, as go-isatty reports; the writer the lines are
// sent to is not checked.
func TerminalFormat(useColor bool) Format {
	return formatFunc(func(r *Record) []byte {
		var b bytes.Buffer
		lvl := r.Lvl.AlignedString()
		if useColor && isatty.IsTerminal(uintptr(1)) {
			if c, ok := lvlColor[r.Lvl]; ok {
				lvl = c.Sprint(lvl)
			}
		}
		fmt.Fprintf(&b, "%s[%s] %s", lvl, r.Time.Format("01-02|15:04:05"), r.Msg)
		for i := 0; i < len(r.Ctx); i += 2 {
			b.WriteByte(' ')
			writeKeyVal(&b, r.Ctx[i], r.Ctx[i+1])
		}
		b.WriteByte('\n')
		return b.Bytes()
	})
}

// LogfmtFormat returns a Format producing logfmt-style lines
// (key=val key2=val2 ...), suitable for file/pipe output where
// colorable/isatty auto-detection is unwanted.
func LogfmtFormat() Format {
	return formatFunc(func(r *Record) []byte {
		var b bytes.Buffer
		writeKeyVal(&b, "t", r.Time.Format(timeFormat))
		b.WriteByte(' ')
		writeKeyVal(&b, "lvl", r.Lvl.String())
		b.WriteByte(' ')
		writeKeyVal(&b, "msg", r.Msg)
		for i := 0; i < len(r.Ctx); i += 2 {
			b.WriteByte(' ')
			writeKeyVal(&b, r.Ctx[i], r.Ctx[i+1])
		}
		b.WriteByte('\n')
		return b.Bytes()
	})
}

func writeKeyVal(b *bytes.Buffer, k, v interface{}) {
	ks := fmt.Sprintf("%v", k)
	vs := formatValue(v)
	b.WriteString(ks)
	b.WriteByte('=')
	b.WriteString(vs)
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case error:
		return quoteIfNeeded(x.Error())
	case fmt.Stringer:
		return quoteIfNeeded(x.String())
	case string:
		return quoteIfNeeded(x)
	default:
		return quoteIfNeeded(fmt.Sprintf("%+v", v))
	}
}

func quoteIfNeeded(s string) string {
	if !strings.ContainsAny(s, " =\"\t\n") {
		return s
	}
	return strconv.Quote(s)
}

// StderrWriter returns os.Stderr wrapped with colorable, which on Windows
// translates ANSI escapes into console API calls and elsewhere is a
// transparent passthrough.
func StderrWriter() io.Writer { return colorable.NewColorableStderr() }
