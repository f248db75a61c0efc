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
	"io"
	"sync"
)

// A Handler receives and processes log records.
type Handler interface {
	Log(r *Record) error
}

// FuncHandler turns a function into a Handler.
type FuncHandler func(r *Record) error

func (h FuncHandler) Log(r *Record) error { return h(r) }

// StreamHandler writes log records to w using the given Format, one write
// per record, guarded by a mutex.
func StreamHandler(w io.Writer, fmtr Format) Handler {
	h := FuncHandler(func(r *Record) error {
		_, err := w.Write(fmtr.Format(r))
		return err
	})
	return syncHandler(h)
}

func syncHandler(h Handler) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		return h.Log(r)
	})
}

// LvlFilterHandler returns a Handler that only passes records at or above
// the given level on to h.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// MultiHandler dispatches each record to every handler in hs.
func MultiHandler(hs ...Handler) Handler {
	return FuncHandler(func(r *Record) error {
		for _, h := range hs {
			_ = h.Log(r)
		}
		return nil
	})
}

// DiscardHandler discards all log records.
func DiscardHandler() Handler {
	return FuncHandler(func(r *Record) error { return nil })
}
