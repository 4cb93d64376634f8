// internal/report/report.go

// Package report renders a session's register history as a text table:
// one line per register that changed, `<addr>,<value>[,<value>...]`.
//
// Compact mode is lossy: a value is emitted only on the tick it first
// appears, so repeats are dropped and the artifact no longer records on
// which tick each change happened. In memory, Row keeps the ticks so
// Expand can forward-fill the full sequence back.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tamzrod/ec-probe/internal/classify"
	"github.com/tamzrod/ec-probe/internal/snapshot"
)

// ErrSinkUnavailable means the report could not be opened or written.
// Terminal output already produced stays valid.
var ErrSinkUnavailable = errors.New("report: sink unavailable")

// Format selects value rendering.
type Format struct {
	Decimal bool
	Compact bool
}

// Row is one register's history across the session.
type Row struct {
	Addr   int
	Ticks  []int
	Values []byte
}

// Rows builds one Row per register that changed anywhere in window, in
// address order.
func Rows(window []snapshot.Snapshot, compact bool) []Row {
	var rows []Row
	for _, addr := range classify.ChangedAddrs(window) {
		r := Row{Addr: addr}
		for i := range window {
			v := window[i][addr]
			if compact && i > 0 && v == window[i-1][addr] {
				continue
			}
			r.Ticks = append(r.Ticks, i)
			r.Values = append(r.Values, v)
		}
		rows = append(rows, r)
	}
	return rows
}

// Expand forward-fills a row to n ticks. For a non-compact row it is the
// identity.
func (r Row) Expand(n int) []byte {
	out := make([]byte, n)
	j := 0
	var cur byte
	for i := 0; i < n; i++ {
		for j < len(r.Ticks) && r.Ticks[j] <= i {
			cur = r.Values[j]
			j++
		}
		out[i] = cur
	}
	return out
}

// Write renders rows to w.
func Write(w io.Writer, rows []Row, f Format) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		fmt.Fprintf(bw, "%02X", r.Addr)
		for _, v := range r.Values {
			if f.Decimal {
				fmt.Fprintf(bw, ",%d", v)
			} else {
				fmt.Fprintf(bw, ",%02X", v)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile renders window to path, truncating any existing file.
func WriteFile(path string, window []snapshot.Snapshot, f Format) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}

	if err := Write(fh, Rows(window, f.Compact), f); err != nil {
		_ = fh.Close()
		return fmt.Errorf("%w: %s: %w", ErrSinkUnavailable, path, err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSinkUnavailable, path, err)
	}
	return nil
}
