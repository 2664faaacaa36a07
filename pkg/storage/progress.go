package storage

import "io"

// progressReader reports the cumulative byte count to fn as it is read.
type progressReader struct {
	r  io.Reader
	n  int64
	fn ProgressFunc
}

func newProgressReader(r io.Reader, fn ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, fn: fn}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.n += int64(n)
		pr.fn(pr.n)
	}
	return n, err
}

// progressWriter reports the cumulative byte count to fn as it is written.
type progressWriter struct {
	w  io.Writer
	n  int64
	fn ProgressFunc
}

func newProgressWriter(w io.Writer, fn ProgressFunc) io.Writer {
	if fn == nil {
		return w
	}
	return &progressWriter{w: w, fn: fn}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	if n > 0 {
		pw.n += int64(n)
		pw.fn(pw.n)
	}
	return n, err
}
