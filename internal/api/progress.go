package api

import "io"

// progressReader reports the percentage of a known-length body that has
// been consumed. Percentages are monotonically non-decreasing for a
// single reader; completion always reports 100 exactly once.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	fn    func(pct int)
}

func newProgressReader(r io.Reader, total int64, fn func(pct int)) *progressReader {
	return &progressReader{r: r, total: total, last: -1, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.fn != nil && p.total > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}
