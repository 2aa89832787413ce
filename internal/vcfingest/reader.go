package vcfingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/carbocation/pfx"

	sav "github.com/pinotree/savvy"
)

// lineSource abstracts over the two input transports this package
// supports: plain text and BGZF-compressed VCF, grounded on
// nvnieuwk/svync's readPlain/readBgzip split.
type lineSource interface {
	// nextLine returns the next line with its trailing newline
	// stripped, or io.EOF once exhausted.
	nextLine() (string, error)
}

type plainLineSource struct {
	scanner *bufio.Scanner
}

func newPlainLineSource(r io.Reader) *plainLineSource {
	scanner := bufio.NewScanner(r)
	const maxCapacity = 8 * 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxCapacity)
	return &plainLineSource{scanner: scanner}
}

func (s *plainLineSource) nextLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", pfx.Err(err)
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

type bgzipLineSource struct {
	r *bgzf.Reader
}

func newBgzipLineSource(r io.Reader) (*bgzipLineSource, error) {
	bgReader, err := bgzf.NewReader(r, 1)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return &bgzipLineSource{r: bgReader}, nil
}

func (s *bgzipLineSource) nextLine() (string, error) {
	var data []byte
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if len(data) > 0 && err == io.EOF {
				return string(data), nil
			}
			return "", err
		}
		if b == '\n' {
			break
		}
		data = append(data, b)
	}
	return strings.TrimRight(string(data), "\r"), nil
}

// Reader sequentially scans a VCF source, implementing the pull
// interface sav.Writer's caller drives: Samples, Headers,
// SubsetSamples, Read, Good (SPEC_FULL.md §6.3).
type Reader struct {
	close      func() error
	src        lineSource
	dataFormat DataFormat
	regions    []sav.Region

	samples        []string
	activeSampleAt []int // indices into samples currently selected
	headers        [][2]string

	ploidy    int
	ploidySet bool

	good bool
}

// Open opens path (plain text, or BGZF-compressed if it ends in .gz)
// and reads the VCF header block, leaving the Reader positioned at the
// first data line.
func Open(path string, dataFormat DataFormat, regions []sav.Region) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var src lineSource
	if strings.HasSuffix(path, ".gz") {
		src, err = newBgzipLineSource(f)
		if err != nil {
			f.Close()
			return nil, pfx.Err(err)
		}
	} else {
		src = newPlainLineSource(f)
	}

	r := &Reader{
		close:      f.Close,
		src:        src,
		dataFormat: dataFormat,
		regions:    regions,
		good:       true,
	}

	if err := r.readHeaderBlock(); err != nil {
		f.Close()
		return nil, pfx.Err(err)
	}

	return r, nil
}

func (r *Reader) readHeaderBlock() error {
	for {
		line, err := r.src.nextLine()
		if err != nil {
			return pfx.Err(err)
		}

		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				r.samples = append([]string(nil), fields[9:]...)
			}
			r.activeSampleAt = make([]int, len(r.samples))
			for i := range r.activeSampleAt {
				r.activeSampleAt[i] = i
			}
			return nil
		}

		if strings.HasPrefix(line, "##") {
			key, value, _ := strings.Cut(strings.TrimPrefix(line, "##"), "=")
			r.headers = append(r.headers, [2]string{key, value})
			continue
		}

		return pfx.Err(fmt.Errorf("vcfingest: data line encountered before #CHROM header"))
	}
}

// Samples returns the cohort sample identifiers currently selected, in
// file-header order.
func (r *Reader) Samples() []string {
	out := make([]string, len(r.activeSampleAt))
	for i, idx := range r.activeSampleAt {
		out[i] = r.samples[idx]
	}
	return out
}

// Headers returns the raw "##key=value" header lines as (key, value)
// pairs, in file order.
func (r *Reader) Headers() [][2]string {
	return r.headers
}

// SubsetSamples restricts which sample columns Read will emit into the
// dense slice to those named in ids, and returns the retained IDs in
// original header order.
func (r *Reader) SubsetSamples(ids map[string]struct{}) []string {
	var active []int
	var retained []string
	for i, id := range r.samples {
		if _, ok := ids[id]; ok {
			active = append(active, i)
			retained = append(retained, id)
		}
	}
	r.activeSampleAt = active
	return retained
}

// Ploidy returns the per-sample haplotype count observed in the first
// successfully parsed data line. It is zero until the first Read call.
func (r *Reader) Ploidy() int { return r.ploidy }

// Good reports whether the reader is still in a usable state: false
// once a read has failed for a reason other than ordinary end of input.
func (r *Reader) Good() bool { return r.good }

// Read pulls the next data line that falls within regions (if any are
// set), populating site and dense with the fields for the active sample
// set. *dense is replaced by a newly allocated slice holding the active
// samples' per-haplotype statuses in sample order; the slice previously
// held in *dense is not written to.
func (r *Reader) Read(site *SiteInfo, dense *[]sav.AlleleStatus) bool {
	for {
		line, err := r.src.nextLine()
		if err != nil {
			if err != io.EOF {
				r.good = false
			}
			return false
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 9 {
			r.good = false
			return false
		}

		pos, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			r.good = false
			return false
		}

		if !r.regionsMatch(fields[0], pos) {
			continue
		}

		formatKeys := strings.Split(fields[8], ":")
		perSample := fields[9:]

		out := make([]sav.AlleleStatus, 0, len(r.activeSampleAt)*maxInt(r.ploidy, 1))
		for _, idx := range r.activeSampleAt {
			if idx >= len(perSample) {
				out = append(out, repeatMissing(maxInt(r.ploidy, 1))...)
				continue
			}
			statuses := sampleStatuses(r.dataFormat, formatKeys, perSample[idx])
			if !r.ploidySet && len(statuses) > 0 {
				r.ploidy = len(statuses)
				r.ploidySet = true
			}
			out = append(out, statuses...)
		}

		site.Chromosome = fields[0]
		site.Position = pos
		site.ID = fields[2]
		site.Ref = []byte(fields[3])
		site.Alt = []byte(fields[4])
		*dense = out

		return true
	}
}

func (r *Reader) regionsMatch(chrom string, pos uint64) bool {
	if len(r.regions) == 0 {
		return true
	}
	for _, region := range r.regions {
		if region.Contains(chrom, pos) {
			return true
		}
	}
	return false
}

func repeatMissing(n int) []sav.AlleleStatus {
	out := make([]sav.AlleleStatus, n)
	for i := range out {
		out[i] = sav.IsMissing
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.close()
}
