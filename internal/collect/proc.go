package collect

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

// ProcCPU reports total CPU utilisation from /proc/stat as the busy share of
// the jiffies elapsed since the previous call. The first call only records
// a baseline.
type ProcCPU struct {
	path    string
	prev    cpuTimes
	hasPrev bool
}

type cpuTimes struct {
	busy, total uint64
}

func NewProcCPU(path string) *ProcCPU {
	if path == "" {
		path = "/proc/stat"
	}
	return &ProcCPU{path: path}
}

func (p *ProcCPU) Name() string { return "cpu" }

func (p *ProcCPU) Collect(_ context.Context, now time.Time) ([]Reading, error) {
	cur, err := readCPUTimes(p.path)
	if err != nil {
		return nil, err
	}
	prev, had := p.prev, p.hasPrev
	p.prev, p.hasPrev = cur, true
	if !had || cur.total <= prev.total || cur.busy < prev.busy {
		return nil, nil
	}
	pct := 100 * float64(cur.busy-prev.busy) / float64(cur.total-prev.total)
	return []Reading{{Series: "cpu", Value: pct, Time: UnixMillis(now), Kind: KindPercent}}, nil
}

func readCPUTimes(path string) (cpuTimes, error) {
	f, err := os.Open(path)
	if err != nil {
		return cpuTimes{}, errdef.Wrap(errdef.CodeSource, err, "open %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		var t cpuTimes
		for i, raw := range fields[1:] {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return cpuTimes{}, errdef.Wrap(errdef.CodeSource, err, "parse cpu field %d", i+1)
			}
			t.total += v
			// idle and iowait
			if i != 3 && i != 4 {
				t.busy += v
			}
		}
		return t, nil
	}
	if err := sc.Err(); err != nil {
		return cpuTimes{}, errdef.Wrap(errdef.CodeSource, err, "read %s", path)
	}
	return cpuTimes{}, errdef.New(errdef.CodeSource, "no aggregate cpu line in %s", path)
}

// ProcMem reports used and available memory from /proc/meminfo.
type ProcMem struct {
	path string
}

func NewProcMem(path string) *ProcMem {
	if path == "" {
		path = "/proc/meminfo"
	}
	return &ProcMem{path: path}
}

func (p *ProcMem) Name() string { return "mem" }

func (p *ProcMem) Collect(_ context.Context, now time.Time) ([]Reading, error) {
	info, err := readMeminfo(p.path)
	if err != nil {
		return nil, err
	}
	total, okTotal := info["MemTotal"]
	avail, okAvail := info["MemAvailable"]
	if !okTotal || !okAvail {
		return nil, errdef.New(errdef.CodeSource, "meminfo lacks MemTotal or MemAvailable")
	}
	ts := UnixMillis(now)
	return []Reading{
		{Series: "mem.used", Value: float64(total-min(avail, total)) * 1024, Time: ts, Kind: KindBytes},
		{Series: "mem.available", Value: float64(avail) * 1024, Time: ts, Kind: KindBytes},
	}, nil
}

// readMeminfo returns the kB values keyed by field name.
func readMeminfo(path string) (map[string]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeSource, err, "open %s", path)
	}
	defer f.Close()

	out := make(map[string]uint64)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		if v, err := strconv.ParseUint(fields[0], 10, 64); err == nil {
			out[strings.TrimSpace(name)] = v
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeSource, err, "read %s", path)
	}
	return out, nil
}
