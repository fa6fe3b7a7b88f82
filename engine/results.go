package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ResultRecord struct {
	TrialID     uuid.UUID
	Mode        Mode
	Outcome     Outcome
	DelayMS     int64
	CompletedAt time.Time
}

type ResultLog struct {
	Entries []ResultRecord
}

func (l *ResultLog) Log(t Trial, completedAt time.Time) ResultRecord {
	rec := ResultRecord{
		TrialID:     t.ID,
		Mode:        t.Mode,
		Outcome:     t.Outcome,
		DelayMS:     t.ScheduledDelay.Milliseconds(),
		CompletedAt: completedAt,
	}
	l.Entries = append(l.Entries, rec)
	return rec
}

var resultHeader = []string{"trial_id", "mode", "outcome", "reaction_ms", "delay_ms", "completed_at"}

func (l *ResultLog) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := l.Write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func (l *ResultLog) Write(out io.Writer) error {
	w := csv.NewWriter(out)
	w.Write(resultHeader)
	for _, e := range l.Entries {
		reaction := ""
		if e.Outcome.Kind == OutcomeMeasured {
			reaction = strconv.FormatInt(e.Outcome.ReactionMS, 10)
		}
		w.Write([]string{
			e.TrialID.String(),
			e.Mode.String(),
			e.Outcome.Kind.String(),
			reaction,
			strconv.FormatInt(e.DelayMS, 10),
			e.CompletedAt.Format(time.RFC3339Nano),
		})
	}
	w.Flush()
	return w.Error()
}

// OutputName stamps path with the session start time, keeping the
// extension: results.csv -> results_20060102-150405.csv.
func OutputName(path string, at time.Time) string {
	stamp := "_" + at.Format("20060102-150405")
	if strings.HasSuffix(path, ".csv") {
		return strings.TrimSuffix(path, ".csv") + stamp + ".csv"
	}
	return path + stamp
}

func ReadResults(path string) (*ResultLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	out := &ResultLog{}
	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == resultHeader[0] {
			continue
		}
		if len(record) < len(resultHeader) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", i+1, len(resultHeader), len(record))
		}

		id, err := uuid.Parse(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid trial id: %w", i+1, err)
		}
		mode, err := ParseMode(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		var outcome Outcome
		switch record[2] {
		case "too_early":
			outcome = TooEarly()
		case "measured":
			ms, err := strconv.ParseInt(record[3], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid reaction time: %w", i+1, err)
			}
			outcome = Measured(ms)
		default:
			return nil, fmt.Errorf("line %d: unknown outcome: %s", i+1, record[2])
		}

		delay, err := strconv.ParseInt(record[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid delay: %w", i+1, err)
		}
		completed, err := time.Parse(time.RFC3339Nano, record[5])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid timestamp: %w", i+1, err)
		}

		out.Entries = append(out.Entries, ResultRecord{
			TrialID:     id,
			Mode:        mode,
			Outcome:     outcome,
			DelayMS:     delay,
			CompletedAt: completed,
		})
	}
	return out, nil
}

// ModeSummary holds reaction statistics for one stimulus channel.
type ModeSummary struct {
	Trials    int
	TooEarly  int
	Measured  int
	MeanMS    float64
	SDMS      float64
	FastestMS int64
	SlowestMS int64
}

type Summary struct {
	Trials int
	ByMode map[Mode]*ModeSummary
}

// Summarize computes per-mode statistics. SDMS is the sample standard
// deviation and stays zero below two measured trials.
func (l *ResultLog) Summarize() Summary {
	s := Summary{ByMode: map[Mode]*ModeSummary{}}
	times := map[Mode][]int64{}

	for _, e := range l.Entries {
		ms, ok := s.ByMode[e.Mode]
		if !ok {
			ms = &ModeSummary{}
			s.ByMode[e.Mode] = ms
		}
		s.Trials++
		ms.Trials++

		switch e.Outcome.Kind {
		case OutcomeTooEarly:
			ms.TooEarly++
		case OutcomeMeasured:
			rt := e.Outcome.ReactionMS
			if ms.Measured == 0 || rt < ms.FastestMS {
				ms.FastestMS = rt
			}
			if rt > ms.SlowestMS {
				ms.SlowestMS = rt
			}
			ms.Measured++
			times[e.Mode] = append(times[e.Mode], rt)
		}
	}

	for mode, rts := range times {
		ms := s.ByMode[mode]
		var sum float64
		for _, rt := range rts {
			sum += float64(rt)
		}
		ms.MeanMS = sum / float64(len(rts))
		if len(rts) < 2 {
			continue
		}
		var sq float64
		for _, rt := range rts {
			d := float64(rt) - ms.MeanMS
			sq += d * d
		}
		ms.SDMS = math.Sqrt(sq / float64(len(rts)-1))
	}
	return s
}
