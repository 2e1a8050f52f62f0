package forecast

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolver maps a user-facing model name to the provider's model identifier.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Fetcher retrieves the provider's full hourly series for one model.
// Implementations make a single attempt per call; retry policy belongs to
// the caller.
type Fetcher interface {
	FetchHourly(ctx context.Context, lat, lon float64, timezone, providerID string) (Series, error)
}

// Aggregator fetches one series per requested model, narrows each to the
// requested window and outer-joins them on time into a single wide table.
type Aggregator struct {
	resolver Resolver
	fetcher  Fetcher
	logger   *zap.Logger
}

// NewAggregator creates an Aggregator. logger may be nil.
func NewAggregator(resolver Resolver, fetcher Fetcher, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		resolver: resolver,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// Build runs one aggregation. Model ids are resolved before any network
// call; fetches run concurrently and the group wait is the join barrier.
// The first fetch failure cancels the remaining fetches and aborts the
// whole request: there are no partial results.
func (a *Aggregator) Build(ctx context.Context, req Request) (*Table, error) {
	if len(req.Models) == 0 {
		return nil, ErrNoValidModels
	}

	ids := make([]string, len(req.Models))
	for i, m := range req.Models {
		id, err := a.resolver.Resolve(m)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}

	series := make([]Series, len(req.Models))

	g, gctx := errgroup.WithContext(ctx)
	for i := range req.Models {
		i := i
		g.Go(func() error {
			s, err := a.fetcher.FetchHourly(gctx, req.Lat, req.Lon, req.Timezone, ids[i])
			if err != nil {
				return fmt.Errorf("fetch %s: %w", req.Models[i], err)
			}
			s.Model = req.Models[i]
			series[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	filtered := make([]Series, len(series))
	for i, s := range series {
		filtered[i] = filterWindow(s, req.Date, req.StartHour, req.EndHour)
		a.logger.Debug("filtered series",
			zap.String("model", s.Model),
			zap.Int("fetched", len(s.Observations)),
			zap.Int("kept", len(filtered[i].Observations)),
		)
	}

	return join(req.Models, filtered), nil
}

// filterWindow keeps observations falling on date with hour in
// [startHour, endHour] inclusive, evaluated in the observation's own zone.
func filterWindow(s Series, date string, startHour, endHour int) Series {
	out := Series{Model: s.Model}
	for _, o := range s.Observations {
		if o.Time.Format("2006-01-02") != date {
			continue
		}
		h := o.Time.Hour()
		if h < startHour || h > endHour {
			continue
		}
		out.Observations = append(out.Observations, o)
	}
	return out
}

// join outer-joins the filtered series on time. Rows are the union of all
// timestamps, ascending; a model with no sample at a timestamp leaves its
// three cells nil.
func join(models []string, filtered []Series) *Table {
	t := &Table{Models: append([]string(nil), models...)}

	stamps := make(map[int64]Observation)
	for _, s := range filtered {
		for _, o := range s.Observations {
			if _, ok := stamps[o.Time.Unix()]; !ok {
				stamps[o.Time.Unix()] = Observation{Time: o.Time}
			}
		}
	}
	if len(stamps) == 0 {
		return t
	}

	keys := make([]int64, 0, len(stamps))
	for k := range stamps {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rowOf := make(map[int64]int, len(keys))
	t.Rows = make([]Row, len(keys))
	for i, k := range keys {
		t.Rows[i] = Row{
			Time:  stamps[k].Time,
			Cells: make([]*float64, 3*len(models)),
		}
		rowOf[k] = i
	}

	for mi, s := range filtered {
		base := 3 * mi
		for _, o := range s.Observations {
			row := &t.Rows[rowOf[o.Time.Unix()]]
			row.Cells[base] = o.Temperature
			row.Cells[base+1] = o.Precipitation
			row.Cells[base+2] = o.WindSpeed
		}
	}

	return t
}
