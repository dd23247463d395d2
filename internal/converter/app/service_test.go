package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aelexs/timeconverter/internal/converter/app"
	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/internal/domain/domaintest"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(t *testing.T) (*app.Service, *domaintest.FakeClock) {
	t.Helper()
	clock := domaintest.NewFakeClockAt(domaintest.ReferenceInstant)
	svc := app.NewService(app.ServiceConfig{
		Clock:    clock,
		Location: domaintest.KST,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return svc, clock
}

func TestCurrent(t *testing.T) {
	t.Run("renders every field from one reading", func(t *testing.T) {
		svc, _ := newTestService(t)

		got := svc.Current(context.Background(), 9)

		want := app.CurrentView{
			OffsetHours: 9,
			Local:       "Thursday, April 10, 2025 10:03:06 KST (UTC+09:00)",
			Zone:        "2025-04-10T10:03:06.789+09:00",
			UTC:         "2025-04-10T01:03:06.789Z",
			FileTime:    "133887205867890000",
			UnixTime:    "1744246986",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Current() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("west offset", func(t *testing.T) {
		svc, _ := newTestService(t)

		got := svc.Current(context.Background(), -5)

		assert.Equal(t, "2025-04-09T20:03:06.789-05:00", got.Zone)
	})

	t.Run("bad offset only breaks the zone field", func(t *testing.T) {
		svc, _ := newTestService(t)

		got := svc.Current(context.Background(), 20)

		assert.Equal(t, timeconv.InvalidDate, got.Zone)
		assert.Equal(t, "2025-04-10T01:03:06.789Z", got.UTC)
		assert.Equal(t, "1744246986", got.UnixTime)
	})

	t.Run("clock outside range shows markers", func(t *testing.T) {
		svc, clock := newTestService(t)
		clock.SetInstant(timeconv.MaxInstant + 1)

		got := svc.Current(context.Background(), 0)

		for _, field := range []string{got.Local, got.Zone, got.UTC, got.FileTime, got.UnixTime} {
			assert.Equal(t, timeconv.InvalidDate, field)
		}
	})
}

func TestConvertDateTime(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("local input", func(t *testing.T) {
		got, err := svc.ConvertDateTime(ctx, "2025-04-10T10:03")

		require.NoError(t, err)
		want := app.DateTimeView{
			Valid:    true,
			UTC:      "2025-04-10T01:03:00.000Z",
			FileTime: "133887205800000000",
			UnixTime: "1744246980",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ConvertDateTime() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty input aborts", func(t *testing.T) {
		got, err := svc.ConvertDateTime(ctx, "")

		assert.ErrorIs(t, err, timeconv.ErrEmptyInput)
		assert.Equal(t, app.DateTimeView{}, got)
	})

	t.Run("unparseable input shows markers", func(t *testing.T) {
		got, err := svc.ConvertDateTime(ctx, "2025-13-45T99:99")

		assert.ErrorIs(t, err, timeconv.ErrInvalidDate)
		assert.False(t, got.Valid)
		assert.Equal(t, timeconv.InvalidDate, got.UTC)
		assert.Equal(t, timeconv.InvalidDate, got.FileTime)
		assert.Equal(t, timeconv.InvalidDate, got.UnixTime)
	})

	t.Run("oversized input", func(t *testing.T) {
		_, err := svc.ConvertDateTime(ctx, strings.Repeat("1", domain.MaxInputLength+1))

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestConvertFileTime(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		text    string
		want    app.FileTimeView
		wantErr error
	}{
		{
			name: "unix epoch",
			text: "116444736000000000",
			want: app.FileTimeView{Valid: true, UTC: "1970-01-01T00:00:00.000Z", UnixTime: "0"},
		},
		{
			name: "1601 epoch",
			text: "0",
			want: app.FileTimeView{Valid: true, UTC: "1601-01-01T00:00:00.000Z", UnixTime: "-11644473600"},
		},
		{
			name: "before 1601",
			text: "-10000",
			want: app.FileTimeView{Valid: true, UTC: "1600-12-31T23:59:59.999Z", UnixTime: "-11644473601"},
		},
		{
			name: "wider than int64",
			text: "86516444736000000000",
			want: app.FileTimeView{Valid: true, UTC: "+275760-09-13T00:00:00.000Z", UnixTime: "8640000000000"},
		},
		{name: "empty", text: "  ", wantErr: timeconv.ErrEmptyInput},
		{name: "not a number", text: "12ab", wantErr: timeconv.ErrNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ConvertFileTime(ctx, tt.text)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ConvertFileTime(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}

	invalid := app.FileTimeView{UTC: timeconv.InvalidDate, UnixTime: timeconv.InvalidDate}

	t.Run("beyond instant range shows markers", func(t *testing.T) {
		got, err := svc.ConvertFileTime(ctx, "86516444736000010000")

		assert.ErrorIs(t, err, timeconv.ErrInvalidDate)
		assert.Equal(t, invalid, got)
	})

	t.Run("beyond 128 bits shows markers", func(t *testing.T) {
		got, err := svc.ConvertFileTime(ctx, "-170141183460469231731687303715884105729")

		assert.ErrorIs(t, err, timeconv.ErrInvalidDate)
		assert.Equal(t, invalid, got)
	})
}

func TestConvertUnix(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("negative seconds", func(t *testing.T) {
		got, err := svc.ConvertUnix(ctx, "-5")

		require.NoError(t, err)
		assert.Equal(t, app.UnixView{Valid: true, UTC: "1969-12-31T23:59:55.000Z", FileTime: "116444735950000000"}, got)
	})

	t.Run("beyond instant range", func(t *testing.T) {
		got, err := svc.ConvertUnix(ctx, "8640000000001")

		assert.ErrorIs(t, err, timeconv.ErrInvalidDate)
		assert.Equal(t, app.UnixView{UTC: timeconv.InvalidDate, FileTime: timeconv.InvalidDate}, got)
	})

	t.Run("last valid second has a filetime", func(t *testing.T) {
		got, err := svc.ConvertUnix(ctx, "8640000000000")

		require.NoError(t, err)
		assert.Equal(t, app.UnixView{Valid: true, UTC: "+275760-09-13T00:00:00.000Z", FileTime: "86516444736000000000"}, got)
	})

	t.Run("first valid second has a filetime", func(t *testing.T) {
		got, err := svc.ConvertUnix(ctx, "-8640000000000")

		require.NoError(t, err)
		assert.Equal(t, app.UnixView{Valid: true, UTC: "-271821-04-20T00:00:00.000Z", FileTime: "-86283555264000000000"}, got)
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := svc.ConvertUnix(ctx, "soon")

		assert.ErrorIs(t, err, timeconv.ErrNotNumeric)
	})
}

func TestParseOffsetHours(t *testing.T) {
	tests := []struct {
		text    string
		want    int
		wantErr error
	}{
		{"9", 9, nil},
		{"+9", 9, nil},
		{" -5 ", -5, nil},
		{"14", 14, nil},
		{"-12", -12, nil},
		{"15", 0, timeconv.ErrInvalidOffset},
		{"5.5", 0, domain.ErrInvalidInput},
		{"", 0, domain.ErrMissingInput},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := app.ParseOffsetHours(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitialState(t *testing.T) {
	svc, _ := newTestService(t)

	st := svc.InitialState(context.Background(), 9)

	assert.Equal(t, app.Inputs{
		DateTime:    "2025-04-10T10:03",
		FileTime:    "133887205867890000",
		UnixTime:    "1744246986",
		OffsetHours: 9,
	}, st.Inputs)
	assert.Equal(t, "2025-04-10T01:03:06.789Z", st.Current.UTC)
	assert.Equal(t, "2025-04-10T01:03:00.000Z", st.FromDateTime.UTC)
	assert.Equal(t, "2025-04-10T01:03:06.789Z", st.FromFileTime.UTC)
	assert.Equal(t, "2025-04-10T01:03:06.000Z", st.FromUnix.UTC)
	assert.Equal(t, "133887205860000000", st.FromUnix.FileTime)
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("filetime edit recomputes its view", func(t *testing.T) {
		svc, _ := newTestService(t)
		st := svc.InitialState(ctx, 9)

		next, err := svc.Apply(ctx, st, app.Edit{Field: app.FieldFileTime, Value: "116444736000000000"})

		require.NoError(t, err)
		assert.Equal(t, "116444736000000000", next.Inputs.FileTime)
		assert.Equal(t, "1970-01-01T00:00:00.000Z", next.FromFileTime.UTC)
		assert.Equal(t, st.FromUnix, next.FromUnix, "other views untouched")
	})

	t.Run("empty input keeps the previous view", func(t *testing.T) {
		svc, _ := newTestService(t)
		st := svc.InitialState(ctx, 9)

		next, err := svc.Apply(ctx, st, app.Edit{Field: app.FieldUnixTime, Value: ""})

		assert.ErrorIs(t, err, timeconv.ErrEmptyInput)
		assert.Equal(t, "", next.Inputs.UnixTime)
		assert.Equal(t, st.FromUnix, next.FromUnix)
	})

	t.Run("non-numeric input keeps the previous view", func(t *testing.T) {
		svc, _ := newTestService(t)
		st := svc.InitialState(ctx, 9)

		next, err := svc.Apply(ctx, st, app.Edit{Field: app.FieldFileTime, Value: "0x1f"})

		assert.ErrorIs(t, err, timeconv.ErrNotNumeric)
		assert.Equal(t, st.FromFileTime, next.FromFileTime)
	})

	t.Run("unparseable date shows markers", func(t *testing.T) {
		svc, _ := newTestService(t)
		st := svc.InitialState(ctx, 9)

		next, err := svc.Apply(ctx, st, app.Edit{Field: app.FieldDateTime, Value: "yesterday"})

		assert.ErrorIs(t, err, timeconv.ErrInvalidDate)
		assert.Equal(t, timeconv.InvalidDate, next.FromDateTime.UTC)
	})

	t.Run("offset edit refreshes the current view", func(t *testing.T) {
		svc, _ := newTestService(t)
		st := svc.InitialState(ctx, 9)

		next, err := svc.Apply(ctx, st, app.Edit{Field: app.FieldOffset, Value: "-5"})

		require.NoError(t, err)
		assert.Equal(t, -5, next.Inputs.OffsetHours)
		assert.Equal(t, "2025-04-09T20:03:06.789-05:00", next.Current.Zone)
	})

	t.Run("bad offset keeps the previous view", func(t *testing.T) {
		svc, _ := newTestService(t)
		st := svc.InitialState(ctx, 9)

		next, err := svc.Apply(ctx, st, app.Edit{Field: app.FieldOffset, Value: "+20"})

		assert.ErrorIs(t, err, timeconv.ErrInvalidOffset)
		assert.Equal(t, st.Current, next.Current)
		assert.Equal(t, 9, next.Inputs.OffsetHours)
	})

	t.Run("unknown field", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Apply(ctx, app.State{}, app.Edit{Field: "color", Value: "red"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestTick(t *testing.T) {
	svc, clock := newTestService(t)
	st := svc.InitialState(context.Background(), 0)

	clock.Tick()
	next := svc.Tick(context.Background(), st)

	assert.Equal(t, "2025-04-10T01:03:07.789Z", next.Current.UTC)
	assert.Equal(t, st.Inputs, next.Inputs)
}

func TestRefresh(t *testing.T) {
	t.Run("emits once per tick until cancelled", func(t *testing.T) {
		svc, clock := newTestService(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var (
			mu    sync.Mutex
			views []app.CurrentView
		)
		sink := func(v app.CurrentView) error {
			mu.Lock()
			defer mu.Unlock()
			views = append(views, v)
			clock.Tick()
			if len(views) == 3 {
				cancel()
			}
			return nil
		}

		err := svc.Refresh(ctx, time.Millisecond, app.FixedOffset(9), sink)

		require.NoError(t, err)
		mu.Lock()
		defer mu.Unlock()
		require.GreaterOrEqual(t, len(views), 3)
		assert.Equal(t, "2025-04-10T01:03:06.789Z", views[0].UTC)
		assert.Equal(t, "2025-04-10T01:03:07.789Z", views[1].UTC)
		assert.Equal(t, "2025-04-10T01:03:08.789Z", views[2].UTC)
	})

	t.Run("offset is read every tick", func(t *testing.T) {
		svc, _ := newTestService(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		offsets := []int{9, -5}
		var zones []string
		calls := 0
		offset := func() int {
			h := offsets[calls%len(offsets)]
			calls++
			return h
		}
		sink := func(v app.CurrentView) error {
			zones = append(zones, v.Zone)
			if len(zones) == 2 {
				cancel()
			}
			return nil
		}

		require.NoError(t, svc.Refresh(ctx, time.Millisecond, offset, sink))
		assert.Equal(t, "2025-04-10T10:03:06.789+09:00", zones[0])
		assert.Equal(t, "2025-04-09T20:03:06.789-05:00", zones[1])
	})

	t.Run("sink error stops the loop", func(t *testing.T) {
		svc, _ := newTestService(t)
		errGone := errors.New("client gone")

		err := svc.Refresh(context.Background(), time.Millisecond, app.FixedOffset(0), func(app.CurrentView) error {
			return errGone
		})

		assert.ErrorIs(t, err, errGone)
	})
}
