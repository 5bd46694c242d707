package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "24h with seconds", text: "09:30:15", want: "09:30:15"},
		{name: "24h with seconds pm", text: "17:00:00", want: "17:00:00"},
		{name: "12h am", text: "9:30 AM", want: "09:30:00"},
		{name: "12h pm", text: "2:45 PM", want: "14:45:00"},
		{name: "12h zero-padded", text: "02:45 PM", want: "14:45:00"},
		{name: "12h noon", text: "12:00 PM", want: "12:00:00"},
		{name: "12h midnight", text: "12:00 AM", want: "00:00:00"},
		{name: "24h without seconds", text: "10:30", want: "10:30:00"},
		{name: "empty", text: "", wantErr: true},
		{name: "garbage", text: "half past ten", wantErr: true},
		{name: "out of range hour", text: "25:00", wantErr: true},
		{name: "date not time", text: "2026-01-25", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTimeWindowOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    TimeWindow
		b    TimeWindow
		want bool
	}{
		{
			name: "disjoint",
			a:    TimeWindow{Start: "09:00:00", End: "10:00:00"},
			b:    TimeWindow{Start: "11:00:00", End: "12:00:00"},
			want: false,
		},
		{
			name: "adjacent back-to-back is not a conflict",
			a:    TimeWindow{Start: "10:00:00", End: "11:00:00"},
			b:    TimeWindow{Start: "11:00:00", End: "12:00:00"},
			want: false,
		},
		{
			name: "adjacent reversed",
			a:    TimeWindow{Start: "11:00:00", End: "12:00:00"},
			b:    TimeWindow{Start: "10:00:00", End: "11:00:00"},
			want: false,
		},
		{
			name: "partial overlap",
			a:    TimeWindow{Start: "10:30:00", End: "11:30:00"},
			b:    TimeWindow{Start: "10:00:00", End: "11:00:00"},
			want: true,
		},
		{
			name: "containment",
			a:    TimeWindow{Start: "09:00:00", End: "17:00:00"},
			b:    TimeWindow{Start: "10:00:00", End: "11:00:00"},
			want: true,
		},
		{
			name: "identical",
			a:    TimeWindow{Start: "10:00:00", End: "11:00:00"},
			b:    TimeWindow{Start: "10:00:00", End: "11:00:00"},
			want: true,
		},
		{
			name: "one second overlap",
			a:    TimeWindow{Start: "10:59:59", End: "11:30:00"},
			b:    TimeWindow{Start: "10:00:00", End: "11:00:00"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			// The predicate is symmetric.
			require.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-25")
	require.NoError(t, err)
	require.Equal(t, 2026, d.Year())
	require.Equal(t, 1, int(d.Month()))
	require.Equal(t, 25, d.Day())

	_, err = ParseDate("25/01/2026")
	require.Error(t, err)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
}
