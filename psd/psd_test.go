package psd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hb9tf/xtiming/fitstable"
)

func TestValidate(t *testing.T) {
	good := &PowerSpectrum{Freq: []float64{1}, Power: []float64{1}, PowerErr: []float64{1}, DF: 1}
	assert.NoError(t, good.Validate())

	tests := []struct {
		desc string
		s    *PowerSpectrum
	}{
		{"nil", nil},
		{"empty", &PowerSpectrum{DF: 1}},
		{"short power", &PowerSpectrum{Freq: []float64{1, 2}, Power: []float64{1}, PowerErr: []float64{1, 2}, DF: 1}},
		{"short error", &PowerSpectrum{Freq: []float64{1, 2}, Power: []float64{1, 2}, PowerErr: []float64{1}, DF: 1}},
		{"zero df", &PowerSpectrum{Freq: []float64{1}, Power: []float64{1}, PowerErr: []float64{1}}},
		{"negative df", &PowerSpectrum{Freq: []float64{1}, Power: []float64{1}, PowerErr: []float64{1}, DF: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			assert.ErrorIs(t, tc.s.Validate(), ErrInvalid)
		})
	}
}

func TestReadText(t *testing.T) {
	in := `# averaged over segments
# df = 0.5
# m = 64
# norm = leahy
1.0 10 1
1.5    10	1

2.0 100 2
`
	s, err := ReadText(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, &PowerSpectrum{
		Freq:     []float64{1, 1.5, 2},
		Power:    []float64{10, 10, 100},
		PowerErr: []float64{1, 1, 2},
		DF:       0.5,
		M:        64,
		Norm:     "leahy",
	}, s)
}

func TestReadTextInfersDF(t *testing.T) {
	s, err := ReadText(strings.NewReader("1 10 1\n3 10 1\n5 10 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.DF)

	_, err = ReadText(strings.NewReader("1 10 1\n"))
	assert.ErrorIs(t, err, ErrInvalid, "one bin and no df comment")
}

func TestReadTextErrors(t *testing.T) {
	for _, in := range []string{
		"1 2\n",
		"1 2 3 4\n",
		"1 x 3\n",
		"# df = fast\n1 2 3\n",
		"",
	} {
		_, err := ReadText(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrInvalid, "%q", in)
	}
}

func TestReadJSON(t *testing.T) {
	s, err := ReadJSON(strings.NewReader(`{"freq":[1,2,3],"power":[10,10,100],"power_err":[1,1,2],"df":1,"m":8}`))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Freq)
	assert.Equal(t, 1.0, s.DF)
	assert.Equal(t, 8, s.M)

	_, err = ReadJSON(strings.NewReader(`{"freq":[1,2],"power":[10],"power_err":[1,1]}`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestReadFITS(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, fitstable.Write(buf, fitstable.Spec{
		Name:    "PSD",
		Columns: []string{"FREQ", "POWER", "POWER_ERR"},
		Rows:    [][]float64{{1, 10, 1}, {2, 10, 1}, {3, 100, 2}},
		Cards: []fitsio.Card{
			{Name: "DF", Value: 1.0},
			{Name: "M", Value: 16},
			{Name: "NORM", Value: "frac"},
		},
	}))

	s, err := ReadFITS(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, &PowerSpectrum{
		Freq:     []float64{1, 2, 3},
		Power:    []float64{10, 10, 100},
		PowerErr: []float64{1, 1, 2},
		DF:       1,
		M:        16,
		Norm:     "frac",
	}, s)
}

func TestReadFITSMissingColumn(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, fitstable.Write(buf, fitstable.Spec{
		Name:    "PSD",
		Columns: []string{"FREQ", "POWER"},
		Rows:    [][]float64{{1, 10}, {2, 10}},
	}))

	_, err := ReadFITS(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadPicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "psd.dat")
	require.NoError(t, os.WriteFile(txt, []byte("# df = 1\n1 10 1\n"), 0o644))
	s, err := Load(txt)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	js := filepath.Join(dir, "psd.JSON")
	require.NoError(t, os.WriteFile(js, []byte(`{"freq":[1],"power":[10],"power_err":[1],"df":1}`), 0o644))
	s, err = Load(js)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = Load(filepath.Join(dir, "missing.fits"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
