package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/version"
)

func TestMain(m *testing.M) {
	colour.DisableColourOutput = true
	os.Exit(m.Run())
}

// writeSplitPNG writes a 100x50 PNG, red on the left and blue on the right.
func writeSplitPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 50 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "split.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// run executes pipette with args against a store in storeDir.
func run(t *testing.T, storeDir string, stdin []byte, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetArgs(append([]string{"--store", storeDir, "--quiet"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestExtract(t *testing.T) {
	path := writeSplitPNG(t)
	storeDir := t.TempDir()

	out, err := run(t, storeDir, nil, "extract", "-c", "4", "--seed", "1", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Contains(t, []string{"#FF0000", "#0000FF"}, line)
	}

	again, err := run(t, storeDir, nil, "extract", "-c", "4", "--seed", "1", path)
	require.NoError(t, err)
	assert.Equal(t, out, again, "a manual seed gives the same palette")
}

func TestExtractFormats(t *testing.T) {
	path := writeSplitPNG(t)

	out, err := run(t, t.TempDir(), nil, "extract", "-c", "4", "-f", "hsl", path)
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.Contains(t, []string{"hsl(0, 100%, 50%)", "hsl(240, 100%, 50%)"}, line)
	}

	out, err = run(t, t.TempDir(), nil, "extract", "-c", "5", "-f", "json", "--blurhash", path)
	require.NoError(t, err)

	var result colour.PaletteJSON
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 5, result.Count)
	assert.Len(t, result.Colors, 5)
	assert.NotEmpty(t, result.BlurHash)
}

func TestExtractOutputFile(t *testing.T) {
	path := writeSplitPNG(t)
	outPath := filepath.Join(t.TempDir(), "palette.txt")

	out, err := run(t, t.TempDir(), nil, "extract", "-o", outPath, path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), colour.DefaultColours)
}

func TestExtractStdin(t *testing.T) {
	data, err := os.ReadFile(writeSplitPNG(t))
	require.NoError(t, err)

	out, err := run(t, t.TempDir(), data, "extract", "-c", "4", "-")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)
}

func TestExtractErrors(t *testing.T) {
	path := writeSplitPNG(t)
	tests := []struct {
		name string
		args []string
	}{
		{name: "too few colours", args: []string{"extract", "-c", "3", path}},
		{name: "too many colours", args: []string{"extract", "-c", "17", path}},
		{name: "bad format", args: []string{"extract", "-f", "cmyk", path}},
		{name: "missing image", args: []string{"extract", filepath.Join(t.TempDir(), "none.png")}},
		{name: "watch stdin", args: []string{"extract", "--watch", "-"}},
		{name: "no args", args: []string{"extract"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, t.TempDir(), nil, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestPickRecordsHistory(t *testing.T) {
	path := writeSplitPNG(t)
	storeDir := t.TempDir()

	out, err := run(t, storeDir, nil, "pick", "-x", "10", "-y", "10", path)
	require.NoError(t, err)
	assert.Equal(t, "#FF0000\n", out)

	// 50x25 display of a 100x50 image: (30, 5) maps to (60, 10).
	out, err = run(t, storeDir, nil, "pick", "-x", "30", "-y", "5", "--display-width", "50", "--display-height", "25", path)
	require.NoError(t, err)
	assert.Equal(t, "#0000FF\n", out)

	out, err = run(t, storeDir, nil, "pick", "-x", "5", "-y", "5", "--no-record", path)
	require.NoError(t, err)
	assert.Equal(t, "#FF0000\n", out)

	out, err = run(t, storeDir, nil, "history", "list", "--json")
	require.NoError(t, err)
	var entries []string
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Equal(t, []string{"#0000FF", "#FF0000"}, entries)
}

func TestPickFormats(t *testing.T) {
	path := writeSplitPNG(t)
	storeDir := t.TempDir()

	_, err := run(t, storeDir, nil, "prefs", "set", "--copy-format", "rgb")
	require.NoError(t, err)

	out, err := run(t, storeDir, nil, "pick", "-x", "80", "-y", "10", path)
	require.NoError(t, err)
	assert.Equal(t, "rgb(0, 0, 255)\n", out)

	out, err = run(t, storeDir, nil, "pick", "-x", "80", "-y", "10", "-f", "hsl", path)
	require.NoError(t, err)
	assert.Equal(t, "hsl(240, 100%, 50%)\n", out)

	out, err = run(t, storeDir, nil, "pick", "-x", "80", "-y", "10", "--all", path)
	require.NoError(t, err)
	var reps colour.Representations
	require.NoError(t, json.Unmarshal([]byte(out), &reps))
	assert.Equal(t, colour.Representations{Hex: "#0000FF", RGB: "rgb(0, 0, 255)", HSL: "hsl(240, 100%, 50%)"}, reps)
}

func TestPickOutOfBounds(t *testing.T) {
	path := writeSplitPNG(t)
	_, err := run(t, t.TempDir(), nil, "pick", "-x", "100", "-y", "10", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, colour.ErrOutOfBounds)

	out, err := run(t, t.TempDir(), nil, "pick", "-x", "100", "--y=-4", "--clamp", path)
	require.NoError(t, err)
	assert.Equal(t, "#0000FF\n", out)

	_, err = run(t, t.TempDir(), nil, "pick", "-y", "10", path)
	assert.Error(t, err, "x is required")
}

func TestHistoryCommands(t *testing.T) {
	storeDir := t.TempDir()

	out, err := run(t, storeDir, nil, "history", "list")
	require.NoError(t, err)
	assert.Equal(t, "No colours in history\n", out)

	_, err = run(t, storeDir, nil, "history", "add", "#112233", "abcdef", "#112233")
	require.NoError(t, err)

	out, err = run(t, storeDir, nil, "history", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "#112233")
	assert.Contains(t, lines[3], "#ABCDEF")

	_, err = run(t, storeDir, nil, "history", "add", "#12345")
	assert.ErrorIs(t, err, colour.ErrInvalidFormat)

	_, err = run(t, storeDir, nil, "history", "clear")
	require.NoError(t, err)
	out, err = run(t, storeDir, nil, "history", "list", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestPrefsCommands(t *testing.T) {
	storeDir := t.TempDir()

	out, err := run(t, storeDir, nil, "prefs", "get", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light","copyFormat":"hex"}`, out)

	_, err = run(t, storeDir, nil, "prefs", "set", "--theme", "dark")
	require.NoError(t, err)

	out, err = run(t, storeDir, nil, "prefs", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "theme        dark")
	assert.Contains(t, out, "copy-format  hex")

	_, err = run(t, storeDir, nil, "prefs", "set", "--theme", "sepia")
	assert.Error(t, err)
	_, err = run(t, storeDir, nil, "prefs", "set")
	assert.Error(t, err)
}

func TestPrefsDefaultsFromEnv(t *testing.T) {
	t.Setenv("PIPETTE_COPY_FORMAT", "hsl")
	out, err := run(t, t.TempDir(), nil, "prefs", "get", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light","copyFormat":"hsl"}`, out)
}

func TestMagnify(t *testing.T) {
	path := writeSplitPNG(t)
	outPath := filepath.Join(t.TempDir(), "loupe.png")

	out, err := run(t, t.TempDir(), nil, "magnify", "-x", "50", "-y", "25", "-o", outPath, path)
	require.NoError(t, err)
	assert.Equal(t, "#0000FF\n", out)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())
	// The 12x12 source region spans x 44..55, so the left edge is red and
	// the right edge blue.
	assert.Equal(t, colour.RGB{R: 255}, colour.ToRGB(img.At(5, 5)))
	assert.Equal(t, colour.RGB{B: 255}, colour.ToRGB(img.At(115, 5)))

	capturePath := filepath.Join(t.TempDir(), "capture.png")
	_, err = run(t, t.TempDir(), nil, "magnify", "-x", "10", "-y", "10", "--preset", "capture", "-o", capturePath, path)
	require.NoError(t, err)
	_, err = os.Stat(capturePath)
	assert.NoError(t, err)

	_, err = run(t, t.TempDir(), nil, "magnify", "-x", "10", "-y", "10", "--preset", "tiny", "-o", capturePath, path)
	assert.Error(t, err)
	_, err = run(t, t.TempDir(), nil, "magnify", "-x", "10", "-y", "10", "--zoom", "0", "-o", capturePath, path)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), nil, "version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, t.TempDir(), nil, "--version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}
