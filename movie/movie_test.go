package movie

import (
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrames(t *testing.T, dir string, indices []int) []string {
	t.Helper()
	colors := []color.NRGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 0}}
	for k, i := range indices {
		img := image.NewNRGBA(image.Rect(0, 0, 12, 10))
		for p := 0; p < len(img.Pix); p += 4 {
			c := colors[k%len(colors)]
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = c.R, c.G, c.B, c.A
		}
		f, err := os.Create(filepath.Join(dir, FrameName(i)))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}
	return FramePaths(dir, indices)
}

func TestFrameNames(t *testing.T) {
	assert.Equal(t, "frame_000007.png", FrameName(7))
	assert.Equal(t, "frame_1234567.png", FrameName(1234567))
	got := FramePaths("out", []int{10, 2})
	assert.Equal(t, []string{filepath.Join("out", "frame_000010.png"), filepath.Join("out", "frame_000002.png")}, got)
}

func TestSortAlphanumeric(t *testing.T) {
	names := []string{"frame_10.png", "frame_2.png", "frame_1.png", "a.png", "frame_01.png", "Frame_3.png"}
	SortAlphanumeric(names)
	assert.Equal(t, []string{"a.png", "frame_01.png", "frame_1.png", "frame_2.png", "Frame_3.png", "frame_10.png"}, names)
}

func TestSortNonASCII(t *testing.T) {
	assert.Equal(t, []string{"vista_é", "2", "٣x"}, chunks("vista_é2٣x"))
	assert.Equal(t, []string{"12", "ñ", "3"}, chunks("12ñ3"))
	names := []string{"café_10.png", "café_9.png", "٣.png", "café_٣.png"}
	SortAlphanumeric(names)
	assert.Equal(t, []string{"café_9.png", "café_10.png", "café_٣.png", "٣.png"}, names)
}

func TestCollectFrames(t *testing.T) {
	dir := t.TempDir()
	writeFrames(t, dir, []int{10, 2, 1})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))
	got, err := CollectFrames(dir, ".png")
	require.NoError(t, err)
	assert.Equal(t, FramePaths(dir, []int{1, 2, 10}), got)
}

func TestForOutput(t *testing.T) {
	assert.IsType(t, &GIF{}, ForOutput("a/b.GIF"))
	assert.IsType(t, &FFmpeg{}, ForOutput("movie.mp4"))
	assert.IsType(t, &FFmpeg{}, ForOutput("movie"))
}

func TestFFmpegArgs(t *testing.T) {
	f := &FFmpeg{}
	args := f.Args("out.mp4", 30)
	assert.Equal(t, "out.mp4", args[len(args)-1])
	assert.Subset(t, args, []string{"image2pipe", "libx264", "yuv420p", "30", "-"})
	assert.NotContains(t, args, "-crf")

	f = &FFmpeg{Codec: "libx265", CRF: 23, ExtraArgs: []string{"-preset", "slow"}}
	args = f.Args("out.mkv", 12.5)
	assert.Subset(t, args, []string{"libx265", "-crf", "23", "12.5"})
	assert.Equal(t, []string{"-preset", "slow", "out.mkv"}, args[len(args)-3:])
}

func TestMissingFrames(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrames(t, dir, []int{0, 1})
	frames = append(frames, filepath.Join(dir, FrameName(2)))
	ctx := context.Background()
	for _, enc := range []Encoder{&FFmpeg{Binary: "no-such-ffmpeg"}, &GIF{}} {
		err := enc.Encode(ctx, frames, filepath.Join(dir, "out"), 30)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing frame")
	}
	assert.Error(t, (&GIF{}).Encode(ctx, nil, filepath.Join(dir, "out.gif"), 30))
	assert.Error(t, (&GIF{}).Encode(ctx, frames[:2], filepath.Join(dir, "out.gif"), 0))
}

func TestGIF(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrames(t, dir, []int{0, 1, 2})
	out := filepath.Join(dir, "movie.gif")
	require.NoError(t, (&GIF{}).Encode(context.Background(), frames, out, 10))
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	require.Len(t, anim.Image, 3)
	assert.Equal(t, []int{10, 10, 10}, anim.Delay)
	//the transparent frame goes over white
	r, g, b, _ := anim.Image[2].At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestGIFCancelled(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrames(t, dir, []int{0, 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&GIF{}).Encode(ctx, frames, filepath.Join(dir, "movie.gif"), 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	dir := t.TempDir()
	frames := writeFrames(t, dir, []int{0, 1, 2, 3})
	out := filepath.Join(dir, "movie.mp4")
	require.NoError(t, (&FFmpeg{}).Encode(context.Background(), frames, out, 4))
	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}
