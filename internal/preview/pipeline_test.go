package preview

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"testing"
	"time"

	"openResume/internal/pdf"
	"openResume/internal/resume"
)

func testConfig() Config {
	conf := DefaultConfig()
	conf.Debounce = 5 * time.Millisecond
	conf.ResizeDebounce = 2 * time.Millisecond
	conf.Width = 400
	return conf
}

func snapshotNamed(name string) *resume.Resume {
	return &resume.Resume{Personal: resume.PersonalInfo{FullName: name}}
}

// fakeRaster paints a 1x1 image colored by the document background, so tests
// can tell which render produced the visible frame.
type fakeRaster struct{}

func (fakeRaster) Rasterize(_ context.Context, doc *pdf.Document, _ int, _ float64) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, hexColor(doc.Background))
	return img, nil
}

func fakeDims([]byte) (float64, float64, error) {
	return pdf.PageWidth, pdf.PageHeight, nil
}

func docWithBackground(bg string) *pdf.Document {
	return &pdf.Document{
		PageWidth: pdf.PageWidth, PageHeight: pdf.PageHeight,
		Background: bg,
		Pages:      []pdf.Page{{Number: 1}},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func frameColor(p *Pipeline) (color.RGBA, bool) {
	frame := p.Frame()
	if frame == nil {
		return color.RGBA{}, false
	}
	c := color.RGBAModel.Convert(frame.At(0, 0)).(color.RGBA)
	return c, true
}

// 连续快速提交只触发一次生成，且生成的是最后一个快照。
func TestUpdateCoalescesWithinDebounceWindow(t *testing.T) {
	var mu sync.Mutex
	var calls int
	var rendered []string
	gen := func(_ context.Context, doc *resume.Resume) (*pdf.Document, []byte, error) {
		mu.Lock()
		calls++
		rendered = append(rendered, doc.Personal.FullName)
		mu.Unlock()
		return docWithBackground("#111111"), []byte("%PDF-"), nil
	}

	p := NewPipelineWith(testConfig(), gen, fakeDims, fakeRaster{}, slog.Default())
	defer p.Close()

	for _, name := range []string{"draft one", "draft two", "draft three"} {
		p.Update(snapshotNamed(name))
		time.Sleep(time.Millisecond)
	}

	waitFor(t, func() bool { return p.State() == StateDisplayed })
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("want 1 generation, got %d", calls)
	}
	if rendered[0] != "draft three" {
		t.Fatalf("rendered stale snapshot %q", rendered[0])
	}
}

// 慢渲染 A 晚于快渲染 B 完成时，可见帧必须保持 B 的结果。
func TestStaleRenderCannotOvertake(t *testing.T) {
	releaseA := make(chan struct{})
	aStarted := make(chan struct{})
	var once sync.Once

	gen := func(ctx context.Context, doc *resume.Resume) (*pdf.Document, []byte, error) {
		if doc.Personal.FullName == "A" {
			once.Do(func() { close(aStarted) })
			<-releaseA
			return docWithBackground("#ff0000"), []byte("%PDF-"), nil
		}
		return docWithBackground("#00ff00"), []byte("%PDF-"), nil
	}

	p := NewPipelineWith(testConfig(), gen, fakeDims, fakeRaster{}, slog.Default())
	defer p.Close()

	p.Update(snapshotNamed("A"))
	<-aStarted

	p.Update(snapshotNamed("B"))
	waitFor(t, func() bool {
		c, ok := frameColor(p)
		return ok && c.G == 0xff
	})

	close(releaseA)
	time.Sleep(20 * time.Millisecond)

	c, ok := frameColor(p)
	if !ok {
		t.Fatal("frame vanished")
	}
	if c.R == 0xff {
		t.Fatal("stale render overwrote the newer frame")
	}
	if c.G != 0xff {
		t.Fatalf("unexpected frame color %v", c)
	}
}

// 容器宽度抖动小于阈值时不触发任何重绘。
func TestResizeBelowThresholdIsIgnored(t *testing.T) {
	var mu sync.Mutex
	var calls int
	gen := func(_ context.Context, doc *resume.Resume) (*pdf.Document, []byte, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return docWithBackground("#111111"), []byte("%PDF-"), nil
	}

	p := NewPipelineWith(testConfig(), gen, fakeDims, fakeRaster{}, slog.Default())
	defer p.Close()

	p.Update(snapshotNamed("base"))
	waitFor(t, func() bool { return p.State() == StateDisplayed })

	p.Resize(402) // below the 5pt threshold relative to 400
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("resize jitter triggered regeneration: %d calls", calls)
	}
}

// 有效的 resize 重用缓存文档，只重光栅化，不重新生成。
func TestResizeReusesCachedDocument(t *testing.T) {
	var mu sync.Mutex
	var calls int
	gen := func(_ context.Context, doc *resume.Resume) (*pdf.Document, []byte, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return docWithBackground("#111111"), []byte("%PDF-"), nil
	}

	p := NewPipelineWith(testConfig(), gen, fakeDims, fakeRaster{}, slog.Default())
	defer p.Close()

	p.Update(snapshotNamed("base"))
	waitFor(t, func() bool { return p.State() == StateDisplayed })

	p.mu.Lock()
	sawGen := p.generation
	p.mu.Unlock()

	p.Resize(600)
	waitFor(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.generation > sawGen && p.state == StateDisplayed
	})

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("resize regenerated the document: %d calls", calls)
	}
}

func TestFailureKeepsPreviousFrame(t *testing.T) {
	var mu sync.Mutex
	fail := false
	gen := func(_ context.Context, doc *resume.Resume) (*pdf.Document, []byte, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, nil, context.DeadlineExceeded
		}
		return docWithBackground("#0000ff"), []byte("%PDF-"), nil
	}

	p := NewPipelineWith(testConfig(), gen, fakeDims, fakeRaster{}, slog.Default())
	defer p.Close()

	p.Update(snapshotNamed("good"))
	waitFor(t, func() bool { return p.State() == StateDisplayed })

	mu.Lock()
	fail = true
	mu.Unlock()
	p.Update(snapshotNamed("bad"))
	waitFor(t, func() bool { return p.State() == StateFailed })

	if p.Err() == nil {
		t.Fatal("failed state without error")
	}
	c, ok := frameColor(p)
	if !ok || c.B != 0xff {
		t.Fatal("failure should leave the previous frame visible")
	}
}

func TestImageRasterizerPaintsBackground(t *testing.T) {
	raster, err := NewImageRasterizer()
	if err != nil {
		t.Fatal(err)
	}
	doc := docWithBackground("#336699")
	doc.Pages[0].Ops = []pdf.DrawOp{
		{Kind: pdf.OpText, X: 40, Y: 60, Text: "hello", Size: 12, Color: "#000000"},
	}

	img, err := raster.Rasterize(context.Background(), doc, 0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	bounds := img.Bounds()
	halfWidth := float64(pdf.PageWidth) * 0.5
	if bounds.Dx() != int(halfWidth)+1 && bounds.Dx() != int(halfWidth) {
		t.Fatalf("unexpected raster width %d", bounds.Dx())
	}
	c := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	if c.R != 0x33 || c.G != 0x66 || c.B != 0x99 {
		t.Fatalf("background not painted: %v", c)
	}
}

func TestRasterizeCancelledContext(t *testing.T) {
	raster, err := NewImageRasterizer()
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := raster.Rasterize(ctx, docWithBackground("#ffffff"), 0, 1); err == nil {
		t.Fatal("want cancellation error")
	}
}
