package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"openResume/internal/pdf"
	"openResume/internal/resume"
)

// State 是预览管线的可观察阶段。
type State int

const (
	StateIdle State = iota
	StateGenerating
	StateRasterizing
	StateDisplayed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateRasterizing:
		return "rasterizing"
	case StateDisplayed:
		return "displayed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// GenerateFunc produces the positioned document and its encoded artifact for
// one snapshot. Injected so tests can control timing and failure.
type GenerateFunc func(ctx context.Context, doc *resume.Resume) (*pdf.Document, []byte, error)

// DecodeDimsFunc reads the first page dimensions (in points) out of an
// encoded artifact.
type DecodeDimsFunc func(data []byte) (w, h float64, err error)

// Config 控制预览管线的节流与缩放行为。
type Config struct {
	Debounce       time.Duration // 内容变更到重新生成的静默窗口
	ResizeDebounce time.Duration // 容器尺寸变更的静默窗口
	WidthThreshold float64       // 小于该值的宽度抖动被忽略
	Padding        float64       // 容器两侧合计留白
	Zoom           float64
	Width          float64 // 初始容器宽度
}

// DefaultConfig matches the interactive editor's tuning.
func DefaultConfig() Config {
	return Config{
		Debounce:       500 * time.Millisecond,
		ResizeDebounce: 50 * time.Millisecond,
		WidthThreshold: 5,
		Padding:        32,
		Zoom:           1,
		Width:          820,
	}
}

// Pipeline 把简历快照异步变换为可展示的位图。所有修改都经过防抖，
// 同一时刻只有一个渲染在跑，被取代的渲染通过 context 取消，
// 完成的帧先画到离屏缓冲，再整帧替换可见帧，外部永远看不到半成品。
type Pipeline struct {
	generate   GenerateFunc
	decodeDims DecodeDimsFunc
	rasterizer Rasterizer
	log        *slog.Logger

	mu         sync.Mutex
	conf       Config
	latest     *resume.Resume
	lastDoc    *pdf.Document // 最近一次成功生成的文档，resize/zoom 时直接重光栅化
	lastPageW  float64
	timer      *time.Timer
	cancel     context.CancelFunc
	generation uint64

	visible image.Image
	state   State
	err     error

	wg sync.WaitGroup
}

// NewPipeline wires a pipeline around the real generator and rasterizer.
func NewPipeline(conf Config, logger *slog.Logger) (*Pipeline, error) {
	raster, err := NewImageRasterizer()
	if err != nil {
		return nil, err
	}
	gen := func(ctx context.Context, doc *resume.Resume) (*pdf.Document, []byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		positioned := pdf.Generate(doc, doc.Metadata.Template, resume.Translations{}.Get)
		data, err := pdf.Encode(positioned)
		if err != nil {
			return nil, nil, err
		}
		return positioned, data, nil
	}
	return NewPipelineWith(conf, gen, DecodeFirstPageDims, raster, logger), nil
}

// NewPipelineWith 注入各阶段实现，测试用。
func NewPipelineWith(conf Config, gen GenerateFunc, decode DecodeDimsFunc, raster Rasterizer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if conf.Zoom <= 0 {
		conf.Zoom = 1
	}
	return &Pipeline{
		generate:   gen,
		decodeDims: decode,
		rasterizer: raster,
		log:        logger,
		conf:       conf,
		state:      StateIdle,
	}
}

// Update 提交一个新的内容快照。在防抖窗口内的连续提交会合并，
// 只有最后一个快照会被真正渲染。
func (p *Pipeline) Update(doc *resume.Resume) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest = doc
	p.resetTimerLocked(p.conf.Debounce)
}

// Resize reports a new container width. Jitter below the threshold is
// dropped without touching the timers.
func (p *Pipeline) Resize(width float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if math.Abs(width-p.conf.Width) < p.conf.WidthThreshold {
		return
	}
	p.conf.Width = width
	if p.lastDoc == nil {
		return
	}
	p.resetTimerLocked(p.conf.ResizeDebounce)
}

// SetZoom changes the zoom factor and schedules a redraw of the current
// document.
func (p *Pipeline) SetZoom(zoom float64) {
	if zoom <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if zoom == p.conf.Zoom {
		return
	}
	p.conf.Zoom = zoom
	if p.lastDoc == nil {
		return
	}
	p.resetTimerLocked(p.conf.ResizeDebounce)
}

// resetTimerLocked 重置防抖计时器。调用方必须持有 p.mu。
func (p *Pipeline) resetTimerLocked(d time.Duration) {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(d, p.fire)
}

// fire 在防抖窗口静默后启动一次渲染，并取消仍在跑的上一次。
func (p *Pipeline) fire() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.generation++
	gen := p.generation
	snapshot := p.latest
	doc := p.lastDoc
	pageW := p.lastPageW
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.render(ctx, gen, snapshot, doc, pageW)
	}()
}

func (p *Pipeline) render(ctx context.Context, gen uint64, snapshot *resume.Resume, cached *pdf.Document, cachedPageW float64) {
	doc := cached
	pageW := cachedPageW

	if snapshot != nil {
		p.setState(gen, StateGenerating, nil)
		positioned, artifact, err := p.generate(ctx, snapshot)
		if err != nil {
			p.fail(ctx, gen, fmt.Errorf("generate preview: %w", err))
			return
		}
		w, _, err := p.decodeDims(artifact)
		if err != nil {
			p.fail(ctx, gen, fmt.Errorf("decode artifact: %w", err))
			return
		}
		doc = positioned
		pageW = w

		p.mu.Lock()
		if gen == p.generation {
			p.lastDoc = doc
			p.lastPageW = pageW
			p.latest = nil
		}
		p.mu.Unlock()
	}
	if doc == nil {
		return
	}

	p.setState(gen, StateRasterizing, nil)
	p.mu.Lock()
	scale := (p.conf.Width - p.conf.Padding) / pageW * p.conf.Zoom
	p.mu.Unlock()
	if scale <= 0 {
		p.fail(ctx, gen, fmt.Errorf("unusable preview scale %.3f", scale))
		return
	}

	// 画到离屏缓冲；只有整页完成后才发布。
	frame, err := p.rasterizer.Rasterize(ctx, doc, 0, scale)
	if err != nil {
		p.fail(ctx, gen, err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return // 已被更新的渲染取代
	}
	p.visible = frame
	p.state = StateDisplayed
	p.err = nil
	p.log.Debug("preview frame published", "generation", gen, "scale", scale)
}

func (p *Pipeline) setState(gen uint64, s State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return
	}
	p.state = s
	p.err = err
}

// fail 记录失败状态。被取消的渲染静默退出，上一帧保持可见。
func (p *Pipeline) fail(ctx context.Context, gen uint64, err error) {
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return
	}
	p.state = StateFailed
	p.err = err
	p.log.Warn("preview render failed", "generation", gen, "error", err)
}

// Frame returns the currently published bitmap, or nil before the first
// render completes.
func (p *Pipeline) Frame() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close 取消在途渲染并等待后台协程退出。
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// DecodeFirstPageDims reads the page size of the first page out of a PDF
// artifact. Validation is relaxed so slightly off-spec files still preview.
func DecodeFirstPageDims(data []byte) (w, h float64, err error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return 0, 0, fmt.Errorf("read page dims: %w", err)
	}
	if len(dims) == 0 {
		return 0, 0, fmt.Errorf("artifact has no pages")
	}
	return dims[0].Width, dims[0].Height, nil
}
