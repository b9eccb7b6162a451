package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/John-Robertt/VLCML/internal/app/run"
	"github.com/John-Robertt/VLCML/internal/config"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是一个"简洁版"的交互终端进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr（或退化到 stdout），不污染 stdout 的文档输出
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：探测阶段长时间没有输出时也定期冒一行，降低等待焦虑
//
// 单个文件的结果不单独成行（失败本来就是静默跳过），OnItemDone 只喂计数器。
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total   int
	done    int
	tracks  int
	skipped int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	cacheLine := "off"
	if eff.Cache {
		cacheLine = "on (" + eff.CacheDir + ")"
	}
	out := eff.Output
	if out == "" {
		out = "stdout"
	}

	fmt.Fprintf(p.w, "[%s] VLCML scan\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  roots: %s\n", formatStringListJSON(eff.Roots))
	fmt.Fprintf(p.w, "  skip: %s\n", formatStringListJSON(eff.Skip))
	fmt.Fprintf(p.w, "  ext: %s\n", formatStringListJSON(eff.Exts))
	fmt.Fprintf(p.w, "  cache: %s\n", cacheLine)
	fmt.Fprintf(p.w, "  output: %s\n", out)
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
	p.mu.Unlock()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		p.total = intField(fields, "files")
		fmt.Fprintf(p.w, "扫描: files=%d (%s)\n", p.total, formatShortDuration(dur))
		// 扫描一结束就进入探测：从这里开始 keepalive。
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	case "probe":
		fmt.Fprintf(p.w, "探测: tracks=%d skipped=%d cache_hits=%d (%s)\n",
			intField(fields, "tracks"),
			intField(fields, "skipped"),
			intField(fields, "cache_hits"),
			formatShortDuration(dur),
		)
		// 探测收尾后不会再有条目事件，ticker 到此为止。
		if p.tickerStarted {
			close(p.stopCh)
			p.tickerStarted = false
		}
	case "tree":
		fmt.Fprintf(p.w, "层级: roots=%d dirs=%d (%s)\n",
			intField(fields, "roots"), intField(fields, "dirs"), formatShortDuration(dur),
		)
	case "write":
		fmt.Fprintf(p.w, "输出: bytes=%d -> %s (%s)\n",
			intField(fields, "bytes"), stringField(fields, "output"), formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, path string, ok bool, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// idx/total 由 run 层给出；计数只喂 keepalive，不逐条打印。
	p.done = idx
	p.total = total
	if ok {
		p.tracks++
	} else {
		p.skipped++
	}

	// 最后一条完成：停止 ticker，避免在阶段行之后又冒出 keepalive。
	if p.tickerStarted && p.done >= p.total {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) OnProgress(done, total, tracks, skipped int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "进度: done=%d/%d tracks=%d skipped=%d elapsed=%s\n",
		done, total, tracks, skipped, formatElapsed(elapsed),
	)
	p.lastPrinted = time.Now()
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				// 已完成：安全退出（OnItemDone 会 close stopCh，但这里也做兜底）。
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}

				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					elapsed := time.Since(p.startedAt)
					fmt.Fprintf(p.w, "进度: done=%d/%d tracks=%d skipped=%d elapsed=%s\n",
						p.done, p.total, p.tracks, p.skipped, formatElapsed(elapsed),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-p.stopCh:
				return
			}
		}
	}()
}

func formatStringListJSON(xs []string) string {
	// json.Marshal(nil slice) => "null"；对用户更友好的是 "[]"
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}

func stringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
