package run

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/John-Robertt/VLCML/internal/config"
	"github.com/John-Robertt/VLCML/internal/domain"
	"github.com/John-Robertt/VLCML/internal/infra/cache"
	"github.com/John-Robertt/VLCML/internal/infra/fsx"
	"github.com/John-Robertt/VLCML/internal/playlist"
	"github.com/John-Robertt/VLCML/internal/probe"
	"github.com/John-Robertt/VLCML/internal/scan"
	"github.com/John-Robertt/VLCML/internal/xspf"
)

// probeFile 与 stdoutWriter 可在测试里替换。
var (
	probeFile              = probe.File
	stdoutWriter io.Writer = os.Stdout
)

// Execute 执行一次完整的扫描并产出播放列表文档。
// 单个文件的探测失败会"降级"为整条丢弃（不进曲目表、不进树）；
// 只有结构性错误（层级归属被破坏、输出写不出去）才以 error 返回。
func Execute(eff config.EffectiveConfig) (domain.RunSummary, error) {
	return ExecuteWithObserver(eff, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出
// 进度/阶段信息（由上层决定是否启用）。
//
// 流水线严格串行：扫描 → 探测 → 建树 → 输出。曲目编号跟随探测
// 成功的顺序，树只引用编号，不复制曲目数据。
func ExecuteWithObserver(eff config.EffectiveConfig, obs Observer) (domain.RunSummary, error) {
	if obs != nil {
		obs.OnStart(eff)
	}

	var sum domain.RunSummary

	// 扫描：只收集候选文件，不打开容器。
	scanStarted := time.Now()
	files := scan.MediaFiles(eff.Roots, eff.Skip, eff.ExtFilter)
	scanDur := time.Since(scanStarted)

	sum.Files = len(files)
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"files": len(files),
		}, scanDur)
	}

	store := cache.New(eff.CacheDir, eff.Cache)

	// 探测：按扫描顺序串行消费。曲目先入表拿到编号，再挂进待定树。
	probeStarted := time.Now()
	reg := playlist.NewRegistry()
	pending := playlist.NewPendingMap(eff.Roots)
	var cacheHits int
	for i := range files {
		f := files[i]
		itemStarted := time.Now()

		// 根目录互相嵌套时同一文件会被走到两次，第一次为准。
		if pending.Has(f.AbsPath) {
			sum.Skipped++
			if obs != nil {
				obs.OnItemDone(i+1, len(files), f.AbsPath, false, time.Since(itemStarted))
			}
			continue
		}

		meta, ok := probeWithCache(store, f, &cacheHits)
		if !ok {
			sum.Skipped++
			if obs != nil {
				obs.OnItemDone(i+1, len(files), f.AbsPath, false, time.Since(itemStarted))
			}
			continue
		}

		idx := reg.Append(domain.Track{
			Location:   f.AbsPath,
			Title:      meta.Title,
			DurationMS: meta.DurationMS,
		})
		if err := pending.PushFile(f.AbsPath, idx); err != nil {
			// 路径归属被破坏说明扫描器与树的输入约定失守，
			// 继续跑只会产出残缺的树，立即中止。
			return sum, fmt.Errorf("构建层级失败: %w", err)
		}
		if obs != nil {
			obs.OnItemDone(i+1, len(files), f.AbsPath, true, time.Since(itemStarted))
		}
	}
	probeDur := time.Since(probeStarted)

	sum.Tracks = reg.Len()
	if obs != nil {
		obs.OnPhaseDone("probe", map[string]any{
			"tracks":     reg.Len(),
			"skipped":    sum.Skipped,
			"cache_hits": cacheHits,
		}, probeDur)
	}

	// 建树：固化待定树并整体排序（目录在前，再按字节序）。
	treeStarted := time.Now()
	nodes := pending.Realize()
	playlist.SortNodes(nodes)
	treeDur := time.Since(treeStarted)

	sum.Dirs = countDirs(nodes)
	if obs != nil {
		obs.OnPhaseDone("tree", map[string]any{
			"roots": len(nodes),
			"dirs":  sum.Dirs,
		}, treeDur)
	}

	// 输出：文件走原子写，标准输出额外校验文本合法性。
	writeStarted := time.Now()
	data := xspf.Render(reg.Tracks(), nodes)
	sum.Bytes = len(data)

	target := "-"
	if eff.Output != "" {
		target = eff.Output
		dir := filepath.Dir(eff.Output)
		name := filepath.Base(eff.Output)
		if err := fsx.WriteFileAtomic(dir, name, data); err != nil {
			return sum, fmt.Errorf("写入播放列表失败: %w", err)
		}
		sum.Output = eff.Output
	} else {
		if !utf8.Valid(data) {
			return sum, errors.New("文档包含非 UTF-8 内容，无法打印到标准输出")
		}
		if _, err := stdoutWriter.Write(data); err != nil {
			return sum, fmt.Errorf("写入标准输出失败: %w", err)
		}
	}
	writeDur := time.Since(writeStarted)

	if obs != nil {
		obs.OnPhaseDone("write", map[string]any{
			"bytes":  sum.Bytes,
			"output": target,
		}, writeDur)
	}
	return sum, nil
}

// probeWithCache 先查缓存，未命中再探测并回填。
// 缓存读写失败都不致命：读失败当未命中，写失败静默放弃。
func probeWithCache(store cache.Store, f domain.MediaFile, hits *int) (probe.Meta, bool) {
	if ent, ok, _ := store.Read(f); ok {
		*hits++
		return probe.Meta{Title: ent.Title, DurationMS: ent.DurationMS}, true
	}

	m, err := probeFile(f)
	if err != nil {
		return probe.Meta{}, false
	}
	_ = store.Write(f, m.Title, m.DurationMS)
	return m, true
}

func countDirs(nodes []domain.PlaylistNode) int {
	n := 0
	for i := range nodes {
		if nodes[i].Leaf {
			continue
		}
		n += 1 + countDirs(nodes[i].Children)
	}
	return n
}
