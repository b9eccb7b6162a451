package run

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/VLCML/internal/config"
	"github.com/John-Robertt/VLCML/internal/domain"
	"github.com/John-Robertt/VLCML/internal/probe"
)

type itemEvent struct {
	idx   int
	total int
	path  string
	ok    bool
}

type recordObserver struct {
	startCalls    int
	phases        []string
	items         []itemEvent
	progressCalls int
}

func (o *recordObserver) OnStart(eff config.EffectiveConfig) {
	o.startCalls++
}

func (o *recordObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.phases = append(o.phases, name)
}

func (o *recordObserver) OnItemDone(idx, total int, path string, ok bool, dur time.Duration) {
	o.items = append(o.items, itemEvent{idx: idx, total: total, path: path, ok: ok})
}

func (o *recordObserver) OnProgress(done, total, tracks, skipped int, elapsed time.Duration) {
	o.progressCalls++
}

func stubProbe(t *testing.T, fn func(domain.MediaFile) (probe.Meta, error)) {
	t.Helper()
	old := probeFile
	probeFile = fn
	t.Cleanup(func() { probeFile = old })
}

// okProbe 以文件名当标题、固定 1 秒时长；文件名以 bad 开头的装作坏容器。
func okProbe(calls *int) func(domain.MediaFile) (probe.Meta, error) {
	return func(f domain.MediaFile) (probe.Meta, error) {
		if calls != nil {
			*calls++
		}
		if strings.HasPrefix(f.Base, "bad") {
			return probe.Meta{}, errors.New("坏容器")
		}
		return probe.Meta{Title: f.Base, DurationMS: 1000}, nil
	}
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := stdoutWriter
	buf := &bytes.Buffer{}
	stdoutWriter = buf
	t.Cleanup(func() { stdoutWriter = old })
	return buf
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("建目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写文件失败: %v", err)
	}
}

func testEff(root, out string) config.EffectiveConfig {
	return config.EffectiveConfig{
		Roots:     []string{root},
		Output:    out,
		ExtFilter: map[string]bool{".mp4": true, ".mkv": true},
	}
}

func TestExecuteWithObserver_EmitsPhaseEvents(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))
	stubProbe(t, okProbe(nil))

	obs := &recordObserver{}
	out := filepath.Join(t.TempDir(), "out.xspf")
	if _, err := ExecuteWithObserver(testEff(root, out), obs); err != nil {
		t.Fatalf("不期望错误: %v", err)
	}

	if obs.startCalls != 1 {
		t.Fatalf("期望 OnStart 调用 1 次，实际 %d", obs.startCalls)
	}
	wantPhases := []string{"scan", "probe", "tree", "write"}
	if !reflect.DeepEqual(obs.phases, wantPhases) {
		t.Fatalf("阶段事件不符: got=%v want=%v", obs.phases, wantPhases)
	}
	if obs.progressCalls != 0 {
		t.Fatalf("run 层不应主动调用 OnProgress，实际 %d 次", obs.progressCalls)
	}
}

func TestExecuteWithObserver_EmitsItemEvents(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))
	touch(t, filepath.Join(root, "bad.mp4"))
	touch(t, filepath.Join(root, "sub", "c.mp4"))
	stubProbe(t, okProbe(nil))

	obs := &recordObserver{}
	out := filepath.Join(t.TempDir(), "out.xspf")
	if _, err := ExecuteWithObserver(testEff(root, out), obs); err != nil {
		t.Fatalf("不期望错误: %v", err)
	}

	// 每个候选文件恰好一个条目事件，按发现顺序编号。
	want := []itemEvent{
		{idx: 1, total: 3, path: filepath.Join(root, "a.mp4"), ok: true},
		{idx: 2, total: 3, path: filepath.Join(root, "bad.mp4"), ok: false},
		{idx: 3, total: 3, path: filepath.Join(root, "sub", "c.mp4"), ok: true},
	}
	if !reflect.DeepEqual(obs.items, want) {
		t.Fatalf("条目事件不符:\ngot=%+v\nwant=%+v", obs.items, want)
	}
}

func TestExecute_WritesPlaylistFile(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))
	touch(t, filepath.Join(root, "sub", "b.mkv"))
	stubProbe(t, okProbe(nil))

	out := filepath.Join(t.TempDir(), "lib", "out.xspf")
	sum, err := Execute(testEff(root, out))
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}

	if sum.Files != 2 || sum.Tracks != 2 || sum.Skipped != 0 {
		t.Fatalf("统计不符: %+v", sum)
	}
	if sum.Dirs != 2 {
		t.Fatalf("目录数不符（根 + sub）: %d", sum.Dirs)
	}
	if sum.Output != out {
		t.Fatalf("输出路径不符: %q", sum.Output)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读输出失败: %v", err)
	}
	doc := string(b)
	if len(b) != sum.Bytes {
		t.Fatalf("字节数不符: 文件 %d 统计 %d", len(b), sum.Bytes)
	}
	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`+"\n") {
		t.Fatalf("缺少 XML 声明:\n%s", doc)
	}
	if !strings.HasSuffix(doc, "</playlist>\n") {
		t.Fatalf("结尾必须是带换行的收尾标签:\n%s", doc)
	}
	if !strings.Contains(doc, "<title>a.mp4</title>") || !strings.Contains(doc, "<title>b.mkv</title>") {
		t.Fatalf("曲目标题缺失:\n%s", doc)
	}
	// 同级排序：目录排在文件前面。
	nodeAt := strings.Index(doc, `<vlc:node title="sub">`)
	itemAt := strings.Index(doc, `<vlc:item tid="0"/>`)
	if nodeAt < 0 || itemAt < 0 || nodeAt > itemAt {
		t.Fatalf("层级顺序不符:\n%s", doc)
	}
}

func TestExecute_StdoutWhenNoOutputPath(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))
	stubProbe(t, okProbe(nil))
	buf := captureStdout(t)

	sum, err := Execute(testEff(root, ""))
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if sum.Output != "" {
		t.Fatalf("标准输出时 Output 应为空: %q", sum.Output)
	}
	if buf.Len() != sum.Bytes {
		t.Fatalf("字节数不符: 缓冲 %d 统计 %d", buf.Len(), sum.Bytes)
	}
	if !strings.HasSuffix(buf.String(), "</playlist>\n") {
		t.Fatalf("标准输出结尾不符:\n%s", buf.String())
	}
}

func TestExecute_ProbeFailureDropsFile(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "good.mp4"))
	touch(t, filepath.Join(root, "corrupt", "bad.mp4"))
	stubProbe(t, okProbe(nil))
	buf := captureStdout(t)

	sum, err := Execute(testEff(root, ""))
	if err != nil {
		t.Fatalf("坏文件不应让整次运行失败: %v", err)
	}
	if sum.Files != 2 || sum.Tracks != 1 || sum.Skipped != 1 {
		t.Fatalf("统计不符: %+v", sum)
	}

	doc := buf.String()
	if strings.Contains(doc, "bad.mp4") {
		t.Fatalf("坏文件不应出现在输出里:\n%s", doc)
	}
	// 失败文件不应留下空祖先目录。
	if strings.Contains(doc, `title="corrupt"`) {
		t.Fatalf("坏文件的目录不应出现在输出里:\n%s", doc)
	}
}

func TestExecute_NestedRootsCountFileOnce(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	touch(t, filepath.Join(sub, "x.mp4"))
	stubProbe(t, okProbe(nil))
	buf := captureStdout(t)

	eff := testEff(root, "")
	eff.Roots = []string{root, sub}
	sum, err := Execute(eff)
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	if sum.Tracks != 1 || sum.Skipped != 1 {
		t.Fatalf("嵌套根应只收一次文件: %+v", sum)
	}
	if n := strings.Count(buf.String(), "<vlc:item "); n != 1 {
		t.Fatalf("层级里应只有一个叶子, 实际 %d:\n%s", n, buf.String())
	}
}

func TestExecute_CacheAvoidsSecondProbe(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))
	var calls int
	stubProbe(t, okProbe(&calls))

	eff := testEff(root, filepath.Join(t.TempDir(), "out.xspf"))
	eff.Cache = true
	eff.CacheDir = t.TempDir()

	if _, err := Execute(eff); err != nil {
		t.Fatalf("第一次运行失败: %v", err)
	}
	if calls != 1 {
		t.Fatalf("第一次应探测 1 次, 实际 %d", calls)
	}

	sum, err := Execute(eff)
	if err != nil {
		t.Fatalf("第二次运行失败: %v", err)
	}
	if calls != 1 {
		t.Fatalf("第二次应全部命中缓存, 探测次数 %d", calls)
	}
	if sum.Tracks != 1 {
		t.Fatalf("缓存命中后曲目数不符: %+v", sum)
	}

	b, err := os.ReadFile(eff.Output)
	if err != nil {
		t.Fatalf("读输出失败: %v", err)
	}
	if !strings.Contains(string(b), "<title>a.mp4</title>") {
		t.Fatalf("缓存里的标题没有进输出:\n%s", b)
	}
}

func TestExecute_NonUTF8TitleFatalOnStdout(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))
	stubProbe(t, func(f domain.MediaFile) (probe.Meta, error) {
		return probe.Meta{Title: string([]byte{'t', 0xff}), DurationMS: 1}, nil
	})
	captureStdout(t)

	if _, err := Execute(testEff(root, "")); err == nil {
		t.Fatalf("非 UTF-8 文档打印到标准输出应当报错")
	}
}

func TestExecute_NilObserverSameDocument(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mp4"))
	touch(t, filepath.Join(root, "s", "b.mkv"))
	stubProbe(t, okProbe(nil))

	outA := filepath.Join(t.TempDir(), "a.xspf")
	outB := filepath.Join(t.TempDir(), "b.xspf")

	sumA, err := Execute(testEff(root, outA))
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}
	sumB, err := ExecuteWithObserver(testEff(root, outB), &recordObserver{})
	if err != nil {
		t.Fatalf("不期望错误: %v", err)
	}

	a, _ := os.ReadFile(outA)
	b, _ := os.ReadFile(outB)
	if !bytes.Equal(a, b) {
		t.Fatalf("observer 不应改变输出内容")
	}

	sumA.Output, sumB.Output = "", ""
	if !reflect.DeepEqual(sumA, sumB) {
		t.Fatalf("observer 不应改变统计: %+v vs %+v", sumA, sumB)
	}
}
