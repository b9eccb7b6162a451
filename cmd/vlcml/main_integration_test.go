package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRealMain_WritesPlaylistFile(t *testing.T) {
	root := t.TempDir()
	writeMP4Fixture(t, filepath.Join(root, "a.mp4"))
	writeMP4Fixture(t, filepath.Join(root, "sub", "b.mp4"))
	out := filepath.Join(t.TempDir(), "out.xspf")

	if code := realMain([]string{"-r", root, "-o", out}); code != 0 {
		t.Fatalf("期望退出码 0，实际 %d", code)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读输出失败：%v", err)
	}
	doc := string(b)
	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`+"\n") {
		t.Fatalf("缺少 XML 声明：\n%s", doc)
	}
	if !strings.HasSuffix(doc, "</playlist>\n") {
		t.Fatalf("结尾不符：\n%s", doc)
	}
	if !strings.Contains(doc, "<title>a.mp4</title>") || !strings.Contains(doc, "<title>b.mp4</title>") {
		t.Fatalf("曲目标题缺失：\n%s", doc)
	}
	if !strings.Contains(doc, "<duration>2500</duration>") {
		t.Fatalf("容器时长没有进输出：\n%s", doc)
	}
	if !strings.Contains(doc, `<vlc:node title="sub">`) {
		t.Fatalf("子目录节点缺失：\n%s", doc)
	}
}

func TestRealMain_ConfigFileDrivesRun(t *testing.T) {
	root := t.TempDir()
	writeMP4Fixture(t, filepath.Join(root, "a.mp4"))
	out := filepath.Join(t.TempDir(), "out.xspf")

	cfg := filepath.Join(t.TempDir(), "vlcml.json")
	body := fmt.Sprintf(`{"roots":[%q],"output":%q}`, root, out)
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatalf("写配置失败：%v", err)
	}

	if code := realMain([]string{"-c", cfg}); code != 0 {
		t.Fatalf("期望退出码 0，实际 %d", code)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("配置里的输出文件没有生成：%v", err)
	}
}

func TestRealMain_UnknownFlagIsUsageError(t *testing.T) {
	if code := realMain([]string{"--bogus"}); code != 2 {
		t.Fatalf("未知参数期望退出码 2，实际 %d", code)
	}
}

func TestRealMain_PositionalArgIsUsageError(t *testing.T) {
	if code := realMain([]string{"-r", t.TempDir(), "extra"}); code != 2 {
		t.Fatalf("位置参数期望退出码 2，实际 %d", code)
	}
}

func TestRealMain_MissingRootsIsUsageError(t *testing.T) {
	if code := realMain(nil); code != 2 {
		t.Fatalf("没有根目录期望退出码 2，实际 %d", code)
	}
}

func TestRealMain_ExplicitConfigMissing(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "nope.json")
	if code := realMain([]string{"-c", cfg, "-r", t.TempDir()}); code != 1 {
		t.Fatalf("显式配置不存在期望退出码 1，实际 %d", code)
	}
}

func TestRealMain_HelpExitsZero(t *testing.T) {
	if code := realMain([]string{"-h"}); code != 0 {
		t.Fatalf("帮助期望退出码 0，实际 %d", code)
	}
}

// writeMP4Fixture 写一个只含 ftyp 和 moov/mvhd 的最小容器，
// 时间刻度 1000、时长 2500 刻度，即 2500 毫秒。
func writeMP4Fixture(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	var u4 [4]byte
	putU32 := func(v uint32) {
		binary.BigEndian.PutUint32(u4[:], v)
		buf.Write(u4[:])
	}

	putU32(16)
	buf.WriteString("ftyp")
	buf.WriteString("isom")
	putU32(0x200)

	putU32(116)
	buf.WriteString("moov")
	putU32(108)
	buf.WriteString("mvhd")
	putU32(0)
	buf.Write(make([]byte, 8))
	putU32(1000)
	putU32(2500)
	putU32(0x00010000)
	buf.Write([]byte{0x01, 0x00})
	buf.Write(make([]byte, 10))
	for _, v := range []uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000} {
		putU32(v)
	}
	buf.Write(make([]byte, 24))
	putU32(2)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("建目录失败：%v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("写 mp4 样本失败：%v", err)
	}
}
