package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/VLCML/internal/domain"
	"github.com/John-Robertt/VLCML/internal/infra/fsx"
)

// Store 提供 <Dir>/probe/ 下的探测结果文件缓存。
//
// 约束：
// - Enabled=false：Read 恒为 miss，Write 为空操作（调用方无需分支）
// - 命中要求条目的 path/size/mtime 与当前文件完全一致，任一不符都按 miss 处理
// - 缓存的任何失败都不应影响运行结果：探测总是可以重来
type Store struct {
	Dir     string
	Enabled bool
}

func New(dir string, enabled bool) Store {
	return Store{
		Dir:     filepath.Clean(strings.TrimSpace(dir)),
		Enabled: enabled,
	}
}

// Entry 是一条持久化的探测结果。
type Entry struct {
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	ModUnix    int64  `json:"mtime_unix"`
	Title      string `json:"title"`
	DurationMS uint64 `json:"duration_ms"`
}

// EntryPath 返回 absPath 对应缓存条目的绝对路径。
// 键取绝对路径的 SHA-1，避免把任意路径字符编码进文件名。
func (s Store) EntryPath(absPath string) string {
	sum := sha1.Sum([]byte(absPath))
	return filepath.Join(s.Dir, "probe", hex.EncodeToString(sum[:])+".json")
}

// Read 查找 f 的缓存条目。
// 条目不存在、无法解析或已过期（size/mtime 不符）都返回 ok=false 且 err=nil。
func (s Store) Read(f domain.MediaFile) (Entry, bool, error) {
	if !s.Enabled {
		return Entry{}, false, nil
	}
	b, err := os.ReadFile(s.EntryPath(f.AbsPath))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		// 条目损坏按 miss 处理，之后的 Write 会原子覆盖它。
		return Entry{}, false, nil
	}
	if e.Path != f.AbsPath || e.Size != f.Size || e.ModUnix != f.ModUnix {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Write 记录 f 的探测结果（原子写入，覆盖旧条目）。
func (s Store) Write(f domain.MediaFile, title string, durationMS uint64) error {
	if !s.Enabled {
		return nil
	}
	e := Entry{
		Path:       f.AbsPath,
		Size:       f.Size,
		ModUnix:    f.ModUnix,
		Title:      title,
		DurationMS: durationMS,
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	sum := sha1.Sum([]byte(f.AbsPath))
	name := hex.EncodeToString(sum[:]) + ".json"
	return fsx.WriteFileAtomic(filepath.Join(s.Dir, "probe"), name, b)
}
