package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/VLCML/internal/domain"
)

// MediaFiles 按 roots 的配置顺序依次走扫，返回命中扩展名过滤的媒体文件。
//
// 规则（硬约束）：
// - skip 按 clean + absolute 的精确匹配；命中的目录剪掉整棵子树，
//   前缀相近的兄弟目录（如 /a/b 与 /a/bb）互不影响
// - 遍历顺序即发现顺序：WalkDir 按目录项字典序下行，结果不再重排
//   （注册表的下标 = 发现顺序，这里的顺序必须确定且稳定）
// - 条目元数据读取失败（stat/readdir）静默跳过，继续走扫
// - 不是目录的根静默产出空结果
//
// 注意：扫描阶段只做 stat（DirEntry.Info），不读文件内容。
func MediaFiles(roots []string, skip []string, extFilter map[string]bool) []domain.MediaFile {
	skipSet := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipSet[filepath.Clean(s)] = struct{}{}
	}

	files := make([]domain.MediaFile, 0, 128)
	for _, root := range roots {
		files = scanRoot(files, root, skipSet, extFilter)
	}
	return files
}

func scanRoot(files []domain.MediaFile, root string, skipSet map[string]struct{}, extFilter map[string]bool) []domain.MediaFile {
	root = filepath.Clean(root)

	fi, err := os.Stat(root)
	if err != nil || !fi.IsDir() {
		return files
	}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// 读不了的目录/条目静默跳过，走扫继续。
			return nil
		}

		if d.IsDir() {
			if _, ok := skipSet[filepath.Clean(path)]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !extFilter[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		files = append(files, domain.MediaFile{
			AbsPath: path,
			Base:    name,
			Ext:     ext,
			Size:    info.Size(),
			ModUnix: info.ModTime().Unix(),
		})
		return nil
	})
	return files
}
