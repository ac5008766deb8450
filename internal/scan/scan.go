package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanInventories 扫描 root 下的字表文件，并应用目录排除规则。
//
// 规则：
// - 只收 .txt/.html/.htm/.xhtml（扩展名不区分大小写）
// - 以 '.' 开头的文件与目录跳过（编辑器临时文件、.git 等）
// - excludeDirs：均视为相对 root 的路径（若是绝对路径，则按绝对路径处理）
//
// 返回值按相对 root 的路径排序，保证字表标签的分配顺序稳定。
func ScanInventories(root string, excludeDirs []string) ([]string, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	type item struct{ abs, rel string }
	files := make([]item, 0, 16)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path != root && (isExcluded(path, excluded) || strings.HasPrefix(d.Name(), ".")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !IsInventoryExt(filepath.Ext(d.Name())) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, item{abs: path, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.abs
	}
	return out, nil
}

// Expand 把 -i 参数展开为字表文件列表：文件原样保留，目录替换为 ScanInventories 的结果。
//
// 参数顺序保持不变（标签按该顺序分配）。不存在的路径原样保留，由调用方统一报告缺失；
// 扫不到任何字表文件的目录放入 empty。
func Expand(paths []string, excludeDirs []string) (files, empty []string, err error) {
	files = make([]string, 0, len(paths))
	for _, p := range paths {
		fi, statErr := os.Stat(p)
		if statErr != nil || !fi.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := ScanInventories(p, excludeDirs)
		if err != nil {
			return nil, nil, err
		}
		if len(found) == 0 {
			empty = append(empty, p)
			continue
		}
		files = append(files, found...)
	}
	return files, empty, nil
}

// IsInventoryExt 判断扩展名（含 '.'）是否为可作为字表的文件类型。
func IsInventoryExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".html", ".htm", ".xhtml":
		return true
	default:
		return false
	}
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}

	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
