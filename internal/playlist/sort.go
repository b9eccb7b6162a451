package playlist

import (
	"sort"

	"github.com/John-Robertt/VLCML/internal/domain"
)

// SortNodes 对兄弟节点施加全序并递归到每一层（顶层节点本身也参与排序）：
// 1) 目录永远排在叶子前面
// 2) 目录之间按标题做字节序比较
// 3) 叶子之间按文件名做字节序比较（曲目下标不参与排序）
//
// 稳定排序：相等键保持原有相对顺序，同一输入反复排序结果逐字节一致。
func SortNodes(nodes []domain.PlaylistNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodeLess(&nodes[i], &nodes[j])
	})
	for i := range nodes {
		if !nodes[i].Leaf {
			SortNodes(nodes[i].Children)
		}
	}
}

func nodeLess(a, b *domain.PlaylistNode) bool {
	if a.Leaf != b.Leaf {
		return !a.Leaf
	}
	if a.Leaf {
		return a.Name < b.Name
	}
	return a.Title < b.Title
}
