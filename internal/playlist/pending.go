package playlist

import (
	"fmt"
	"path/filepath"

	"github.com/John-Robertt/VLCML/internal/domain"
)

// pendingNode 是暂存树里的一个节点：目录或叶子二选一。
type pendingNode struct {
	// 目录字段。children 保存子节点的绝对路径，注册顺序。
	title    string
	children []string

	// 叶子字段。
	trackIdx int
	name     string

	leaf bool
}

// PendingMap 是构树阶段的可变暂存结构：以绝对路径为键，
// 按需懒创建祖先目录，走扫结束后一次性实体化为不可变树。
//
// 不变量：
// - 每个路径作为键至多出现一次
// - 目录要么是预注册的根，要么因某个后代文件的需要而被创建
// - 叶子恰好在其文件被接受时插入一次
// - 构树阶段由单一调用方独占，不做并发防护
type PendingMap struct {
	nodes map[string]*pendingNode
	roots []string
}

// NewPendingMap 预注册全部根：标题取根自身的 base name，
// 无法表示时（文件系统根、"."）回退为空串。根永远不是叶子。
func NewPendingMap(roots []string) *PendingMap {
	nodes := make(map[string]*pendingNode, 2*len(roots)+16)
	for _, root := range roots {
		nodes[root] = &pendingNode{title: rootTitle(root)}
	}
	return &PendingMap{
		nodes: nodes,
		roots: append([]string(nil), roots...),
	}
}

// Has 报告 path 是否已注册（根重叠时用于防止重复注册同一文件）。
func (m *PendingMap) Has(path string) bool {
	_, ok := m.nodes[path]
	return ok
}

// PushFile 为 path 懒创建全部缺失的祖先目录，并把叶子挂到直接父目录下。
//
// path 必须是 clean + absolute，且位于某个已注册的根之下。
// 祖先链一路收缩到文件系统根都碰不到已注册目录时说明输入违约：
// 返回错误，调用方必须把它当作致命错误中止运行，而不是跳过。
func (m *PendingMap) PushFile(path string, index int) error {
	if err := m.linkToParent(path); err != nil {
		return err
	}
	m.nodes[path] = &pendingNode{
		leaf:     true,
		trackIdx: index,
		name:     filepath.Base(path),
	}
	return nil
}

// linkToParent 确保 path 的父目录存在（递归创建缺失的祖先，
// 碰到已存在的祖先即终止），然后把 path 追加进父目录的子路径表。
// 递归在正常输入下必然终止于某个预注册的根；路径逐级收缩，不存在环。
func (m *PendingMap) linkToParent(path string) error {
	parent := filepath.Dir(path)
	if parent == path {
		// Dir 不动点 = 已到文件系统根：path 不在任何已注册的根之下。
		return fmt.Errorf("路径 %q 无法归属到任何已注册的根", path)
	}

	if _, ok := m.nodes[parent]; !ok {
		m.nodes[parent] = &pendingNode{title: dirTitle(parent)}
		if err := m.linkToParent(parent); err != nil {
			return err
		}
	}

	node := m.nodes[parent]
	if node.leaf {
		return fmt.Errorf("路径 %q 的父节点 %q 已注册为文件", path, parent)
	}
	node.children = append(node.children, path)
	return nil
}

// Realize 把暂存结构实体化为不可变树：每个根产出一个顶层节点，顺序同配置。
// 纯读操作，之后暂存表即可丢弃。
func (m *PendingMap) Realize() []domain.PlaylistNode {
	nodes := make([]domain.PlaylistNode, 0, len(m.roots))
	for _, root := range m.roots {
		nodes = append(nodes, m.realizeAt(root))
	}
	return nodes
}

func (m *PendingMap) realizeAt(path string) domain.PlaylistNode {
	n := m.nodes[path]
	if n.leaf {
		return domain.PlaylistNode{Leaf: true, TrackIdx: n.trackIdx, Name: n.name}
	}
	children := make([]domain.PlaylistNode, 0, len(n.children))
	for _, c := range n.children {
		children = append(children, m.realizeAt(c))
	}
	return domain.PlaylistNode{Title: n.title, Children: children}
}

func rootTitle(root string) string {
	name := filepath.Base(root)
	if name == string(filepath.Separator) || name == "." {
		return ""
	}
	return name
}

func dirTitle(dir string) string {
	name := filepath.Base(dir)
	if name == string(filepath.Separator) || name == "." {
		return "?"
	}
	return name
}
