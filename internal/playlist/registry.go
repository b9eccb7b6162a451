package playlist

import "github.com/John-Robertt/VLCML/internal/domain"

// Registry 是只追加的曲目注册表：下标即曲目的永久身份。
//
// 不变量：
// - 下标 i 永远指向第 i 条被追加的曲目，不回收、不重排
// - 注册顺序 = 发现顺序（trackList 按这个顺序序列化，与树的排序无关）
type Registry struct {
	tracks []domain.Track
}

func NewRegistry() *Registry {
	return &Registry{tracks: make([]domain.Track, 0, 128)}
}

// Append 追加一条曲目并返回分配给它的下标。
func (r *Registry) Append(t domain.Track) int {
	r.tracks = append(r.tracks, t)
	return len(r.tracks) - 1
}

func (r *Registry) Len() int { return len(r.tracks) }

// Tracks 返回底层序列（注册顺序）。调用方只读，不得修改。
func (r *Registry) Tracks() []domain.Track { return r.tracks }
