// Package scene 声学场景分类：把几百类的细粒度音频事件分布折叠进少量应用桶。
package scene

import "sort"

// BucketOther 兜底桶，未命中任何关键词集合的类别都计入这里
const BucketOther = "other"

// 标准桶顺序。顺序参与并列时的 argmax 决策，保持稳定。
var canonicalOrder = []string{"speech", "music", "silence", "noise", BucketOther}

// Table 数据驱动的桶映射表：桶名有序排列，每个桶持有细粒度类别名集合。
type Table struct {
	order   []string
	members map[string]map[string]struct{}
}

// NewTable 从配置构建桶映射表。
// 标准桶按固定顺序排列，配置新增的桶按字典序插在 other 之前，other 恒为末位。
func NewTable(buckets map[string][]string) *Table {
	t := &Table{members: make(map[string]map[string]struct{})}

	for _, name := range canonicalOrder {
		if name == BucketOther {
			continue
		}
		if classes, ok := buckets[name]; ok {
			t.append(name, classes)
		}
	}

	var extra []string
	for name := range buckets {
		if name == BucketOther || t.has(name) {
			continue
		}
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		t.append(name, buckets[name])
	}

	t.append(BucketOther, buckets[BucketOther])
	return t
}

func (t *Table) append(name string, classes []string) {
	set := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		set[c] = struct{}{}
	}
	t.order = append(t.order, name)
	t.members[name] = set
}

func (t *Table) has(name string) bool {
	_, ok := t.members[name]
	return ok
}

// Buckets 按序返回所有桶名
func (t *Table) Buckets() []string {
	return t.order
}

// BucketFor 返回类别名所属的桶，未命中任何关键词集合时归入 other。
func (t *Table) BucketFor(className string) string {
	for _, name := range t.order {
		if name == BucketOther {
			continue
		}
		if _, ok := t.members[name][className]; ok {
			return name
		}
	}
	return BucketOther
}
