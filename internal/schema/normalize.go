package schema

import (
	"strings"

	"github.com/shoplead/shoplead_server/internal/pkg/sheet"
)

// Mapping 规范字段 -> 源表列下标；未出现的可选列不在其中
type Mapping map[string]int

// Row 归一化后的一行，每个规范字段都有值（可能为空串）
type Row struct {
	// Index 数据行序号，从 1 开始，不含表头
	Index  int
	Values map[string]string
}

func (r Row) Get(field string) string {
	return r.Values[field]
}

// Resolve 表头去空格并小写后匹配列定义
func Resolve(headers []string, columns []Column) (Mapping, error) {
	if len(headers) == 0 {
		return nil, ErrEmptyTable
	}

	positions := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, exists := positions[key]; !exists {
			positions[key] = i
		}
	}

	mapping := make(Mapping, len(columns))
	var missing []Column
	for _, col := range columns {
		found := false
		for _, name := range col.Accepted {
			if idx, ok := positions[name]; ok {
				mapping[col.Field] = idx
				found = true
				break
			}
		}
		if !found && col.Required {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}
	return mapping, nil
}

// Normalize 把表格转换为规范字段行，并填入列定义中的默认值
func Normalize(table *sheet.Table, columns []Column) ([]Row, error) {
	if table == nil {
		return nil, ErrEmptyTable
	}

	mapping, err := Resolve(table.Headers, columns)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, ErrNoRows
	}

	rows := make([]Row, 0, len(table.Rows))
	for i, cells := range table.Rows {
		values := make(map[string]string, len(columns))
		for _, col := range columns {
			value := ""
			if idx, ok := mapping[col.Field]; ok && idx < len(cells) {
				value = strings.TrimSpace(cells[idx])
			}
			if value == "" {
				value = col.Default
			}
			values[col.Field] = value
		}
		rows = append(rows, Row{Index: i + 1, Values: values})
	}
	return rows, nil
}
