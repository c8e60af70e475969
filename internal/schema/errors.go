package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shoplead/shoplead_server/internal/pkg/sheet"
)

// ErrStructural 表格整体不可用，导入在任何写入之前终止
var ErrStructural = errors.New("structural error")

var (
	ErrEmptyTable = fmt.Errorf("%w: table has no header row", ErrStructural)
	ErrNoRows     = fmt.Errorf("%w: table has no data rows", ErrStructural)
)

// 单元格转换失败的原因
var (
	ErrRequiredValue = errors.New("value is required")
	ErrNotNumber     = errors.New("not a number")
	ErrNegative      = errors.New("must not be negative")
	ErrNotInteger    = errors.New("not a whole number")
	ErrBadDate       = errors.New("unrecognized date")
)

// MissingColumnError 缺少必需列
type MissingColumnError struct {
	Columns []Column
}

func (e *MissingColumnError) Error() string {
	parts := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		parts = append(parts, fmt.Sprintf("%q (accepted headers: %s)", c.Field, strings.Join(c.Accepted, ", ")))
	}
	return "missing required column " + strings.Join(parts, "; ")
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrStructural
}

// Fields 缺失的规范字段名
func (e *MissingColumnError) Fields() []string {
	fields := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		fields = append(fields, c.Field)
	}
	return fields
}

// RowError 单行转换失败，该行被跳过
type RowError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// IsStructural 表格无法读取、为空或缺少必需列
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructural) || errors.Is(err, sheet.ErrUnreadable)
}
