package tools

import (
	"fmt"
	"reflect"
	"time"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// ExportToExcel 把结构体切片写入 sheet，表头取 excel 标签，没有标签时用字段名，"-" 跳过。
// 没有数据时只写表头；sheet 不是默认表时会删掉默认的 Sheet1
func ExportToExcel[T any](f *excelize.File, sheet string, rows []T) error {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%s 不是结构体", t)
	}
	if sheet == "" {
		sheet = defaultSheet
	}
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}

	fields := columns(t, nil)
	header := make([]any, 0, len(fields))
	for _, c := range fields {
		header = append(header, c.header)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range rows {
		v := reflect.ValueOf(row)
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				continue
			}
			v = v.Elem()
		}
		values := make([]any, 0, len(fields))
		for _, c := range fields {
			values = append(values, cellValue(v.FieldByIndex(c.index)))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

type column struct {
	index  []int
	header string
}

// columns 展开匿名嵌入的结构体
func columns(t reflect.Type, parent []int) []column {
	var out []column
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		idx := append(append([]int(nil), parent...), i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			out = append(out, columns(sf.Type, idx)...)
			continue
		}
		tag := sf.Tag.Get("excel")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = sf.Name
		}
		out = append(out, column{index: idx, header: tag})
	}
	return out
}

func cellValue(fv reflect.Value) any {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return ""
		}
		fv = fv.Elem()
	}
	if tm, ok := fv.Interface().(time.Time); ok {
		if tm.IsZero() {
			return ""
		}
		return tm.Format(time.DateTime)
	}
	return fv.Interface()
}
