package debugui

import "reflect"

type fieldInfo struct {
	name  string
	index int
}

// fieldCache memoizes the exported fields of the struct types the inspector
// renders. Only touched from the render thread, so no locking. The zero
// value is ready to use.
type fieldCache struct {
	byType map[reflect.Type][]fieldInfo
}

func (c *fieldCache) get(t reflect.Type) []fieldInfo {
	if fields, ok := c.byType[t]; ok {
		return fields
	}

	var fields []fieldInfo
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			fields = append(fields, fieldInfo{name: field.Name, index: i})
		}
	}

	if c.byType == nil {
		c.byType = make(map[reflect.Type][]fieldInfo)
	}
	c.byType[t] = fields
	return fields
}
