package primitive

import "reflect"

// FieldPaths maps each fixture tag of the input record type t, including
// those of embedded structs such as Header, to its field index path for
// reflect.Value.FieldByIndex.
func FieldPaths(t reflect.Type) map[string][]int {
	fields := make(map[string][]int)
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			path := append(append([]int(nil), prefix...), i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, path)
				continue
			}
			if name := f.Tag.Get("fixture"); name != "" {
				fields[name] = path
			}
		}
	}
	walk(t, nil)
	return fields
}
