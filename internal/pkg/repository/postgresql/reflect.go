package postgresql

import "reflect"

func isZeroField(s interface{}, name string) bool {
	v := reflect.Indirect(reflect.ValueOf(s))
	if v.Kind() != reflect.Struct {
		return false
	}
	f := v.FieldByName(name)
	return f.IsValid() && f.IsZero()
}
