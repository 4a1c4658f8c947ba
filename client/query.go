package client

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
)

// buildQuery encodes params as a query string. Nested maps and slices are
// flattened as key[sub]=v and key[0]=v, booleans become 1/0 and nil values
// are skipped.
func buildQuery(params map[string]any) string {
	vals := url.Values{}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		addQueryValue(vals, k, params[k])
	}
	return vals.Encode()
}

func addQueryValue(vals url.Values, key string, v any) {
	switch t := v.(type) {
	case nil:
	case string:
		vals.Add(key, t)
	case bool:
		if t {
			vals.Add(key, "1")
		} else {
			vals.Add(key, "0")
		}
	case float64:
		vals.Add(key, strconv.FormatFloat(t, 'f', -1, 64))
	case fmt.Stringer:
		vals.Add(key, t.String())
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Map:
			keys := make([]string, 0, rv.Len())
			sub := make(map[string]any, rv.Len())
			for _, mk := range rv.MapKeys() {
				ks := fmt.Sprint(mk.Interface())
				keys = append(keys, ks)
				sub[ks] = rv.MapIndex(mk).Interface()
			}
			sort.Strings(keys)
			for _, ks := range keys {
				addQueryValue(vals, key+"["+ks+"]", sub[ks])
			}
		case reflect.Slice, reflect.Array:
			for i := range rv.Len() {
				addQueryValue(vals, key+"["+strconv.Itoa(i)+"]", rv.Index(i).Interface())
			}
		default:
			vals.Add(key, fmt.Sprint(v))
		}
	}
}
