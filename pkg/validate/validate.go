// Package validate checks structs against rules declared in a `validate`
// tag, reporting the first failing rule per field under its JSON name.
//
// Rules, comma-separated:
//
//	required        value must be present (non-zero; false counts as present)
//	nullable        skip the remaining rules when the value is absent
//	email           email address
//	url             http or https URL
//	uuid            canonical UUID
//	slug            lower-case letters, digits and dashes
//	min=N, max=N    string length in characters, or numeric bounds
//	gt=N, gte=N     numeric lower bounds
//	lte=N           numeric upper bound
//	in=a|b|c        one of the listed values
//	regex=pattern   must match pattern (no commas)
//
// Embedded structs are validated in place. Pointer fields are dereferenced;
// a nil pointer is absent. Fields whose type
// has an InexactFloat64 method (decimal amounts) are compared numerically.
//
//	type CouponInput struct {
//	    Code   string          `json:"coupon_code"     validate:"required,min=3,max=100"`
//	    Amount decimal.Decimal `json:"discount_amount" validate:"gte=0"`
//	    Status string          `json:"coupon_status"   validate:"required,in=active|used|expired"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/sincro/backoffice/pkg/apperr"
)

type rule func(field, param string, v reflect.Value) string

var rules = map[string]rule{
	"required": func(field, _ string, v reflect.Value) string {
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	},
	"email": func(field, _ string, v reflect.Value) string {
		if !emailRE.MatchString(text(v)) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
		return ""
	},
	"url": func(field, _ string, v reflect.Value) string {
		u, err := url.ParseRequestURI(text(v))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
		return ""
	},
	"uuid": func(field, _ string, v reflect.Value) string {
		if !uuidRE.MatchString(text(v)) {
			return fmt.Sprintf("The %s must be a valid UUID.", field)
		}
		return ""
	},
	"slug": func(field, _ string, v reflect.Value) string {
		if !slugRE.MatchString(text(v)) {
			return fmt.Sprintf("The %s may only contain lower-case letters, numbers and dashes.", field)
		}
		return ""
	},
	"min": func(field, param string, v reflect.Value) string {
		if f, ok := number(v); ok {
			if f < parseFloat(param) {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if float64(len([]rune(text(v)))) < parseFloat(param) {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
		return ""
	},
	"max": func(field, param string, v reflect.Value) string {
		if f, ok := number(v); ok {
			if f > parseFloat(param) {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else if float64(len([]rune(text(v)))) > parseFloat(param) {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
		return ""
	},
	"gt": func(field, param string, v reflect.Value) string {
		if f, ok := number(v); !ok || f <= parseFloat(param) {
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		}
		return ""
	},
	"gte": func(field, param string, v reflect.Value) string {
		if f, ok := number(v); !ok || f < parseFloat(param) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
		return ""
	},
	"lte": func(field, param string, v reflect.Value) string {
		if f, ok := number(v); !ok || f > parseFloat(param) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
		return ""
	},
	"in": func(field, param string, v reflect.Value) string {
		got := text(v)
		for _, allowed := range strings.Split(param, "|") {
			if got == strings.TrimSpace(allowed) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	},
	"regex": func(field, param string, v reflect.Value) string {
		re, err := compile(param)
		if err != nil {
			return fmt.Sprintf("The %s has an invalid validation pattern.", field)
		}
		if !re.MatchString(text(v)) {
			return fmt.Sprintf("The %s format is invalid.", field)
		}
		return ""
	},
}

// Struct validates v, a struct or pointer to struct. The result maps JSON
// field names to messages and is empty when v is valid.
func Struct(v any) map[string]string {
	errs := map[string]string{}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.Anonymous && field.IsExported() && field.Type.Kind() == reflect.Struct {
			for k, msg := range Struct(rv.Field(i).Interface()) {
				errs[k] = msg
			}
			continue
		}
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}
		name := jsonName(field)
		value := rv.Field(i)

		list := strings.Split(tag, ",")
		if contains(list, "nullable") && isEmpty(value) {
			continue
		}
		value = deref(value)
		for _, r := range list {
			key, param, _ := strings.Cut(strings.TrimSpace(r), "=")
			check, ok := rules[key]
			if !ok {
				continue
			}
			if key != "required" && !value.IsValid() {
				break
			}
			if msg := check(name, param, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

// Check is Struct returning an apperr validation error, or nil.
func Check(v any) error {
	if errs := Struct(v); len(errs) > 0 {
		return apperr.Validation(errs)
	}
	return nil
}

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRE  = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	slugRE  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	patterns sync.Map
)

func compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}

type floater interface{ InexactFloat64() float64 }

type zeroer interface{ IsZero() bool }

func deref(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isEmpty(v reflect.Value) bool {
	v = deref(v)
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		if z, ok := v.Interface().(zeroer); ok {
			return z.IsZero()
		}
	}
	return false
}

// number returns v as a float when it is numeric.
func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	if f, ok := v.Interface().(floater); ok {
		return f.InexactFloat64(), true
	}
	return 0, false
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func contains(list []string, target string) bool {
	for _, s := range list {
		if strings.TrimSpace(s) == target {
			return true
		}
	}
	return false
}
